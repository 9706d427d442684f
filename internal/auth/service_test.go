// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// recorderSpy captures login bookkeeping calls.
type recorderSpy struct {
	logins   []string
	failures []string
}

func (spy *recorderSpy) RecordLogin(_ context.Context, accountID string) error {
	spy.logins = append(spy.logins, accountID)
	return nil
}

func (spy *recorderSpy) RecordFailedLogin(_ context.Context, accountID string) error {
	spy.failures = append(spy.failures, accountID)
	return nil
}

type fakeTenantProvisioner struct{ tenantID string }

func (fake *fakeTenantProvisioner) ProvisionTrial(_ context.Context, _, _ string) (string, error) {
	return fake.tenantID, nil
}

type fakeAccountProvisioner struct{ store *fakeAccountStore }

func (fake *fakeAccountProvisioner) CreateTenantAdmin(_ context.Context, tenantID, username, email, passwordHash string) (*Account, error) {
	account := &Account{
		ID:           "acc-new",
		TenantID:     tenantID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{"TENANT_ADMIN"},
		Enabled:      true,
	}
	fake.store.accounts[account.ID] = account
	return account, nil
}

func newTestTokens(t *testing.T) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService(testSecret, "klustra.io", time.Hour, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func newTestService(t *testing.T, store *fakeAccountStore, spy *recorderSpy) (*Service, *sec.TokenService) {
	t.Helper()
	tokens := newTestTokens(t)
	service := NewService(
		newTestResolver(store),
		store,
		tokens,
		&fakeTenantProvisioner{tenantID: "tenant-new"},
		&fakeAccountProvisioner{store: store},
		spy,
	)
	return service, tokens
}

func TestServiceLogin_RoundTrip(t *testing.T) {

	// 1. Seed an active account and log in
	account := activeAccount(t)
	spy := &recorderSpy{}
	service, tokens := newTestService(t, newFakeAccountStore(account), spy)

	session, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})
	require.NoError(t, err)

	// 2. The session shape must be complete
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	assert.Equal(t, "tenant-1", session.TenantID)
	assert.Equal(t, "nadia", session.User.Username)

	// 3. The access token must verify and carry the full identity
	claims, err := tokens.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.Subject)
	assert.Equal(t, "nadia", claims.Username)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, []string{"USER"}, claims.Roles)
	assert.Equal(t, sec.KindAccess, claims.Kind)

	// 4. The refresh token carries identity+tenant only
	refreshClaims, err := tokens.Verify(session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sec.KindRefresh, refreshClaims.Kind)
	assert.Empty(t, refreshClaims.Roles)
	assert.Empty(t, refreshClaims.Email)

	// 5. A successful login is recorded
	assert.Equal(t, []string{account.ID}, spy.logins)
	assert.Empty(t, spy.failures)
}

func TestServiceLogin_WrongPasswordShape(t *testing.T) {

	account := activeAccount(t)
	spy := &recorderSpy{}
	service, _ := newTestService(t, newFakeAccountStore(account), spy)

	_, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "wrong-password",
	})

	// 1. The client sees a generic 401 with no hint about what failed
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Equal(t, "Invalid login credentials", appError.Message)

	// 2. The failed attempt was recorded against the account
	assert.Equal(t, []string{account.ID}, spy.failures)
	assert.Empty(t, spy.logins)
}

func TestServiceLogin_UnknownUserMatchesWrongPasswordShape(t *testing.T) {

	spy := &recorderSpy{}
	service, _ := newTestService(t, newFakeAccountStore(), spy)

	_, err := service.Login(context.Background(), LoginInput{
		Username: "ghost",
		Password: "anything",
	})

	// Unknown usernames must be indistinguishable from wrong passwords
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Equal(t, "Invalid login credentials", appError.Message)

	// No account to record the failure against
	assert.Empty(t, spy.failures)
}

func TestServiceLogin_LockedAccount(t *testing.T) {

	account := activeAccount(t)
	lockedUntil := time.Now().Add(30 * time.Minute)
	account.LockedUntil = &lockedUntil

	spy := &recorderSpy{}
	service, _ := newTestService(t, newFakeAccountStore(account), spy)

	_, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Equal(t, "Account is temporarily locked", appError.Message)

	// Locked rejections must not extend the failure streak
	assert.Empty(t, spy.failures)
}

func TestServiceRefresh_PicksUpRoleChanges(t *testing.T) {

	// 1. Log in with a plain USER role
	account := activeAccount(t)
	store := newFakeAccountStore(account)
	spy := &recorderSpy{}
	service, tokens := newTestService(t, store, spy)

	session, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})
	require.NoError(t, err)

	// 2. Promote the account after the tokens were issued
	account.Roles = []string{"TENANT_ADMIN"}

	// 3. The old access token still carries the stale role...
	staleClaims, err := tokens.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"USER"}, staleClaims.Roles)

	// 4. ...but a refresh re-reads the account and picks up the promotion
	renewed, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)

	freshClaims, err := tokens.Verify(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"TENANT_ADMIN"}, freshClaims.Roles)
}

func TestServiceRefresh_RejectsAccessToken(t *testing.T) {

	account := activeAccount(t)
	service, _ := newTestService(t, newFakeAccountStore(account), &recorderSpy{})

	session, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})
	require.NoError(t, err)

	// An access token must never be redeemable as a refresh token
	_, err = service.Refresh(context.Background(), session.AccessToken)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

func TestServiceRefresh_RejectsDisabledAccount(t *testing.T) {

	account := activeAccount(t)
	store := newFakeAccountStore(account)
	service, _ := newTestService(t, store, &recorderSpy{})

	session, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})
	require.NoError(t, err)

	// Disable the account after issuance; the refresh must honour it
	account.Enabled = false

	_, err = service.Refresh(context.Background(), session.RefreshToken)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

func TestServiceRefresh_RejectsGarbage(t *testing.T) {

	service, _ := newTestService(t, newFakeAccountStore(), &recorderSpy{})

	_, err := service.Refresh(context.Background(), "not.a.token")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

func TestServiceLogout_AlwaysSucceeds(t *testing.T) {

	account := activeAccount(t)
	service, _ := newTestService(t, newFakeAccountStore(account), &recorderSpy{})

	session, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})
	require.NoError(t, err)

	// Logout with a valid token, garbage, and nothing at all: never an error
	service.Logout(context.Background(), session.AccessToken)
	service.Logout(context.Background(), "garbage")
	service.Logout(context.Background(), "")
}

func TestServiceValidate(t *testing.T) {

	account := activeAccount(t)
	service, _ := newTestService(t, newFakeAccountStore(account), &recorderSpy{})

	session, err := service.Login(context.Background(), LoginInput{
		TenantHint: "tenant-1",
		Username:   "nadia",
		Password:   "correct horse battery staple",
	})
	require.NoError(t, err)

	assert.True(t, service.Validate(session.AccessToken))
	assert.True(t, service.Validate(session.RefreshToken))
	assert.False(t, service.Validate("garbage"))
	assert.False(t, service.Validate(""))

	// A tampered payload must fail signature verification
	parts := strings.Split(session.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	assert.False(t, service.Validate(tampered))
}

func TestServiceRegister_ProvisionsTenantAndAdmin(t *testing.T) {

	store := newFakeAccountStore()
	service, tokens := newTestService(t, store, &recorderSpy{})

	session, err := service.Register(context.Background(), RegisterInput{
		TenantName: "Acme Streaming",
		Subdomain:  "acme",
		Username:   "founder",
		Email:      "founder@acme.example",
		Password:   "a-long-password",
	})
	require.NoError(t, err)

	// 1. The founding user is signed straight in as TENANT_ADMIN
	assert.Equal(t, "tenant-new", session.TenantID)
	assert.Equal(t, []string{"TENANT_ADMIN"}, session.User.Roles)

	claims, err := tokens.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tenant-new", claims.TenantID)

	// 2. The stored password is a bcrypt encoding, never the plaintext
	stored := store.accounts["acc-new"]
	require.NotNil(t, stored)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
	assert.NotEqual(t, "a-long-password", stored.PasswordHash)
}
