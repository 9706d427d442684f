// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/sec"
)

// fakeAccountStore is an in-memory AccountStore used across the auth tests.
type fakeAccountStore struct {
	accounts map[string]*Account // keyed by account ID
}

func newFakeAccountStore(accounts ...*Account) *fakeAccountStore {
	store := &fakeAccountStore{accounts: make(map[string]*Account)}
	for _, account := range accounts {
		store.accounts[account.ID] = account
	}
	return store
}

func (store *fakeAccountStore) FindByUsername(_ context.Context, tenantHint, username string) (*Account, error) {
	var matches []*Account
	for _, account := range store.accounts {
		if account.Username != username {
			continue
		}
		if tenantHint != "" && account.TenantID != tenantHint {
			continue
		}
		matches = append(matches, account)
	}

	switch len(matches) {
	case 0:
		return nil, apperr.NotFound("Account not found")
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousUsername
	}
}

func (store *fakeAccountStore) FindByID(_ context.Context, accountID string) (*Account, error) {
	account, found := store.accounts[accountID]
	if !found {
		return nil, apperr.NotFound("Account not found")
	}
	return account, nil
}

// mustHash creates a bcrypt encoding for test fixtures.
func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func activeAccount(t *testing.T) *Account {
	t.Helper()
	return &Account{
		ID:           "acc-1",
		TenantID:     "tenant-1",
		Username:     "nadia",
		Email:        "nadia@example.com",
		PasswordHash: mustHash(t, "correct horse battery staple"),
		Roles:        []string{"USER"},
		Enabled:      true,
	}
}

func newTestResolver(store AccountStore) *Resolver {
	return NewResolver(store, sec.NewPasswordVerifier(false))
}

func TestResolverFromCredentials_Success(t *testing.T) {

	// 1. Seed an active account
	account := activeAccount(t)
	resolver := newTestResolver(newFakeAccountStore(account))

	// 2. Correct credentials must resolve the account
	got, err := resolver.FromCredentials(context.Background(), "tenant-1", "nadia", "correct horse battery staple")

	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, "tenant-1", got.TenantID)
}

func TestResolverFromCredentials_WrongPassword(t *testing.T) {

	account := activeAccount(t)
	resolver := newTestResolver(newFakeAccountStore(account))

	_, err := resolver.FromCredentials(context.Background(), "tenant-1", "nadia", "wrong-password")

	// The failure must carry the account ID so bookkeeping can target it
	var failure *AuthFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureInvalidCredentials, failure.Reason)
	assert.Equal(t, account.ID, failure.AccountID)
}

func TestResolverFromCredentials_UnknownUsername(t *testing.T) {

	resolver := newTestResolver(newFakeAccountStore())

	_, err := resolver.FromCredentials(context.Background(), "", "ghost", "anything")

	// Unknown users produce the same failure as a wrong password,
	// with no account ID attached
	var failure *AuthFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureInvalidCredentials, failure.Reason)
	assert.Empty(t, failure.AccountID)
}

func TestResolverFromCredentials_AmbiguousUsernameCollapses(t *testing.T) {

	// 1. The same username exists in two different tenants
	first := activeAccount(t)
	second := activeAccount(t)
	second.ID = "acc-2"
	second.TenantID = "tenant-2"

	resolver := newTestResolver(newFakeAccountStore(first, second))

	// 2. Without a tenant hint the lookup is ambiguous and must look
	//    identical to a wrong password from the outside
	_, err := resolver.FromCredentials(context.Background(), "", "nadia", "correct horse battery staple")

	var failure *AuthFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureInvalidCredentials, failure.Reason)

	// 3. With a tenant hint the same credentials succeed
	got, err := resolver.FromCredentials(context.Background(), "tenant-2", "nadia", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, "acc-2", got.ID)
}

func TestResolverFromCredentials_LockedAccount(t *testing.T) {

	// 1. Lock the account into the future
	account := activeAccount(t)
	lockedUntil := time.Now().Add(30 * time.Minute)
	account.LockedUntil = &lockedUntil

	resolver := newTestResolver(newFakeAccountStore(account))

	// 2. Even the correct password must be rejected while locked
	_, err := resolver.FromCredentials(context.Background(), "tenant-1", "nadia", "correct horse battery staple")

	var failure *AuthFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureAccountLocked, failure.Reason)
}

func TestResolverFromCredentials_ExpiredLockIsIgnored(t *testing.T) {

	// A lock window in the past must not block the login
	account := activeAccount(t)
	lockedUntil := time.Now().Add(-1 * time.Minute)
	account.LockedUntil = &lockedUntil

	resolver := newTestResolver(newFakeAccountStore(account))

	got, err := resolver.FromCredentials(context.Background(), "tenant-1", "nadia", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestResolverFromCredentials_DisabledAccount(t *testing.T) {

	account := activeAccount(t)
	account.Enabled = false

	resolver := newTestResolver(newFakeAccountStore(account))

	_, err := resolver.FromCredentials(context.Background(), "tenant-1", "nadia", "correct horse battery staple")

	var failure *AuthFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureAccountDisabled, failure.Reason)
}

func TestResolverFromToken_NoStoreAccess(t *testing.T) {

	// FromToken must work with a nil store: it is a pure projection
	resolver := NewResolver(nil, sec.NewPasswordVerifier(false))

	claims := &sec.AuthClaims{
		Username: "nadia",
		Email:    "nadia@example.com",
		TenantID: "tenant-1",
		Roles:    []string{"TENANT_ADMIN"},
	}
	claims.Subject = "acc-1"

	principal := resolver.FromToken(claims)

	assert.Equal(t, "acc-1", principal.ID)
	assert.Equal(t, "nadia", principal.Username)
	assert.Equal(t, "tenant-1", principal.TenantID)
	assert.Equal(t, []string{"TENANT_ADMIN"}, principal.Roles)
	assert.True(t, principal.HasRole(sec.RoleTenantAdmin))
}
