// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/pkg/pagination"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	users map[string]*User
}

func newFakeStore(users ...*User) *fakeStore {
	store := &fakeStore{users: make(map[string]*User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (store *fakeStore) Create(_ context.Context, user *User) error {
	store.users[user.ID] = user
	return nil
}

func (store *fakeStore) FindByID(_ context.Context, tenantID, userID string) (*User, error) {
	user, found := store.users[userID]
	if !found || user.TenantID != tenantID {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (store *fakeStore) FindByUsername(_ context.Context, tenantID, username string) (*User, error) {
	for _, user := range store.users {
		if user.TenantID == tenantID && user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *fakeStore) List(_ context.Context, tenantID string, _ pagination.Params) ([]*User, int, error) {
	var matches []*User
	for _, user := range store.users {
		if user.TenantID == tenantID {
			matches = append(matches, user)
		}
	}
	return matches, len(matches), nil
}

func (store *fakeStore) CountByTenant(_ context.Context, tenantID string) (int, error) {
	count := 0
	for _, user := range store.users {
		if user.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (store *fakeStore) Update(_ context.Context, user *User) error {
	store.users[user.ID] = user
	return nil
}

func (store *fakeStore) SoftDelete(_ context.Context, tenantID, userID string) error {
	delete(store.users, userID)
	return nil
}

func (store *fakeStore) RecordLogin(_ context.Context, userID string, at time.Time) error {
	user := store.users[userID]
	user.LoginCount++
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &at
	return nil
}

func (store *fakeStore) IncrementFailedLogins(_ context.Context, userID string) (int, error) {
	user, found := store.users[userID]
	if !found {
		return 0, apperr.NotFound("User")
	}
	user.FailedLoginAttempts++
	return user.FailedLoginAttempts, nil
}

func (store *fakeStore) Lock(_ context.Context, userID string, until *time.Time) error {
	user := store.users[userID]
	user.LockedUntil = until
	user.FailedLoginAttempts = 0
	return nil
}

// fixedQuota always grants the same user limit.
type fixedQuota struct{ limit int }

func (quota fixedQuota) MaxUsers(_ context.Context, _ string) (int, error) {
	return quota.limit, nil
}

func tenantContext(tenantID string) context.Context {
	return tenantctx.With(context.Background(), tenantID)
}

func TestServiceCreate_RequiresTenantBinding(t *testing.T) {

	service := NewService(newFakeStore(), fixedQuota{limit: 10})

	// Without a tenant in the context the operation must fail loudly
	_, err := service.Create(context.Background(), CreateInput{
		Username: "nadia",
		Email:    "nadia@example.com",
		Password: "a-long-password",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NO_TENANT_CONTEXT", appError.Code)
}

func TestServiceCreate_DefaultRoleAndHashing(t *testing.T) {

	store := newFakeStore()
	service := NewService(store, fixedQuota{limit: 10})

	user, err := service.Create(tenantContext("tenant-1"), CreateInput{
		Username: "nadia",
		Email:    "nadia@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)

	assert.Equal(t, "tenant-1", user.TenantID)
	assert.Equal(t, []string{"USER"}, user.Roles)
	assert.True(t, user.Enabled)
	assert.NotEqual(t, "a-long-password", user.PasswordHash)
}

func TestServiceCreate_EnforcesQuota(t *testing.T) {

	existing := &User{ID: "u1", TenantID: "tenant-1", Username: "first"}
	service := NewService(newFakeStore(existing), fixedQuota{limit: 1})

	_, err := service.Create(tenantContext("tenant-1"), CreateInput{
		Username: "second",
		Email:    "second@example.com",
		Password: "a-long-password",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 422, appError.HTTPStatus)
}

func TestServiceCreate_RejectsDuplicateUsername(t *testing.T) {

	existing := &User{ID: "u1", TenantID: "tenant-1", Username: "nadia"}
	service := NewService(newFakeStore(existing), fixedQuota{limit: 10})

	_, err := service.Create(tenantContext("tenant-1"), CreateInput{
		Username: "nadia",
		Email:    "other@example.com",
		Password: "a-long-password",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

func TestServiceGet_IsTenantScoped(t *testing.T) {

	// A user from tenant-1 must be invisible from tenant-2's context
	existing := &User{ID: "u1", TenantID: "tenant-1", Username: "nadia"}
	service := NewService(newFakeStore(existing), fixedQuota{limit: 10})

	_, err := service.Get(tenantContext("tenant-2"), "u1")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestServiceRecordFailedLogin_LocksAtLimit(t *testing.T) {

	user := &User{ID: "u1", TenantID: "tenant-1", Username: "nadia", Enabled: true}
	store := newFakeStore(user)
	service := NewService(store, fixedQuota{limit: 10})

	// 1. Failures below the limit do not lock
	for i := 0; i < constants.MaxFailedLogins-1; i++ {
		require.NoError(t, service.RecordFailedLogin(context.Background(), "u1"))
	}
	assert.Nil(t, user.LockedUntil)
	assert.Equal(t, constants.MaxFailedLogins-1, user.FailedLoginAttempts)

	// 2. The final failure locks the account and resets the streak
	require.NoError(t, service.RecordFailedLogin(context.Background(), "u1"))

	require.NotNil(t, user.LockedUntil)
	assert.WithinDuration(t, time.Now().Add(constants.AccountLockDuration), *user.LockedUntil, 5*time.Second)
	assert.Equal(t, 0, user.FailedLoginAttempts)
}

func TestServiceRecordLogin_ResetsFailureStreak(t *testing.T) {

	lockedUntil := time.Now().Add(10 * time.Minute)
	user := &User{
		ID: "u1", TenantID: "tenant-1", Username: "nadia",
		FailedLoginAttempts: 3, LockedUntil: &lockedUntil,
	}
	store := newFakeStore(user)
	service := NewService(store, fixedQuota{limit: 10})

	require.NoError(t, service.RecordLogin(context.Background(), "u1"))

	assert.Equal(t, 1, user.LoginCount)
	assert.Equal(t, 0, user.FailedLoginAttempts)
	assert.Nil(t, user.LockedUntil)
	assert.NotNil(t, user.LastLoginAt)
}

func TestServiceUpdate_RejectsUnknownRole(t *testing.T) {

	existing := &User{ID: "u1", TenantID: "tenant-1", Username: "nadia", Roles: []string{"USER"}}
	service := NewService(newFakeStore(existing), fixedQuota{limit: 10})

	_, err := service.Update(tenantContext("tenant-1"), "u1", UpdateInput{
		Roles: []string{"SUPERUSER"},
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}
