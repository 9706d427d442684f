// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/klustra/klustra/internal/auth"
	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/sec"
	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/pkg/pagination"
	"github.com/klustra/klustra/pkg/uuid"
)

// TenantQuota exposes the user quota of a tenant. Implemented by the
// tenants service.
type TenantQuota interface {
	// MaxUsers returns the user quota of the given tenant.
	MaxUsers(context context.Context, tenantID string) (int, error)
}

// Service implements user management use cases.
//
// Every tenant-scoped method resolves the active tenant from the request
// context exactly once; a missing binding is a hard failure, never a
// cross-tenant query.
type Service struct {
	store Store
	quota TenantQuota

	// now is injectable for deterministic lock-window tests.
	now func() time.Time
}

// NewService constructs a new users [Service].
func NewService(store Store, quota TenantQuota) *Service {
	return &Service{store: store, quota: quota, now: time.Now}
}

// CreateInput holds the data required to create a user within a tenant.
type CreateInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

/*
Create adds a new user to the active tenant.

Description: Tenant-admin facing creation. Usernames are unique within a
tenant, and the tenant's user quota is enforced.

Parameters:
  - context: Context carrying the tenant binding.
  - input: Username, email, plain-text password, and roles.

Returns:
  - The newly created [*User].
  - [apperr.Conflict] when the username is taken within the tenant.
  - [apperr.Unprocessable] when the tenant's user quota is reached.
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	// ── 1. Tenant Binding ─────────────────────────────────────────────────

	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	// ── 2. Quota & Uniqueness ─────────────────────────────────────────────

	maxUsers, err := service.quota.MaxUsers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("users_service_quota_lookup_failed: %w", err)
	}

	count, err := service.store.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("users_service_count_failed: %w", err)
	}
	if count >= maxUsers {
		return nil, apperr.Unprocessable("Tenant user quota reached")
	}

	if _, err := service.store.FindByUsername(ctx, tenantID, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken in this tenant")
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users_service_hash_failed: %w", err)
	}

	// ── 4. Entity Construction & Persistence ──────────────────────────────

	roles := input.Roles
	if len(roles) == 0 {
		roles = []string{string(sec.RoleUser)}
	}
	for _, role := range roles {
		if !sec.Role(role).Valid() {
			return nil, apperr.ValidationError(fmt.Sprintf("Unknown role %q", role))
		}
	}

	user := &User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Roles:        roles,
		Enabled:      true,
	}

	if err := service.store.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("users_service_create_failed: %w", err)
	}

	return user, nil
}

// CreateTenantAdmin creates the founding administrator of a freshly
// provisioned tenant. This is the port consumed by the auth service; the
// password arrives pre-hashed and the tenant binding comes as an argument
// because registration runs before any tenant context exists.
func (service *Service) CreateTenantAdmin(ctx context.Context, tenantID, username, email, passwordHash string) (*auth.Account, error) {
	user := &User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{string(sec.RoleTenantAdmin)},
		Enabled:      true,
	}

	if err := service.store.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("users_service_create_admin_failed: %w", err)
	}

	return &auth.Account{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Roles:        user.Roles,
		Enabled:      user.Enabled,
	}, nil
}

// Get retrieves a user within the active tenant.
func (service *Service) Get(ctx context.Context, userID string) (*User, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}
	return service.store.FindByID(ctx, tenantID, userID)
}

// List returns a page of users in the active tenant plus the total count.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*User, int, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, 0, err
	}
	return service.store.List(ctx, tenantID, params)
}

// UpdateInput holds the mutable user fields.
type UpdateInput struct {
	Email string
	Roles []string
}

// Update changes a user's email and/or roles within the active tenant.
func (service *Service) Update(ctx context.Context, userID string, input UpdateInput) (*User, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	user, err := service.store.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		user.Email = input.Email
	}
	if len(input.Roles) > 0 {
		for _, role := range input.Roles {
			if !sec.Role(role).Valid() {
				return nil, apperr.ValidationError(fmt.Sprintf("Unknown role %q", role))
			}
		}
		user.Roles = input.Roles
	}

	if err := service.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("users_service_update_failed: %w", err)
	}

	return user, nil
}

// Delete soft-deletes a user within the active tenant.
func (service *Service) Delete(ctx context.Context, userID string) error {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return err
	}

	if _, err := service.store.FindByID(ctx, tenantID, userID); err != nil {
		return err
	}
	if err := service.store.SoftDelete(ctx, tenantID, userID); err != nil {
		return fmt.Errorf("users_service_delete_failed: %w", err)
	}
	return nil
}

// # Account State Management

// SetEnabled enables or disables a user within the active tenant.
func (service *Service) SetEnabled(ctx context.Context, userID string, enabled bool) (*User, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	user, err := service.store.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	user.Enabled = enabled
	if err := service.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("users_service_set_enabled_failed: %w", err)
	}
	return user, nil
}

// Unlock clears a user's lock window and failure streak immediately.
func (service *Service) Unlock(ctx context.Context, userID string) (*User, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	user, err := service.store.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := service.store.Lock(ctx, userID, nil); err != nil {
		return nil, fmt.Errorf("users_service_unlock_failed: %w", err)
	}

	user.LockedUntil = nil
	user.FailedLoginAttempts = 0
	return user, nil
}

// # Login Bookkeeping (auth ports)

// RecordLogin bumps the login counter and resets the failure streak.
func (service *Service) RecordLogin(ctx context.Context, userID string) error {
	if err := service.store.RecordLogin(ctx, userID, service.now()); err != nil {
		return fmt.Errorf("users_service_record_login_failed: %w", err)
	}
	return nil
}

// RecordFailedLogin bumps the failure streak; once the streak reaches the
// platform limit the account is locked for a fixed window and the streak
// is reset so the next window starts clean.
func (service *Service) RecordFailedLogin(ctx context.Context, userID string) error {
	attempts, err := service.store.IncrementFailedLogins(ctx, userID)
	if err != nil {
		return fmt.Errorf("users_service_record_failed_login_failed: %w", err)
	}

	if attempts >= constants.MaxFailedLogins {
		lockUntil := service.now().Add(constants.AccountLockDuration)
		if err := service.store.Lock(ctx, userID, &lockUntil); err != nil {
			return fmt.Errorf("users_service_lock_failed: %w", err)
		}
	}

	return nil
}
