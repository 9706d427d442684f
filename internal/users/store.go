// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package users

import (
	"context"
	"time"

	"github.com/klustra/klustra/pkg/pagination"
)

// Store defines the persistence contract for user records.
//
// Tenant-scoped methods take the tenant ID explicitly: the service layer
// resolves it from the request context exactly once per operation.
type Store interface {
	Create(context context.Context, user *User) error
	FindByID(context context.Context, tenantID, userID string) (*User, error)
	FindByUsername(context context.Context, tenantID, username string) (*User, error)
	List(context context.Context, tenantID string, params pagination.Params) ([]*User, int, error)
	CountByTenant(context context.Context, tenantID string) (int, error)
	Update(context context.Context, user *User) error
	SoftDelete(context context.Context, tenantID, userID string) error

	// Login bookkeeping operates on the bare user ID: it is driven by
	// the auth flow, which already verified the identity.

	// RecordLogin bumps the login counter, stamps the login time, and
	// resets the failure streak.
	RecordLogin(context context.Context, userID string, at time.Time) error

	// IncrementFailedLogins bumps the failure streak and returns the new count.
	IncrementFailedLogins(context context.Context, userID string) (int, error)

	// Lock sets the lock window and resets the failure streak.
	Lock(context context.Context, userID string, until *time.Time) error
}
