// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"context"
	"errors"
	"time"
)

// Account is the credential-bearing read model used by authentication.
//
// # Scope
//
// This is deliberately a narrow projection of the full user record managed
// by the users package: only the fields the login and refresh flows need.
// Authentication reads accounts, it never writes them — login bookkeeping
// (counters, locks) goes through the [LoginRecorder] port.
type Account struct {
	ID           string
	TenantID     string
	Username     string
	Email        string
	PasswordHash string // bcrypt encoding, or a legacy plaintext value
	Roles        []string
	Enabled      bool
	LockedUntil  *time.Time
}

// ErrAmbiguousUsername is returned when a username lookup without a tenant
// hint matches accounts in more than one tenant. Callers must collapse this
// into a generic credential failure; revealing the ambiguity would leak
// which tenants a username exists in.
var ErrAmbiguousUsername = errors.New("auth: username exists in multiple tenants")

// AccountStore defines the persistence contract for credential lookups.
type AccountStore interface {
	// FindByUsername locates an account by username.
	//
	// # Parameters
	//   - context: Context for the database operation.
	//   - tenantHint: Tenant ID to scope the lookup, or "" for a global lookup.
	//   - username: The login name to search for.
	//
	// # Returns
	//   - The matching account.
	//   - [apperr.NotFound] when no account matches.
	//   - [ErrAmbiguousUsername] when tenantHint is empty and the username
	//     exists in more than one tenant.
	FindByUsername(context context.Context, tenantHint, username string) (*Account, error)

	// FindByID locates an account by its primary key, ignoring tenancy.
	// Used by the refresh flow where the subject ID comes from a verified token.
	FindByID(context context.Context, accountID string) (*Account, error)
}
