// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/sec"
)

// # Authentication Failures

// FailureReason classifies why a credential check was rejected.
//
// The taxonomy exists for audit logging and login bookkeeping. Clients only
// ever see the mapped [apperr.Unauthorized] message, never the raw reason.
type FailureReason string

const (
	FailureInvalidCredentials FailureReason = "invalid_credentials"
	FailureAccountLocked      FailureReason = "account_locked"
	FailureAccountDisabled    FailureReason = "account_disabled"
)

// AuthFailure is returned by [Resolver.FromCredentials] when the identity
// could not be established. AccountID is set when the account itself was
// found, so that failed-attempt bookkeeping can target it.
type AuthFailure struct {
	Reason    FailureReason
	AccountID string
}

// Error implements the error interface.
func (failure *AuthFailure) Error() string {
	return fmt.Sprintf("auth: credential check failed (%s)", failure.Reason)
}

// clientError maps the internal failure onto the client-facing error.
//
// Invalid credentials stay generic to prevent username enumeration; locked
// and disabled states are surfaced because the caller has already proven
// knowledge of a valid username+password pair.
func (failure *AuthFailure) clientError() *apperr.AppError {
	switch failure.Reason {
	case FailureAccountLocked:
		return apperr.Unauthorized("Account is temporarily locked")
	case FailureAccountDisabled:
		return apperr.Unauthorized("Account is disabled")
	default:
		return apperr.Unauthorized("Invalid login credentials")
	}
}

// # Principal Resolver

// Resolver turns tokens or credentials into an authenticated [Principal].
//
// # Review Process
//
// This type is critical for security. Any changes to the credential check
// ordering or the failure taxonomy must be reviewed by the security team.
type Resolver struct {
	accountStore AccountStore
	passwords    *sec.PasswordVerifier

	// now is injectable for deterministic lock-window tests.
	now func() time.Time
}

// NewResolver constructs a [Resolver] with its dependencies.
func NewResolver(accountStore AccountStore, passwords *sec.PasswordVerifier) *Resolver {
	return &Resolver{
		accountStore: accountStore,
		passwords:    passwords,
		now:          time.Now,
	}
}

// FromToken projects verified JWT claims into a [Principal].
//
// This is the per-request hot path: it performs no I/O at all. Claims were
// validated cryptographically before this point, so they are trusted as-is.
func (resolver *Resolver) FromToken(claims *sec.AuthClaims) *Principal {
	return principalFromClaims(claims)
}

/*
FromCredentials verifies a username+password pair and returns the account.

Description: The login-path identity check. Lookups honour the tenant hint;
without one, an ambiguous username (existing in several tenants) is treated
exactly like a wrong password so the ambiguity itself leaks nothing.

Parameters:
  - context: Context for the database operation.
  - tenantHint: Tenant ID scoping the lookup, or "" for global.
  - username: The submitted login name.
  - password: The submitted plain-text password.

Returns:
  - The verified account on success.
  - [*AuthFailure] when the identity could not be established.
  - A wrapped infrastructure error for storage faults.

Check order: existence, lock state, enabled state, password. The lock check
runs before the password check so a locked account cannot be used as a
password oracle.
*/
func (resolver *Resolver) FromCredentials(ctx context.Context, tenantHint, username, password string) (*Account, error) {

	// ── 1. Account Lookup ─────────────────────────────────────────────────

	account, err := resolver.accountStore.FindByUsername(ctx, tenantHint, username)
	if err != nil {
		if errors.Is(err, ErrAmbiguousUsername) || apperr.IsAppError(err) {
			// Unknown and ambiguous usernames collapse into the same failure.
			return nil, &AuthFailure{Reason: FailureInvalidCredentials}
		}
		return nil, fmt.Errorf("auth_resolver_lookup_failed: %w", err)
	}

	// ── 2. Account State Gates ────────────────────────────────────────────

	if !nonLocked(account, resolver.now()) {
		return nil, &AuthFailure{Reason: FailureAccountLocked, AccountID: account.ID}
	}

	if !account.Enabled {
		return nil, &AuthFailure{Reason: FailureAccountDisabled, AccountID: account.ID}
	}

	// ── 3. Password Verification ──────────────────────────────────────────

	if !resolver.passwords.Matches(password, account.PasswordHash) {
		return nil, &AuthFailure{Reason: FailureInvalidCredentials, AccountID: account.ID}
	}

	return account, nil
}
