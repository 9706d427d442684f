// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"time"

	"github.com/klustra/klustra/internal/platform/sec"
)

// Principal is the application-facing view of an authenticated identity.
//
// # Architecture
//
// A Principal can be resolved from two sources:
//   - A verified JWT (cheap, per-request, no database access).
//   - Submitted credentials (expensive, login path only).
//
// Both paths converge on this one shape so that authorization code never
// needs to know where the identity came from.
type Principal struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	TenantID string   `json:"tenantId"`
	Roles    []string `json:"roles"`
}

// HighestRole reports the strongest role held by the principal.
func (principal *Principal) HighestRole() sec.Role {
	return sec.HighestRole(principal.Roles)
}

// HasRole reports whether the principal holds the exact given role.
func (principal *Principal) HasRole(role sec.Role) bool {
	return sec.HasRole(principal.Roles, role)
}

// principalFromClaims projects verified token claims into a Principal.
//
// No database access happens here: the claims were embedded at issuance time
// and are trusted for the lifetime of the access token. Role changes made
// after issuance only take effect once the token is refreshed.
func principalFromClaims(claims *sec.AuthClaims) *Principal {
	return &Principal{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		TenantID: claims.TenantID,
		Roles:    claims.Roles,
	}
}

// principalFromAccount projects a persisted account into a Principal.
func principalFromAccount(account *Account) *Principal {
	return &Principal{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		TenantID: account.TenantID,
		Roles:    account.Roles,
	}
}

// # Account State Checks

// nonLocked reports whether the account's lock window has passed (or was
// never set). A lock in the past is treated as expired, no manual unlock
// step is required.
func nonLocked(account *Account, now time.Time) bool {
	if account.LockedUntil == nil {
		return true
	}
	return account.LockedUntil.Before(now)
}
