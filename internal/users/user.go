// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package users implements tenant-scoped user management.
//
// # Architecture
//
// Every user belongs to exactly one tenant. All reads and writes in this
// package are scoped by the tenant bound to the request context; an
// operation reaching this package without a tenant binding fails loudly
// instead of touching another tenant's rows.
package users

import "time"

// User is the full user record managed by this package.
//
// The password hash never leaves the server; the auth package reads it
// through its own narrow credential projection.
type User struct {
	ID                  string     `json:"id"`
	TenantID            string     `json:"tenantId"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Roles               []string   `json:"roles"`
	Enabled             bool       `json:"enabled"`
	LockedUntil         *time.Time `json:"lockedUntil,omitempty"`
	LoginCount          int        `json:"loginCount"`
	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
