// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klustra/klustra/internal/platform/apperr"
)

// PostgresAccountStore implements [AccountStore] using pgx.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates a new PostgreSQL implementation of [AccountStore].
func NewAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

const accountColumns = "id, tenantid, username, email, passwordhash, roles, enabled, lockeduntil"

// FindByUsername retrieves a credential record by username.
//
// When tenantHint is empty the lookup is global; if the same username exists
// in more than one tenant, [ErrAmbiguousUsername] is returned and no account
// data leaves the store.
func (store *PostgresAccountStore) FindByUsername(ctx context.Context, tenantHint, username string) (*Account, error) {

	// ── 1. Tenant-Scoped Lookup (fast path) ───────────────────────────────

	if tenantHint != "" {
		const query = `
			SELECT ` + accountColumns + `
			FROM users.account
			WHERE tenantid = $1 AND username = $2 AND deletedat IS NULL`

		account, err := store.scanAccount(store.pool.QueryRow(ctx, query, tenantHint, username))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperr.NotFound("Account not found")
			}
			return nil, fmt.Errorf("postgres_account_store_find_by_username_failed: %w", err)
		}
		return account, nil
	}

	// ── 2. Global Lookup with Ambiguity Detection ─────────────────────────

	// LIMIT 2 is enough to distinguish "unique" from "ambiguous" without
	// scanning every tenant the username appears in.
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE username = $1 AND deletedat IS NULL
		LIMIT 2`

	rows, err := store.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_store_global_lookup_failed: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		account, scanErr := store.scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("postgres_account_store_global_lookup_scan_failed: %w", scanErr)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_store_global_lookup_rows_failed: %w", err)
	}

	switch len(accounts) {
	case 0:
		return nil, apperr.NotFound("Account not found")
	case 1:
		return accounts[0], nil
	default:
		return nil, ErrAmbiguousUsername
	}
}

// FindByID retrieves a credential record by its primary key.
func (store *PostgresAccountStore) FindByID(ctx context.Context, accountID string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	account, err := store.scanAccount(store.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found")
		}
		return nil, fmt.Errorf("postgres_account_store_find_by_id_failed: %w", err)
	}

	return account, nil
}

// scanAccount maps one result row onto an [Account].
func (store *PostgresAccountStore) scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.TenantID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Roles,
		&account.Enabled,
		&account.LockedUntil,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
