// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klustra/klustra/internal/platform/dberr"
	"github.com/klustra/klustra/pkg/pagination"
)

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL implementation of [Store].
func NewStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const userColumns = `id, tenantid, username, email, passwordhash, roles, enabled,
	lockeduntil, logincount, failedloginattempts, lastloginat, createdat, updatedat`

// Create persists a new user record.
func (store *PostgresStore) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, tenantid, username, email, passwordhash, roles, enabled,
			logincount, failedloginattempts, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		user.ID,
		user.TenantID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Roles,
		user.Enabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}

	return nil
}

// FindByID retrieves a user by ID within a tenant.
func (store *PostgresStore) FindByID(ctx context.Context, tenantID, userID string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE tenantid = $1 AND id = $2 AND deletedat IS NULL`

	return store.scanUser(store.pool.QueryRow(ctx, query, tenantID, userID))
}

// FindByUsername retrieves a user by username within a tenant.
func (store *PostgresStore) FindByUsername(ctx context.Context, tenantID, username string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE tenantid = $1 AND username = $2 AND deletedat IS NULL`

	return store.scanUser(store.pool.QueryRow(ctx, query, tenantID, username))
}

// List returns one page of a tenant's users plus the total count.
func (store *PostgresStore) List(ctx context.Context, tenantID string, params pagination.Params) ([]*User, int, error) {
	total, err := store.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE tenantid = $1 AND deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := store.pool.Query(ctx, query, tenantID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_store_list_failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, scanErr := store.scanUser(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_store_list_rows_failed: %w", err)
	}

	return users, total, nil
}

// CountByTenant returns the number of live users in a tenant.
func (store *PostgresStore) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	const query = "SELECT COUNT(*) FROM users.account WHERE tenantid = $1 AND deletedat IS NULL"

	var count int
	if err := store.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_user_store_count_failed: %w", err)
	}
	return count, nil
}

// Update persists changes to a user's mutable fields.
func (store *PostgresStore) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET email = $3, roles = $4, enabled = $5, updatedat = $6
		WHERE tenantid = $1 AND id = $2 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := store.pool.Exec(ctx, query,
		user.TenantID,
		user.ID,
		user.Email,
		user.Roles,
		user.Enabled,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}

	return nil
}

// SoftDelete marks a user as deleted within a tenant.
func (store *PostgresStore) SoftDelete(ctx context.Context, tenantID, userID string) error {
	const query = "UPDATE users.account SET deletedat = $3 WHERE tenantid = $1 AND id = $2"
	_, err := store.pool.Exec(ctx, query, tenantID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_store_soft_delete_failed: %w", err)
	}
	return nil
}

// RecordLogin stamps a successful login and clears the failure streak.
func (store *PostgresStore) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	const query = `
		UPDATE users.account
		SET logincount = logincount + 1,
		    failedloginattempts = 0,
		    lockeduntil = NULL,
		    lastloginat = $2,
		    updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("postgres_user_store_record_login_failed: %w", err)
	}
	return nil
}

// IncrementFailedLogins bumps the failure streak and returns the new count.
func (store *PostgresStore) IncrementFailedLogins(ctx context.Context, userID string) (int, error) {
	const query = `
		UPDATE users.account
		SET failedloginattempts = failedloginattempts + 1, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING failedloginattempts`

	var attempts int
	err := store.pool.QueryRow(ctx, query, userID).Scan(&attempts)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, dberr.Wrap(err, "User")
		}
		return 0, fmt.Errorf("postgres_user_store_increment_failed_logins_failed: %w", err)
	}
	return attempts, nil
}

// Lock sets (or clears, with nil) the lock window and resets the streak.
func (store *PostgresStore) Lock(ctx context.Context, userID string, until *time.Time) error {
	const query = `
		UPDATE users.account
		SET lockeduntil = $2, failedloginattempts = 0, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, userID, until)
	if err != nil {
		return fmt.Errorf("postgres_user_store_lock_failed: %w", err)
	}
	return nil
}

// scanUser maps one result row onto a [User].
func (store *PostgresStore) scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Roles,
		&user.Enabled,
		&user.LockedUntil,
		&user.LoginCount,
		&user.FailedLoginAttempts,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}
