// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package tenants

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

const tenantColumns = "id, name, subdomain, plan, status, maxusers, maxclusters, trialendsat, createdat, updatedat"

// Create persists a new tenant record.
func (store *PostgresStore) Create(ctx context.Context, tenant *Tenant) error {
	const query = `
		INSERT INTO tenants.tenant (
			id, name, subdomain, plan, status, maxusers, maxclusters, trialendsat, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Subdomain,
		tenant.Plan,
		tenant.Status,
		tenant.MaxUsers,
		tenant.MaxClusters,
		tenant.TrialEndsAt,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Tenant")
	}

	return nil
}

// FindByID retrieves a tenant by its primary key.
func (store *PostgresStore) FindByID(ctx context.Context, tenantID string) (*Tenant, error) {
	const query = `
		SELECT ` + tenantColumns + `
		FROM tenants.tenant
		WHERE id = $1 AND deletedat IS NULL`

	return store.scanTenant(store.pool.QueryRow(ctx, query, tenantID))
}

// FindBySubdomain retrieves a tenant by its unique subdomain.
func (store *PostgresStore) FindBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	const query = `
		SELECT ` + tenantColumns + `
		FROM tenants.tenant
		WHERE subdomain = $1 AND deletedat IS NULL`

	return store.scanTenant(store.pool.QueryRow(ctx, query, subdomain))
}

// List returns one page of tenants ordered by creation time, plus the total count.
func (store *PostgresStore) List(ctx context.Context, params pagination.Params) ([]*Tenant, int, error) {
	const countQuery = "SELECT COUNT(*) FROM tenants.tenant WHERE deletedat IS NULL"

	var total int
	if err := store.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_tenant_store_count_failed: %w", err)
	}

	const query = `
		SELECT ` + tenantColumns + `
		FROM tenants.tenant
		WHERE deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := store.pool.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_tenant_store_list_failed: %w", err)
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		tenant, scanErr := store.scanTenant(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_tenant_store_list_rows_failed: %w", err)
	}

	return tenants, total, nil
}

// Update persists changes to a tenant's mutable fields.
func (store *PostgresStore) Update(ctx context.Context, tenant *Tenant) error {
	const query = `
		UPDATE tenants.tenant
		SET name = $2, plan = $3, status = $4, maxusers = $5, maxclusters = $6, trialendsat = $7, updatedat = $8
		WHERE id = $1 AND deletedat IS NULL`

	tenant.UpdatedAt = time.Now()
	_, err := store.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Plan,
		tenant.Status,
		tenant.MaxUsers,
		tenant.MaxClusters,
		tenant.TrialEndsAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Tenant")
	}

	return nil
}

// UpdateStatus changes only the operational status of a tenant.
func (store *PostgresStore) UpdateStatus(ctx context.Context, tenantID string, status Status) error {
	const query = `
		UPDATE tenants.tenant
		SET status = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, tenantID, status, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_tenant_store_update_status_failed: %w", err)
	}
	return nil
}

// SoftDelete marks a tenant as deleted.
func (store *PostgresStore) SoftDelete(ctx context.Context, tenantID string) error {
	const query = "UPDATE tenants.tenant SET deletedat = $2 WHERE id = $1"
	_, err := store.pool.Exec(ctx, query, tenantID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_tenant_store_soft_delete_failed: %w", err)
	}
	return nil
}

// scanTenant maps one result row onto a [Tenant].
func (store *PostgresStore) scanTenant(row pgx.Row) (*Tenant, error) {
	tenant := &Tenant{}
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&tenant.Plan,
		&tenant.Status,
		&tenant.MaxUsers,
		&tenant.MaxClusters,
		&tenant.TrialEndsAt,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Tenant")
	}
	return tenant, nil
}
