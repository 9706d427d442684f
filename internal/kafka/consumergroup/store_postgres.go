// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package consumergroup

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

const groupColumns = "id, tenantid, clusterid, groupid, state, membercount, createdat, updatedat"

// Create persists a new consumer group record.
func (store *PostgresStore) Create(ctx context.Context, group *Group) error {
	const query = `
		INSERT INTO kafka.consumergroup (
			id, tenantid, clusterid, groupid, state, membercount, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		group.ID,
		group.TenantID,
		group.ClusterID,
		group.GroupID,
		group.State,
		group.MemberCount,
		group.CreatedAt,
		group.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "ConsumerGroup")
	}

	return nil
}

// FindByID retrieves a consumer group record within a tenant.
func (store *PostgresStore) FindByID(ctx context.Context, tenantID, groupID string) (*Group, error) {
	const query = `
		SELECT ` + groupColumns + `
		FROM kafka.consumergroup
		WHERE tenantid = $1 AND id = $2`

	return store.scanGroup(store.pool.QueryRow(ctx, query, tenantID, groupID))
}

// ListByCluster returns one page of a cluster's groups plus the total count.
func (store *PostgresStore) ListByCluster(ctx context.Context, tenantID, clusterID string, params pagination.Params) ([]*Group, int, error) {
	const countQuery = "SELECT COUNT(*) FROM kafka.consumergroup WHERE tenantid = $1 AND clusterid = $2"

	var total int
	if err := store.pool.QueryRow(ctx, countQuery, tenantID, clusterID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_group_store_count_failed: %w", err)
	}

	const query = `
		SELECT ` + groupColumns + `
		FROM kafka.consumergroup
		WHERE tenantid = $1 AND clusterid = $2
		ORDER BY groupid ASC
		LIMIT $3 OFFSET $4`

	rows, err := store.pool.Query(ctx, query, tenantID, clusterID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_group_store_list_failed: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group, scanErr := store.scanGroup(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_group_store_list_rows_failed: %w", err)
	}

	return groups, total, nil
}

// Delete removes a consumer group record.
func (store *PostgresStore) Delete(ctx context.Context, tenantID, groupID string) error {
	const query = "DELETE FROM kafka.consumergroup WHERE tenantid = $1 AND id = $2"
	_, err := store.pool.Exec(ctx, query, tenantID, groupID)
	if err != nil {
		return fmt.Errorf("postgres_group_store_delete_failed: %w", err)
	}
	return nil
}

// scanGroup maps one result row onto a [Group].
func (store *PostgresStore) scanGroup(row pgx.Row) (*Group, error) {
	group := &Group{}
	err := row.Scan(
		&group.ID,
		&group.TenantID,
		&group.ClusterID,
		&group.GroupID,
		&group.State,
		&group.MemberCount,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "ConsumerGroup")
	}
	return group, nil
}
