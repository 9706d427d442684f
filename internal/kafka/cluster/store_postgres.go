// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package cluster

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

const clusterColumns = "id, tenantid, name, bootstrapservers, environment, description, createdat, updatedat"

// Create persists a new cluster registration.
func (store *PostgresStore) Create(ctx context.Context, cluster *Cluster) error {
	const query = `
		INSERT INTO kafka.cluster (
			id, tenantid, name, bootstrapservers, environment, description, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if cluster.CreatedAt.IsZero() {
		cluster.CreatedAt = now
	}
	cluster.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		cluster.ID,
		cluster.TenantID,
		cluster.Name,
		cluster.BootstrapServers,
		cluster.Environment,
		cluster.Description,
		cluster.CreatedAt,
		cluster.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Cluster")
	}

	return nil
}

// FindByID retrieves a cluster registration within a tenant.
func (store *PostgresStore) FindByID(ctx context.Context, tenantID, clusterID string) (*Cluster, error) {
	const query = `
		SELECT ` + clusterColumns + `
		FROM kafka.cluster
		WHERE tenantid = $1 AND id = $2`

	return store.scanCluster(store.pool.QueryRow(ctx, query, tenantID, clusterID))
}

// List returns one page of a tenant's clusters plus the total count.
func (store *PostgresStore) List(ctx context.Context, tenantID string, params pagination.Params) ([]*Cluster, int, error) {
	total, err := store.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + clusterColumns + `
		FROM kafka.cluster
		WHERE tenantid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := store.pool.Query(ctx, query, tenantID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_cluster_store_list_failed: %w", err)
	}
	defer rows.Close()

	var clusters []*Cluster
	for rows.Next() {
		cluster, scanErr := store.scanCluster(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		clusters = append(clusters, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_cluster_store_list_rows_failed: %w", err)
	}

	return clusters, total, nil
}

// CountByTenant returns the number of clusters registered by a tenant.
func (store *PostgresStore) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	const query = "SELECT COUNT(*) FROM kafka.cluster WHERE tenantid = $1"

	var count int
	if err := store.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_cluster_store_count_failed: %w", err)
	}
	return count, nil
}

// Update persists changes to a cluster's mutable fields.
func (store *PostgresStore) Update(ctx context.Context, cluster *Cluster) error {
	const query = `
		UPDATE kafka.cluster
		SET name = $3, bootstrapservers = $4, environment = $5, description = $6, updatedat = $7
		WHERE tenantid = $1 AND id = $2`

	cluster.UpdatedAt = time.Now()
	_, err := store.pool.Exec(ctx, query,
		cluster.TenantID,
		cluster.ID,
		cluster.Name,
		cluster.BootstrapServers,
		cluster.Environment,
		cluster.Description,
		cluster.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Cluster")
	}

	return nil
}

// Delete removes a cluster registration. Topics and consumer group records
// cascade at the schema level.
func (store *PostgresStore) Delete(ctx context.Context, tenantID, clusterID string) error {
	const query = "DELETE FROM kafka.cluster WHERE tenantid = $1 AND id = $2"
	_, err := store.pool.Exec(ctx, query, tenantID, clusterID)
	if err != nil {
		return fmt.Errorf("postgres_cluster_store_delete_failed: %w", err)
	}
	return nil
}

// scanCluster maps one result row onto a [Cluster].
func (store *PostgresStore) scanCluster(row pgx.Row) (*Cluster, error) {
	cluster := &Cluster{}
	err := row.Scan(
		&cluster.ID,
		&cluster.TenantID,
		&cluster.Name,
		&cluster.BootstrapServers,
		&cluster.Environment,
		&cluster.Description,
		&cluster.CreatedAt,
		&cluster.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Cluster")
	}
	return cluster, nil
}
