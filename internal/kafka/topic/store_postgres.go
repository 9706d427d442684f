// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package topic

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

const topicColumns = "id, tenantid, clusterid, name, partitions, replicationfactor, retentionms, createdat, updatedat"

// Create persists a new topic definition.
func (store *PostgresStore) Create(ctx context.Context, topic *Topic) error {
	const query = `
		INSERT INTO kafka.topic (
			id, tenantid, clusterid, name, partitions, replicationfactor, retentionms, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = now
	}
	topic.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		topic.ID,
		topic.TenantID,
		topic.ClusterID,
		topic.Name,
		topic.Partitions,
		topic.ReplicationFactor,
		topic.RetentionMs,
		topic.CreatedAt,
		topic.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Topic")
	}

	return nil
}

// FindByID retrieves a topic definition within a tenant.
func (store *PostgresStore) FindByID(ctx context.Context, tenantID, topicID string) (*Topic, error) {
	const query = `
		SELECT ` + topicColumns + `
		FROM kafka.topic
		WHERE tenantid = $1 AND id = $2`

	return store.scanTopic(store.pool.QueryRow(ctx, query, tenantID, topicID))
}

// FindByName retrieves a topic by name within a cluster.
func (store *PostgresStore) FindByName(ctx context.Context, tenantID, clusterID, name string) (*Topic, error) {
	const query = `
		SELECT ` + topicColumns + `
		FROM kafka.topic
		WHERE tenantid = $1 AND clusterid = $2 AND name = $3`

	return store.scanTopic(store.pool.QueryRow(ctx, query, tenantID, clusterID, name))
}

// ListByCluster returns one page of a cluster's topics plus the total count.
func (store *PostgresStore) ListByCluster(ctx context.Context, tenantID, clusterID string, params pagination.Params) ([]*Topic, int, error) {
	const countQuery = "SELECT COUNT(*) FROM kafka.topic WHERE tenantid = $1 AND clusterid = $2"

	var total int
	if err := store.pool.QueryRow(ctx, countQuery, tenantID, clusterID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_topic_store_count_failed: %w", err)
	}

	const query = `
		SELECT ` + topicColumns + `
		FROM kafka.topic
		WHERE tenantid = $1 AND clusterid = $2
		ORDER BY name ASC
		LIMIT $3 OFFSET $4`

	rows, err := store.pool.Query(ctx, query, tenantID, clusterID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_topic_store_list_failed: %w", err)
	}
	defer rows.Close()

	var topics []*Topic
	for rows.Next() {
		topic, scanErr := store.scanTopic(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_topic_store_list_rows_failed: %w", err)
	}

	return topics, total, nil
}

// Update persists changes to a topic's mutable configuration.
func (store *PostgresStore) Update(ctx context.Context, topic *Topic) error {
	const query = `
		UPDATE kafka.topic
		SET partitions = $3, retentionms = $4, updatedat = $5
		WHERE tenantid = $1 AND id = $2`

	topic.UpdatedAt = time.Now()
	_, err := store.pool.Exec(ctx, query,
		topic.TenantID,
		topic.ID,
		topic.Partitions,
		topic.RetentionMs,
		topic.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Topic")
	}

	return nil
}

// Delete removes a topic definition.
func (store *PostgresStore) Delete(ctx context.Context, tenantID, topicID string) error {
	const query = "DELETE FROM kafka.topic WHERE tenantid = $1 AND id = $2"
	_, err := store.pool.Exec(ctx, query, tenantID, topicID)
	if err != nil {
		return fmt.Errorf("postgres_topic_store_delete_failed: %w", err)
	}
	return nil
}

// scanTopic maps one result row onto a [Topic].
func (store *PostgresStore) scanTopic(row pgx.Row) (*Topic, error) {
	topic := &Topic{}
	err := row.Scan(
		&topic.ID,
		&topic.TenantID,
		&topic.ClusterID,
		&topic.Name,
		&topic.Partitions,
		&topic.ReplicationFactor,
		&topic.RetentionMs,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Topic")
	}
	return topic, nil
}
