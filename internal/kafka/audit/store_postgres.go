// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package audit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klustra/klustra/internal/platform/dberr"
	"github.com/klustra/klustra/pkg/pagination"
)

// PostgresStore implements [Store] using pgx. Details are stored as jsonb.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL implementation of [Store].
func NewStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const auditColumns = "id, tenantid, actorid, action, resource, resourceid, details, createdat"

// Append persists a new audit entry.
func (store *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	const query = `
		INSERT INTO kafka.auditlog (
			id, tenantid, actorid, action, resource, resourceid, details, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := store.pool.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.ActorID,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "AuditEntry")
	}

	return nil
}

// buildFilter renders the WHERE clause and arguments for a filtered query.
// $1 is always the tenant ID; filter arguments follow.
func buildFilter(tenantID string, filter Filter) (string, []any) {
	clauses := []string{"tenantid = $1"}
	args := []any{tenantID}

	appendClause := func(column, operator string, value any) {
		args = append(args, value)
		clauses = append(clauses, column+" "+operator+" $"+strconv.Itoa(len(args)))
	}

	if filter.ActorID != "" {
		appendClause("actorid", "=", filter.ActorID)
	}
	if filter.Action != "" {
		appendClause("action", "=", filter.Action)
	}
	if filter.Resource != "" {
		appendClause("resource", "=", filter.Resource)
	}
	if !filter.From.IsZero() {
		appendClause("createdat", ">=", filter.From)
	}
	if !filter.To.IsZero() {
		appendClause("createdat", "<=", filter.To)
	}

	return strings.Join(clauses, " AND "), args
}

// List returns one page of matching entries plus the total count.
func (store *PostgresStore) List(ctx context.Context, tenantID string, filter Filter, params pagination.Params) ([]*Entry, int, error) {
	where, args := buildFilter(tenantID, filter)

	countQuery := "SELECT COUNT(*) FROM kafka.auditlog WHERE " + where
	var total int
	if err := store.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_count_failed: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM kafka.auditlog WHERE %s ORDER BY createdat DESC LIMIT $%d OFFSET $%d",
		auditColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	entries, err := store.queryEntries(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListAll returns every matching entry in chronological order.
func (store *PostgresStore) ListAll(ctx context.Context, tenantID string, filter Filter) ([]*Entry, error) {
	where, args := buildFilter(tenantID, filter)

	query := fmt.Sprintf(
		"SELECT %s FROM kafka.auditlog WHERE %s ORDER BY createdat ASC",
		auditColumns, where,
	)

	return store.queryEntries(ctx, query, args)
}

func (store *PostgresStore) queryEntries(ctx context.Context, query string, args []any) ([]*Entry, error) {
	rows, err := store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_audit_store_query_failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, scanErr := store.scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_audit_store_rows_failed: %w", err)
	}

	return entries, nil
}

// scanEntry maps one result row onto an [Entry].
func (store *PostgresStore) scanEntry(row pgx.Row) (*Entry, error) {
	entry := &Entry{}
	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.ActorID,
		&entry.Action,
		&entry.Resource,
		&entry.ResourceID,
		&entry.Details,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "AuditEntry")
	}
	return entry, nil
}
