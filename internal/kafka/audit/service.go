// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/pkg/pagination"
	"github.com/klustra/klustra/pkg/uuid"
)

// Service implements audit trail use cases.
type Service struct {
	store Store
}

// NewService constructs a new audit [Service].
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RecordInput holds the data for one audit event.
type RecordInput struct {
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]any
}

// Record appends an audit entry for the active tenant.
func (service *Service) Record(ctx context.Context, input RecordInput) (*Entry, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    input.ActorID,
		Action:     input.Action,
		Resource:   input.Resource,
		ResourceID: input.ResourceID,
		Details:    input.Details,
		CreatedAt:  time.Now(),
	}

	if err := service.store.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("audit_service_record_failed: %w", err)
	}

	return entry, nil
}

// List returns a page of the active tenant's audit trail.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) ([]*Entry, int, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, 0, err
	}
	return service.store.List(ctx, tenantID, filter, params)
}

// csvHeader is the fixed column layout of compliance exports.
var csvHeader = []string{"id", "actor_id", "action", "resource", "resource_id", "details", "created_at"}

/*
ExportCSV streams the active tenant's matching audit entries as CSV.

Description: Compliance export. All matching rows are written in
chronological order with an RFC 3339 timestamp column; the details map is
serialized as a JSON string inside its cell.

Parameters:
  - context: Context carrying the tenant binding.
  - filter: Optional constraints on actor, action, resource, and time range.
  - writer: Destination for the CSV bytes.
*/
func (service *Service) ExportCSV(ctx context.Context, filter Filter, writer io.Writer) error {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return err
	}

	entries, err := service.store.ListAll(ctx, tenantID, filter)
	if err != nil {
		return fmt.Errorf("audit_service_export_query_failed: %w", err)
	}

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(csvHeader); err != nil {
		return fmt.Errorf("audit_service_export_write_failed: %w", err)
	}

	for _, entry := range entries {
		details := ""
		if len(entry.Details) > 0 {
			payload, marshalErr := json.Marshal(entry.Details)
			if marshalErr != nil {
				return fmt.Errorf("audit_service_export_details_failed: %w", marshalErr)
			}
			details = string(payload)
		}

		record := []string{
			entry.ID,
			entry.ActorID,
			entry.Action,
			entry.Resource,
			entry.ResourceID,
			details,
			entry.CreatedAt.Format(time.RFC3339),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("audit_service_export_write_failed: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("audit_service_export_flush_failed: %w", err)
	}

	return nil
}
