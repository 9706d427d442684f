// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package tenants

import (
	"context"
	"fmt"
	"time"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/pkg/pagination"
	"github.com/klustra/klustra/pkg/slug"
	"github.com/klustra/klustra/pkg/uuid"
)

// Service implements tenant lifecycle use cases.
type Service struct {
	store Store

	// now is injectable for deterministic trial-window tests.
	now func() time.Time
}

// NewService constructs a new tenants [Service].
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateInput holds the data required to create a tenant directly
// (operator path; self-service registration goes through [ProvisionTrial]).
type CreateInput struct {
	Name      string
	Subdomain string
	Plan      Plan
}

/*
Create provisions a new tenant on the given plan.

Description: Operator-facing creation. The subdomain is normalized into a
DNS-safe slug and must be globally unique.

Parameters:
  - context: Context for the database operation.
  - input: Tenant name, requested subdomain, and plan.

Returns:
  - The newly created [*Tenant].
  - [apperr.Conflict] when the subdomain is already taken.
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Tenant, error) {
	// ── 1. Subdomain Normalization & Uniqueness ───────────────────────────

	subdomain := slug.From(input.Subdomain)
	if subdomain == "" {
		return nil, apperr.ValidationError("Subdomain cannot be normalized to a valid slug")
	}

	if _, err := service.store.FindBySubdomain(ctx, subdomain); err == nil {
		return nil, apperr.Conflict("Subdomain is already taken")
	}

	// ── 2. Entity Construction ────────────────────────────────────────────

	if !input.Plan.Valid() {
		input.Plan = PlanTrial
	}
	maxUsers, maxClusters := planLimits(input.Plan)

	status := StatusActive
	var trialEndsAt *time.Time
	if input.Plan == PlanTrial {
		status = StatusTrial
		ends := service.now().AddDate(0, 0, constants.TrialPeriodDays)
		trialEndsAt = &ends
	}

	tenant := &Tenant{
		ID:          uuid.New(), // Time-sortable ID to prevent PG index fragmentation.
		Name:        input.Name,
		Subdomain:   subdomain,
		Plan:        input.Plan,
		Status:      status,
		MaxUsers:    maxUsers,
		MaxClusters: maxClusters,
		TrialEndsAt: trialEndsAt,
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	if err := service.store.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("tenants_service_create_failed: %w", err)
	}

	return tenant, nil
}

// ProvisionTrial creates a tenant on the trial plan and returns its ID.
// This is the port consumed by the auth service during self-registration.
func (service *Service) ProvisionTrial(ctx context.Context, name, subdomain string) (string, error) {
	tenant, err := service.Create(ctx, CreateInput{
		Name:      name,
		Subdomain: subdomain,
		Plan:      PlanTrial,
	})
	if err != nil {
		return "", err
	}
	return tenant.ID, nil
}

// Get retrieves a tenant by ID.
func (service *Service) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	return service.store.FindByID(ctx, tenantID)
}

// GetBySubdomain retrieves a tenant by its unique subdomain.
func (service *Service) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	return service.store.FindBySubdomain(ctx, slug.From(subdomain))
}

// MaxUsers returns the user quota of a tenant. This is the port consumed
// by the users service when enforcing per-tenant limits.
func (service *Service) MaxUsers(ctx context.Context, tenantID string) (int, error) {
	tenant, err := service.store.FindByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return tenant.MaxUsers, nil
}

// MaxClusters returns the cluster quota of a tenant. Consumed by the
// Kafka cluster service.
func (service *Service) MaxClusters(ctx context.Context, tenantID string) (int, error) {
	tenant, err := service.store.FindByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return tenant.MaxClusters, nil
}

// List returns a page of tenants plus the total count.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*Tenant, int, error) {
	return service.store.List(ctx, params)
}

// UpdateInput holds the mutable tenant fields.
type UpdateInput struct {
	Name string
	Plan Plan
}

// Update changes a tenant's name and/or plan. Changing the plan re-derives
// the user and cluster quotas.
func (service *Service) Update(ctx context.Context, tenantID string, input UpdateInput) (*Tenant, error) {
	tenant, err := service.store.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		tenant.Name = input.Name
	}
	if input.Plan != "" {
		if !input.Plan.Valid() {
			return nil, apperr.ValidationError("Unknown plan")
		}
		tenant.Plan = input.Plan
		tenant.MaxUsers, tenant.MaxClusters = planLimits(input.Plan)

		// Upgrading off the trial plan ends the trial immediately.
		if input.Plan != PlanTrial && tenant.Status == StatusTrial {
			tenant.Status = StatusActive
			tenant.TrialEndsAt = nil
		}
	}

	if err := service.store.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("tenants_service_update_failed: %w", err)
	}

	return tenant, nil
}

// Suspend blocks all activity in a tenant. Logins and API calls for its
// users fail until the tenant is activated again.
func (service *Service) Suspend(ctx context.Context, tenantID string) error {
	if _, err := service.store.FindByID(ctx, tenantID); err != nil {
		return err
	}
	if err := service.store.UpdateStatus(ctx, tenantID, StatusSuspended); err != nil {
		return fmt.Errorf("tenants_service_suspend_failed: %w", err)
	}
	return nil
}

// Activate lifts a suspension.
func (service *Service) Activate(ctx context.Context, tenantID string) error {
	if _, err := service.store.FindByID(ctx, tenantID); err != nil {
		return err
	}
	if err := service.store.UpdateStatus(ctx, tenantID, StatusActive); err != nil {
		return fmt.Errorf("tenants_service_activate_failed: %w", err)
	}
	return nil
}

// Delete soft-deletes a tenant.
func (service *Service) Delete(ctx context.Context, tenantID string) error {
	if _, err := service.store.FindByID(ctx, tenantID); err != nil {
		return err
	}
	if err := service.store.SoftDelete(ctx, tenantID); err != nil {
		return fmt.Errorf("tenants_service_delete_failed: %w", err)
	}
	return nil
}
