// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package tenants

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/pkg/pagination"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	tenants map[string]*Tenant
}

func newFakeStore() *fakeStore {
	return &fakeStore{tenants: make(map[string]*Tenant)}
}

func (store *fakeStore) Create(_ context.Context, tenant *Tenant) error {
	copied := *tenant
	store.tenants[tenant.ID] = &copied
	return nil
}

func (store *fakeStore) FindByID(_ context.Context, tenantID string) (*Tenant, error) {
	tenant, ok := store.tenants[tenantID]
	if !ok {
		return nil, apperr.NotFound("Tenant not found")
	}
	copied := *tenant
	return &copied, nil
}

func (store *fakeStore) FindBySubdomain(_ context.Context, subdomain string) (*Tenant, error) {
	for _, tenant := range store.tenants {
		if tenant.Subdomain == subdomain {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Tenant not found")
}

func (store *fakeStore) List(_ context.Context, params pagination.Params) ([]*Tenant, int, error) {
	all := make([]*Tenant, 0, len(store.tenants))
	for _, tenant := range store.tenants {
		copied := *tenant
		all = append(all, &copied)
	}
	return all, len(all), nil
}

func (store *fakeStore) Update(_ context.Context, tenant *Tenant) error {
	if _, ok := store.tenants[tenant.ID]; !ok {
		return apperr.NotFound("Tenant not found")
	}
	copied := *tenant
	store.tenants[tenant.ID] = &copied
	return nil
}

func (store *fakeStore) UpdateStatus(_ context.Context, tenantID string, status Status) error {
	tenant, ok := store.tenants[tenantID]
	if !ok {
		return apperr.NotFound("Tenant not found")
	}
	tenant.Status = status
	return nil
}

func (store *fakeStore) SoftDelete(_ context.Context, tenantID string) error {
	if _, ok := store.tenants[tenantID]; !ok {
		return apperr.NotFound("Tenant not found")
	}
	delete(store.tenants, tenantID)
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	service := NewService(store)
	return service, store
}

func TestCreate_TrialDefaultsAndWindow(t *testing.T) {
	service, _ := newTestService()

	// Freeze the clock so the trial window is exact.
	frozenNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozenNow }

	tenant, err := service.Create(context.Background(), CreateInput{
		Name:      "Acme Corp",
		Subdomain: "Acme Corp!",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme-corp", tenant.Subdomain, "subdomain is slugged")
	assert.Equal(t, PlanTrial, tenant.Plan)
	assert.Equal(t, StatusTrial, tenant.Status)
	assert.Equal(t, 5, tenant.MaxUsers)
	assert.Equal(t, 1, tenant.MaxClusters)

	require.NotNil(t, tenant.TrialEndsAt)
	assert.Equal(t, frozenNow.AddDate(0, 0, 30), *tenant.TrialEndsAt)
}

func TestCreate_PaidPlanStartsActive(t *testing.T) {
	service, _ := newTestService()

	tenant, err := service.Create(context.Background(), CreateInput{
		Name:      "Acme Corp",
		Subdomain: "acme",
		Plan:      PlanPro,
	})
	require.NoError(t, err)

	assert.Equal(t, PlanPro, tenant.Plan)
	assert.Equal(t, StatusActive, tenant.Status)
	assert.Nil(t, tenant.TrialEndsAt)
	assert.Equal(t, 100, tenant.MaxUsers)
	assert.Equal(t, 10, tenant.MaxClusters)
}

func TestCreate_RejectsDuplicateSubdomain(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Create(context.Background(), CreateInput{Name: "First", Subdomain: "acme"})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateInput{Name: "Second", Subdomain: "ACME"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestProvisionTrial_ReturnsTenantID(t *testing.T) {
	service, store := newTestService()

	tenantID, err := service.ProvisionTrial(context.Background(), "Acme Corp", "acme")
	require.NoError(t, err)
	require.NotEmpty(t, tenantID)

	tenant, err := store.FindByID(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, PlanTrial, tenant.Plan)
}

func TestUpdate_PlanUpgradeEndsTrial(t *testing.T) {
	service, _ := newTestService()

	tenant, err := service.Create(context.Background(), CreateInput{Name: "Acme", Subdomain: "acme"})
	require.NoError(t, err)
	require.Equal(t, StatusTrial, tenant.Status)

	updated, err := service.Update(context.Background(), tenant.ID, UpdateInput{Plan: PlanEnterprise})
	require.NoError(t, err)

	assert.Equal(t, PlanEnterprise, updated.Plan)
	assert.Equal(t, StatusActive, updated.Status)
	assert.Nil(t, updated.TrialEndsAt)
	assert.Equal(t, 500, updated.MaxUsers)
	assert.Equal(t, 50, updated.MaxClusters)
}

func TestUpdate_RejectsUnknownPlan(t *testing.T) {
	service, _ := newTestService()

	tenant, err := service.Create(context.Background(), CreateInput{Name: "Acme", Subdomain: "acme"})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), tenant.ID, UpdateInput{Plan: Plan("PLATINUM")})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestSuspendActivate_Lifecycle(t *testing.T) {
	service, store := newTestService()

	tenant, err := service.Create(context.Background(), CreateInput{Name: "Acme", Subdomain: "acme"})
	require.NoError(t, err)

	require.NoError(t, service.Suspend(context.Background(), tenant.ID))
	suspended, err := store.FindByID(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, suspended.Status)

	require.NoError(t, service.Activate(context.Background(), tenant.ID))
	active, err := store.FindByID(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, active.Status)
}

func TestQuotaPorts(t *testing.T) {
	service, _ := newTestService()

	tenant, err := service.Create(context.Background(), CreateInput{
		Name: "Acme", Subdomain: "acme", Plan: PlanStarter,
	})
	require.NoError(t, err)

	maxUsers, err := service.MaxUsers(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, maxUsers)

	maxClusters, err := service.MaxClusters(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, maxClusters)
}
