// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package consumergroup

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/pkg/pagination"
	"github.com/klustra/klustra/pkg/uuid"
)

// Service implements consumer group tracking use cases.
type Service struct {
	store Store

	// clusterCheck verifies that a cluster is visible to the active tenant.
	clusterCheck func(ctx context.Context, clusterID string) error
}

// NewService constructs a new consumer group [Service].
func NewService(store Store, clusterCheck func(ctx context.Context, clusterID string) error) *Service {
	return &Service{store: store, clusterCheck: clusterCheck}
}

// RegisterInput holds the data required to track a consumer group.
type RegisterInput struct {
	ClusterID   string
	GroupID     string
	MemberCount int
}

// Register starts tracking a consumer group in a cluster of the active tenant.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Group, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	if err := service.clusterCheck(ctx, input.ClusterID); err != nil {
		return nil, err
	}

	state := StateStable
	if input.MemberCount == 0 {
		state = StateEmpty
	}

	group := &Group{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ClusterID:   input.ClusterID,
		GroupID:     input.GroupID,
		State:       state,
		MemberCount: input.MemberCount,
	}

	if err := service.store.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("group_service_register_failed: %w", err)
	}

	return group, nil
}

// Get retrieves a tracked group within the active tenant.
func (service *Service) Get(ctx context.Context, groupID string) (*Group, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}
	return service.store.FindByID(ctx, tenantID, groupID)
}

// ListByCluster returns a page of a cluster's groups plus the total count.
func (service *Service) ListByCluster(ctx context.Context, clusterID string, params pagination.Params) ([]*Group, int, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := service.clusterCheck(ctx, clusterID); err != nil {
		return nil, 0, err
	}
	return service.store.ListByCluster(ctx, tenantID, clusterID, params)
}

// Delete stops tracking a consumer group.
func (service *Service) Delete(ctx context.Context, groupID string) error {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return err
	}

	if _, err := service.store.FindByID(ctx, tenantID, groupID); err != nil {
		return err
	}
	if err := service.store.Delete(ctx, tenantID, groupID); err != nil {
		return fmt.Errorf("group_service_delete_failed: %w", err)
	}
	return nil
}

// Lag returns a sampled lag snapshot for a group. Samples are synthetic in
// this deployment mode; an empty or dead group always reports zero lag.
func (service *Service) Lag(ctx context.Context, groupID string) (*Lag, error) {
	group, err := service.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	lag := &Lag{
		GroupID:   group.ID,
		SampledAt: time.Now(),
	}

	if group.State == StateStable || group.State == StateRebalancing {
		lag.TotalLag = rand.Int63n(100_000)
		if lag.TotalLag > 0 {
			lag.MaxPartition = rand.Int63n(lag.TotalLag + 1)
		}
	}

	return lag, nil
}
