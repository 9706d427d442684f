// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package topic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/pkg/pagination"
	"github.com/klustra/klustra/pkg/uuid"
)

// defaultRetentionMs is seven days, the common broker default.
const defaultRetentionMs = int64(7 * 24 * time.Hour / time.Millisecond)

// Service implements topic administration use cases.
type Service struct {
	store Store

	// clusterCheck verifies that a cluster is visible to the active tenant.
	clusterCheck func(ctx context.Context, clusterID string) error
}

// NewService constructs a new topic [Service]. clusterCheck must return
// [apperr.NotFound] when the cluster is not visible to the active tenant.
func NewService(store Store, clusterCheck func(ctx context.Context, clusterID string) error) *Service {
	return &Service{store: store, clusterCheck: clusterCheck}
}

// CreateInput holds the data required to define a topic.
type CreateInput struct {
	ClusterID         string
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
}

/*
Create defines a new topic inside a cluster of the active tenant.

Business rules:
  - Topic names are unique per cluster.
  - Partitions default to 3, replication factor to 2, retention to 7 days.
  - The target cluster must belong to the active tenant.
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Topic, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	// ── 1. Cluster Ownership ──────────────────────────────────────────────

	if err := service.clusterCheck(ctx, input.ClusterID); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness ─────────────────────────────────────────────────────

	if _, err := service.store.FindByName(ctx, tenantID, input.ClusterID, input.Name); err == nil {
		return nil, apperr.Conflict("Topic name is already taken in this cluster")
	}

	// ── 3. Defaults & Persistence ─────────────────────────────────────────

	if input.Partitions <= 0 {
		input.Partitions = 3
	}
	if input.ReplicationFactor <= 0 {
		input.ReplicationFactor = 2
	}
	if input.RetentionMs <= 0 {
		input.RetentionMs = defaultRetentionMs
	}

	topic := &Topic{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ClusterID:         input.ClusterID,
		Name:              input.Name,
		Partitions:        input.Partitions,
		ReplicationFactor: input.ReplicationFactor,
		RetentionMs:       input.RetentionMs,
	}

	if err := service.store.Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("topic_service_create_failed: %w", err)
	}

	return topic, nil
}

// Get retrieves a topic within the active tenant.
func (service *Service) Get(ctx context.Context, topicID string) (*Topic, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}
	return service.store.FindByID(ctx, tenantID, topicID)
}

// ListByCluster returns a page of a cluster's topics plus the total count.
func (service *Service) ListByCluster(ctx context.Context, clusterID string, params pagination.Params) ([]*Topic, int, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := service.clusterCheck(ctx, clusterID); err != nil {
		return nil, 0, err
	}
	return service.store.ListByCluster(ctx, tenantID, clusterID, params)
}

// UpdateInput holds the mutable topic configuration.
type UpdateInput struct {
	Partitions  int
	RetentionMs int64
}

// Update changes a topic's configuration. Partition counts can only grow,
// matching broker semantics.
func (service *Service) Update(ctx context.Context, topicID string, input UpdateInput) (*Topic, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	topic, err := service.store.FindByID(ctx, tenantID, topicID)
	if err != nil {
		return nil, err
	}

	if input.Partitions > 0 {
		if input.Partitions < topic.Partitions {
			return nil, apperr.Unprocessable("Partition count cannot be reduced")
		}
		topic.Partitions = input.Partitions
	}
	if input.RetentionMs > 0 {
		topic.RetentionMs = input.RetentionMs
	}

	if err := service.store.Update(ctx, topic); err != nil {
		return nil, fmt.Errorf("topic_service_update_failed: %w", err)
	}

	return topic, nil
}

// Delete removes a topic definition.
func (service *Service) Delete(ctx context.Context, topicID string) error {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return err
	}

	if _, err := service.store.FindByID(ctx, tenantID, topicID); err != nil {
		return err
	}
	if err := service.store.Delete(ctx, tenantID, topicID); err != nil {
		return fmt.Errorf("topic_service_delete_failed: %w", err)
	}
	return nil
}

// Stats returns a sampled throughput snapshot for a topic. Like cluster
// health probes, samples are synthetic in this deployment mode.
func (service *Service) Stats(ctx context.Context, topicID string) (*Stats, error) {
	topic, err := service.Get(ctx, topicID)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TopicID:        topic.ID,
		MessagesPerSec: rand.Float64() * 5000,
		TotalMessages:  rand.Int63n(1_000_000_000),
		SizeBytes:      rand.Int63n(500 * 1 << 30),
		SampledAt:      time.Now(),
	}, nil
}
