// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/ctxutil"
	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/pkg/pagination"
	"github.com/klustra/klustra/pkg/uuid"
)

// TenantQuota exposes the cluster quota of a tenant. Implemented by the
// tenants service.
type TenantQuota interface {
	MaxClusters(context context.Context, tenantID string) (int, error)
}

// Service implements cluster registration and health use cases.
type Service struct {
	store Store
	cache *redis.Client
	quota TenantQuota

	// probe samples the health of a cluster. Swappable so tests can pin
	// the otherwise randomized outcome.
	probe func(cluster *Cluster) Health
}

// NewService constructs a new cluster [Service].
func NewService(store Store, cache *redis.Client, quota TenantQuota) *Service {
	return &Service{
		store: store,
		cache: cache,
		quota: quota,
		probe: simulateProbe,
	}
}

// CreateInput holds the data required to register a cluster.
type CreateInput struct {
	Name             string
	BootstrapServers string
	Environment      Environment
	Description      string
}

// Create registers a new cluster in the active tenant, enforcing the
// tenant's cluster quota.
func (service *Service) Create(ctx context.Context, input CreateInput) (*Cluster, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	// ── 1. Quota Check ────────────────────────────────────────────────────

	maxClusters, err := service.quota.MaxClusters(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("cluster_service_quota_lookup_failed: %w", err)
	}

	count, err := service.store.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("cluster_service_count_failed: %w", err)
	}
	if count >= maxClusters {
		return nil, apperr.Unprocessable("Tenant cluster quota reached")
	}

	// ── 2. Entity Construction & Persistence ──────────────────────────────

	if !input.Environment.Valid() {
		input.Environment = EnvDevelopment
	}

	cluster := &Cluster{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Name:             input.Name,
		BootstrapServers: input.BootstrapServers,
		Environment:      input.Environment,
		Description:      input.Description,
	}

	if err := service.store.Create(ctx, cluster); err != nil {
		return nil, fmt.Errorf("cluster_service_create_failed: %w", err)
	}

	return cluster, nil
}

// Get retrieves a cluster within the active tenant.
func (service *Service) Get(ctx context.Context, clusterID string) (*Cluster, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}
	return service.store.FindByID(ctx, tenantID, clusterID)
}

// List returns a page of the active tenant's clusters plus the total count.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*Cluster, int, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, 0, err
	}
	return service.store.List(ctx, tenantID, params)
}

// UpdateInput holds the mutable cluster fields.
type UpdateInput struct {
	Name             string
	BootstrapServers string
	Environment      Environment
	Description      string
}

// Update changes a cluster's registration data.
func (service *Service) Update(ctx context.Context, clusterID string, input UpdateInput) (*Cluster, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	cluster, err := service.store.FindByID(ctx, tenantID, clusterID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		cluster.Name = input.Name
	}
	if input.BootstrapServers != "" {
		cluster.BootstrapServers = input.BootstrapServers
	}
	if input.Environment != "" {
		if !input.Environment.Valid() {
			return nil, apperr.ValidationError("Unknown environment")
		}
		cluster.Environment = input.Environment
	}
	if input.Description != "" {
		cluster.Description = input.Description
	}

	if err := service.store.Update(ctx, cluster); err != nil {
		return nil, fmt.Errorf("cluster_service_update_failed: %w", err)
	}

	return cluster, nil
}

// Delete removes a cluster registration and drops its cached health probe.
func (service *Service) Delete(ctx context.Context, clusterID string) error {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return err
	}

	if _, err := service.store.FindByID(ctx, tenantID, clusterID); err != nil {
		return err
	}
	if err := service.store.Delete(ctx, tenantID, clusterID); err != nil {
		return fmt.Errorf("cluster_service_delete_failed: %w", err)
	}

	// Best effort; a stale cache entry simply expires on its own.
	service.cache.Del(ctx, constants.RedisPrefixClusterHealth+clusterID)

	return nil
}

// # Health Probes

/*
Health returns the current health probe of a cluster.

Description: Probes are expensive relative to dashboard polling frequency,
so results are cached in Redis under a short TTL. A cache fault degrades to
a fresh probe rather than failing the request.

Parameters:
  - context: Context carrying the tenant binding.
  - clusterID: The cluster to probe.

Returns:
  - The most recent (possibly cached) [*Health] sample.
*/
func (service *Service) Health(ctx context.Context, clusterID string) (*Health, error) {
	tenantID, err := tenantctx.Require(ctx)
	if err != nil {
		return nil, err
	}

	cluster, err := service.store.FindByID(ctx, tenantID, clusterID)
	if err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(ctx)
	cacheKey := constants.RedisPrefixClusterHealth + clusterID

	// ── 1. Cache Lookup ───────────────────────────────────────────────────

	if payload, cacheErr := service.cache.Get(ctx, cacheKey).Bytes(); cacheErr == nil {
		cached := &Health{}
		if unmarshalErr := json.Unmarshal(payload, cached); unmarshalErr == nil {
			return cached, nil
		}
	} else if cacheErr != redis.Nil {
		logger.WarnContext(ctx, "cluster_health_cache_read_failed",
			slog.String("cluster_id", clusterID),
			slog.String("error", cacheErr.Error()),
		)
	}

	// ── 2. Fresh Probe ────────────────────────────────────────────────────

	health := service.probe(cluster)

	// ── 3. Cache Write (best effort) ──────────────────────────────────────

	if payload, marshalErr := json.Marshal(health); marshalErr == nil {
		if setErr := service.cache.Set(ctx, cacheKey, payload, constants.ClusterHealthTTL).Err(); setErr != nil {
			logger.WarnContext(ctx, "cluster_health_cache_write_failed",
				slog.String("cluster_id", clusterID),
				slog.String("error", setErr.Error()),
			)
		}
	}

	return &health, nil
}

// simulateProbe samples synthetic health data for a registered cluster.
//
// Klustra has no broker connectivity in this deployment mode, so probes are
// randomized within realistic bounds, weighted heavily towards healthy.
func simulateProbe(cluster *Cluster) Health {
	health := Health{
		ClusterID:   cluster.ID,
		BrokerCount: 3 + rand.Intn(6),
		TopicCount:  5 + rand.Intn(120),
		CheckedAt:   time.Now(),
	}

	switch roll := rand.Intn(100); {
	case roll < 85:
		health.Status = HealthHealthy
		health.AvgLatencyMs = 1 + rand.Float64()*9
	case roll < 96:
		health.Status = HealthDegraded
		health.AvgLatencyMs = 50 + rand.Float64()*200
	default:
		health.Status = HealthDown
		health.BrokerCount = 0
		health.AvgLatencyMs = 0
	}

	return health
}
