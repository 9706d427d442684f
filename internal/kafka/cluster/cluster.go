// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package cluster implements tenant-scoped Kafka cluster registration and
// health monitoring.
//
// # Architecture
//
// Klustra does not hold persistent connections to customer brokers; cluster
// records are registrations (bootstrap servers plus metadata), and health
// probes are sampled on demand and cached in Redis so that dashboard polling
// does not hammer the probe path.
package cluster

import "time"

// Environment labels which deployment stage a cluster serves.
type Environment string

const (
	EnvDevelopment Environment = "DEVELOPMENT"
	EnvStaging     Environment = "STAGING"
	EnvProduction  Environment = "PRODUCTION"
)

// Valid reports whether the environment is a known stage.
func (environment Environment) Valid() bool {
	switch environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return true
	}
	return false
}

// Cluster is a registered Kafka cluster belonging to one tenant.
type Cluster struct {
	ID               string      `json:"id"`
	TenantID         string      `json:"tenantId"`
	Name             string      `json:"name"`
	BootstrapServers string      `json:"bootstrapServers"`
	Environment      Environment `json:"environment"`
	Description      string      `json:"description,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// # Health

// HealthStatus classifies the outcome of a health probe.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthDown     HealthStatus = "DOWN"
)

// Health is one sampled health probe of a cluster.
type Health struct {
	ClusterID    string       `json:"clusterId"`
	Status       HealthStatus `json:"status"`
	BrokerCount  int          `json:"brokerCount"`
	TopicCount   int          `json:"topicCount"`
	AvgLatencyMs float64      `json:"avgLatencyMs"`
	CheckedAt    time.Time    `json:"checkedAt"`
}
