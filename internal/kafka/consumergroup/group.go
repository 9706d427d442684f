// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package consumergroup implements tenant-scoped consumer group tracking.
package consumergroup

import "time"

// State classifies the lifecycle phase of a consumer group.
type State string

const (
	StateStable      State = "STABLE"
	StateRebalancing State = "REBALANCING"
	StateEmpty       State = "EMPTY"
	StateDead        State = "DEAD"
)

// Group is a tracked consumer group inside a registered cluster.
type Group struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	ClusterID   string    `json:"clusterId"`
	GroupID     string    `json:"groupId"` // The Kafka-side group.id.
	State       State     `json:"state"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Lag is one sampled lag snapshot of a consumer group.
type Lag struct {
	GroupID      string    `json:"groupId"`
	TotalLag     int64     `json:"totalLag"`
	MaxPartition int64     `json:"maxPartitionLag"`
	SampledAt    time.Time `json:"sampledAt"`
}
