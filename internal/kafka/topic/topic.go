// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package topic implements tenant-scoped Kafka topic administration.
package topic

import "time"

// Topic is a managed topic definition inside a registered cluster.
type Topic struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenantId"`
	ClusterID         string    `json:"clusterId"`
	Name              string    `json:"name"`
	Partitions        int       `json:"partitions"`
	ReplicationFactor int       `json:"replicationFactor"`
	RetentionMs       int64     `json:"retentionMs"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Stats is one sampled throughput snapshot of a topic.
type Stats struct {
	TopicID        string    `json:"topicId"`
	MessagesPerSec float64   `json:"messagesPerSec"`
	TotalMessages  int64     `json:"totalMessages"`
	SizeBytes      int64     `json:"sizeBytes"`
	SampledAt      time.Time `json:"sampledAt"`
}
