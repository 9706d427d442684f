// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package audit implements the tenant-scoped, append-only audit trail.
//
// Audit entries record who did what to which resource. They are never
// updated or deleted through the API; compliance exports are served as CSV.
package audit

import "time"

// Entry is one immutable audit record.
type Entry struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenantId"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`   // e.g. "cluster.create", "user.lock"
	Resource   string         `json:"resource"` // e.g. "cluster", "topic"
	ResourceID string         `json:"resourceId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Filter narrows audit queries. Zero values mean "no constraint".
type Filter struct {
	ActorID  string
	Action   string
	Resource string
	From     time.Time
	To       time.Time
}
