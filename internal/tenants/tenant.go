// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package tenants implements tenant lifecycle management for the Klustra platform.
//
// # Architecture
//
// A tenant is the top-level isolation unit: every user, Kafka cluster, and
// audit record belongs to exactly one tenant. This package owns the tenant
// record itself; tenant-scoped data access elsewhere relies on the tenant
// binding carried in the request context.
package tenants

import "time"

// # Plans & Status

// Plan identifies the subscription tier of a tenant.
type Plan string

const (
	PlanTrial      Plan = "TRIAL"
	PlanStarter    Plan = "STARTER"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Valid reports whether the plan is a known tier.
func (plan Plan) Valid() bool {
	switch plan {
	case PlanTrial, PlanStarter, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Status identifies the operational state of a tenant.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusTrial     Status = "TRIAL"
	StatusSuspended Status = "SUSPENDED"
)

// # Entity

// Tenant is the root aggregate of the multi-tenant hierarchy.
type Tenant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Subdomain   string     `json:"subdomain"`
	Plan        Plan       `json:"plan"`
	Status      Status     `json:"status"`
	MaxUsers    int        `json:"maxUsers"`
	MaxClusters int        `json:"maxClusters"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Operational reports whether the tenant may currently be used. A suspended
// tenant, or a trial tenant whose trial window has passed, is not operational.
func (tenant *Tenant) Operational(now time.Time) bool {
	if tenant.Status == StatusSuspended {
		return false
	}
	if tenant.Status == StatusTrial && tenant.TrialEndsAt != nil && tenant.TrialEndsAt.Before(now) {
		return false
	}
	return true
}

// planLimits returns the user and cluster quotas of a plan.
func planLimits(plan Plan) (maxUsers, maxClusters int) {
	switch plan {
	case PlanEnterprise:
		return 500, 50
	case PlanPro:
		return 100, 10
	case PlanStarter:
		return 25, 3
	default: // PlanTrial
		return 5, 1
	}
}
