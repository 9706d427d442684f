// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and tenant resolution keys.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "klustra-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication & Tenancy

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "klustra.io"

	// TenantHeader carries an explicit tenant override on inbound requests.
	TenantHeader = "X-Tenant-ID"

	// TenantParam is the query/form parameter fallback for tenant resolution.
	TenantParam = "tenantId"

	// TrialPeriodDays is the length of the free trial granted at registration.
	TrialPeriodDays = 30

	// MaxFailedLogins is the number of consecutive failed login attempts
	// before an account is temporarily locked.
	MaxFailedLogins = 5

	// AccountLockDuration is how long an account stays locked after too many
	// failed login attempts.
	AccountLockDuration = 30 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldValid   = "valid"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixClusterHealth caches simulated cluster health probes per cluster ID.
	RedisPrefixClusterHealth = "kafka:cluster_health:"

	// ClusterHealthTTL is how long a cached health probe stays fresh.
	ClusterHealthTTL = 30 * time.Second
)
