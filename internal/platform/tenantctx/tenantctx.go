// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

/*
Package tenantctx carries the active tenant ID through a single request's
execution without passing it explicitly through every call signature.

# Architecture

The tenant binding rides on [context.Context], never on a global or a
thread-local. The context is created per request and dies with it, so the
binding cannot outlive the request that set it and cannot be observed by a
concurrent request — even when the runtime multiplexes many requests onto one
OS thread. There is no clear() to forget: cleanup is structural.

# Usage

[middleware.TenantResolver] binds the tenant at the boundary; every
tenant-scoped store or service method calls [Require] and fails fast when no
tenant is bound, rather than silently defaulting and leaking data across
organizations.
*/
package tenantctx

import (
	"context"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/ctxkey"
)

// With returns a new context with the tenant ID bound.
//
// Binding twice within one request is caller error; the later binding simply
// shadows the earlier one for the derived context's lifetime.
func With(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyTenant, tenantID)
}

// Get reads the current tenant binding.
// The second return value is false when no tenant context is established.
func Get(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(ctxkey.KeyTenant).(string)
	if !ok || tenantID == "" {
		return "", false
	}
	return tenantID, true
}

// Require reads the current tenant binding or fails.
//
// # Fail Fast
//
// A missing binding is a propagation bug in the server (a tenant-scoped
// operation reached without going through the resolver middleware), so the
// returned error maps to HTTP 500, not to an auth failure.
func Require(ctx context.Context) (string, error) {
	tenantID, ok := Get(ctx)
	if !ok {
		return "", apperr.NoTenantContext()
	}
	return tenantID, nil
}
