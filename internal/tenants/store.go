// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package tenants

import (
	"context"

	"github.com/klustra/klustra/pkg/pagination"
)

// Store defines the persistence contract for tenant records.
type Store interface {
	Create(context context.Context, tenant *Tenant) error
	FindByID(context context.Context, tenantID string) (*Tenant, error)
	FindBySubdomain(context context.Context, subdomain string) (*Tenant, error)
	List(context context.Context, params pagination.Params) ([]*Tenant, int, error)
	Update(context context.Context, tenant *Tenant) error
	UpdateStatus(context context.Context, tenantID string, status Status) error
	SoftDelete(context context.Context, tenantID string) error
}
