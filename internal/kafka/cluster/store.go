// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package cluster

import (
	"context"

	"github.com/klustra/klustra/pkg/pagination"
)

// Store defines the persistence contract for cluster registrations.
type Store interface {
	Create(context context.Context, cluster *Cluster) error
	FindByID(context context.Context, tenantID, clusterID string) (*Cluster, error)
	List(context context.Context, tenantID string, params pagination.Params) ([]*Cluster, int, error)
	CountByTenant(context context.Context, tenantID string) (int, error)
	Update(context context.Context, cluster *Cluster) error
	Delete(context context.Context, tenantID, clusterID string) error
}
