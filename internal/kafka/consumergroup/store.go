// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package consumergroup

import (
	"context"

	"github.com/klustra/klustra/pkg/pagination"
)

// Store defines the persistence contract for consumer group records.
type Store interface {
	Create(context context.Context, group *Group) error
	FindByID(context context.Context, tenantID, groupID string) (*Group, error)
	ListByCluster(context context.Context, tenantID, clusterID string, params pagination.Params) ([]*Group, int, error)
	Delete(context context.Context, tenantID, groupID string) error
}
