// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package topic

import (
	"context"

	"github.com/klustra/klustra/pkg/pagination"
)

// Store defines the persistence contract for topic definitions.
type Store interface {
	Create(context context.Context, topic *Topic) error
	FindByID(context context.Context, tenantID, topicID string) (*Topic, error)
	FindByName(context context.Context, tenantID, clusterID, name string) (*Topic, error)
	ListByCluster(context context.Context, tenantID, clusterID string, params pagination.Params) ([]*Topic, int, error)
	Update(context context.Context, topic *Topic) error
	Delete(context context.Context, tenantID, topicID string) error
}
