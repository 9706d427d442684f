// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package audit

import (
	"context"

	"github.com/klustra/klustra/pkg/pagination"
)

// Store defines the persistence contract for audit entries.
type Store interface {
	Append(context context.Context, entry *Entry) error
	List(context context.Context, tenantID string, filter Filter, params pagination.Params) ([]*Entry, int, error)
	// ListAll streams every matching entry without pagination, for exports.
	ListAll(context context.Context, tenantID string, filter Filter) ([]*Entry, error)
}
