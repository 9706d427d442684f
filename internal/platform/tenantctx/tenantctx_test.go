// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package tenantctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/apperr"
)

func TestGet_UnboundContext(t *testing.T) {
	_, ok := Get(context.Background())
	assert.False(t, ok)
}

func TestWith_BindsAndGetReads(t *testing.T) {
	ctx := With(context.Background(), "tenant-1")

	tenantID, ok := Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant-1", tenantID)
}

func TestWith_EmptyIDStaysUnbound(t *testing.T) {
	ctx := With(context.Background(), "")

	_, ok := Get(ctx)
	assert.False(t, ok)
}

func TestWith_LaterBindingShadows(t *testing.T) {
	parent := With(context.Background(), "tenant-1")
	child := With(parent, "tenant-2")

	tenantID, ok := Get(child)
	require.True(t, ok)
	assert.Equal(t, "tenant-2", tenantID)

	// The parent context is untouched.
	tenantID, ok = Get(parent)
	require.True(t, ok)
	assert.Equal(t, "tenant-1", tenantID)
}

func TestRequire_FailsWithServerError(t *testing.T) {
	_, err := Require(context.Background())
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NO_TENANT_CONTEXT", appError.Code)
	assert.Equal(t, 500, appError.HTTPStatus)
}

func TestRequire_ReturnsBoundTenant(t *testing.T) {
	ctx := With(context.Background(), "tenant-1")

	tenantID, err := Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", tenantID)
}
