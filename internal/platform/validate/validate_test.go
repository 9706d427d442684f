// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/apperr"
)

func TestValidator_PassingChainReturnsNil(t *testing.T) {
	err := New().
		Required("username", "nadia").
		MinLen("username", "nadia", 3).
		MaxLen("username", "nadia", 64).
		Email("email", "nadia@acme.test").
		Subdomain("subdomain", "acme-corp").
		Range("partitions", 3, 1, 100).
		Err()

	assert.NoError(t, err)
}

func TestValidator_CollectsEveryFailure(t *testing.T) {
	err := New().
		Required("username", "  ").
		Email("email", "not-an-email").
		Subdomain("subdomain", "-Bad Domain-").
		Err()

	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"username", "email", "subdomain"}, fields)
}

func TestValidator_Subdomain(t *testing.T) {
	valid := []string{"acme", "acme-corp", "a1", "0rg"}
	for _, value := range valid {
		assert.NoError(t, New().Subdomain("subdomain", value).Err(), value)
	}

	invalid := []string{"", "-acme", "acme-", "Acme", "acme_corp", "acme.corp"}
	for _, value := range invalid {
		assert.Error(t, New().Subdomain("subdomain", value).Err(), value)
	}
}

func TestValidator_UUID(t *testing.T) {
	assert.NoError(t, New().UUID("id", "018f4ab2-7c3d-7e01-9a55-0242ac120002").Err())
	assert.NoError(t, New().UUID("id", "018F4AB2-7C3D-7E01-9A55-0242AC120002").Err())

	assert.Error(t, New().UUID("id", "not-a-uuid").Err())
	assert.Error(t, New().UUID("id", "").Err())
}

func TestValidator_OneOf(t *testing.T) {
	assert.NoError(t, New().OneOf("plan", "PRO", "TRIAL", "STARTER", "PRO", "ENTERPRISE").Err())

	err := New().OneOf("plan", "PLATINUM", "TRIAL", "STARTER", "PRO", "ENTERPRISE").Err()
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Details[0].Message, "Must be one of")
}

func TestValidator_Custom(t *testing.T) {
	assert.NoError(t, New().Custom("partitions", false, "Must be at least 1").Err())

	err := New().Custom("partitions", true, "Must be at least 1").Err()
	require.Error(t, err)
	assert.Equal(t, "Must be at least 1", apperr.As(err).Details[0].Message)
}

func TestValidator_HasErrors(t *testing.T) {
	v := New()
	assert.False(t, v.HasErrors())

	v.Required("name", "")
	assert.True(t, v.HasErrors())
}
