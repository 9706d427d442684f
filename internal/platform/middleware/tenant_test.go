// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/ctxutil"
	"github.com/klustra/klustra/internal/platform/sec"
	"github.com/klustra/klustra/internal/platform/tenantctx"
)

func resolveTenant(t *testing.T, decorate func(*http.Request) *http.Request) (string, bool) {
	t.Helper()

	var gotTenant string
	var gotBound bool

	handler := TenantResolver()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotTenant, gotBound = tenantctx.Get(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/kafka/clusters", nil)
	request = decorate(request)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	return gotTenant, gotBound
}

func TestTenantResolver_HeaderWins(t *testing.T) {

	// 1. Provide all three sources at once
	claims := &sec.AuthClaims{TenantID: "tenant-from-claims"}

	tenantID, bound := resolveTenant(t, func(request *http.Request) *http.Request {
		request.Header.Set("X-Tenant-ID", "tenant-from-header")
		query := request.URL.Query()
		query.Set("tenantId", "tenant-from-param")
		request.URL.RawQuery = query.Encode()
		return request.WithContext(ctxutil.WithPrincipal(request.Context(), claims))
	})

	// 2. The explicit header must take priority
	assert.True(t, bound)
	assert.Equal(t, "tenant-from-header", tenantID)
}

func TestTenantResolver_ParamBeatsClaims(t *testing.T) {

	claims := &sec.AuthClaims{TenantID: "tenant-from-claims"}

	tenantID, bound := resolveTenant(t, func(request *http.Request) *http.Request {
		query := request.URL.Query()
		query.Set("tenantId", "tenant-from-param")
		request.URL.RawQuery = query.Encode()
		return request.WithContext(ctxutil.WithPrincipal(request.Context(), claims))
	})

	assert.True(t, bound)
	assert.Equal(t, "tenant-from-param", tenantID)
}

func TestTenantResolver_FormBodyParameter(t *testing.T) {

	var gotTenant string
	var gotBound bool

	handler := TenantResolver()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotTenant, gotBound = tenantctx.Get(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	// 1. No header, no query string, no principal: only the urlencoded body
	// carries the tenant
	form := url.Values{}
	form.Set("tenantId", "tenant-from-form")

	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	// 2. The body parameter must resolve the tenant
	assert.True(t, gotBound)
	assert.Equal(t, "tenant-from-form", gotTenant)
}

func TestTenantResolver_JSONBodyLeftIntact(t *testing.T) {

	// A JSON body is not a form: the resolver must leave it unread so the
	// handler can still decode it, and the context stays unbound.
	var gotBound bool
	var gotBody []byte

	handler := TenantResolver()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, gotBound = tenantctx.Get(request.Context())
		gotBody, _ = io.ReadAll(request.Body)
		writer.WriteHeader(http.StatusOK)
	}))

	payload := `{"username":"nadia","tenantId":"tenant-from-json"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.False(t, gotBound)
	assert.JSONEq(t, payload, string(gotBody))
}

func TestTenantResolver_FallsBackToPrincipal(t *testing.T) {

	claims := &sec.AuthClaims{TenantID: "tenant-from-claims"}

	tenantID, bound := resolveTenant(t, func(request *http.Request) *http.Request {
		return request.WithContext(ctxutil.WithPrincipal(request.Context(), claims))
	})

	assert.True(t, bound)
	assert.Equal(t, "tenant-from-claims", tenantID)
}

func TestTenantResolver_UnboundWhenNoSource(t *testing.T) {

	tenantID, bound := resolveTenant(t, func(request *http.Request) *http.Request {
		return request
	})

	// With no tenant source the context stays unbound rather than defaulting
	assert.False(t, bound)
	assert.Empty(t, tenantID)
}

func TestTenantResolver_ConcurrentRequestsAreIsolated(t *testing.T) {

	// 1. Each in-flight request must only ever see its own tenant
	handler := TenantResolver()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		want := request.Header.Get("X-Tenant-ID")
		got, bound := tenantctx.Get(request.Context())

		assert.True(t, bound)
		assert.Equal(t, want, got)
		writer.WriteHeader(http.StatusOK)
	}))

	// 2. Fire many requests for different tenants in parallel
	var waitGroup sync.WaitGroup
	tenants := []string{"tenant-a", "tenant-b", "tenant-c", "tenant-d"}

	for i := 0; i < 32; i++ {
		waitGroup.Add(1)

		go func(tenantID string) {
			defer waitGroup.Done()

			request := httptest.NewRequest(http.MethodGet, "/api/v1/kafka/topics", nil)
			request.Header.Set("X-Tenant-ID", tenantID)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
		}(tenants[i%len(tenants)])
	}

	waitGroup.Wait()
}

func TestTenantResolver_NoLeakAcrossSequentialRequests(t *testing.T) {

	handler := TenantResolver()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	// 1. First request binds a tenant
	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.Header.Set("X-Tenant-ID", "tenant-a")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	// 2. A following request without a tenant must not inherit the previous one
	tenantID, bound := resolveTenant(t, func(request *http.Request) *http.Request {
		return request
	})

	assert.False(t, bound)
	assert.Empty(t, tenantID)
}
