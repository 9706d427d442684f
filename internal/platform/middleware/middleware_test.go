// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/tenantctx"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
}

func TestRequestID_KeepsClientProvidedID(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "trace-123")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "trace-123", recorder.Header().Get(constants.HeaderXRequestID))
}

func TestPanicRecovery_Returns500AndSurvives(t *testing.T) {
	handler := PanicRecovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestPanicRecovery_TenantBindingDiesWithTheRequest(t *testing.T) {
	// A handler panicking mid-request must not leave any tenant binding
	// behind for the next request: the binding lives on the request context,
	// which is discarded wholesale.
	chain := PanicRecovery(discardLogger())(TenantResolver()(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			if _, bound := tenantctx.Get(request.Context()); bound {
				panic("boom")
			}
			writer.WriteHeader(http.StatusOK)
		})))

	// 1. First request binds a tenant and panics.
	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.Header.Set(constants.TenantHeader, "tenant-1")
	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, first)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	// 2. A following request without a tenant source sees no residue.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder = httptest.NewRecorder()
	chain.ServeHTTP(recorder, second)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRealIP_HeaderPriority(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.9:4711"

	// 1. Direct connection address is the fallback.
	assert.Equal(t, "10.0.0.9", RealIP(request))

	// 2. X-Forwarded-For takes the first hop.
	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", RealIP(request))

	// 3. X-Real-IP wins over everything.
	request.Header.Set(constants.HeaderXRealIP, "198.51.100.2")
	assert.Equal(t, "198.51.100.2", RealIP(request))
}

type devConfig struct{ dev bool }

func (config devConfig) IsDevelopment() bool { return config.dev }

func TestCORS_ProductionRestrictsOrigins(t *testing.T) {
	handler := CORS(devConfig{dev: false})(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	// 1. A first-party origin is allowed.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "https://app.klustra.io")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "https://app.klustra.io", recorder.Header().Get("Access-Control-Allow-Origin"))

	// 2. A foreign origin gets no CORS headers.
	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	reached := false
	handler := CORS(devConfig{dev: true})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	request := httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "http://localhost:3000")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.False(t, reached, "pre-flight must not reach the handler")
}
