// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package middleware

import (
	"net/http"
	"strings"

	"github.com/klustra/klustra/internal/platform/ctxutil"
	"github.com/klustra/klustra/internal/platform/sec"
)

// # Authentication

// TokenVerifier checks a raw bearer token and returns the validated claims.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.AuthClaims, error)
}

/*
Authenticate extracts and validates the Bearer token from the Authorization
header.

It is deliberately non-blocking: requests without a token (or with an
invalid one) still proceed, but no principal is bound to the context.
Route-level guards (RequireAuth, RequireRole) decide whether anonymous
access is acceptable for a given endpoint.
*/
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Look for the Authorization header
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Expect the "Bearer <token>" scheme
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Verify signature, expiry, and token kind
			claims, err := verifier.Verify(tokenString)
			if err != nil {
				// Invalid tokens are treated as anonymous; guards reject later
				next.ServeHTTP(writer, request)
				return
			}

			// Access tokens carry identity for request handling. Refresh tokens
			// are only accepted by the dedicated refresh endpoint body.
			if claims.Kind != sec.KindAccess {
				next.ServeHTTP(writer, request)
				return
			}

			// 4. Bind the verified principal to the request context
			ctx := ctxutil.WithPrincipal(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Route Guards

// RequireAuth rejects requests that reached the handler without a verified
// principal in the context.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if ctxutil.GetPrincipal(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole rejects authenticated requests whose highest role is below
// the given minimum. It implies RequireAuth.
func RequireRole(minimum sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			claims := ctxutil.GetPrincipal(request.Context())
			if claims == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !sec.HighestRole(claims.Roles).AtLeast(minimum) {
				writeError(writer, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
