// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package middleware

import (
	"net/http"

	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/ctxutil"
	"github.com/klustra/klustra/internal/platform/tenantctx"
)

// # Tenant Resolution

/*
TenantResolver determines which tenant a request operates on and binds it
to the request context for the remainder of the request lifecycle.

Resolution priority:

 1. Explicit X-Tenant-ID header.
 2. tenantId parameter (query string or urlencoded/multipart form body).
 3. The tenantId claim of the authenticated principal.

If none of the sources yields a tenant the context is left unbound, and
tenant-scoped data access will fail loudly rather than query across
tenants. Because the binding lives in the per-request context, concurrent
requests can never observe each other's tenant, and no explicit cleanup
is required after the handler returns.

TenantResolver must run after Authenticate so that the principal fallback
is available.
*/
func TenantResolver() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			ctx := request.Context()

			// 1. Explicit header override wins
			tenantID := request.Header.Get(constants.TenantHeader)

			// 2. Fall back to the request parameter. FormValue covers the
			// query string plus urlencoded and multipart bodies; other
			// content types leave the body untouched.
			if tenantID == "" {
				tenantID = request.FormValue(constants.TenantParam)
			}

			// 3. Finally fall back to the authenticated principal's claim
			if tenantID == "" {
				if claims := ctxutil.GetPrincipal(ctx); claims != nil {
					tenantID = claims.TenantID
				}
			}

			// 4. Bind when resolved; otherwise leave the context unbound
			if tenantID != "" {
				ctx = tenantctx.With(ctx, tenantID)
			}

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
