// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/middleware"
	requestutil "github.com/klustra/klustra/internal/platform/request"
	"github.com/klustra/klustra/internal/platform/respond"
	"github.com/klustra/klustra/internal/platform/tenantctx"
	"github.com/klustra/klustra/internal/platform/validate"
)

// Handler implements authentication-related HTTP endpoints.
//
// # Architecture
//
// Handlers act as the gatekeepers to the system. They are responsible for:
//   - JSON request parsing and strict input validation.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register : Creates a tenant plus its admin and signs them in.
//   - POST /login    : Authenticates and returns a token pair.
//   - POST /refresh  : Redeems a refresh token for a new pair.
//   - POST /logout   : Ends the session (always succeeds).
//   - GET  /validate : Reports whether a token is currently valid.
//   - GET  /me       : Returns the active principal (requires auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Get("/validate", handler.validateToken)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth())
		protected.Get("/me", handler.me)
	})

	return router
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"` // Optional explicit tenant scope.
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the token pair and user profile.
//   - Writes HTTP 401 Unauthorized for bad credentials.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if input.Username == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("username/password", "are required"))
		return
	}

	// ── 3. Tenant Hint Resolution ─────────────────────────────────────────

	// The request context wins (X-Tenant-ID header or tenantId parameter,
	// bound by the middleware). The JSON body field is the last fallback.
	tenantHint, _ := tenantctx.Get(request.Context())
	if tenantHint == "" {
		tenantHint = input.TenantID
	}

	// ── 4. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.Login(request.Context(), LoginInput{
		TenantHint: tenantHint,
		Username:   input.Username,
		Password:   input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// refreshRequest represents the JSON payload for token refresh.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refresh handles POST /api/v1/auth/refresh requests.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError("refreshToken", "is required"))
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// logout handles POST /api/v1/auth/logout requests.
//
// Logout is idempotent and always succeeds: the token comes from the
// Authorization header when present, and garbage input changes nothing.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.authService.Logout(request.Context(), requestutil.BearerToken(request))

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Logged out successfully",
	})
}

// validateToken handles GET /api/v1/auth/validate?token=... requests.
//
// # Returns
//   - Always HTTP 200 with {"valid": true|false}; an invalid token is a
//     normal answer here, not an error.
func (handler *Handler) validateToken(writer http.ResponseWriter, request *http.Request) {
	tokenString := request.URL.Query().Get("token")
	if tokenString == "" {
		tokenString = requestutil.BearerToken(request)
	}

	respond.OK(writer, map[string]bool{
		constants.FieldValid: handler.authService.Validate(tokenString),
	})
}

// me handles GET /api/v1/auth/me requests.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.authService.Me(claims))
}

// registerRequest represents the JSON payload for tenant self-registration.
type registerRequest struct {
	TenantName string `json:"tenantName"`
	Subdomain  string `json:"subdomain"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// register handles POST /api/v1/auth/register requests.
//
// # Returns
//   - Writes HTTP 201 Created with a session for the founding admin.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the subdomain or username is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := validate.New().
		Required("tenantName", input.TenantName).
		MaxLen("tenantName", input.TenantName, 120).
		Required("subdomain", input.Subdomain).
		Subdomain("subdomain", input.Subdomain).
		Required("username", input.Username).
		MinLen("username", input.Username, 3).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		TenantName: input.TenantName,
		Subdomain:  input.Subdomain,
		Username:   input.Username,
		Email:      input.Email,
		Password:   input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session)
}
