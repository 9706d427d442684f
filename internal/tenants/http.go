// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package tenants

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/klustra/klustra/internal/platform/middleware"
	requestutil "github.com/klustra/klustra/internal/platform/request"
	"github.com/klustra/klustra/internal/platform/respond"
	"github.com/klustra/klustra/internal/platform/sec"
	"github.com/klustra/klustra/internal/platform/validate"
	"github.com/klustra/klustra/pkg/pagination"
)

// Handler implements tenant management HTTP endpoints.
//
// All routes are platform-operator territory and require the ADMIN role;
// tenant self-management is out of scope here.
type Handler struct {
	tenantService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{tenantService: service}
}

// Routes returns a [chi.Router] configured with tenant management routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{tenantID}", handler.get)
	router.Put("/{tenantID}", handler.update)
	router.Delete("/{tenantID}", handler.remove)
	router.Post("/{tenantID}/suspend", handler.suspend)
	router.Post("/{tenantID}/activate", handler.activate)
	router.Get("/by-subdomain/{subdomain}", handler.getBySubdomain)

	return router
}

type createTenantRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	Plan      string `json:"plan"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createTenantRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := validate.New().
		Required("name", input.Name).
		MaxLen("name", input.Name, 120).
		Required("subdomain", input.Subdomain).
		Subdomain("subdomain", input.Subdomain)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tenant, err := handler.tenantService.Create(request.Context(), CreateInput{
		Name:      input.Name,
		Subdomain: input.Subdomain,
		Plan:      Plan(input.Plan),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, tenant)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	tenants, total, err := handler.tenantService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, tenants, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	tenant, err := handler.tenantService.Get(request.Context(), requestutil.Param(request, "tenantID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tenant)
}

func (handler *Handler) getBySubdomain(writer http.ResponseWriter, request *http.Request) {
	tenant, err := handler.tenantService.GetBySubdomain(request.Context(), requestutil.Param(request, "subdomain"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tenant)
}

type updateTenantRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan"`
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateTenantRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	tenant, err := handler.tenantService.Update(request.Context(), requestutil.Param(request, "tenantID"), UpdateInput{
		Name: input.Name,
		Plan: Plan(input.Plan),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tenant)
}

func (handler *Handler) suspend(writer http.ResponseWriter, request *http.Request) {
	if err := handler.tenantService.Suspend(request.Context(), requestutil.Param(request, "tenantID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	if err := handler.tenantService.Activate(request.Context(), requestutil.Param(request, "tenantID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.tenantService.Delete(request.Context(), requestutil.Param(request, "tenantID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
