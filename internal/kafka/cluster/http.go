// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package cluster

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/klustra/klustra/internal/platform/request"
	"github.com/klustra/klustra/internal/platform/respond"
	"github.com/klustra/klustra/internal/platform/validate"
	"github.com/klustra/klustra/pkg/pagination"
)

// Handler implements cluster management HTTP endpoints.
type Handler struct {
	clusterService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{clusterService: service}
}

// Routes returns a [chi.Router] configured with cluster routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{clusterID}", handler.get)
	router.Put("/{clusterID}", handler.update)
	router.Delete("/{clusterID}", handler.remove)
	router.Get("/{clusterID}/health", handler.health)

	return router
}

type clusterRequest struct {
	Name             string `json:"name"`
	BootstrapServers string `json:"bootstrapServers"`
	Environment      string `json:"environment"`
	Description      string `json:"description"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input clusterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := validate.New().
		Required("name", input.Name).
		MaxLen("name", input.Name, 120).
		Required("bootstrapServers", input.BootstrapServers).
		MaxLen("description", input.Description, 500)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cluster, err := handler.clusterService.Create(request.Context(), CreateInput{
		Name:             input.Name,
		BootstrapServers: input.BootstrapServers,
		Environment:      Environment(input.Environment),
		Description:      input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, cluster)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	clusters, total, err := handler.clusterService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, clusters, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	cluster, err := handler.clusterService.Get(request.Context(), requestutil.Param(request, "clusterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cluster)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input clusterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	cluster, err := handler.clusterService.Update(request.Context(), requestutil.Param(request, "clusterID"), UpdateInput{
		Name:             input.Name,
		BootstrapServers: input.BootstrapServers,
		Environment:      Environment(input.Environment),
		Description:      input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cluster)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.clusterService.Delete(request.Context(), requestutil.Param(request, "clusterID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) health(writer http.ResponseWriter, request *http.Request) {
	health, err := handler.clusterService.Health(request.Context(), requestutil.Param(request, "clusterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, health)
}
