// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package consumergroup

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/klustra/klustra/internal/platform/request"
	"github.com/klustra/klustra/internal/platform/respond"
	"github.com/klustra/klustra/internal/platform/validate"
	"github.com/klustra/klustra/pkg/pagination"
)

// Handler implements consumer group HTTP endpoints.
type Handler struct {
	groupService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{groupService: service}
}

// Routes returns a [chi.Router] configured with consumer group routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.register)
	router.Get("/{groupID}", handler.get)
	router.Delete("/{groupID}", handler.remove)
	router.Get("/{groupID}/lag", handler.lag)

	return router
}

// ClusterRoutes returns the group listing nested under a cluster.
func (handler *Handler) ClusterRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listByCluster)
	return router
}

type registerGroupRequest struct {
	ClusterID   string `json:"clusterId"`
	GroupID     string `json:"groupId"`
	MemberCount int    `json:"memberCount"`
}

func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerGroupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := validate.New().
		Required("clusterId", input.ClusterID).
		UUID("clusterId", input.ClusterID).
		Required("groupId", input.GroupID).
		MaxLen("groupId", input.GroupID, 249)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.groupService.Register(request.Context(), RegisterInput{
		ClusterID:   input.ClusterID,
		GroupID:     input.GroupID,
		MemberCount: input.MemberCount,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, group)
}

func (handler *Handler) listByCluster(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	clusterID := requestutil.Param(request, "clusterID")

	groups, total, err := handler.groupService.ListByCluster(request.Context(), clusterID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, groups, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	group, err := handler.groupService.Get(request.Context(), requestutil.Param(request, "groupID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, group)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.groupService.Delete(request.Context(), requestutil.Param(request, "groupID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) lag(writer http.ResponseWriter, request *http.Request) {
	lag, err := handler.groupService.Lag(request.Context(), requestutil.Param(request, "groupID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, lag)
}
