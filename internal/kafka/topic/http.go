// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package topic

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/klustra/klustra/internal/platform/request"
	"github.com/klustra/klustra/internal/platform/respond"
	"github.com/klustra/klustra/internal/platform/validate"
	"github.com/klustra/klustra/pkg/pagination"
)

// Handler implements topic administration HTTP endpoints.
type Handler struct {
	topicService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{topicService: service}
}

// Routes returns a [chi.Router] configured with topic routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/{topicID}", handler.get)
	router.Put("/{topicID}", handler.update)
	router.Delete("/{topicID}", handler.remove)
	router.Get("/{topicID}/stats", handler.stats)

	return router
}

// ClusterRoutes returns the topic listing nested under a cluster.
func (handler *Handler) ClusterRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listByCluster)
	return router
}

type topicRequest struct {
	ClusterID         string `json:"clusterId"`
	Name              string `json:"name"`
	Partitions        int    `json:"partitions"`
	ReplicationFactor int    `json:"replicationFactor"`
	RetentionMs       int64  `json:"retentionMs"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input topicRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := validate.New().
		Required("clusterId", input.ClusterID).
		UUID("clusterId", input.ClusterID).
		Required("name", input.Name).
		MaxLen("name", input.Name, 249) // Kafka's topic name length limit.

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	topic, err := handler.topicService.Create(request.Context(), CreateInput{
		ClusterID:         input.ClusterID,
		Name:              input.Name,
		Partitions:        input.Partitions,
		ReplicationFactor: input.ReplicationFactor,
		RetentionMs:       input.RetentionMs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, topic)
}

func (handler *Handler) listByCluster(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	clusterID := requestutil.Param(request, "clusterID")

	topics, total, err := handler.topicService.ListByCluster(request.Context(), clusterID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, topics, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	topic, err := handler.topicService.Get(request.Context(), requestutil.Param(request, "topicID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, topic)
}

type updateTopicRequest struct {
	Partitions  int   `json:"partitions"`
	RetentionMs int64 `json:"retentionMs"`
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateTopicRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	topic, err := handler.topicService.Update(request.Context(), requestutil.Param(request, "topicID"), UpdateInput{
		Partitions:  input.Partitions,
		RetentionMs: input.RetentionMs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, topic)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.topicService.Delete(request.Context(), requestutil.Param(request, "topicID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.topicService.Stats(request.Context(), requestutil.Param(request, "topicID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}
