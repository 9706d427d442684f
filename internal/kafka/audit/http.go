// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/klustra/klustra/internal/platform/request"
	"github.com/klustra/klustra/internal/platform/respond"
	"github.com/klustra/klustra/internal/platform/validate"
	"github.com/klustra/klustra/pkg/pagination"
)

// Handler implements audit trail HTTP endpoints.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] configured with audit routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.record)
	router.Get("/", handler.list)
	router.Get("/export", handler.export)

	return router
}

type recordRequest struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resourceId"`
	Details    map[string]any `json:"details"`
}

func (handler *Handler) record(writer http.ResponseWriter, request *http.Request) {
	var input recordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := validate.New().
		Required("action", input.Action).
		MaxLen("action", input.Action, 120).
		Required("resource", input.Resource).
		MaxLen("resource", input.Resource, 64)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.auditService.Record(request.Context(), RecordInput{
		ActorID:    claims.Subject,
		Action:     input.Action,
		Resource:   input.Resource,
		ResourceID: input.ResourceID,
		Details:    input.Details,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

// filterFromRequest parses the query string filter parameters.
func filterFromRequest(request *http.Request) Filter {
	query := request.URL.Query()

	filter := Filter{
		ActorID:  query.Get("actorId"),
		Action:   query.Get("action"),
		Resource: query.Get("resource"),
	}

	if raw := query.Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = parsed
		}
	}
	if raw := query.Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = parsed
		}
	}

	return filter
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entries, total, err := handler.auditService.List(request.Context(), filterFromRequest(request), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) export(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)

	if err := handler.auditService.ExportCSV(request.Context(), filterFromRequest(request), writer); err != nil {
		// Headers may already be out; log-and-map is still the best we can do.
		respond.Error(writer, request, err)
	}
}
