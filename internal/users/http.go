// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package users

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

// Handler implements user management HTTP endpoints.
//
// All routes operate within the tenant bound to the request context and
// require at least the TENANT_ADMIN role.
type Handler struct {
	userService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// Routes returns a [chi.Router] configured with user management routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(sec.RoleTenantAdmin))

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{userID}", handler.get)
	router.Put("/{userID}", handler.update)
	router.Delete("/{userID}", handler.remove)
	router.Post("/{userID}/enable", handler.enable)
	router.Post("/{userID}/disable", handler.disable)
	router.Post("/{userID}/unlock", handler.unlock)

	return router
}

type createUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := validate.New().
		Required("username", input.Username).
		MinLen("username", input.Username, 3).
		MaxLen("username", input.Username, 64).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.userService.Create(request.Context(), CreateInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Roles:    input.Roles,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.userService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.userService.Get(request.Context(), requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

type updateUserRequest struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Email != "" {
		if err := validate.New().Email("email", input.Email).Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	user, err := handler.userService.Update(request.Context(), requestutil.Param(request, "userID"), UpdateInput{
		Email: input.Email,
		Roles: input.Roles,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.userService.Delete(request.Context(), requestutil.Param(request, "userID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) enable(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.userService.SetEnabled(request.Context(), requestutil.Param(request, "userID"), true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) disable(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.userService.SetEnabled(request.Context(), requestutil.Param(request, "userID"), false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) unlock(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.userService.Unlock(request.Context(), requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
