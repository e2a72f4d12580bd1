package user

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-warehouse-admin/internal/api"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/auth"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetCurrentUser(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// GetCurrentUser godoc
// @Summary      Current User
// @Description  Returns the authenticated caller's own user record.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.User "User"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *HandlerImpl) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetCurrentUser"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	user, err := h.userService.GetCurrentUser(ctx, caller.ID)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// ListUsers godoc
// @Summary      List Users
// @Description  Lists all users. Platform admin only.
// @Tags         User
// @Produce      json
// @Success      200 {array} types.User "Users"
// @Failure      403 {object} types.Response "Forbidden"
// @Security     BearerAuth
// @Router       /users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListUsers"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	users, err := h.userService.ListUsers(ctx, caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get User
// @Description  Retrieves a user by ID. Platform admin only.
// @Tags         User
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} types.User "User"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUser"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, ok := pathID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user ID")
		return
	}

	user, err := h.userService.GetUser(ctx, caller, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// CreateUser godoc
// @Summary      Create User
// @Description  Creates a user. Platform admin only.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        user body types.CreateUserRequest true "User"
// @Success      201 {object} types.User "Created"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      409 {object} types.Response "Duplicate username or email"
// @Security     BearerAuth
// @Router       /users [post]
func (h *HandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateUser"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req types.CreateUserRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.userService.CreateUser(ctx, caller, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UpdateUser godoc
// @Summary      Update User
// @Description  Updates a user. Platform admin only.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        user body types.UpdateUserParams true "Fields to update"
// @Success      200 {object} types.User "Updated"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      404 {object} types.Response "Not Found"
// @Failure      409 {object} types.Response "Duplicate username or email"
// @Security     BearerAuth
// @Router       /users/{id} [patch]
func (h *HandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateUser"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, ok := pathID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user ID")
		return
	}

	var params types.UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateUser(ctx, caller, id, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Deletes a user. Platform admin only. Owned warehouses and
// @Description  announcements survive with their owner reference cleared.
// @Tags         User
// @Param        id path string true "User ID"
// @Success      204 "Deleted"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteUser"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, ok := pathID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.userService.DeleteUser(ctx, caller, id); err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
