package announcement

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-warehouse-admin/internal/api"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/auth"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListAnnouncements(w http.ResponseWriter, r *http.Request)
	GetRecentAnnouncements(w http.ResponseWriter, r *http.Request)
	GetAnnouncement(w http.ResponseWriter, r *http.Request)
	CreateAnnouncement(w http.ResponseWriter, r *http.Request)
	UpdateAnnouncement(w http.ResponseWriter, r *http.Request)
	ToggleAnnouncementStatus(w http.ResponseWriter, r *http.Request)
	DeleteAnnouncement(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	announcementService AnnouncementService
	logger              *slog.Logger
}

func NewHandlerImpl(announcementService AnnouncementService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		announcementService: announcementService,
		logger:              logger,
	}
}

// ListAnnouncements godoc
// @Summary      List Announcements
// @Description  Lists all announcements, newest first. Any admin role.
// @Tags         Announcement
// @Produce      json
// @Success      200 {array} types.Announcement "Announcements"
// @Failure      403 {object} types.Response "Forbidden"
// @Security     BearerAuth
// @Router       /announcements [get]
func (h *HandlerImpl) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListAnnouncements"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	announcements, err := h.announcementService.ListAnnouncements(ctx, caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, announcements)
}

// GetRecentAnnouncements godoc
// @Summary      Recent Announcements
// @Description  Returns the newest active announcements for the dashboard.
// @Tags         Announcement
// @Produce      json
// @Param        limit query int false "Max results (default 5)"
// @Success      200 {array} types.Announcement "Announcements"
// @Failure      400 {object} types.Response "Invalid Limit"
// @Security     BearerAuth
// @Router       /announcements/recent [get]
func (h *HandlerImpl) GetRecentAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetRecentAnnouncements"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	announcements, err := h.announcementService.GetRecentAnnouncements(ctx, caller, limit)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, announcements)
}

// GetAnnouncement godoc
// @Summary      Get Announcement
// @Tags         Announcement
// @Produce      json
// @Param        id path string true "Announcement ID"
// @Success      200 {object} types.Announcement "Announcement"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /announcements/{id} [get]
func (h *HandlerImpl) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAnnouncement"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid announcement ID")
		return
	}

	announcement, err := h.announcementService.GetAnnouncement(ctx, caller, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, announcement)
}

// CreateAnnouncement godoc
// @Summary      Create Announcement
// @Description  Creates an announcement owned by the caller. Active by default.
// @Tags         Announcement
// @Accept       json
// @Produce      json
// @Param        announcement body types.CreateAnnouncementRequest true "Announcement"
// @Success      201 {object} types.Announcement "Created"
// @Failure      400 {object} types.Response "Invalid Input"
// @Security     BearerAuth
// @Router       /announcements [post]
func (h *HandlerImpl) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateAnnouncement"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req types.CreateAnnouncementRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.announcementService.CreateAnnouncement(ctx, caller, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UpdateAnnouncement godoc
// @Summary      Update Announcement
// @Description  Updates an announcement. Owner or platform admin only.
// @Tags         Announcement
// @Accept       json
// @Produce      json
// @Param        id path string true "Announcement ID"
// @Param        announcement body types.UpdateAnnouncementParams true "Fields to update"
// @Success      200 {object} types.Announcement "Updated"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /announcements/{id} [patch]
func (h *HandlerImpl) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateAnnouncement"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid announcement ID")
		return
	}

	var params types.UpdateAnnouncementParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.announcementService.UpdateAnnouncement(ctx, caller, id, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// ToggleAnnouncementStatus godoc
// @Summary      Toggle Announcement Status
// @Description  Flips the active flag. Owner or platform admin only.
// @Tags         Announcement
// @Produce      json
// @Param        id path string true "Announcement ID"
// @Success      200 {object} types.Announcement "Updated"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /announcements/{id}/toggle-status [patch]
func (h *HandlerImpl) ToggleAnnouncementStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ToggleAnnouncementStatus"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid announcement ID")
		return
	}

	updated, err := h.announcementService.ToggleAnnouncementStatus(ctx, caller, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteAnnouncement godoc
// @Summary      Delete Announcement
// @Description  Deletes an announcement. Owner or platform admin only.
// @Tags         Announcement
// @Param        id path string true "Announcement ID"
// @Success      204 "Deleted"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /announcements/{id} [delete]
func (h *HandlerImpl) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteAnnouncement"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid announcement ID")
		return
	}

	if err := h.announcementService.DeleteAnnouncement(ctx, caller, id); err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
