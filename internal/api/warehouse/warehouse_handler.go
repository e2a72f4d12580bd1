package warehouse

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
	ListWarehouses(w http.ResponseWriter, r *http.Request)
	CountWarehouses(w http.ResponseWriter, r *http.Request)
	GetWarehouse(w http.ResponseWriter, r *http.Request)
	CreateWarehouse(w http.ResponseWriter, r *http.Request)
	UpdateWarehouse(w http.ResponseWriter, r *http.Request)
	DeleteWarehouse(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	warehouseService WarehouseService
	logger           *slog.Logger
}

func NewHandlerImpl(warehouseService WarehouseService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		warehouseService: warehouseService,
		logger:           logger,
	}
}

// ListWarehouses godoc
// @Summary      List Warehouses
// @Description  Lists all warehouses, newest first. Any admin role.
// @Tags         Warehouse
// @Produce      json
// @Success      200 {array} types.Warehouse "Warehouses"
// @Failure      403 {object} types.Response "Forbidden"
// @Security     BearerAuth
// @Router       /warehouses [get]
func (h *HandlerImpl) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListWarehouses"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	warehouses, err := h.warehouseService.ListWarehouses(ctx, caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, warehouses)
}

// CountWarehouses godoc
// @Summary      Count Warehouses
// @Tags         Warehouse
// @Produce      json
// @Success      200 {object} types.CountResponse "Count"
// @Security     BearerAuth
// @Router       /warehouses/count [get]
func (h *HandlerImpl) CountWarehouses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CountWarehouses"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	count, err := h.warehouseService.CountWarehouses(ctx, caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.CountResponse{Count: count})
}

// GetWarehouse godoc
// @Summary      Get Warehouse
// @Tags         Warehouse
// @Produce      json
// @Param        id path string true "Warehouse ID"
// @Success      200 {object} types.Warehouse "Warehouse"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /warehouses/{id} [get]
func (h *HandlerImpl) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetWarehouse"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid warehouse ID")
		return
	}

	warehouse, err := h.warehouseService.GetWarehouse(ctx, caller, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, warehouse)
}

// CreateWarehouse godoc
// @Summary      Create Warehouse
// @Description  Creates a warehouse owned by the caller. Any admin role.
// @Tags         Warehouse
// @Accept       json
// @Produce      json
// @Param        warehouse body types.CreateWarehouseRequest true "Warehouse"
// @Success      201 {object} types.Warehouse "Created"
// @Failure      400 {object} types.Response "Invalid Input"
// @Security     BearerAuth
// @Router       /warehouses [post]
func (h *HandlerImpl) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateWarehouse"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req types.CreateWarehouseRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.warehouseService.CreateWarehouse(ctx, caller, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UpdateWarehouse godoc
// @Summary      Update Warehouse
// @Description  Updates a warehouse. Owner or platform admin only.
// @Tags         Warehouse
// @Accept       json
// @Produce      json
// @Param        id path string true "Warehouse ID"
// @Param        warehouse body types.UpdateWarehouseParams true "Fields to update"
// @Success      200 {object} types.Warehouse "Updated"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /warehouses/{id} [patch]
func (h *HandlerImpl) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateWarehouse"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid warehouse ID")
		return
	}

	var params types.UpdateWarehouseParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.warehouseService.UpdateWarehouse(ctx, caller, id, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteWarehouse godoc
// @Summary      Delete Warehouse
// @Description  Deletes a warehouse. Owner or platform admin only.
// @Tags         Warehouse
// @Param        id path string true "Warehouse ID"
// @Success      204 "Deleted"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /warehouses/{id} [delete]
func (h *HandlerImpl) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteWarehouse"))

	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid warehouse ID")
		return
	}

	if err := h.warehouseService.DeleteWarehouse(ctx, caller, id); err != nil {
		api.ServiceErrorResponse(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
