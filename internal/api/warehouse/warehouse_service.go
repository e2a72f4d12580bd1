package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-warehouse-admin/app/observability/metrics"
	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ WarehouseService = (*WarehouseServiceImpl)(nil)

// WarehouseService is the business logic contract for warehouses. Mutations
// resolve the current owner first, then consult the authorization engine;
// a deny short-circuits before any write.
type WarehouseService interface {
	ListWarehouses(ctx context.Context, caller authz.Caller) ([]types.Warehouse, error)
	CountWarehouses(ctx context.Context, caller authz.Caller) (int64, error)
	GetWarehouse(ctx context.Context, caller authz.Caller, id uuid.UUID) (*types.Warehouse, error)
	CreateWarehouse(ctx context.Context, caller authz.Caller, req types.CreateWarehouseRequest) (*types.Warehouse, error)
	UpdateWarehouse(ctx context.Context, caller authz.Caller, id uuid.UUID, params types.UpdateWarehouseParams) (*types.Warehouse, error)
	DeleteWarehouse(ctx context.Context, caller authz.Caller, id uuid.UUID) error
}

type WarehouseServiceImpl struct {
	logger *slog.Logger
	repo   WarehouseRepo
}

func NewWarehouseService(repo WarehouseRepo, logger *slog.Logger) *WarehouseServiceImpl {
	return &WarehouseServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *WarehouseServiceImpl) authorize(ctx context.Context, caller authz.Caller, action authz.Action, owner authz.Ownership) error {
	decision := authz.Evaluate(caller, action, authz.ClassWarehouse, owner)
	metrics.Get().RecordAuthzDecision(ctx, string(decision.Reason))
	if !decision.Allowed {
		return &authz.Denied{Decision: decision}
	}
	return nil
}

// validateCoordinates checks latitude and longitude bounds.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", types.ErrValidation)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", types.ErrValidation)
	}
	return nil
}

func (s *WarehouseServiceImpl) ListWarehouses(ctx context.Context, caller authz.Caller) ([]types.Warehouse, error) {
	if err := s.authorize(ctx, caller, authz.ActionList, authz.Ownership{}); err != nil {
		return nil, err
	}
	return s.repo.ListWarehouses(ctx)
}

func (s *WarehouseServiceImpl) CountWarehouses(ctx context.Context, caller authz.Caller) (int64, error) {
	if err := s.authorize(ctx, caller, authz.ActionList, authz.Ownership{}); err != nil {
		return 0, err
	}
	return s.repo.CountWarehouses(ctx)
}

func (s *WarehouseServiceImpl) GetWarehouse(ctx context.Context, caller authz.Caller, id uuid.UUID) (*types.Warehouse, error) {
	if err := s.authorize(ctx, caller, authz.ActionRead, authz.Ownership{}); err != nil {
		return nil, err
	}
	return s.repo.GetWarehouseByID(ctx, id)
}

func (s *WarehouseServiceImpl) CreateWarehouse(ctx context.Context, caller authz.Caller, req types.CreateWarehouseRequest) (*types.Warehouse, error) {
	ctx, span := otel.Tracer("WarehouseService").Start(ctx, "CreateWarehouse", trace.WithAttributes(
		attribute.String("caller.id", caller.ID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateWarehouse"))

	if err := s.authorize(ctx, caller, authz.ActionCreate, authz.Ownership{}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("%w: city is required", types.ErrValidation)
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	// Owner comes from the authenticated caller, never from the payload
	ownerID := caller.ID
	created, err := s.repo.CreateWarehouse(ctx, &types.Warehouse{
		City:      req.City,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedBy: &ownerID,
	})
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "Warehouse created",
		slog.String("warehouse_id", created.ID.String()),
		slog.String("city", created.City),
	)
	return created, nil
}

func (s *WarehouseServiceImpl) UpdateWarehouse(ctx context.Context, caller authz.Caller, id uuid.UUID, params types.UpdateWarehouseParams) (*types.Warehouse, error) {
	l := s.logger.With(slog.String("method", "UpdateWarehouse"), slog.String("warehouseID", id.String()))

	existing, err := s.repo.GetWarehouseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, caller, authz.ActionUpdate, authz.OwnerRef(existing.CreatedBy)); err != nil {
		l.WarnContext(ctx, "Warehouse update denied", slog.String("caller_id", caller.ID.String()))
		return nil, err
	}

	if params.City != nil {
		if strings.TrimSpace(*params.City) == "" {
			return nil, fmt.Errorf("%w: city must not be empty", types.ErrValidation)
		}
		existing.City = *params.City
	}
	if params.Latitude != nil {
		existing.Latitude = *params.Latitude
	}
	if params.Longitude != nil {
		existing.Longitude = *params.Longitude
	}
	if err := validateCoordinates(existing.Latitude, existing.Longitude); err != nil {
		return nil, err
	}

	return s.repo.UpdateWarehouse(ctx, id, existing)
}

func (s *WarehouseServiceImpl) DeleteWarehouse(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteWarehouse"), slog.String("warehouseID", id.String()))

	existing, err := s.repo.GetWarehouseByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, caller, authz.ActionDelete, authz.OwnerRef(existing.CreatedBy)); err != nil {
		l.WarnContext(ctx, "Warehouse delete denied", slog.String("caller_id", caller.ID.String()))
		return err
	}

	return s.repo.DeleteWarehouse(ctx, id)
}
