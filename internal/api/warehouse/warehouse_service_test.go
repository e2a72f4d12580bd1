package warehouse

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-warehouse-admin/app/observability/metrics"
	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

// MockWarehouseRepo is a mock implementation of the WarehouseRepo interface
type MockWarehouseRepo struct {
	mock.Mock
}

func (m *MockWarehouseRepo) ListWarehouses(ctx context.Context) ([]types.Warehouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepo) CountWarehouses(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarehouseRepo) GetWarehouseByID(ctx context.Context, id uuid.UUID) (*types.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepo) CreateWarehouse(ctx context.Context, w *types.Warehouse) (*types.Warehouse, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepo) UpdateWarehouse(ctx context.Context, id uuid.UUID, w *types.Warehouse) (*types.Warehouse, error) {
	args := m.Called(ctx, id, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepo) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func adminCaller() authz.Caller {
	return authz.Caller{ID: uuid.New(), Role: authz.RolePlatformAdmin, Authenticated: true}
}

func warehouseAdmin() authz.Caller {
	return authz.Caller{ID: uuid.New(), Role: authz.RoleWarehouseAdmin, Authenticated: true}
}

func supportStaff() authz.Caller {
	return authz.Caller{ID: uuid.New(), Role: authz.RoleSupportStaff, Authenticated: true}
}

func TestCreateWarehouse(t *testing.T) {
	logger := slog.Default()

	t.Run("OwnerSetFromCaller", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()
		caller := warehouseAdmin()

		mockRepo.On("CreateWarehouse", mock.Anything, mock.MatchedBy(func(w *types.Warehouse) bool {
			return w.CreatedBy != nil && *w.CreatedBy == caller.ID && w.City == "New York"
		})).Return(&types.Warehouse{ID: uuid.New(), City: "New York"}, nil).Once()

		created, err := service.CreateWarehouse(ctx, caller, types.CreateWarehouseRequest{
			City:      "New York",
			Latitude:  40.7128,
			Longitude: -74.0060,
		})

		assert.NoError(t, err)
		assert.Equal(t, "New York", created.City)
		mockRepo.AssertExpectations(t)
	})

	t.Run("LatitudeOutOfRange", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)

		_, err := service.CreateWarehouse(context.Background(), warehouseAdmin(), types.CreateWarehouseRequest{
			City:      "Nowhere",
			Latitude:  91,
			Longitude: 0,
		})

		assert.ErrorIs(t, err, types.ErrValidation)
		mockRepo.AssertNotCalled(t, "CreateWarehouse", mock.Anything, mock.Anything)
	})

	t.Run("LongitudeOutOfRange", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)

		_, err := service.CreateWarehouse(context.Background(), warehouseAdmin(), types.CreateWarehouseRequest{
			City:      "Nowhere",
			Latitude:  0,
			Longitude: -180.5,
		})

		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("UnauthenticatedDenied", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)

		_, err := service.CreateWarehouse(context.Background(), authz.Caller{}, types.CreateWarehouseRequest{
			City: "New York",
		})

		var denied *authz.Denied
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, authz.ReasonUnauthenticated, denied.Decision.Reason)
	})
}

func TestUpdateWarehouse(t *testing.T) {
	logger := slog.Default()

	t.Run("OwnerMayUpdate", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()
		caller := warehouseAdmin()
		id := uuid.New()
		ownerID := caller.ID
		existing := &types.Warehouse{ID: id, City: "Chicago", Latitude: 41.8781, Longitude: -87.6298, CreatedBy: &ownerID}

		mockRepo.On("GetWarehouseByID", ctx, id).Return(existing, nil).Once()
		newCity := "Detroit"
		mockRepo.On("UpdateWarehouse", ctx, id, mock.MatchedBy(func(w *types.Warehouse) bool {
			return w.City == newCity
		})).Return(existing, nil).Once()

		_, err := service.UpdateWarehouse(ctx, caller, id, types.UpdateWarehouseParams{City: &newCity})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NonOwnerDenied_NoWrite", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()
		id := uuid.New()
		ownerID := uuid.New()

		mockRepo.On("GetWarehouseByID", ctx, id).Return(&types.Warehouse{ID: id, CreatedBy: &ownerID}, nil).Once()

		city := "Detroit"
		_, err := service.UpdateWarehouse(ctx, supportStaff(), id, types.UpdateWarehouseParams{City: &city})

		var denied *authz.Denied
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, authz.ReasonNotOwner, denied.Decision.Reason)
		mockRepo.AssertNotCalled(t, "UpdateWarehouse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PlatformAdminOverride", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()
		id := uuid.New()
		ownerID := uuid.New()
		existing := &types.Warehouse{ID: id, City: "Chicago", Latitude: 41.8781, Longitude: -87.6298, CreatedBy: &ownerID}

		mockRepo.On("GetWarehouseByID", ctx, id).Return(existing, nil).Once()
		mockRepo.On("UpdateWarehouse", ctx, id, mock.Anything).Return(existing, nil).Once()

		city := "Detroit"
		_, err := service.UpdateWarehouse(ctx, adminCaller(), id, types.UpdateWarehouseParams{City: &city})

		assert.NoError(t, err)
	})

	t.Run("OwnerlessOnlyPlatformAdmin", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()
		id := uuid.New()
		existing := &types.Warehouse{ID: id, City: "Chicago", Latitude: 41.8781, Longitude: -87.6298}

		mockRepo.On("GetWarehouseByID", ctx, id).Return(existing, nil)

		city := "Detroit"
		_, err := service.UpdateWarehouse(ctx, warehouseAdmin(), id, types.UpdateWarehouseParams{City: &city})
		var denied *authz.Denied
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, authz.ReasonNotOwner, denied.Decision.Reason)

		mockRepo.On("UpdateWarehouse", ctx, id, mock.Anything).Return(existing, nil).Once()
		_, err = service.UpdateWarehouse(ctx, adminCaller(), id, types.UpdateWarehouseParams{City: &city})
		assert.NoError(t, err)
	})
}

func TestDeleteWarehouse(t *testing.T) {
	logger := slog.Default()

	// Mirrors the seeded scenario: "warehouse" creates W1, "support" cannot
	// delete it, "warehouse" can, and "admin" always could.
	t.Run("OwnershipScenario", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()

		warehouseUser := warehouseAdmin()
		supportUser := supportStaff()
		adminUser := adminCaller()

		w1 := uuid.New()
		ownerID := warehouseUser.ID
		record := &types.Warehouse{ID: w1, City: "Boston", CreatedBy: &ownerID}
		mockRepo.On("GetWarehouseByID", ctx, w1).Return(record, nil)

		// support staff is rejected before the repo delete
		err := service.DeleteWarehouse(ctx, supportUser, w1)
		var denied *authz.Denied
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, authz.ReasonNotOwner, denied.Decision.Reason)
		mockRepo.AssertNotCalled(t, "DeleteWarehouse", mock.Anything, mock.Anything)

		// platform admin could have deleted it regardless of ownership
		d := authz.Evaluate(adminUser, authz.ActionDelete, authz.ClassWarehouse, authz.OwnedBy(ownerID))
		assert.True(t, d.Allowed)

		// the owner deletes it
		mockRepo.On("DeleteWarehouse", ctx, w1).Return(nil).Once()
		err = service.DeleteWarehouse(ctx, warehouseUser, w1)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockWarehouseRepo)
		service := NewWarehouseService(mockRepo, logger)
		ctx := context.Background()
		id := uuid.New()

		mockRepo.On("GetWarehouseByID", ctx, id).Return(nil, types.ErrNotFound).Once()

		err := service.DeleteWarehouse(ctx, adminCaller(), id)

		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestCountWarehouses(t *testing.T) {
	mockRepo := new(MockWarehouseRepo)
	service := NewWarehouseService(mockRepo, slog.Default())
	ctx := context.Background()

	mockRepo.On("CountWarehouses", ctx).Return(int64(3), nil).Once()

	count, err := service.CountWarehouses(ctx, supportStaff())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
