package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ WarehouseRepo = (*PostgresWarehouseRepo)(nil)

// WarehouseRepo is the persistence contract for warehouses.
type WarehouseRepo interface {
	ListWarehouses(ctx context.Context) ([]types.Warehouse, error)
	CountWarehouses(ctx context.Context) (int64, error)
	GetWarehouseByID(ctx context.Context, id uuid.UUID) (*types.Warehouse, error)
	CreateWarehouse(ctx context.Context, w *types.Warehouse) (*types.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id uuid.UUID, w *types.Warehouse) (*types.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id uuid.UUID) error
}

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresWarehouseRepo struct {
	logger *slog.Logger
	pgpool PgxPool
}

func NewPostgresWarehouseRepo(pgpool PgxPool, logger *slog.Logger) *PostgresWarehouseRepo {
	return &PostgresWarehouseRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const warehouseQuery = `
	SELECT w.id, w.city, w.latitude, w.longitude, w.created_at, w.updated_at,
	       w.created_by, u.username
	FROM warehouses w
	LEFT JOIN users u ON u.id = w.created_by`

func scanWarehouse(row pgx.Row) (*types.Warehouse, error) {
	var w types.Warehouse
	err := row.Scan(&w.ID, &w.City, &w.Latitude, &w.Longitude,
		&w.CreatedAt, &w.UpdatedAt, &w.CreatedBy, &w.CreatedByUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan warehouse: %w", err)
	}
	return &w, nil
}

func (r *PostgresWarehouseRepo) ListWarehouses(ctx context.Context) ([]types.Warehouse, error) {
	rows, err := r.pgpool.Query(ctx, warehouseQuery+" ORDER BY w.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	warehouses := []types.Warehouse{}
	for rows.Next() {
		var w types.Warehouse
		if err := rows.Scan(&w.ID, &w.City, &w.Latitude, &w.Longitude,
			&w.CreatedAt, &w.UpdatedAt, &w.CreatedBy, &w.CreatedByUsername); err != nil {
			return nil, fmt.Errorf("scan warehouse row: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (r *PostgresWarehouseRepo) CountWarehouses(ctx context.Context) (int64, error) {
	var count int64
	err := r.pgpool.QueryRow(ctx, "SELECT COUNT(*) FROM warehouses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count warehouses: %w", err)
	}
	return count, nil
}

func (r *PostgresWarehouseRepo) GetWarehouseByID(ctx context.Context, id uuid.UUID) (*types.Warehouse, error) {
	row := r.pgpool.QueryRow(ctx, warehouseQuery+" WHERE w.id = $1", id)
	return scanWarehouse(row)
}

func (r *PostgresWarehouseRepo) CreateWarehouse(ctx context.Context, w *types.Warehouse) (*types.Warehouse, error) {
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO warehouses (city, latitude, longitude, created_by)
         VALUES ($1, $2, $3, $4)
         RETURNING id`,
		w.City, w.Latitude, w.Longitude, w.CreatedBy).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}
	return r.GetWarehouseByID(ctx, id)
}

func (r *PostgresWarehouseRepo) UpdateWarehouse(ctx context.Context, id uuid.UUID, w *types.Warehouse) (*types.Warehouse, error) {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE warehouses SET city = $1, latitude = $2, longitude = $3, updated_at = $4
         WHERE id = $5`,
		w.City, w.Latitude, w.Longitude, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, types.ErrNotFound
	}
	return r.GetWarehouseByID(ctx, id)
}

func (r *PostgresWarehouseRepo) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM warehouses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
