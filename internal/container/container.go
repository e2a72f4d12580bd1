package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-warehouse-admin/app/db"
	"github.com/FACorreiaa/go-warehouse-admin/config"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/announcement"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/auth"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/user"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/warehouse"
)

// Container holds all application dependencies
type Container struct {
	Config              *config.Config
	Logger              *slog.Logger
	Pool                *pgxpool.Pool
	AuthHandler         *auth.HandlerImpl
	UserHandler         *user.HandlerImpl
	WarehouseHandler    *warehouse.HandlerImpl
	AnnouncementHandler *announcement.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, cfg, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, authRepo, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	warehouseRepo := warehouse.NewPostgresWarehouseRepo(pool, logger)
	warehouseService := warehouse.NewWarehouseService(warehouseRepo, logger)
	warehouseHandler := warehouse.NewHandlerImpl(warehouseService, logger)

	announcementRepo := announcement.NewPostgresAnnouncementRepo(pool, logger)
	announcementService := announcement.NewAnnouncementService(announcementRepo, logger)
	announcementHandler := announcement.NewHandlerImpl(announcementService, logger)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Pool:                pool,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		WarehouseHandler:    warehouseHandler,
		AnnouncementHandler: announcementHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
