package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-warehouse-admin/docs"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/announcement"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/auth"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/user"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/warehouse"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	UserHandler            user.Handler
	WarehouseHandler       warehouse.Handler
	AnnouncementHandler    announcement.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public Auth Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/token", cfg.AuthHandler.Login)
			r.Post("/token/refresh", cfg.AuthHandler.RefreshSession)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/token/revoke", cfg.AuthHandler.Logout)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", cfg.UserHandler.GetCurrentUser)
				r.Get("/", cfg.UserHandler.ListUsers)
				r.Post("/", cfg.UserHandler.CreateUser)
				r.Get("/{id}", cfg.UserHandler.GetUser)
				r.Put("/{id}", cfg.UserHandler.UpdateUser)
				r.Patch("/{id}", cfg.UserHandler.UpdateUser)
				r.Delete("/{id}", cfg.UserHandler.DeleteUser)
			})

			r.Route("/warehouses", func(r chi.Router) {
				r.Get("/", cfg.WarehouseHandler.ListWarehouses)
				r.Post("/", cfg.WarehouseHandler.CreateWarehouse)
				r.Get("/count", cfg.WarehouseHandler.CountWarehouses)
				r.Get("/{id}", cfg.WarehouseHandler.GetWarehouse)
				r.Put("/{id}", cfg.WarehouseHandler.UpdateWarehouse)
				r.Patch("/{id}", cfg.WarehouseHandler.UpdateWarehouse)
				r.Delete("/{id}", cfg.WarehouseHandler.DeleteWarehouse)
			})

			r.Route("/announcements", func(r chi.Router) {
				r.Get("/", cfg.AnnouncementHandler.ListAnnouncements)
				r.Post("/", cfg.AnnouncementHandler.CreateAnnouncement)
				r.Get("/recent", cfg.AnnouncementHandler.GetRecentAnnouncements)
				r.Get("/{id}", cfg.AnnouncementHandler.GetAnnouncement)
				r.Put("/{id}", cfg.AnnouncementHandler.UpdateAnnouncement)
				r.Patch("/{id}", cfg.AnnouncementHandler.UpdateAnnouncement)
				r.Patch("/{id}/toggle-status", cfg.AnnouncementHandler.ToggleAnnouncementStatus)
				r.Delete("/{id}", cfg.AnnouncementHandler.DeleteAnnouncement)
			})
		})
	})

	return r
}
