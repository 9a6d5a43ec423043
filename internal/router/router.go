package router

import (
	"net/http"

	"fieldstock-api/internal/handler"
	"fieldstock-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler            *handler.Handler
	InventoryHandler   *handler.InventoryHandler
	ImportHandler      *handler.ImportHandler
	VaultHandler       *handler.VaultHandler
	TimeTrackerHandler *handler.TimeTrackerHandler
	AdminHandler       *handler.AdminHandler
	AuthHandler        *handler.AuthHandler
	AuthMiddleware     func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key", "X-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// AUTHENTICATED routes (use Group to apply auth middleware only to these)
	r.Group(func(r chi.Router) {
		// Apply auth middleware only to this group
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		// API v1 routes
		r.Route("/api/v1", func(r chi.Router) {
			// Health check endpoints
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			// Auth endpoints
			if cfg.AuthHandler != nil {
				r.Route("/auth", func(r chi.Router) {
					r.Post("/token", cfg.AuthHandler.GenerateToken)
					r.Post("/revoke", cfg.AuthHandler.RevokeToken)
					r.Post("/refresh", cfg.AuthHandler.RefreshToken)
				})
			}

			// Inventory endpoints
			if cfg.InventoryHandler != nil {
				r.Get("/categories", cfg.InventoryHandler.ListCategories)

				r.Route("/items", func(r chi.Router) {
					r.Get("/", cfg.InventoryHandler.ListItems)
					r.Post("/", cfg.InventoryHandler.CreateItem)
					r.Post("/sync", cfg.InventoryHandler.SyncItem)
					r.Get("/duplicates", cfg.InventoryHandler.ListDuplicates)
					r.Post("/merge", cfg.InventoryHandler.MergeItems)
					r.Post("/merge-all", cfg.InventoryHandler.MergeAll)
					r.Get("/barcode/{code}", cfg.InventoryHandler.GetItemByBarcode)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", cfg.InventoryHandler.GetItem)
						r.Put("/", cfg.InventoryHandler.UpdateItem)
						r.Delete("/", cfg.InventoryHandler.DeleteItem)
						r.Post("/adjust", cfg.InventoryHandler.AdjustQuantity)
					})
				})
			}

			// Import endpoints
			if cfg.ImportHandler != nil {
				r.Route("/import", func(r chi.Router) {
					r.Post("/file", cfg.ImportHandler.ImportFile)
					r.Post("/invoice", cfg.ImportHandler.ImportInvoice)
					r.Get("/logs", cfg.ImportHandler.ListImportLogs)
				})
			}

			// Vault endpoints
			if cfg.VaultHandler != nil {
				r.Route("/vault", func(r chi.Router) {
					r.Get("/", cfg.VaultHandler.ListEntries)
					r.Post("/", cfg.VaultHandler.CreateEntry)
					r.Get("/{id}", cfg.VaultHandler.GetEntry)
					r.Put("/{id}", cfg.VaultHandler.UpdateEntry)
					r.Delete("/{id}", cfg.VaultHandler.DeleteEntry)
				})
			}

			// Time tracker endpoints
			if cfg.TimeTrackerHandler != nil {
				r.Route("/time", func(r chi.Router) {
					r.Get("/", cfg.TimeTrackerHandler.ListEntries)
					r.Post("/start", cfg.TimeTrackerHandler.StartTimer)
					r.Post("/stop", cfg.TimeTrackerHandler.StopTimer)
					r.Get("/summary", cfg.TimeTrackerHandler.Summary)
					r.Delete("/{id}", cfg.TimeTrackerHandler.DeleteEntry)
				})
			}

			// Admin endpoints
			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/flush", cfg.AdminHandler.FlushBuffer)
					r.Post("/cleanup", cfg.AdminHandler.RunCleanup)
				})
			}
		})
	})

	return r
}
