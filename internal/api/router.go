package api

import (
	"time"

	"github.com/Project-Sylos/Specular/internal/api/handlers"
	"github.com/Project-Sylos/Specular/internal/auth"
	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/internal/metrics"
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router represents the HTTP API router
type Router struct {
	store *store.Store
	auth  *auth.Auth
}

// NewRouter creates a new API router. A nil auth leaves /api/v1 open.
func NewRouter(s *store.Store, a *auth.Auth) *Router {
	return &Router{store: s, auth: a}
}

// SetupRoutes configures all API routes using modular handlers
func (r *Router) SetupRoutes() *chi.Mux {
	router := chi.NewRouter()

	// Standard middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.Middleware)
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(r.store)
	containerHandler := handlers.NewContainerHandler(r.store)
	documentHandler := handlers.NewDocumentHandler(r.store)
	nodeHandler := handlers.NewNodeHandler(r.store)
	systemHandler := handlers.NewSystemHandler(r.store)

	// Health check and metrics
	router.Get("/health", healthHandler.HealthCheck)
	router.Handle("/metrics", metrics.Handler())

	// API routes
	router.Route("/api/v1", func(api chi.Router) {
		if r.auth != nil {
			api.Use(r.auth.Middleware)
		}

		api.Route("/items", func(items chi.Router) {
			items.Post("/list", containerHandler.ListItems)
			items.Post("/container", containerHandler.CreateContainer)
			items.Post("/document", documentHandler.CreateDocument)
			items.Get("/{id}", nodeHandler.GetNode)
			items.Get("/{id}/export", documentHandler.Export)
			items.Get("/{id}/raw", documentHandler.Raw)
			items.Post("/{id}/restrict", documentHandler.SetRestricted)
			items.Post("/{id}/parents", documentHandler.AddParent)
		})

		// Node operations
		api.Route("/node", func(node chi.Router) {
			node.Get("/{id}", nodeHandler.GetNode)
			node.Delete("/{id}", nodeHandler.DeleteNode)
		})

		// System operations
		api.Post("/reset", systemHandler.Reset)
		api.Post("/seed", systemHandler.Seed)
		api.Get("/config", systemHandler.GetConfig)
		api.Get("/stats", systemHandler.GetStats)
	})

	return router
}
