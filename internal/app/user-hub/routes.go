package userhub

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	aichat "github.com/magabrotheeeer/user-hub/internal/http/handlers/ai/chat"
	aistream "github.com/magabrotheeeer/user-hub/internal/http/handlers/ai/stream"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/health"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/exists"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/search"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/status"
	"github.com/magabrotheeeer/user-hub/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/user-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-hub/internal/mcp"
	chatservice "github.com/magabrotheeeer/user-hub/internal/services/chat"
	userservice "github.com/magabrotheeeer/user-hub/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, userService *userservice.Service, chatService *chatservice.Service, registry *mcp.Registry) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Use(corsMiddleware())

	limiter := rate.NewLimiter(50, 100)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

		readHandler := read.New(logger, userService)
		listHandler := list.New(logger, userService)
		existsHandler := exists.New(logger, userService)
		statusHandler := status.New(logger, userService)
		chatHandler := aichat.New(logger, chatService)

		r.Post("/users", create.New(logger, userService).ServeHTTP)
		r.Get("/users", listHandler.Page)
		r.Get("/users/all", listHandler.All)
		r.Get("/users/status/{status}", listHandler.ByStatus)
		r.Get("/users/search", search.New(logger, userService).ServeHTTP)
		r.Get("/users/username/{username}", readHandler.ByUsername)
		r.Get("/users/check/username", existsHandler.Username)
		r.Get("/users/check/email", existsHandler.Email)
		r.Get("/users/{id}", readHandler.ByID)
		r.Put("/users/{id}", update.New(logger, userService).ServeHTTP)
		r.Delete("/users/{id}", remove.New(logger, userService).ServeHTTP)
		r.Post("/users/{id}/enable", statusHandler.Enable)
		r.Post("/users/{id}/disable", statusHandler.Disable)

		r.Post("/ai/chat", chatHandler.ServeHTTP)
		r.Post("/ai/simple-chat", chatHandler.Simple)
		r.Get("/ai/stream", aistream.New(logger, chatService).ServeHTTP)
		r.Get("/ai/health", chatHandler.Health)
	})

	mcpHandler := mcp.NewHandler(logger, registry)
	r.Route("/mcp", func(r chi.Router) {
		r.Post("/message", mcpHandler.Message)
		r.Get("/health", mcpHandler.Health)
		r.Get("/info", mcpHandler.Info)
		r.Get("/debug/tools", mcpHandler.DebugTools)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// corsMiddleware разрешает кросс-доменные запросы от любых фронтендов.
func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	})
}
