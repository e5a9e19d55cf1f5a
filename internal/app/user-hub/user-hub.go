// Package userhub собирает приложение: хранилище, кэш, брокер событий,
// сервисы и HTTP-сервер с общим жизненным циклом.
package userhub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/user-hub/internal/cache"
	"github.com/magabrotheeeer/user-hub/internal/config"
	"github.com/magabrotheeeer/user-hub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/mcp"
	"github.com/magabrotheeeer/user-hub/internal/migrations"
	chatservice "github.com/magabrotheeeer/user-hub/internal/services/chat"
	userservice "github.com/magabrotheeeer/user-hub/internal/services/user"
	"github.com/magabrotheeeer/user-hub/internal/storage/repository"
)

// App объединяет все зависимости приложения и управляет их запуском
// и остановкой.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
}

// New инициализирует хранилище, миграции, кэш, брокер событий, сервисы
// и HTTP-сервер приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(amqpConn, cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, cfg.RabbitMQ)

	userService := userservice.New(db, cacheRedis, publisher, logger)
	chatService := chatservice.New(cfg.AI, logger)

	registry := mcp.NewRegistry(logger)
	mcp.RegisterTools(registry, userService, db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, userService, chatService, registry)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.amqpConn.Close(); cerr != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(cerr))
		}
		if cerr := a.cache.Db.Close(); cerr != nil {
			a.logger.Warn("failed to close redis client", sl.Err(cerr))
		}
		a.db.DB.Close()
		return err
	}
}
