package agrocare

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/agrocare-backend/internal/cache"
	"github.com/magabrotheeeer/agrocare-backend/internal/config"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/agrocare-backend/internal/migrations"
	"github.com/magabrotheeeer/agrocare-backend/internal/mlapi"
	"github.com/magabrotheeeer/agrocare-backend/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/agrocare-backend/internal/services/auth"
	farmservice "github.com/magabrotheeeer/agrocare-backend/internal/services/farm"
	"github.com/magabrotheeeer/agrocare-backend/internal/storage/repository"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	rabbitmq *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	mlClient := mlapi.NewClient(cfg.MLBaseURL, cfg.MLTimeout)

	authService := authservice.NewAuthService(db, jwtMaker, publisher, cacheRedis, logger)
	farmService := farmservice.NewFarmService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authService, farmService, mlClient)

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
		rabbitmq: conn,
	}, nil
}

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
		if closeErr := a.rabbitmq.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection")
		}
		_ = a.db.DB.Close()
		return err
	}
}
