// Package agrocare предоставляет маршруты для основного приложения.
package agrocare

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/auth/register"
	farmcreate "github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/farm/create"
	farmlist "github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/farm/list"
	farmread "github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/farm/read"
	farmremove "github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/farm/remove"
	farmupdate "github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/farm/update"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/health"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/ml/pestidentify"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/ml/recommend"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/ml/yieldpredict"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/agrocare-backend/internal/mlapi"
	authservice "github.com/magabrotheeeer/agrocare-backend/internal/services/auth"
	farmservice "github.com/magabrotheeeer/agrocare-backend/internal/services/farm"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	authService *authservice.AuthService, farmService *farmservice.FarmService, mlClient *mlapi.Client) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
			r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Get("/user", me.New(logger, authService).ServeHTTP)

			r.Post("/farms", farmcreate.New(logger, farmService).ServeHTTP)
			r.Get("/farms", farmlist.New(logger, farmService).ServeHTTP)
			r.Get("/farms/{id}", farmread.New(logger, farmService).ServeHTTP)
			r.Put("/farms/{id}", farmupdate.New(logger, farmService).ServeHTTP)
			r.Delete("/farms/{id}", farmremove.New(logger, farmService).ServeHTTP)

			r.Post("/ml/crops/recommend", recommend.New(logger, mlClient).ServeHTTP)
			r.Post("/ml/crops/predict/yield", yieldpredict.New(logger, mlClient).ServeHTTP)
			r.Post("/ml/pests/identify", pestidentify.New(logger, mlClient).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
