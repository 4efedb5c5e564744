// Package list реализует HTTP-обработчик списка ферм пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы списка ферм.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка ферм.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Farm, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список ферм
// @Description Возвращает все фермы текущего пользователя.
// @Tags Farms
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список ферм"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/farms [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.farm.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return
	}

	farms, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list farms", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list farms"))
		return
	}

	log.Info("farms listed", slog.Int("count", len(farms)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"farms": farms,
	}))
}
