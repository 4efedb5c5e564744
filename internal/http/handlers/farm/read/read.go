// Package read реализует HTTP-обработчик чтения одной фермы.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
	farm "github.com/magabrotheeeer/agrocare-backend/internal/services/farm"
)

// Handler обрабатывает HTTP-запросы чтения фермы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения фермы.
type Service interface {
	Read(ctx context.Context, id int, userUID string) (*models.Farm, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Чтение фермы
// @Description Возвращает ферму текущего пользователя по идентификатору.
// @Tags Farms
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор фермы"
// @Success 200 {object} response.Response "Ферма"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 404 {object} response.ErrorResponse "Ферма не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/farms/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.farm.read"

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

	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	res, err := h.service.Read(r.Context(), id, userUID)
	if err != nil {
		if errors.Is(err, farm.ErrFarmNotFound) {
			log.Error("farm not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("farm not found"))
			return
		}
		log.Error("failed to read farm", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read farm"))
		return
	}

	log.Info("farm read", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"farm": res,
	}))
}
