// Package update реализует HTTP-обработчик обновления фермы.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
	farm "github.com/magabrotheeeer/agrocare-backend/internal/services/farm"
)

// Request — входные данные для обновления фермы.
type Request struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Location     string  `json:"location" validate:"required,max=200"`
	SizeHectares float64 `json:"size_hectares" validate:"required,gt=0"`
	SoilType     string  `json:"soil_type" validate:"max=50"`
}

// Handler обрабатывает HTTP-запросы обновления фермы.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики обновления фермы.
type Service interface {
	Update(ctx context.Context, userUID string, farm models.Farm) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление фермы
// @Description Обновляет ферму текущего пользователя по идентификатору.
// @Tags Farms
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор фермы"
// @Param request body Request true "Новые данные фермы"
// @Success 200 {object} response.Response "Ферма обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 404 {object} response.ErrorResponse "Ферма не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/farms/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.farm.update"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated := models.Farm{
		ID:           id,
		Name:         req.Name,
		Location:     req.Location,
		SizeHectares: req.SizeHectares,
		SoilType:     req.SoilType,
	}
	if err := h.service.Update(r.Context(), userUID, updated); err != nil {
		if errors.Is(err, farm.ErrFarmNotFound) {
			log.Error("farm not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("farm not found"))
			return
		}
		log.Error("failed to update farm", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update farm"))
		return
	}

	log.Info("farm updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
