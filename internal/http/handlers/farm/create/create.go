// Package create реализует HTTP-обработчик создания фермы.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

// Request — входные данные для создания фермы.
type Request struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Location     string  `json:"location" validate:"required,max=200"`
	SizeHectares float64 `json:"size_hectares" validate:"required,gt=0"`
	SoilType     string  `json:"soil_type" validate:"max=50"`
}

// Handler обрабатывает HTTP-запросы создания фермы.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания фермы.
type Service interface {
	Create(ctx context.Context, userUID string, farm models.Farm) (int, error)
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
// @Summary Создание фермы
// @Description Создает новую ферму для текущего пользователя.
// @Tags Farms
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные фермы"
// @Success 201 {object} response.Response "Ферма создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/farms [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.farm.create"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("name", req.Name))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	farm := models.Farm{
		Name:         req.Name,
		Location:     req.Location,
		SizeHectares: req.SizeHectares,
		SoilType:     req.SoilType,
	}
	id, err := h.service.Create(r.Context(), userUID, farm)
	if err != nil {
		log.Error("failed to create farm", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create farm"))
		return
	}

	log.Info("farm created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
