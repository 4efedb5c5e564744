// Package recommend реализует HTTP-обработчик рекомендации культуры.
//
// Обработчик принимает агрохимические параметры почвы, делегирует запрос
// внешнему ML-сервису и возвращает рекомендованную культуру.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/mlapi"
)

// Request — входные данные для рекомендации культуры.
type Request struct {
	Nitrogen    float64 `json:"N" validate:"required,gte=0"`
	Phosphorus  float64 `json:"P" validate:"required,gte=0"`
	Potassium   float64 `json:"K" validate:"required,gte=0"`
	Temperature float64 `json:"temperature" validate:"required"`
	Humidity    float64 `json:"humidity" validate:"required,gte=0,lte=100"`
	PH          float64 `json:"ph" validate:"required,gte=0,lte=14"`
	Rainfall    float64 `json:"rainfall" validate:"required,gte=0"`
}

// Handler обрабатывает HTTP-запросы рекомендации культуры.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс клиента ML-сервиса.
type Service interface {
	RecommendCrop(ctx context.Context, req mlapi.RecommendRequest) (*mlapi.Recommendation, error)
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
// @Summary Рекомендация культуры
// @Description Рекомендует культуру по агрохимическим параметрам почвы.
// @Tags ML
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Параметры почвы и климата"
// @Success 200 {object} response.Response "Рекомендация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "ML-сервис недоступен"
// @Router /api/ml/crops/recommend [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ml.recommend"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	result, err := h.service.RecommendCrop(r.Context(), mlapi.RecommendRequest{
		Nitrogen:    req.Nitrogen,
		Phosphorus:  req.Phosphorus,
		Potassium:   req.Potassium,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		PH:          req.PH,
		Rainfall:    req.Rainfall,
	})
	if err != nil {
		var upstreamErr *mlapi.UpstreamError
		switch {
		case errors.Is(err, mlapi.ErrUnavailable):
			log.Error("ml service unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("ml service is not responding"))
		case errors.As(err, &upstreamErr):
			log.Error("ml service rejected request", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(upstreamErr.Message))
		default:
			log.Error("failed to get crop recommendation", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("crop recommended", slog.String("crop", result.RecommendedCrop))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"recommendation": result,
	}))
}
