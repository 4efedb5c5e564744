// Package yieldpredict реализует HTTP-обработчик прогноза урожайности.
package yieldpredict

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

// Request — входные данные для прогноза урожайности. Имена полей повторяют
// контракт внешнего ML-сервиса.
type Request struct {
	Crop                 string  `json:"Crop" validate:"required"`
	Season               string  `json:"Season" validate:"required"`
	State                string  `json:"State"`
	Area                 float64 `json:"Area" validate:"required,gt=0"`
	AnnualRainfall       float64 `json:"Annual_Rainfall" validate:"required,gte=0"`
	FertilizerPerHectare float64 `json:"Fertilizer_Per_Hectare" validate:"required,gte=0"`
	PesticidePerHectare  float64 `json:"Pesticide_Per_Hectare" validate:"required,gte=0"`
}

// Handler обрабатывает HTTP-запросы прогноза урожайности.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс клиента ML-сервиса.
type Service interface {
	PredictYield(ctx context.Context, req mlapi.YieldRequest) (*mlapi.YieldPrediction, error)
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
// @Summary Прогноз урожайности
// @Description Прогнозирует урожайность по культуре, сезону и параметрам участка.
// @Tags ML
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Параметры участка"
// @Success 200 {object} response.Response "Прогноз"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "ML-сервис недоступен"
// @Router /api/ml/crops/predict/yield [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ml.yieldpredict"

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

	result, err := h.service.PredictYield(r.Context(), mlapi.YieldRequest{
		Crop:                 req.Crop,
		Season:               req.Season,
		State:                req.State,
		Area:                 req.Area,
		AnnualRainfall:       req.AnnualRainfall,
		FertilizerPerHectare: req.FertilizerPerHectare,
		PesticidePerHectare:  req.PesticidePerHectare,
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
			log.Error("failed to predict yield", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("yield predicted", slog.Float64("yield", result.Yield))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"prediction": result,
	}))
}
