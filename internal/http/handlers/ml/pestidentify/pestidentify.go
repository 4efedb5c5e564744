// Package pestidentify реализует HTTP-обработчик распознавания вредителей.
//
// Обработчик принимает изображение в multipart/form-data (поле image),
// передаёт его внешнему ML-сервису и возвращает отчёт о вредителе.
package pestidentify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/mlapi"
)

// maxImageSize ограничивает размер загружаемого изображения (10 МБ).
const maxImageSize = 10 << 20

// Handler обрабатывает HTTP-запросы распознавания вредителей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс клиента ML-сервиса.
type Service interface {
	IdentifyPest(ctx context.Context, filename string, image io.Reader) (*mlapi.PestReport, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Распознавание вредителя
// @Description Распознаёт вредителя по фотографии растения.
// @Tags ML
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param image formData file true "Фотография растения"
// @Success 200 {object} response.Response "Отчёт о вредителе"
// @Failure 400 {object} response.ErrorResponse "Изображение отсутствует"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 502 {object} response.ErrorResponse "ML-сервис недоступен"
// @Router /api/ml/pests/identify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ml.pestidentify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("image file is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("image file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	result, err := h.service.IdentifyPest(r.Context(), header.Filename, file)
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
			log.Error("failed to identify pest", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("pest identified", slog.String("pest", result.PredictedPest))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"report": result,
	}))
}
