// Package mlapi реализует HTTP-клиент внешнего ML-сервиса.
//
// Сервис рассматривается как черный ящик: клиент только передает признаки
// и возвращает результат или ошибку, не валидируя внутренности моделей.
package mlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUnavailable возвращается при сетевой недоступности ML-сервиса
// или его ответе 5xx. Обработчики отличают эту ошибку от отклоненного запроса.
var ErrUnavailable = errors.New("ml service unavailable")

// UpstreamError ошибка, возвращенная самим ML-сервисом в конверте ответа.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ml api: %d: %s", e.StatusCode, e.Message)
}

// Client клиент внешнего ML-сервиса.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент ML-сервиса с ограниченным таймаутом запросов.
func NewClient(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type dataEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	var env dataEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !env.Success {
		msg := "request rejected"
		if env.Error != nil {
			msg = env.Error.Message
		}
		return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}
	if result != nil {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	return nil
}

// RecommendCrop возвращает рекомендованную культуру по признакам почвы и климата.
func (c *Client) RecommendCrop(ctx context.Context, reqParams RecommendRequest) (*Recommendation, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/crops/recommend", reqParams)
	if err != nil {
		return nil, err
	}
	var result Recommendation
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PredictYield возвращает прогноз урожайности.
func (c *Client) PredictYield(ctx context.Context, reqParams YieldRequest) (*YieldPrediction, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/crops/predict/yield", reqParams)
	if err != nil {
		return nil, err
	}
	var result YieldPrediction
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IdentifyPest отправляет изображение вредителя multipart-запросом
// и возвращает распознанный результат.
func (c *Client) IdentifyPest(ctx context.Context, filename string, image io.Reader) (*PestReport, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v1/pests/identify", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result PestReport
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
