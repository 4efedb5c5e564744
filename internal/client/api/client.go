// Package api реализует HTTP-клиент серверного API для консольного клиента.
//
// Клиент различает два класса ошибок: сервер недоступен (ErrServerUnreachable)
// и сервер ответил отказом (ErrRejected). Хранилищу сессии важно не путать их:
// недоступность сервера не означает, что токен невалиден.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

// ErrServerUnreachable сервер не ответил: сетевая ошибка или ответ 5xx.
var ErrServerUnreachable = errors.New("server unreachable")

// ErrRejected сервер ответил отказом (4xx).
var ErrRejected = errors.New("request rejected")

// Client клиент серверного API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает новый клиент API с ограниченным таймаутом запросов.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// AuthData данные успешной регистрации или входа.
type AuthData struct {
	Token string          `json:"token"`
	User  models.UserInfo `json:"user"`
}

// Profile профиль текущего пользователя с признаком администратора.
type Profile struct {
	User    models.UserInfo `json:"user"`
	IsAdmin bool            `json:"isAdmin"`
}

func (c *Client) do(req *http.Request, result any) error {
	const op = "client.api.do"

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrServerUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s: %w: status %d", op, ErrServerUnreachable, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Status != "OK" {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s: %w: %s", op, ErrRejected, msg)
	}

	if result != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("%s: failed to decode data: %w", op, err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, result any) error {
	const op = "client.api.postJSON"

	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

// Register регистрирует нового пользователя и возвращает токен с профилем.
func (c *Client) Register(ctx context.Context, username, email, phone, password string) (*AuthData, error) {
	var data AuthData
	err := c.postJSON(ctx, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"phone":    phone,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Login выполняет вход и возвращает токен с профилем.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthData, error) {
	var data AuthData
	err := c.postJSON(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Whoami возвращает профиль пользователя по токену. Используется и как
// проверка живости сессии.
func (c *Client) Whoami(ctx context.Context, token string) (*Profile, error) {
	const op = "client.api.Whoami"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var profile Profile
	if err := c.do(req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListFarms возвращает фермы пользователя по токену.
func (c *Client) ListFarms(ctx context.Context, token string) ([]*models.Farm, error) {
	const op = "client.api.ListFarms"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/farms", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var data struct {
		Farms []*models.Farm `json:"farms"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return data.Farms, nil
}
