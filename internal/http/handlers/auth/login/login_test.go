package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/agrocare-backend/internal/http/response"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
	auth "github.com/magabrotheeeer/agrocare-backend/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, rawPassword string) (*auth.AuthResult, error) {
	args := m.Called(ctx, email, rawPassword)
	resp, _ := args.Get(0).(*auth.AuthResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handler := New(logger, authMock)

	result := &auth.AuthResult{
		Token: "tok",
		User: models.UserInfo{
			UID:      "b2f7c9e4-1d55-4a2e-9f1b-6f3f0a9f2c11",
			Username: "asha",
			Email:    "asha@example.com",
			Role:     "user",
		},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockResp       *auth.AuthResult
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "asha@example.com", Password: "password123"},
			mockResp:       result,
			mockErr:        nil,
			wantStatusCode: http.StatusOK,
			wantError:      "",
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "asha@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - malformed email",
			requestBody:    Request{Email: "not-an-email", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
			wantStatus:     "Error",
		},
		{
			name:           "unknown email",
			requestBody:    Request{Email: "ghost@example.com", Password: "password123"},
			mockResp:       nil,
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid email or password",
			wantStatus:     "Error",
		},
		{
			name:           "wrong password",
			requestBody:    Request{Email: "asha@example.com", Password: "wrongpassword"},
			mockResp:       nil,
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid email or password",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.mockResp != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, req.Email, req.Password).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp response.Response
			err = json.Unmarshal(rec.Body.Bytes(), &resp)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantError != "" {
				assert.Contains(t, resp.Error, tt.wantError)
			} else {
				data, ok := resp.Data.(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "tok", data["token"])
			}

			authMock.AssertExpectations(t)
		})
	}
}

// Оба вида отказа — неизвестный email и неверный пароль — должны давать
// идентичный ответ.
func TestLoginHandler_RejectionParity(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	authMock.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, auth.ErrInvalidCredentials)

	var bodies []string
	for _, reqBody := range []Request{
		{Email: "ghost@example.com", Password: "password123"},
		{Email: "asha@example.com", Password: "wrongpassword"},
	} {
		bodyBytes, err := json.Marshal(reqBody)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}

	assert.Equal(t, bodies[0], bodies[1])
}
