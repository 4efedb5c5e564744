package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

func (m *AuthServiceMock) Register(ctx context.Context, username, email, phone, rawPassword string) (*auth.AuthResult, error) {
	args := m.Called(ctx, username, email, phone, rawPassword)
	resp, _ := args.Get(0).(*auth.AuthResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handler := New(logger, authMock)

	result := &auth.AuthResult{
		Token: "tok",
		User: models.UserInfo{
			UID:      "b2f7c9e4-1d55-4a2e-9f1b-6f3f0a9f2c11",
			Username: "asha",
			Email:    "asha@example.com",
			Phone:    "9876543210",
			Role:     "user",
		},
	}

	validReq := Request{
		Username: "asha",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "password123",
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
			name:           "valid registration",
			requestBody:    validReq,
			mockResp:       result,
			mockErr:        nil,
			wantStatusCode: http.StatusCreated,
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
			name: "validation error - short password",
			requestBody: Request{
				Username: "asha",
				Email:    "asha@example.com",
				Phone:    "9876543210",
				Password: "short",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
			wantStatus:     "Error",
		},
		{
			name: "validation error - bad phone",
			requestBody: Request{
				Username: "asha",
				Email:    "asha@example.com",
				Phone:    "12345",
				Password: "password123",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Phone has wrong length",
			wantStatus:     "Error",
		},
		{
			name: "validation error - malformed email",
			requestBody: Request{
				Username: "asha",
				Email:    "not-an-email",
				Phone:    "9876543210",
				Password: "password123",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
			wantStatus:     "Error",
		},
		{
			name:           "email already taken",
			requestBody:    validReq,
			mockResp:       nil,
			mockErr:        auth.ErrEmailTaken,
			wantStatusCode: http.StatusConflict,
			wantError:      "email already registered",
			wantStatus:     "Error",
		},
		{
			name:           "service error",
			requestBody:    validReq,
			mockResp:       nil,
			mockErr:        errors.New("storage error"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to register user",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.mockResp != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Register", mock.Anything, req.Username, req.Email, req.Phone, req.Password).
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

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
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
