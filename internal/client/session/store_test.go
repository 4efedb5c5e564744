package session_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/agrocare-backend/internal/client/api"
	"github.com/magabrotheeeer/agrocare-backend/internal/client/session"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

func testUser() models.UserInfo {
	return models.UserInfo{
		UID:      "b2f7c9e4-1d55-4a2e-9f1b-6f3f0a9f2c11",
		Username: "asha",
		Email:    "asha@example.com",
		Role:     "user",
	}
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// newWhoamiServer поднимает сервер, принимающий только токены из valid.
func newWhoamiServer(t *testing.T, valid map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		token := r.Header.Get("Authorization")
		if valid[token] {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"data": map[string]any{
					"user": map[string]any{
						"uid":      "b2f7c9e4-1d55-4a2e-9f1b-6f3f0a9f2c11",
						"username": "asha",
						"email":    "asha@example.com",
						"role":     "user",
					},
					"isAdmin": false,
				},
			})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "Error",
			"error":  "invalid or expired token",
		})
	}))
}

func writeToken(t *testing.T, dir, token string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accessToken"), []byte(token), 0o600))
}

func TestStore_InitWithoutToken(t *testing.T) {
	dir := t.TempDir()
	store := session.New(api.New("http://127.0.0.1:1", time.Second), dir, newNoopLogger())

	assert.Equal(t, session.Unknown, store.State())
	require.NoError(t, store.Init(context.Background()))
	assert.Equal(t, session.Unauthenticated, store.State())
}

func TestStore_InitWithValidToken(t *testing.T) {
	srv := newWhoamiServer(t, map[string]bool{"Bearer goodtoken": true})
	defer srv.Close()

	dir := t.TempDir()
	writeToken(t, dir, "goodtoken")

	store := session.New(api.New(srv.URL, time.Second), dir, newNoopLogger())
	require.NoError(t, store.Init(context.Background()))

	assert.Equal(t, session.Authenticated, store.State())
	user, isAdmin := store.User()
	require.NotNil(t, user)
	assert.Equal(t, "asha", user.Username)
	assert.False(t, isAdmin)
}

// Отвергнутый сервером токен должен быть удален и из памяти, и из файла.
func TestStore_InitWithRejectedToken(t *testing.T) {
	srv := newWhoamiServer(t, map[string]bool{})
	defer srv.Close()

	dir := t.TempDir()
	writeToken(t, dir, "staletoken")

	store := session.New(api.New(srv.URL, time.Second), dir, newNoopLogger())
	require.NoError(t, store.Init(context.Background()))

	assert.Equal(t, session.Unauthenticated, store.State())
	assert.Empty(t, store.Token())
	_, err := os.Stat(filepath.Join(dir, "accessToken"))
	assert.True(t, os.IsNotExist(err))
}

// При недоступном сервере сессия деградирует до Unauthenticated,
// но файл токена сохраняется для следующего запуска.
func TestStore_InitWithUnreachableServer(t *testing.T) {
	dir := t.TempDir()
	writeToken(t, dir, "sometoken")

	store := session.New(api.New("http://127.0.0.1:1", 200*time.Millisecond), dir, newNoopLogger())
	require.NoError(t, store.Init(context.Background()))

	assert.Equal(t, session.Unauthenticated, store.State())
	_, err := os.Stat(filepath.Join(dir, "accessToken"))
	assert.NoError(t, err)
}

func TestStore_StoreTokenAndClear(t *testing.T) {
	srv := newWhoamiServer(t, map[string]bool{"Bearer newtoken": true})
	defer srv.Close()

	dir := t.TempDir()
	store := session.New(api.New(srv.URL, time.Second), dir, newNoopLogger())

	user := testUser()
	require.NoError(t, store.StoreToken(context.Background(), "newtoken", user))

	assert.Equal(t, session.Authenticated, store.State())
	assert.Equal(t, "newtoken", store.Token())

	raw, err := os.ReadFile(filepath.Join(dir, "accessToken"))
	require.NoError(t, err)
	assert.Equal(t, "newtoken", string(raw))

	require.NoError(t, store.ClearToken())
	assert.Equal(t, session.Unauthenticated, store.State())
	assert.Empty(t, store.Token())
	_, err = os.Stat(filepath.Join(dir, "accessToken"))
	assert.True(t, os.IsNotExist(err))
}

// Смена токена всегда подтверждается сервером: токен, который сервер
// отвергает, не должен оставить сессию в Authenticated.
func TestStore_StoreTokenRevalidates(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "Error",
			"error":  "invalid or expired token",
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	store := session.New(api.New(srv.URL, time.Second), dir, newNoopLogger())

	require.NoError(t, store.StoreToken(context.Background(), "badtoken", testUser()))

	assert.Greater(t, atomic.LoadInt64(&calls), int64(0))
	assert.Equal(t, session.Unauthenticated, store.State())
	assert.Empty(t, store.Token())
	_, err := os.Stat(filepath.Join(dir, "accessToken"))
	assert.True(t, os.IsNotExist(err))
}

// Повторная проверка живости не должна менять подтвержденное состояние.
func TestStore_CheckLivenessIdempotent(t *testing.T) {
	srv := newWhoamiServer(t, map[string]bool{"Bearer goodtoken": true})
	defer srv.Close()

	dir := t.TempDir()
	writeToken(t, dir, "goodtoken")

	store := session.New(api.New(srv.URL, time.Second), dir, newNoopLogger())
	require.NoError(t, store.Init(context.Background()))
	require.Equal(t, session.Authenticated, store.State())

	store.CheckLiveness(context.Background())
	assert.Equal(t, session.Authenticated, store.State())

	store.CheckLiveness(context.Background())
	assert.Equal(t, session.Authenticated, store.State())
}

// Результат проверки, начатой до смены сессии, должен быть отброшен:
// успешный login во время медленной проверки старого токена не может быть
// перетерт ее результатом.
func TestStore_StaleCheckDiscarded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer oldtoken" {
			<-release
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "Error",
				"error":  "invalid or expired token",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"data": map[string]any{
				"user": map[string]any{
					"uid":      "b2f7c9e4-1d55-4a2e-9f1b-6f3f0a9f2c11",
					"username": "asha",
					"email":    "asha@example.com",
					"role":     "user",
				},
				"isAdmin": false,
			},
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeToken(t, dir, "oldtoken")

	store := session.New(api.New(srv.URL, 5*time.Second), dir, newNoopLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = store.Init(context.Background())
	}()

	// Пока проверка старого токена висит на сервере, пользователь входит заново.
	require.Eventually(t, func() bool {
		return store.State() == session.Authenticating
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, store.StoreToken(context.Background(), "freshtoken", testUser()))
	require.Equal(t, session.Authenticated, store.State())

	close(release)
	wg.Wait()

	assert.Equal(t, session.Authenticated, store.State())
	assert.Equal(t, "freshtoken", store.Token())
}

func TestStore_Gate(t *testing.T) {
	srv := newWhoamiServer(t, map[string]bool{"Bearer tok": true})
	defer srv.Close()

	dir := t.TempDir()
	store := session.New(api.New(srv.URL, time.Second), dir, newNoopLogger())

	// Unknown: защищенные маршруты закрыты, публичные открыты.
	assert.Equal(t, session.RedirectToLogin, store.Gate(session.RouteProtected))
	assert.Equal(t, session.Allow, store.Gate(session.RoutePublicOnly))
	assert.Equal(t, session.Allow, store.Gate(session.RoutePublic))

	require.NoError(t, store.StoreToken(context.Background(), "tok", testUser()))

	assert.Equal(t, session.Allow, store.Gate(session.RouteProtected))
	assert.Equal(t, session.RedirectToHome, store.Gate(session.RoutePublicOnly))
	assert.Equal(t, session.Allow, store.Gate(session.RoutePublic))

	require.NoError(t, store.ClearToken())

	assert.Equal(t, session.RedirectToLogin, store.Gate(session.RouteProtected))
	assert.Equal(t, session.Allow, store.Gate(session.RoutePublicOnly))
}
