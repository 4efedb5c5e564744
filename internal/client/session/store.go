// Package session реализует хранилище клиентской сессии.
//
// Токен хранится в файле каталога состояния и переживает перезапуск клиента.
// Состояние сессии проходит машину Unknown -> Authenticating ->
// Authenticated | Unauthenticated: до завершения проверки живости токена
// клиент не считает пользователя ни вошедшим, ни вышедшим.
//
// Каждая проверка живости помечается собственным идентификатором: если за
// время сетевого вызова состояние сменилось (logout, новый login), результат
// устаревшей проверки отбрасывается.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/agrocare-backend/internal/client/api"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

// tokenFileName имя файла с токеном в каталоге состояния.
const tokenFileName = "accessToken"

// State состояние клиентской сессии.
type State int

const (
	// Unknown — состояние до первой проверки токена.
	Unknown State = iota
	// Authenticating — проверка живости токена выполняется.
	Authenticating
	// Authenticated — токен подтвержден сервером.
	Authenticated
	// Unauthenticated — токена нет или он отвергнут.
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// RouteClass класс маршрута для шлюза Gate.
type RouteClass int

const (
	// RoutePublic доступен всем.
	RoutePublic RouteClass = iota
	// RouteProtected требует подтвержденной сессии.
	RouteProtected
	// RoutePublicOnly доступен только без сессии (login, register).
	RoutePublicOnly
)

// Decision решение шлюза для маршрута.
type Decision int

const (
	// Allow — маршрут доступен.
	Allow Decision = iota
	// RedirectToLogin — требуется вход.
	RedirectToLogin
	// RedirectToHome — пользователь уже вошел.
	RedirectToHome
)

// API описывает интерфейс проверки живости токена.
type API interface {
	Whoami(ctx context.Context, token string) (*api.Profile, error)
}

// Store хранилище клиентской сессии.
type Store struct {
	mu       sync.Mutex
	api      API
	stateDir string
	log      *slog.Logger

	state   State
	token   string
	user    *models.UserInfo
	isAdmin bool
	checkID string
}

// New создает хранилище сессии в состоянии Unknown.
func New(apiClient API, stateDir string, log *slog.Logger) *Store {
	return &Store{
		api:      apiClient,
		stateDir: stateDir,
		log:      log,
		state:    Unknown,
	}
}

func (s *Store) tokenPath() string {
	return filepath.Join(s.stateDir, tokenFileName)
}

// Init загружает сохраненный токен и запускает проверку живости.
// Без токена сессия сразу становится Unauthenticated.
func (s *Store) Init(ctx context.Context) error {
	const op = "client.session.Init"

	raw, err := os.ReadFile(s.tokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.state = Unauthenticated
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		s.mu.Lock()
		s.state = Unauthenticated
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.state = Authenticating
	s.mu.Unlock()

	s.CheckLiveness(ctx)
	return nil
}

// CheckLiveness проверяет токен запросом профиля. Результат устаревшей
// проверки (сессия сменилась за время вызова) отбрасывается.
//
// Недоступность сервера переводит сессию в Unauthenticated, но сохраняет
// файл токена: следующий запуск попробует снова.
func (s *Store) CheckLiveness(ctx context.Context) {
	s.mu.Lock()
	if s.token == "" {
		s.state = Unauthenticated
		s.mu.Unlock()
		return
	}
	token := s.token
	tag := uuid.NewString()
	s.checkID = tag
	s.state = Authenticating
	s.mu.Unlock()

	profile, err := s.api.Whoami(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkID != tag {
		s.log.Info("discarding stale liveness check result")
		return
	}

	switch {
	case err == nil:
		s.state = Authenticated
		s.user = &profile.User
		s.isAdmin = profile.IsAdmin
	case errors.Is(err, api.ErrRejected):
		s.log.Info("stored token rejected by server", sl.Err(err))
		s.state = Unauthenticated
		s.token = ""
		s.user = nil
		s.isAdmin = false
		if rmErr := os.Remove(s.tokenPath()); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Error("failed to remove token file", sl.Err(rmErr))
		}
	default:
		s.log.Error("liveness check failed, degrading to logged out", sl.Err(err))
		s.state = Unauthenticated
		s.user = nil
		s.isAdmin = false
	}
}

// StoreToken сохраняет токен в файл и запускает проверку живости: смена
// значения токена всегда подтверждается сервером. До завершения проверки
// сессия находится в Authenticating, результат незавершенной проверки
// прежнего токена при этом отбрасывается.
func (s *Store) StoreToken(ctx context.Context, token string, user models.UserInfo) error {
	const op = "client.session.StoreToken"

	if err := os.MkdirAll(s.stateDir, 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(s.tokenPath(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.isAdmin = user.IsAdmin()
	s.state = Authenticating
	s.checkID = ""
	s.mu.Unlock()

	s.CheckLiveness(ctx)
	return nil
}

// ClearToken удаляет токен и переводит сессию в Unauthenticated.
func (s *Store) ClearToken() error {
	const op = "client.session.ClearToken"

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.isAdmin = false
	s.state = Unauthenticated
	s.checkID = ""
	s.mu.Unlock()

	if err := os.Remove(s.tokenPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Token возвращает текущий токен сессии.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// State возвращает текущее состояние сессии.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User возвращает профиль пользователя подтвержденной сессии.
func (s *Store) User() (*models.UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated || s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, s.isAdmin
}

// Gate принимает решение о доступе к маршруту по текущему состоянию сессии.
// Состояния Unknown и Authenticating трактуются как отсутствие сессии:
// защищенный маршрут недоступен, пока токен не подтвержден.
func (s *Store) Gate(route RouteClass) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch route {
	case RouteProtected:
		if s.state != Authenticated {
			return RedirectToLogin
		}
		return Allow
	case RoutePublicOnly:
		if s.state == Authenticated {
			return RedirectToHome
		}
		return Allow
	default:
		return Allow
	}
}
