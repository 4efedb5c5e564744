// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/agrocare-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/password"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
	"github.com/magabrotheeeer/agrocare-backend/internal/storage/repository"
)

// ErrEmailTaken возвращается при регистрации с уже занятой электронной почтой.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials возвращается при неверной почте или пароле.
// Ошибка намеренно общая: по ней нельзя понять, существует ли учётная запись.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrUserNotFound возвращается, когда пользователь по UID не найден.
var ErrUserNotFound = errors.New("user not found")

// profileCacheTTL время жизни кэшированной проекции пользователя.
const profileCacheTTL = 5 * time.Minute

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по почте или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUID возвращает пользователя по UID или ошибку, если не найден.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// EventPublisher описывает публикацию событий регистрации.
type EventPublisher interface {
	PublishUserRegistered(event models.UserRegisteredEvent) error
}

// Cache описывает методы для кэширования проекций пользователей.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// AuthResult результат успешной регистрации или входа: токен и безопасная
// проекция пользователя без хэша пароля.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.UserInfo `json:"user"`
}

// AuthService отвечает за регистрацию, авторизацию и выдачу JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	events   EventPublisher
	cache    Cache
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, events EventPublisher, cache Cache, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		events:   events,
		cache:    cache,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user",
// выпускает токен сессии и возвращает его вместе с проекцией пользователя.
//
// При занятой почте возвращает ErrEmailTaken; новая запись при этом не создается.
func (s *AuthService) Register(ctx context.Context, username, email, phone, rawPassword string) (*AuthResult, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.UID = uid
	user.CreatedAt = time.Now().UTC()

	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, err
	}

	// Уведомление отправляется по возможности, сбой не ломает регистрацию.
	if s.events != nil {
		event := models.UserRegisteredEvent{
			UserUID:  user.UID,
			Username: user.Username,
			Email:    user.Email,
		}
		if err := s.events.PublishUserRegistered(event); err != nil {
			s.log.Warn("failed to publish user.registered event", sl.Err(err))
		}
	}

	return &AuthResult{Token: token, User: user.Info()}, nil
}

// Login проверяет пароль пользователя и выпускает JWT.
//
// Неизвестная почта и неверный пароль дают одинаковую ошибку
// ErrInvalidCredentials. Побочных эффектов при неуспехе нет.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.Info()}, nil
}

// CurrentUser возвращает безопасную проекцию пользователя по его UID,
// используя кэш или репозиторий.
func (s *AuthService) CurrentUser(ctx context.Context, userUID string) (*models.UserInfo, error) {
	cacheKey := fmt.Sprintf("user:%s", userUID)
	if s.cache != nil {
		var cached models.UserInfo
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read user from cache", slog.String("key", cacheKey), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	info := user.Info()

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, info, profileCacheTTL); err != nil {
			s.log.Warn("failed to cache user", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return &info, nil
}
