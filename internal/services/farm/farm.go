// Package services содержит бизнес-логику для управления фермами и кешированием.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
	"github.com/magabrotheeeer/agrocare-backend/internal/storage/repository"
)

// ErrFarmNotFound возвращается, когда ферма не существует
// или принадлежит другому пользователю.
var ErrFarmNotFound = errors.New("farm not found")

// farmsCacheTTL время жизни кэшированного списка ферм.
const farmsCacheTTL = time.Hour

// FarmRepository определяет методы для работы с фермами в хранилище.
type FarmRepository interface {
	// CreateFarm добавляет новую ферму и возвращает её ID.
	CreateFarm(ctx context.Context, farm models.Farm) (int, error)
	// ListFarms возвращает список ферм пользователя.
	ListFarms(ctx context.Context, userUID string) ([]*models.Farm, error)
	// GetFarm возвращает ферму пользователя по ID.
	GetFarm(ctx context.Context, id int, userUID string) (*models.Farm, error)
	// UpdateFarm обновляет данные фермы, возвращает число затронутых строк.
	UpdateFarm(ctx context.Context, farm models.Farm) (int64, error)
	// RemoveFarm удаляет ферму, возвращает число затронутых строк.
	RemoveFarm(ctx context.Context, id int, userUID string) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// FarmService реализует бизнес-логику работы с фермами, включая кеширование.
type FarmService struct {
	repo  FarmRepository
	cache Cache
	log   *slog.Logger
}

// NewFarmService создает новый экземпляр FarmService.
func NewFarmService(repo FarmRepository, cache Cache, log *slog.Logger) *FarmService {
	return &FarmService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func farmsCacheKey(userUID string) string {
	return fmt.Sprintf("farms:%s", userUID)
}

// Create создает новую ферму пользователя и инвалидирует кэш списка.
func (s *FarmService) Create(ctx context.Context, userUID string, farm models.Farm) (int, error) {
	farm.UserUID = userUID
	id, err := s.repo.CreateFarm(ctx, farm)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new farm", slog.Int("id", id))

	s.invalidateList(userUID)
	return id, nil
}

// List возвращает список ферм пользователя, используя кеш или репозиторий.
func (s *FarmService) List(ctx context.Context, userUID string) ([]*models.Farm, error) {
	cacheKey := farmsCacheKey(userUID)
	if s.cache != nil {
		var cached []*models.Farm
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read farms from cache", slog.String("key", cacheKey), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	farms, err := s.repo.ListFarms(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, farms, farmsCacheTTL); err != nil {
			s.log.Warn("failed to cache farms", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return farms, nil
}

// Read возвращает ферму пользователя по ID.
func (s *FarmService) Read(ctx context.Context, id int, userUID string) (*models.Farm, error) {
	farm, err := s.repo.GetFarm(ctx, id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, err
	}
	return farm, nil
}

// Update обновляет данные фермы пользователя и инвалидирует кэш списка.
func (s *FarmService) Update(ctx context.Context, userUID string, farm models.Farm) error {
	farm.UserUID = userUID
	affected, err := s.repo.UpdateFarm(ctx, farm)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFarmNotFound
	}

	s.invalidateList(userUID)
	return nil
}

// Remove удаляет ферму пользователя и инвалидирует кэш списка.
func (s *FarmService) Remove(ctx context.Context, id int, userUID string) error {
	affected, err := s.repo.RemoveFarm(ctx, id, userUID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFarmNotFound
	}

	s.invalidateList(userUID)
	return nil
}

func (s *FarmService) invalidateList(userUID string) {
	if s.cache == nil {
		return
	}
	cacheKey := farmsCacheKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate farms cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
