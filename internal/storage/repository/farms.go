package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

// CreateFarm сохраняет новую ферму и возвращает её ID.
func (s *Storage) CreateFarm(ctx context.Context, farm models.Farm) (int, error) {
	const op = "storage.CreateFarm"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO farms (user_uid, name, location, size_hectares, soil_type)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		farm.UserUID, farm.Name, farm.Location, farm.SizeHectares, farm.SoilType).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListFarms возвращает все фермы пользователя.
func (s *Storage) ListFarms(ctx context.Context, userUID string) ([]*models.Farm, error) {
	const op = "storage.ListFarms"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, location, size_hectares, soil_type, created_at
			  FROM farms
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Farm
	for rows.Next() {
		var f models.Farm
		if err = rows.Scan(&f.ID, &f.UserUID, &f.Name, &f.Location,
			&f.SizeHectares, &f.SoilType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetFarm возвращает ферму по ID, только если она принадлежит пользователю.
func (s *Storage) GetFarm(ctx context.Context, id int, userUID string) (*models.Farm, error) {
	const op = "storage.GetFarm"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, location, size_hectares, soil_type, created_at
			  FROM farms
			  WHERE id = $1 AND user_uid = $2`
	f := &models.Farm{}
	row := s.DB.QueryRowContext(ctx, query, id, userUID)
	if err := row.Scan(&f.ID, &f.UserUID, &f.Name, &f.Location,
		&f.SizeHectares, &f.SoilType, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// UpdateFarm обновляет данные фермы пользователя, возвращает число затронутых строк.
func (s *Storage) UpdateFarm(ctx context.Context, farm models.Farm) (int64, error) {
	const op = "storage.UpdateFarm"

	result, err := s.DB.ExecContext(ctx, `
		UPDATE farms
		SET name = $1, location = $2, size_hectares = $3, soil_type = $4
		WHERE id = $5 AND user_uid = $6`,
		farm.Name, farm.Location, farm.SizeHectares, farm.SoilType, farm.ID, farm.UserUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// RemoveFarm удаляет ферму пользователя, возвращает число затронутых строк.
func (s *Storage) RemoveFarm(ctx context.Context, id int, userUID string) (int64, error) {
	const op = "storage.RemoveFarm"

	result, err := s.DB.ExecContext(ctx, `
		DELETE FROM farms WHERE id = $1 AND user_uid = $2`, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
