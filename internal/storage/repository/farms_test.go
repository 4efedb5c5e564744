package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

func TestStorage_FarmCRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "asha", "asha@example.com", "9876543210", "hashedpassword", "user")
	otherUID := factory.CreateUser(t, "ravi", "ravi@example.com", "9876543211", "hashedpassword", "user")

	ctx := context.Background()

	id, err := storage.CreateFarm(ctx, models.Farm{
		UserUID:      uid,
		Name:         "Green Acres",
		Location:     "Pune",
		SizeHectares: 4.5,
		SoilType:     "loamy",
	})
	require.NoError(t, err)
	require.Greater(t, id, 0)

	farm, err := storage.GetFarm(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, "Green Acres", farm.Name)
	assert.InDelta(t, 4.5, farm.SizeHectares, 0.001)

	// Чужая ферма недоступна.
	_, err = storage.GetFarm(ctx, id, otherUID)
	assert.ErrorIs(t, err, ErrNotFound)

	farms, err := storage.ListFarms(ctx, uid)
	require.NoError(t, err)
	require.Len(t, farms, 1)

	farms, err = storage.ListFarms(ctx, otherUID)
	require.NoError(t, err)
	assert.Empty(t, farms)

	affected, err := storage.UpdateFarm(ctx, models.Farm{
		ID:           id,
		UserUID:      uid,
		Name:         "Green Acres North",
		Location:     "Pune",
		SizeHectares: 5.0,
		SoilType:     "loamy",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Обновление под чужим UID не затрагивает строк.
	affected, err = storage.UpdateFarm(ctx, models.Farm{
		ID:           id,
		UserUID:      otherUID,
		Name:         "Hijacked",
		Location:     "Nowhere",
		SizeHectares: 1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = storage.RemoveFarm(ctx, id, otherUID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = storage.RemoveFarm(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = storage.GetFarm(ctx, id, uid)
	assert.ErrorIs(t, err, ErrNotFound)
}
