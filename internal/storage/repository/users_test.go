package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.CreateUser(ctx, models.User{
		Username:     "asha",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		PasswordHash: "hashedpassword",
		Role:         "user",
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	// Та же почта второй раз должна дать ErrEmailExists.
	_, err = storage.CreateUser(ctx, models.User{
		Username:     "asha2",
		Email:        "asha@example.com",
		Phone:        "9876543211",
		PasswordHash: "otherhash",
		Role:         "user",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestStorage_GetUserByEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "asha", "asha@example.com", "9876543210", "hashedpassword", "user")

	ctx := context.Background()

	user, err := storage.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, user.UID)
	assert.Equal(t, "asha", user.Username)
	assert.Equal(t, "hashedpassword", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = storage.GetUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_GetUserByUID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "asha", "asha@example.com", "9876543210", "hashedpassword", "user")

	ctx := context.Background()

	user, err := storage.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)

	_, err = storage.GetUserByUID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
