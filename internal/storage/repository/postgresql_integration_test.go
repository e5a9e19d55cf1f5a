package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-hub/internal/models"
)

func strPtr(s string) *string { return &s }

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	created, err := storage.CreateUser(context.Background(), models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashedpassword",
		RealName:     strPtr("Alice Liddell"),
		Status:       models.StatusEnabled,
	})
	require.NoError(t, err)

	assert.Positive(t, created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "Alice Liddell", *created.RealName)
	assert.Nil(t, created.Phone)
	assert.False(t, created.CreatedAt.IsZero())

	verification := NewTestVerification(storage)
	verification.VerifyUserExists(t, created.ID)
}

func TestStorage_CreateUser_UniqueViolations(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)

	tests := []struct {
		name    string
		user    models.User
		wantErr error
	}{
		{
			name:    "duplicate username",
			user:    models.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"},
			wantErr: ErrUsernameTaken,
		},
		{
			name:    "duplicate email",
			user:    models.User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.CreateUser(context.Background(), tt.user)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStorage_GetUserByID(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)

	got, err := storage.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = storage.GetUserByID(context.Background(), id+100)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_GetUserByUsername(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)

	got, err := storage.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = storage.GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_UpdateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)
	factory.CreateUser(t, "bob", "bob@example.com", models.StatusEnabled)

	current, err := storage.GetUserByID(context.Background(), id)
	require.NoError(t, err)

	current.Email = "new@example.com"
	current.Phone = strPtr("+123456")
	updated, err := storage.UpdateUser(context.Background(), current)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "+123456", *updated.Phone)
	assert.True(t, !updated.UpdatedAt.Before(updated.CreatedAt))

	// Занятая другим пользователем почта дает конфликт
	current.Email = "bob@example.com"
	_, err = storage.UpdateUser(context.Background(), current)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestStorage_UpdateUserStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)

	updated, err := storage.UpdateUserStatus(context.Background(), id, models.StatusDisabled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisabled, updated.Status)

	_, err = storage.UpdateUserStatus(context.Background(), id+100, models.StatusEnabled)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_DeleteUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)

	err := storage.DeleteUser(context.Background(), id)
	require.NoError(t, err)

	verification := NewTestVerification(storage)
	verification.VerifyUserRemoved(t, id)

	err = storage.DeleteUser(context.Background(), id)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_ListUsersPage(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	for i := 1; i <= 5; i++ {
		factory.CreateUser(t, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i), models.StatusEnabled)
	}

	got, err := storage.ListUsersPage(context.Background(), 2, 2, "username", true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Сортировка по убыванию: user5 user4 | user3 user2 | user1
	assert.Equal(t, "user3", got[0].Username)
	assert.Equal(t, "user2", got[1].Username)

	// Неизвестное поле сортировки заменяется на id
	got, err = storage.ListUsersPage(context.Background(), 10, 0, "password_hash; DROP TABLE users", false)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	total, err := storage.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestStorage_ListUsersByStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "active1", "a1@example.com", models.StatusEnabled)
	factory.CreateUser(t, "active2", "a2@example.com", models.StatusEnabled)
	factory.CreateUser(t, "blocked", "b1@example.com", models.StatusDisabled)

	got, err := storage.ListUsersByStatus(context.Background(), models.StatusEnabled, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	count, err := storage.CountUsersByStatus(context.Background(), models.StatusDisabled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStorage_SearchUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUserFull(t, models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "h",
		RealName:     strPtr("Alice Liddell"),
		Status:       models.StatusEnabled,
	})
	factory.CreateUserFull(t, models.User{
		Username:     "bob",
		Email:        "bob@wonder.land",
		PasswordHash: "h",
		RealName:     strPtr("Bob Builder"),
		Status:       models.StatusEnabled,
	})

	tests := []struct {
		name      string
		keyword   string
		wantCount int
	}{
		{name: "by username", keyword: "alice", wantCount: 1},
		{name: "by email domain", keyword: "wonder", wantCount: 1},
		{name: "by real name", keyword: "Liddell", wantCount: 1},
		{name: "no matches", keyword: "zzz", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.SearchUsers(context.Background(), tt.keyword, 10, 0)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)

			total, err := storage.CountSearchUsers(context.Background(), tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.wantCount), total)
		})
	}
}

func TestStorage_Exists(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "alice", "alice@example.com", models.StatusEnabled)

	taken, err := storage.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = storage.ExistsByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = storage.ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestStorage_CountUsersByStatuses(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "active1", "a1@example.com", models.StatusEnabled)
	factory.CreateUser(t, "active2", "a2@example.com", models.StatusEnabled)
	factory.CreateUser(t, "blocked", "b1@example.com", models.StatusDisabled)

	total, enabled, disabled, err := storage.CountUsersByStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), enabled)
	assert.Equal(t, int64(1), disabled)
}
