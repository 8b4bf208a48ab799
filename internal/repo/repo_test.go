package repo

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/models"
)

func newGormRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection gets its own :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	return &GormRepo{DB: db}
}

func testUser(username string) *models.User {
	return &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: "x",
	}
}

func repoImplementations(t *testing.T) map[string]UserRepository {
	t.Helper()

	return map[string]UserRepository{
		"memory": NewMemoryRepo(),
		"gorm":   newGormRepo(t),
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	for name, r := range repoImplementations(t) {
		r := r
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			require.NoError(t, r.Create(ctx, testUser("alice")))

			got, err := r.Get(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Username)
			assert.Equal(t, "alice@example.com", got.Email)
			assert.False(t, got.Disabled)

			_, err = r.Get(ctx, "bob")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestUserRepository_DuplicateCreateRejected(t *testing.T) {
	t.Parallel()

	for name, r := range repoImplementations(t) {
		r := r
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			require.NoError(t, r.Create(ctx, testUser("alice")))

			err := r.Create(ctx, testUser("alice"))
			assert.ErrorIs(t, err, ErrUserAlreadyExists)

			users, err := r.List(ctx)
			require.NoError(t, err)
			assert.Len(t, users, 1)
		})
	}
}

func TestUserRepository_ListInsertionOrder(t *testing.T) {
	t.Parallel()

	for name, r := range repoImplementations(t) {
		r := r
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			for _, username := range []string{"carol", "alice", "bob"} {
				require.NoError(t, r.Create(ctx, testUser(username)))
			}

			users, err := r.List(ctx)
			require.NoError(t, err)
			require.Len(t, users, 3)
			assert.Equal(t, "carol", users[0].Username)
			assert.Equal(t, "alice", users[1].Username)
			assert.Equal(t, "bob", users[2].Username)
		})
	}
}

func TestUserRepository_SetDisabled(t *testing.T) {
	t.Parallel()

	for name, r := range repoImplementations(t) {
		r := r
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			require.NoError(t, r.Create(ctx, testUser("alice")))
			require.NoError(t, r.SetDisabled(ctx, "alice", true))

			got, err := r.Get(ctx, "alice")
			require.NoError(t, err)
			assert.True(t, got.Disabled)

			assert.ErrorIs(t, r.SetDisabled(ctx, "bob", true), ErrNotFound)
		})
	}
}

func TestMemoryRepo_ConcurrentCreateSameUsername(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepo()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Create(ctx, testUser("alice"))
		}()
	}
	wg.Wait()
	close(errs)

	var created, rejected int
	for err := range errs {
		switch {
		case err == nil:
			created++
		default:
			require.ErrorIs(t, err, ErrUserAlreadyExists)
			rejected++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, rejected)

	users, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestMemoryRepo_GetReturnsSnapshot(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, testUser("alice")))

	got, err := r.Get(ctx, "alice")
	require.NoError(t, err)
	got.Disabled = true

	again, err := r.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, again.Disabled)
}
