package repo

import (
	"context"
	"sync"

	"github.com/Skotchmaster/auth_service/internal/models"
)

// MemoryRepo keeps users in process memory. Reads share an RWMutex read
// lock; writes are serialized, so duplicate registrations cannot race past
// the uniqueness check.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]models.User)}
}

func (r *MemoryRepo) Get(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return ErrUserAlreadyExists
	}
	user.ID = uint(len(r.order) + 1)
	r.users[user.Username] = *user
	r.order = append(r.order, user.Username)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.order))
	for _, username := range r.order {
		out = append(out, r.users[username])
	}
	return out, nil
}

func (r *MemoryRepo) SetDisabled(ctx context.Context, username string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return ErrNotFound
	}
	u.Disabled = disabled
	r.users[username] = u
	return nil
}
