package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/auth_service/internal/models"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository is the credential store contract. Implementations must
// guarantee at most one record per username: of two concurrent Create calls
// with the same username exactly one succeeds and the other observes
// ErrUserAlreadyExists. List returns records in insertion order.
type UserRepository interface {
	Get(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	SetDisabled(ctx context.Context, username string, disabled bool) error
}
