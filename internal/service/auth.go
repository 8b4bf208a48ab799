package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/search"
	"github.com/Skotchmaster/auth_service/pkg/hash"
	"github.com/Skotchmaster/auth_service/pkg/logging"
	"github.com/Skotchmaster/auth_service/pkg/tokens"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords, so a login response never reveals which one it was.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrConflict           = errors.New("username already registered")
	ErrValidation         = errors.New("username and password are required")
)

type AuthService struct {
	Repo   repo.UserRepository
	Codec  *tokens.Codec
	Events *events.Producer
	Index  *search.UserIndex
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Authenticate verifies username+password against the credential store.
// Disabled accounts still authenticate; the session gate is where they are
// turned away.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, err
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	accessToken, exp, err := s.Codec.Issue(user.Username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	if err := s.Events.Publish(ctx, events.TypeUserLogin, user.Username); err != nil {
		l.Warn("event_publish_failed", "event", events.TypeUserLogin, "error", err)
	}

	l.Info("login_successful")
	return &LoginResult{AccessToken: accessToken, ExpiresAt: exp}, nil
}

func (s *AuthService) Register(ctx context.Context, req models.User, password string) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", req.Username)

	if req.Username == "" || password == "" {
		return nil, ErrValidation
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: pwHash,
		Disabled:     false,
	}
	if err := s.Repo.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			l.Warn("register_failed", "status", 400, "reason", "username already registered")
			return nil, ErrConflict
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	public := user.Public()

	if err := s.Events.Publish(ctx, events.TypeUserRegistered, user.Username); err != nil {
		l.Warn("event_publish_failed", "event", events.TypeUserRegistered, "error", err)
	}
	if err := s.Index.IndexUser(ctx, public); err != nil {
		l.Warn("index_user_failed", "error", err)
	}

	l.Info("register_successful")
	return &public, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out, nil
}
