package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository"
)

var (
	ErrUserEmailExists    = repository.ErrUserEmailExists
	ErrUserUsernameExists = repository.ErrUserUsernameExists
	ErrSessionNotFound    = repository.ErrSessionNotFound
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User, policy func(existing int64) domain.Role) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) (domain.User, error)
}

type SessionRepository interface {
	Open(ctx context.Context, sessionID string, user domain.User, issuedAt time.Time) error
	Find(ctx context.Context, userID string) (string, domain.User, error)
	Refresh(ctx context.Context, user domain.User) error
	Close(ctx context.Context, userID string) error
}

type AuthService struct {
	repo     AuthUserRepository
	sessions SessionRepository
	policy   func(existing int64) domain.Role
	now      func() time.Time
}

func NewAuthService(repo AuthUserRepository, sessions SessionRepository) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		policy:   BootstrapPolicy,
		now:      time.Now,
	}
}

// Signup creates the user and opens their session. There is no password: identity is the
// email address alone.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, string, error) {
	now := s.now().UTC()

	user.ID = uuid.NewString()
	user.Score = 0
	user.LoginCount = 1
	user.LastLogin = &now
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := s.repo.Create(ctx, user, s.policy)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.repo.Create -> %w", err)
	}

	sessionID, err := s.openSession(ctx, created, now)
	if err != nil {
		return domain.User{}, "", err
	}

	return created, sessionID, nil
}

func (s *AuthService) Login(ctx context.Context, email string) (domain.User, string, error) {
	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, "", ErrUserNotFound
		}
		return domain.User{}, "", fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	now := s.now().UTC()
	user, err := s.repo.RecordLogin(ctx, found.ID, now)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.repo.RecordLogin -> %w", err)
	}

	sessionID, err := s.openSession(ctx, user, now)
	if err != nil {
		return domain.User{}, "", err
	}

	return user, sessionID, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Close(ctx, userID); err != nil {
		return fmt.Errorf("s.sessions.Close -> %w", err)
	}

	return nil
}

// CurrentUser returns the session snapshot of userID if sessionID is still the open session.
func (s *AuthService) CurrentUser(ctx context.Context, userID, sessionID string) (domain.User, error) {
	openID, user, err := s.sessions.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domain.User{}, ErrSessionNotFound
		}
		return domain.User{}, fmt.Errorf("s.sessions.Find -> %w", err)
	}
	if openID != sessionID {
		return domain.User{}, ErrSessionNotFound
	}

	return user, nil
}

func (s *AuthService) openSession(ctx context.Context, user domain.User, at time.Time) (string, error) {
	sessionID := uuid.NewString()
	if err := s.sessions.Open(ctx, sessionID, user, at); err != nil {
		return "", fmt.Errorf("s.sessions.Open -> %w", err)
	}

	return sessionID, nil
}
