package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
	ErrInvalidRole  = errors.New("invalid role")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (domain.User, error)
}

// SessionRefresher rewrites the current-session snapshot after a user record changes.
type SessionRefresher interface {
	Refresh(ctx context.Context, user domain.User) error
}

type UserService struct {
	repo     UserRepository
	sessions SessionRefresher
}

func NewUserService(repo UserRepository, sessions SessionRefresher) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, id string, role domain.Role) (domain.User, error) {
	if !role.IsValid() {
		return domain.User{}, ErrInvalidRole
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateRole -> %w", err)
	}

	refreshSession(ctx, s.sessions, user)

	return user, nil
}

// refreshSession keeps the session snapshot in step with the stored user. The store is
// the source of truth, so a failed refresh is logged and not returned.
func refreshSession(ctx context.Context, sessions SessionRefresher, user domain.User) {
	if sessions == nil {
		return
	}
	if err := sessions.Refresh(ctx, user); err != nil {
		zap.L().Warn("failed to refresh session snapshot", zap.String("user_id", user.ID), zap.Error(err))
	}
}
