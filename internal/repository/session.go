package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository/dao"
)

var (
	ErrSessionNotFound = dao.ErrSessionNotFound
)

type SessionDAO interface {
	Save(ctx context.Context, session dao.Session, ttl time.Duration) error
	Find(ctx context.Context, userID string) (dao.Session, error)
	Refresh(ctx context.Context, user dao.User) error
	Delete(ctx context.Context, userID string) error
}

type SessionRepository struct {
	dao SessionDAO
	ttl time.Duration
}

func NewSessionRepository(dao SessionDAO, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		dao: dao,
		ttl: ttl,
	}
}

func (r *SessionRepository) Open(ctx context.Context, sessionID string, user domain.User, issuedAt time.Time) error {
	err := r.dao.Save(ctx, dao.Session{
		ID:       sessionID,
		User:     userDomainToDao(user),
		IssuedAt: issuedAt,
	}, r.ttl)
	if err != nil {
		return fmt.Errorf("r.dao.Save -> %w", err)
	}

	return nil
}

// Find returns the session id and the user snapshot stored for userID.
func (r *SessionRepository) Find(ctx context.Context, userID string) (string, domain.User, error) {
	session, err := r.dao.Find(ctx, userID)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return session.ID, userDaoToDomain(session.User), nil
}

func (r *SessionRepository) Refresh(ctx context.Context, user domain.User) error {
	if err := r.dao.Refresh(ctx, userDomainToDao(user)); err != nil {
		return fmt.Errorf("r.dao.Refresh -> %w", err)
	}

	return nil
}

func (r *SessionRepository) Close(ctx context.Context, userID string) error {
	if err := r.dao.Delete(ctx, userID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}
