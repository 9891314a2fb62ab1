package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository/dao"
)

var (
	ErrUserEmailExists    = dao.ErrUserEmailExists
	ErrUserUsernameExists = dao.ErrUserUsernameExists
	ErrUserNotFound       = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User, policy dao.RolePolicy) (dao.User, error)
	FindByID(ctx context.Context, id string) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindAll(ctx context.Context) ([]dao.User, error)
	UpdateRole(ctx context.Context, id string, role string) (dao.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

// Create inserts the user; policy assigns the role from the number of existing users.
func (r *UserRepository) Create(ctx context.Context, user domain.User, policy func(existing int64) domain.Role) (domain.User, error) {
	created, err := r.dao.Insert(ctx, userDomainToDao(user), func(existing int64) string {
		return string(policy(existing))
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return userDaoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return userDaoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return userDaoToDomain(found), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	users := make([]domain.User, len(found))
	for i, u := range found {
		users[i] = userDaoToDomain(u)
	}

	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (domain.User, error) {
	updated, err := r.dao.UpdateRole(ctx, id, string(role))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.UpdateRole -> %w", err)
	}

	return userDaoToDomain(updated), nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id string, at time.Time) (domain.User, error) {
	updated, err := r.dao.RecordLogin(ctx, id, at)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.RecordLogin -> %w", err)
	}

	return userDaoToDomain(updated), nil
}

func userDaoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        domain.Role(u.Role),
		Score:       u.Score,
		Affiliation: u.Affiliation,
		IPAddress:   u.IPAddress,
		Location:    u.Location,
		LastLogin:   u.LastLogin,
		LoginCount:  u.LoginCount,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func userDomainToDao(u domain.User) dao.User {
	return dao.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		Score:       u.Score,
		Affiliation: u.Affiliation,
		IPAddress:   u.IPAddress,
		Location:    u.Location,
		LastLogin:   u.LastLogin,
		LoginCount:  u.LoginCount,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
