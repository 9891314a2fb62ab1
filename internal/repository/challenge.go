package repository

import (
	"context"
	"fmt"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository/dao"
)

var (
	ErrChallengeNotFound = dao.ErrChallengeNotFound
)

type ChallengeDAO interface {
	SeedIfEmpty(ctx context.Context, seeds []dao.Challenge) (bool, error)
	FindAll(ctx context.Context) ([]dao.Challenge, error)
	FindByID(ctx context.Context, id string) (dao.Challenge, error)
	Insert(ctx context.Context, challenge dao.Challenge) (dao.Challenge, error)
	Update(ctx context.Context, challenge dao.Challenge) (dao.Challenge, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type ChallengeRepository struct {
	dao ChallengeDAO
}

func NewChallengeRepository(dao ChallengeDAO) *ChallengeRepository {
	return &ChallengeRepository{
		dao: dao,
	}
}

func (r *ChallengeRepository) SeedIfEmpty(ctx context.Context, seeds []domain.Challenge) (bool, error) {
	daoSeeds := make([]dao.Challenge, len(seeds))
	for i, c := range seeds {
		daoSeeds[i] = challengeDomainToDao(c)
	}

	seeded, err := r.dao.SeedIfEmpty(ctx, daoSeeds)
	if err != nil {
		return false, fmt.Errorf("r.dao.SeedIfEmpty -> %w", err)
	}

	return seeded, nil
}

func (r *ChallengeRepository) FindAll(ctx context.Context) ([]domain.Challenge, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	challenges := make([]domain.Challenge, len(found))
	for i, c := range found {
		challenges[i] = challengeDaoToDomain(c)
	}

	return challenges, nil
}

func (r *ChallengeRepository) FindByID(ctx context.Context, id string) (domain.Challenge, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return challengeDaoToDomain(found), nil
}

func (r *ChallengeRepository) Create(ctx context.Context, challenge domain.Challenge) (domain.Challenge, error) {
	created, err := r.dao.Insert(ctx, challengeDomainToDao(challenge))
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return challengeDaoToDomain(created), nil
}

func (r *ChallengeRepository) Update(ctx context.Context, challenge domain.Challenge) (domain.Challenge, error) {
	updated, err := r.dao.Update(ctx, challengeDomainToDao(challenge))
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return challengeDaoToDomain(updated), nil
}

func (r *ChallengeRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ChallengeRepository) Count(ctx context.Context) (int, error) {
	count, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return int(count), nil
}

func challengeDaoToDomain(c dao.Challenge) domain.Challenge {
	return domain.Challenge{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    domain.Category(c.Category),
		Points:      c.Points,
		Flag:        c.Flag,
		Solves:      c.Solves,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func challengeDomainToDao(c domain.Challenge) dao.Challenge {
	return dao.Challenge{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    string(c.Category),
		Points:      c.Points,
		Flag:        c.Flag,
		Solves:      c.Solves,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
