package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository"
)

var (
	ErrChallengeNotFound = repository.ErrChallengeNotFound
	ErrInvalidCategory   = errors.New("invalid challenge category")
	ErrEmptyFlag         = errors.New("challenge flag cannot be blank")
)

type ChallengeRepository interface {
	SeedIfEmpty(ctx context.Context, seeds []domain.Challenge) (bool, error)
	FindAll(ctx context.Context) ([]domain.Challenge, error)
	FindByID(ctx context.Context, id string) (domain.Challenge, error)
	Create(ctx context.Context, challenge domain.Challenge) (domain.Challenge, error)
	Update(ctx context.Context, challenge domain.Challenge) (domain.Challenge, error)
	Delete(ctx context.Context, id string) error
}

// ChallengeService is the challenge catalog.
type ChallengeService struct {
	repo   ChallengeRepository
	seeds  []domain.Challenge
	seeded atomic.Bool
	now    func() time.Time
}

// NewChallengeService returns a catalog that seeds itself with seeds the first time it is
// listed. Pass nil seeds to disable seeding.
func NewChallengeService(repo ChallengeRepository, seeds []domain.Challenge) *ChallengeService {
	return &ChallengeService{
		repo:  repo,
		seeds: seeds,
		now:   time.Now,
	}
}

// EnsureSeeded writes the default catalog if the store has never held a challenge.
func (s *ChallengeService) EnsureSeeded(ctx context.Context) error {
	if len(s.seeds) == 0 || s.seeded.Load() {
		return nil
	}

	seeded, err := s.repo.SeedIfEmpty(ctx, s.seeds)
	if err != nil {
		return fmt.Errorf("s.repo.SeedIfEmpty -> %w", err)
	}
	if seeded {
		zap.L().Info("seeded challenge catalog", zap.Int("count", len(s.seeds)))
	}
	s.seeded.Store(true)

	return nil
}

func (s *ChallengeService) List(ctx context.Context) ([]domain.Challenge, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	challenges, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return challenges, nil
}

func (s *ChallengeService) Get(ctx context.Context, id string) (domain.Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return challenge, nil
}

// Create assigns a fresh id, a zero solve count and the creation time.
func (s *ChallengeService) Create(ctx context.Context, challenge domain.Challenge, creatorID string) (domain.Challenge, error) {
	if !challenge.Category.IsValid() {
		return domain.Challenge{}, ErrInvalidCategory
	}

	now := s.now().UTC()
	challenge.ID = uuid.NewString()
	challenge.Flag = strings.TrimSpace(challenge.Flag)
	if challenge.Flag == "" {
		return domain.Challenge{}, ErrEmptyFlag
	}
	challenge.Solves = 0
	challenge.CreatedBy = creatorID
	challenge.CreatedAt = now
	challenge.UpdatedAt = now

	created, err := s.repo.Create(ctx, challenge)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ChallengeService) Update(ctx context.Context, id string, patch domain.ChallengePatch) (domain.Challenge, error) {
	if patch.Category != nil && !patch.Category.IsValid() {
		return domain.Challenge{}, ErrInvalidCategory
	}
	if patch.Flag != nil && strings.TrimSpace(*patch.Flag) == "" {
		return domain.Challenge{}, ErrEmptyFlag
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	merged := patch.Apply(current)
	merged.Flag = strings.TrimSpace(merged.Flag)

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
