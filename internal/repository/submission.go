package repository

import (
	"context"
	"fmt"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository/dao"
)

type SubmissionDAO interface {
	RecordAttempt(ctx context.Context, sub dao.Submission, points int) (dao.AttemptResult, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Submission, error)
	FindCorrect(ctx context.Context) ([]dao.Submission, error)
	FindCorrectByChallengeID(ctx context.Context, challengeID string) ([]dao.Submission, error)
	HasCorrect(ctx context.Context, userID, challengeID string) (bool, error)
}

type SubmissionRepository struct {
	dao SubmissionDAO
}

func NewSubmissionRepository(dao SubmissionDAO) *SubmissionRepository {
	return &SubmissionRepository{
		dao: dao,
	}
}

// RecordAttempt stores the attempt and applies the first-solve credit atomically.
func (r *SubmissionRepository) RecordAttempt(ctx context.Context, sub domain.Submission, points int) (domain.SubmissionResult, error) {
	res, err := r.dao.RecordAttempt(ctx, submissionDomainToDao(sub), points)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("r.dao.RecordAttempt -> %w", err)
	}

	return domain.SubmissionResult{
		Submission: submissionDaoToDomain(res.Submission),
		Correct:    res.Submission.Correct,
		Credited:   res.Credited,
		Score:      res.Score,
	}, nil
}

func (r *SubmissionRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Submission, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return submissionsDaoToDomain(found), nil
}

func (r *SubmissionRepository) FindCorrect(ctx context.Context) ([]domain.Submission, error) {
	found, err := r.dao.FindCorrect(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCorrect -> %w", err)
	}

	return submissionsDaoToDomain(found), nil
}

func (r *SubmissionRepository) FindCorrectByChallengeID(ctx context.Context, challengeID string) ([]domain.Submission, error) {
	found, err := r.dao.FindCorrectByChallengeID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCorrectByChallengeID -> %w", err)
	}

	return submissionsDaoToDomain(found), nil
}

func (r *SubmissionRepository) HasCorrect(ctx context.Context, userID, challengeID string) (bool, error) {
	solved, err := r.dao.HasCorrect(ctx, userID, challengeID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasCorrect -> %w", err)
	}

	return solved, nil
}

func submissionsDaoToDomain(subs []dao.Submission) []domain.Submission {
	out := make([]domain.Submission, len(subs))
	for i, s := range subs {
		out[i] = submissionDaoToDomain(s)
	}
	return out
}

func submissionDaoToDomain(s dao.Submission) domain.Submission {
	return domain.Submission{
		ID:          s.ID,
		UserID:      s.UserID,
		ChallengeID: s.ChallengeID,
		Flag:        s.Flag,
		Correct:     s.Correct,
		SubmittedAt: s.SubmittedAt,
	}
}

func submissionDomainToDao(s domain.Submission) dao.Submission {
	return dao.Submission{
		ID:          s.ID,
		UserID:      s.UserID,
		ChallengeID: s.ChallengeID,
		Flag:        s.Flag,
		Correct:     s.Correct,
		SubmittedAt: s.SubmittedAt,
	}
}
