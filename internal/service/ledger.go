package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository"
)

type LedgerChallengeRepository interface {
	FindByID(ctx context.Context, id string) (domain.Challenge, error)
}

type LedgerSubmissionRepository interface {
	RecordAttempt(ctx context.Context, sub domain.Submission, points int) (domain.SubmissionResult, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Submission, error)
	HasCorrect(ctx context.Context, userID, challengeID string) (bool, error)
}

type LedgerUserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// SolveNotifier is told about every credited first solve.
type SolveNotifier interface {
	NotifySolve(event domain.SolveEvent)
}

// LedgerService is the submission ledger: it logs every attempt and credits a
// (user, challenge) pair exactly once.
type LedgerService struct {
	challenges  LedgerChallengeRepository
	submissions LedgerSubmissionRepository
	users       LedgerUserRepository
	sessions    SessionRefresher
	notifier    SolveNotifier
	now         func() time.Time
}

func NewLedgerService(
	challenges LedgerChallengeRepository,
	submissions LedgerSubmissionRepository,
	users LedgerUserRepository,
	sessions SessionRefresher,
	notifier SolveNotifier,
) *LedgerService {
	return &LedgerService{
		challenges:  challenges,
		submissions: submissions,
		users:       users,
		sessions:    sessions,
		notifier:    notifier,
		now:         time.Now,
	}
}

// SubmitFlag checks rawFlag against the challenge and records the attempt. An unknown
// challenge yields ErrChallengeNotFound and nothing is recorded. A wrong flag is not an
// error: the result says Correct=false.
func (s *LedgerService) SubmitFlag(ctx context.Context, userID, challengeID, rawFlag string) (domain.SubmissionResult, error) {
	challenge, err := s.challenges.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, repository.ErrChallengeNotFound) {
			return domain.SubmissionResult{}, ErrChallengeNotFound
		}
		return domain.SubmissionResult{}, fmt.Errorf("s.challenges.FindByID -> %w", err)
	}

	flag := strings.TrimSpace(rawFlag)
	sub := domain.Submission{
		ID:          uuid.NewString(),
		UserID:      userID,
		ChallengeID: challenge.ID,
		Flag:        flag,
		Correct:     challenge.Flag == flag,
		SubmittedAt: s.now().UTC(),
	}

	res, err := s.submissions.RecordAttempt(ctx, sub, challenge.Points)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("s.submissions.RecordAttempt -> %w", err)
	}

	if res.Credited {
		s.afterCredit(ctx, challenge, res)
	}

	return res, nil
}

func (s *LedgerService) afterCredit(ctx context.Context, challenge domain.Challenge, res domain.SubmissionResult) {
	zap.L().Info("first solve credited",
		zap.String("user_id", res.Submission.UserID),
		zap.String("challenge_id", challenge.ID),
		zap.Int("points", challenge.Points),
		zap.Int("score", res.Score),
	)

	user, err := s.users.FindByID(ctx, res.Submission.UserID)
	if err != nil {
		zap.L().Warn("failed to load credited user", zap.String("user_id", res.Submission.UserID), zap.Error(err))
		return
	}

	refreshSession(ctx, s.sessions, user)

	if s.notifier != nil {
		s.notifier.NotifySolve(domain.SolveEvent{
			ChallengeID:    challenge.ID,
			ChallengeTitle: challenge.Title,
			UserID:         user.ID,
			Username:       user.Username,
			Points:         challenge.Points,
			SolvedAt:       res.Submission.SubmittedAt,
		})
	}
}

func (s *LedgerService) HasSolved(ctx context.Context, userID, challengeID string) (bool, error) {
	solved, err := s.submissions.HasCorrect(ctx, userID, challengeID)
	if err != nil {
		return false, fmt.Errorf("s.submissions.HasCorrect -> %w", err)
	}

	return solved, nil
}

// UserSubmissions returns every attempt by the user, newest first.
func (s *LedgerService) UserSubmissions(ctx context.Context, userID string) ([]domain.Submission, error) {
	subs, err := s.submissions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.submissions.FindByUserID -> %w", err)
	}

	return subs, nil
}
