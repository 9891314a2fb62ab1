package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vuctf/vuctf-api/internal/domain"
)

const unknownUsername = "Unknown User"

type StatsUserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
}

type StatsChallengeRepository interface {
	FindAll(ctx context.Context) ([]domain.Challenge, error)
	FindByID(ctx context.Context, id string) (domain.Challenge, error)
}

type StatsSubmissionRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]domain.Submission, error)
	FindCorrect(ctx context.Context) ([]domain.Submission, error)
	FindCorrectByChallengeID(ctx context.Context, challengeID string) ([]domain.Submission, error)
}

// StatsService derives standings and statistics on demand. It stores nothing.
type StatsService struct {
	users       StatsUserRepository
	challenges  StatsChallengeRepository
	submissions StatsSubmissionRepository
}

func NewStatsService(users StatsUserRepository, challenges StatsChallengeRepository, submissions StatsSubmissionRepository) *StatsService {
	return &StatsService{
		users:       users,
		challenges:  challenges,
		submissions: submissions,
	}
}

func (s *StatsService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("s.users.FindAll -> %w", err)
	}

	challenges, err := s.challenges.FindAll(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("s.challenges.FindAll -> %w", err)
	}

	correct, err := s.submissions.FindCorrect(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("s.submissions.FindCorrect -> %w", err)
	}

	entries := RankUsers(users, SolvedByUser(correct, indexChallenges(challenges)), len(challenges))

	return domain.Leaderboard{
		Entries: entries,
		Summary: Summarize(entries, len(challenges)),
	}, nil
}

func (s *StatsService) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	challenges, err := s.challenges.FindAll(ctx)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.challenges.FindAll -> %w", err)
	}

	subs, err := s.submissions.FindByUserID(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.submissions.FindByUserID -> %w", err)
	}

	return BuildUserStats(user, subs, challenges), nil
}

// ChallengeSolves lists the distinct solvers of a challenge by first solve time.
func (s *StatsService) ChallengeSolves(ctx context.Context, challengeID string) ([]domain.Solve, error) {
	if _, err := s.challenges.FindByID(ctx, challengeID); err != nil {
		return nil, fmt.Errorf("s.challenges.FindByID -> %w", err)
	}

	correct, err := s.submissions.FindCorrectByChallengeID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("s.submissions.FindCorrectByChallengeID -> %w", err)
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.users.FindAll -> %w", err)
	}

	return FirstSolves(correct, users), nil
}

// SolvedByUser maps each user to the set of live challenges they solved. Submissions whose
// challenge no longer resolves are skipped.
func SolvedByUser(subs []domain.Submission, challenges map[string]domain.Challenge) map[string]map[string]struct{} {
	solved := make(map[string]map[string]struct{})
	for _, sub := range subs {
		if !sub.Correct {
			continue
		}
		if _, ok := challenges[sub.ChallengeID]; !ok {
			continue
		}
		if solved[sub.UserID] == nil {
			solved[sub.UserID] = make(map[string]struct{})
		}
		solved[sub.UserID][sub.ChallengeID] = struct{}{}
	}
	return solved
}

// Progress is the solved share of the catalog as a percentage, 0 for an empty catalog.
func Progress(solved, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(solved) / float64(total) * 100
}

// RankUsers orders users by score, highest first. Equal scores keep their input order.
func RankUsers(users []domain.User, solved map[string]map[string]struct{}, totalChallenges int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, len(users))
	for i, u := range users {
		count := len(solved[u.ID])
		entries[i] = domain.LeaderboardEntry{
			UserID:      u.ID,
			Username:    u.Username,
			Affiliation: u.Affiliation,
			Score:       u.Score,
			SolvedCount: count,
			Progress:    Progress(count, totalChallenges),
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

func Summarize(entries []domain.LeaderboardEntry, totalChallenges int) domain.LeaderboardSummary {
	summary := domain.LeaderboardSummary{
		TotalUsers:      len(entries),
		TotalChallenges: totalChallenges,
	}
	if len(entries) == 0 {
		return summary
	}

	total := 0
	for _, e := range entries {
		total += e.Score
		summary.TotalSolves += e.SolvedCount
		if e.Score > summary.HighestScore {
			summary.HighestScore = e.Score
		}
	}
	summary.AverageScore = int(math.Round(float64(total) / float64(len(entries))))

	return summary
}

// BuildUserStats folds one user's submissions into profile statistics.
func BuildUserStats(user domain.User, subs []domain.Submission, challenges []domain.Challenge) domain.UserStats {
	byID := indexChallenges(challenges)
	solved := SolvedByUser(subs, byID)[user.ID]

	breakdown := make(map[domain.Category]int)
	ids := make([]string, 0, len(solved))
	for id := range solved {
		breakdown[byID[id].Category]++
		ids = append(ids, id)
	}
	sort.Strings(ids)

	stats := domain.UserStats{
		UserID:             user.ID,
		Score:              user.Score,
		TotalSolved:        len(solved),
		TotalAttempts:      len(subs),
		Progress:           Progress(len(solved), len(challenges)),
		CategoryBreakdown:  breakdown,
		SolvedChallengeIDs: ids,
	}
	if len(subs) > 0 {
		stats.SuccessRate = float64(stats.TotalSolved) / float64(len(subs)) * 100
	}

	return stats
}

// FirstSolves keeps the earliest correct submission per user, sorted by that time.
func FirstSolves(correct []domain.Submission, users []domain.User) []domain.Solve {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	first := make(map[string]domain.Solve)
	for _, sub := range correct {
		if !sub.Correct {
			continue
		}
		if prev, ok := first[sub.UserID]; ok && !sub.SubmittedAt.Before(prev.SolvedAt) {
			continue
		}
		name, ok := names[sub.UserID]
		if !ok {
			name = unknownUsername
		}
		first[sub.UserID] = domain.Solve{UserID: sub.UserID, Username: name, SolvedAt: sub.SubmittedAt}
	}

	solves := make([]domain.Solve, 0, len(first))
	for _, solve := range first {
		solves = append(solves, solve)
	}
	sort.Slice(solves, func(i, j int) bool {
		if solves[i].SolvedAt.Equal(solves[j].SolvedAt) {
			return solves[i].UserID < solves[j].UserID
		}
		return solves[i].SolvedAt.Before(solves[j].SolvedAt)
	})

	return solves
}

func indexChallenges(challenges []domain.Challenge) map[string]domain.Challenge {
	byID := make(map[string]domain.Challenge, len(challenges))
	for _, c := range challenges {
		byID[c.ID] = c
	}
	return byID
}
