package domain

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Affiliation string  `json:"affiliation,omitempty"`
	Score       int     `json:"score"`
	SolvedCount int     `json:"solvedCount"`
	Progress    float64 `json:"progress"`
}

type LeaderboardSummary struct {
	TotalUsers      int `json:"totalUsers"`
	AverageScore    int `json:"averageScore"`
	HighestScore    int `json:"highestScore"`
	TotalSolves     int `json:"totalSolves"`
	TotalChallenges int `json:"totalChallenges"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Summary LeaderboardSummary `json:"summary"`
}

type UserStats struct {
	UserID             string           `json:"userId"`
	Score              int              `json:"score"`
	TotalSolved        int              `json:"totalSolved"`
	TotalAttempts      int              `json:"totalAttempts"`
	SuccessRate        float64          `json:"successRate"`
	Progress           float64          `json:"progress"`
	CategoryBreakdown  map[Category]int `json:"categoryBreakdown"`
	SolvedChallengeIDs []string         `json:"solvedChallengeIds"`
}
