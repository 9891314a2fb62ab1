package domain

import "time"

type Submission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ChallengeID string    `json:"challengeId"`
	Flag        string    `json:"flag"`
	Correct     bool      `json:"correct"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SubmissionResult is the outcome of a flag submission.
// Credited is true only for the first correct submission of a (user, challenge) pair.
type SubmissionResult struct {
	Submission Submission `json:"submission"`
	Correct    bool       `json:"correct"`
	Credited   bool       `json:"credited"`
	Score      int        `json:"score"`
}

// Solve is one distinct solver of a challenge with the time of their first correct submission.
type Solve struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	SolvedAt time.Time `json:"solvedAt"`
}

// SolveEvent is broadcast on the live feed when a first solve is credited.
type SolveEvent struct {
	ChallengeID    string    `json:"challengeId"`
	ChallengeTitle string    `json:"challengeTitle"`
	UserID         string    `json:"userId"`
	Username       string    `json:"username"`
	Points         int       `json:"points"`
	SolvedAt       time.Time `json:"solvedAt"`
}
