package response

import "github.com/vuctf/vuctf-api/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type SubmitResponse struct {
	Correct  bool   `json:"correct"`
	Credited bool   `json:"credited"`
	Score    int    `json:"score"`
	Message  string `json:"message"`
}

type SolvedResponse struct {
	ChallengeID string `json:"challengeId"`
	Solved      bool   `json:"solved"`
}

type HealthcheckResponse struct {
	Status string `json:"status"`
}

type ChallengeResponse struct {
	domain.Challenge
	Solved bool `json:"solved"`
}

func NewSubmitResponse(res domain.SubmissionResult) SubmitResponse {
	out := SubmitResponse{
		Correct:  res.Correct,
		Credited: res.Credited,
		Score:    res.Score,
	}

	switch {
	case res.Credited:
		out.Message = "Correct! Points awarded."
	case res.Correct:
		out.Message = "Correct, but you already solved this challenge."
	default:
		out.Message = "Incorrect flag. Try again."
	}

	return out
}
