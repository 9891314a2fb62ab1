package request

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vuctf/vuctf-api/internal/domain"
)

var (
	errInvalidCategory = errors.New("unknown category")
)

type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	Flag        string `json:"flag"`
}

func (req *CreateChallengeRequest) Normalize() {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Flag = strings.TrimSpace(req.Flag)
}

func (req *CreateChallengeRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Required),
		validation.Field(&req.Category, validation.Required),
		validation.Field(&req.Points, validation.Required, validation.Min(1)),
		validation.Field(&req.Flag, validation.Required),
	)
	if err != nil {
		return err
	}

	if !domain.Category(req.Category).IsValid() {
		return errInvalidCategory
	}

	return nil
}

func (req *CreateChallengeRequest) ToDomain() domain.Challenge {
	return domain.Challenge{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Points:      req.Points,
		Flag:        req.Flag,
	}
}

// UpdateChallengeRequest only touches the fields that are present.
type UpdateChallengeRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Points      *int    `json:"points"`
	Flag        *string `json:"flag"`
}

func (req *UpdateChallengeRequest) Normalize() {
	trimPtr(req.Title)
	trimPtr(req.Description)
	trimPtr(req.Flag)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func (req *UpdateChallengeRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.NilOrNotEmpty),
		validation.Field(&req.Points, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.Flag, validation.NilOrNotEmpty),
	)
	if err != nil {
		return err
	}

	if req.Category != nil && !domain.Category(*req.Category).IsValid() {
		return errInvalidCategory
	}

	return nil
}

func (req *UpdateChallengeRequest) ToPatch() domain.ChallengePatch {
	patch := domain.ChallengePatch{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Flag:        req.Flag,
	}
	if req.Category != nil {
		c := domain.Category(*req.Category)
		patch.Category = &c
	}

	return patch
}

type SubmitFlagRequest struct {
	Flag string `json:"flag"`
}

func (req *SubmitFlagRequest) Normalize() {
	req.Flag = strings.TrimSpace(req.Flag)
}

func (req *SubmitFlagRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Flag, validation.Required, validation.Length(1, 500)),
	)
}
