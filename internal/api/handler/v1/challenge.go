package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vuctf/vuctf-api/internal/api/handler/v1/request"
	"github.com/vuctf/vuctf-api/internal/api/handler/v1/response"
	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/service"
)

type ChallengeService interface {
	List(ctx context.Context) ([]domain.Challenge, error)
	Get(ctx context.Context, id string) (domain.Challenge, error)
	Create(ctx context.Context, challenge domain.Challenge, creatorID string) (domain.Challenge, error)
	Update(ctx context.Context, id string, patch domain.ChallengePatch) (domain.Challenge, error)
	Delete(ctx context.Context, id string) error
}

type SubmissionService interface {
	SubmitFlag(ctx context.Context, userID, challengeID, rawFlag string) (domain.SubmissionResult, error)
	HasSolved(ctx context.Context, userID, challengeID string) (bool, error)
	UserSubmissions(ctx context.Context, userID string) ([]domain.Submission, error)
}

type SolvesService interface {
	ChallengeSolves(ctx context.Context, challengeID string) ([]domain.Solve, error)
}

type ChallengeHandler struct {
	svc    ChallengeService
	ledger SubmissionService
	stats  SolvesService
}

func NewChallengeHandler(svc ChallengeService, ledger SubmissionService, stats SolvesService) *ChallengeHandler {
	return &ChallengeHandler{
		svc:    svc,
		ledger: ledger,
		stats:  stats,
	}
}

// canSeeFlag is true for admins and for the author of the challenge.
func canSeeFlag(user domain.User, challenge domain.Challenge) bool {
	return user.Role == domain.RoleAdmin ||
		(user.Role == domain.RoleChallengeCreator && challenge.CreatedBy == user.ID)
}

var (
	errNotAuthor = errors.New("only the author or an admin can change this challenge")
)

func present(user domain.User, challenge domain.Challenge) domain.Challenge {
	if canSeeFlag(user, challenge) {
		return challenge
	}
	return challenge.Redacted()
}

// HandleListChallenges godoc
// @Summary      List challenges
// @Description  Seeds the default catalog on first use. Flags are hidden from players.
// @Tags         challenges
// @Produce      json
// @Success      200    {array}   domain.Challenge
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges [get]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleListChallenges(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	challenges, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListChallenges -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	out := make([]domain.Challenge, len(challenges))
	for i, c := range challenges {
		out[i] = present(user, c)
	}

	ctx.JSON(http.StatusOK, out)
}

// HandleGetChallenge godoc
// @Summary      Get a challenge
// @Tags         challenges
// @Produce      json
// @Param        challengeID  path      string  true  "Challenge ID"
// @Success      200    {object}  response.ChallengeResponse
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges/{challengeID} [get]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleGetChallenge(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	challengeID := ctx.Param("challengeID")
	challenge, err := h.svc.Get(ctx.Request.Context(), challengeID)
	if err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("challenge", "id", challengeID))
			return
		}
		err = fmt.Errorf("v1.HandleGetChallenge -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	solved, err := h.ledger.HasSolved(ctx.Request.Context(), user.ID, challengeID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetChallenge -> h.ledger.HasSolved -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ChallengeResponse{
		Challenge: present(user, challenge),
		Solved:    solved,
	})
}

// HandleCreateChallenge godoc
// @Summary      Create a challenge
// @Description  Admins and challenge creators only.
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateChallengeRequest  true  "Challenge"
// @Success      201    {object}  domain.Challenge
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges [post]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleCreateChallenge(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreateChallengeRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	challenge, err := h.svc.Create(ctx.Request.Context(), input.ToDomain(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrEmptyFlag) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		err = fmt.Errorf("v1.HandleCreateChallenge -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, present(user, challenge))
}

// HandleUpdateChallenge godoc
// @Summary      Update a challenge
// @Description  Only the fields present in the body change. The solve count is never touched. Creators may only change their own challenges.
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Param        challengeID  path      string  true  "Challenge ID"
// @Param        input  body      request.UpdateChallengeRequest  true  "Fields to change"
// @Success      200    {object}  domain.Challenge
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges/{challengeID} [patch]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleUpdateChallenge(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.UpdateChallengeRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	challengeID := ctx.Param("challengeID")
	if respErr := h.requireAuthor(ctx, user, challengeID); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	challenge, err := h.svc.Update(ctx.Request.Context(), challengeID, input.ToPatch())
	if err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("challenge", "id", challengeID))
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrEmptyFlag) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		err = fmt.Errorf("v1.HandleUpdateChallenge -> h.svc.Update -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, present(user, challenge))
}

// HandleDeleteChallenge godoc
// @Summary      Delete a challenge
// @Description  Soft delete. Earlier submissions are kept. Creators may only delete their own challenges.
// @Tags         challenges
// @Param        challengeID  path      string  true  "Challenge ID"
// @Success      204
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges/{challengeID} [delete]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleDeleteChallenge(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	challengeID := ctx.Param("challengeID")
	if respErr := h.requireAuthor(ctx, user, challengeID); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), challengeID); err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("challenge", "id", challengeID))
			return
		}
		err = fmt.Errorf("v1.HandleDeleteChallenge -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// requireAuthor lets admins through and limits challenge creators to their own challenges.
func (h *ChallengeHandler) requireAuthor(ctx *gin.Context, user domain.User, challengeID string) *response.Err {
	if user.Role == domain.RoleAdmin {
		return nil
	}

	challenge, err := h.svc.Get(ctx.Request.Context(), challengeID)
	if err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			return response.ErrNotFound("challenge", "id", challengeID)
		}
		err = fmt.Errorf("v1.requireAuthor -> h.svc.Get -> %w", err)
		return response.ErrInternalServerError(err)
	}

	if challenge.CreatedBy != user.ID {
		return response.ErrPermissionDenied(errNotAuthor)
	}

	return nil
}

// HandleSubmitFlag godoc
// @Summary      Submit a flag
// @Description  A wrong flag is a 200 with correct=false. Points are credited once per challenge.
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Param        challengeID  path      string  true  "Challenge ID"
// @Param        input  body      request.SubmitFlagRequest  true  "Flag"
// @Success      200    {object}  response.SubmitResponse
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges/{challengeID}/submit [post]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleSubmitFlag(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.SubmitFlagRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	challengeID := ctx.Param("challengeID")
	res, err := h.ledger.SubmitFlag(ctx.Request.Context(), user.ID, challengeID, input.Flag)
	if err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("challenge", "id", challengeID))
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "id", user.ID))
			return
		}
		err = fmt.Errorf("v1.HandleSubmitFlag -> h.ledger.SubmitFlag -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewSubmitResponse(res))
}

// HandleGetSolves godoc
// @Summary      List the solvers of a challenge
// @Tags         challenges
// @Produce      json
// @Param        challengeID  path      string  true  "Challenge ID"
// @Success      200    {array}   domain.Solve
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /challenges/{challengeID}/solves [get]
// @Security     BearerAuth
func (h *ChallengeHandler) HandleGetSolves(ctx *gin.Context) {
	challengeID := ctx.Param("challengeID")
	solves, err := h.stats.ChallengeSolves(ctx.Request.Context(), challengeID)
	if err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("challenge", "id", challengeID))
			return
		}
		err = fmt.Errorf("v1.HandleGetSolves -> h.stats.ChallengeSolves -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, solves)
}
