package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vuctf/vuctf-api/internal/api/handler/v1/response"
	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/service"
)

type StatsService interface {
	Leaderboard(ctx context.Context) (domain.Leaderboard, error)
	UserStats(ctx context.Context, userID string) (domain.UserStats, error)
}

type LeaderboardHandler struct {
	svc StatsService
}

func NewLeaderboardHandler(svc StatsService) *LeaderboardHandler {
	return &LeaderboardHandler{
		svc: svc,
	}
}

// HandleGetLeaderboard godoc
// @Summary      Ranked standings
// @Description  Ordered by score. Ties keep the order users are stored in.
// @Tags         leaderboard
// @Produce      json
// @Success      200    {object}  domain.Leaderboard
// @Failure      500    {object}  response.Err
// @Router       /leaderboard [get]
// @Security     BearerAuth
func (h *LeaderboardHandler) HandleGetLeaderboard(ctx *gin.Context) {
	board, err := h.svc.Leaderboard(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetLeaderboard -> h.svc.Leaderboard -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, board)
}

// HandleGetUserStats godoc
// @Summary      Profile statistics of a user
// @Tags         leaderboard
// @Produce      json
// @Param        userID  path      string  true  "User ID"
// @Success      200    {object}  domain.UserStats
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /users/{userID}/stats [get]
// @Security     BearerAuth
func (h *LeaderboardHandler) HandleGetUserStats(ctx *gin.Context) {
	userID := ctx.Param("userID")
	stats, err := h.svc.UserStats(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "id", userID))
			return
		}
		err = fmt.Errorf("v1.HandleGetUserStats -> h.svc.UserStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
