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

type WalletService interface {
	GetWallet(ctx context.Context, userID string) (domain.Wallet, error)
	GetUserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID string, amount int, method domain.WithdrawalMethod) (domain.Transaction, error)
}

type WalletHandler struct {
	svc WalletService
}

func NewWalletHandler(svc WalletService) *WalletHandler {
	return &WalletHandler{
		svc: svc,
	}
}

// HandleGetWallet godoc
// @Summary      Wallet of the current user
// @Tags         wallet
// @Produce      json
// @Success      200    {object}  domain.Wallet
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /wallet [get]
// @Security     BearerAuth
func (h *WalletHandler) HandleGetWallet(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	wallet, err := h.svc.GetWallet(ctx.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "id", user.ID))
			return
		}
		err = fmt.Errorf("v1.HandleGetWallet -> h.svc.GetWallet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, wallet)
}

// HandleGetTransactions godoc
// @Summary      Transactions of the current user
// @Description  Newest first.
// @Tags         wallet
// @Produce      json
// @Success      200    {array}   domain.Transaction
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /wallet/transactions [get]
// @Security     BearerAuth
func (h *WalletHandler) HandleGetTransactions(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	transactions, err := h.svc.GetUserTransactions(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTransactions -> h.svc.GetUserTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// HandleRequestWithdrawal godoc
// @Summary      Request a withdrawal
// @Description  The amount is deducted from the score straight away and stays pending.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        input  body      request.WithdrawalRequest  true  "Withdrawal"
// @Success      201    {object}  domain.Transaction
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      422    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /wallet/withdrawals [post]
// @Security     BearerAuth
func (h *WalletHandler) HandleRequestWithdrawal(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.WithdrawalRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	t, err := h.svc.RequestWithdrawal(ctx.Request.Context(), user.ID, input.Amount, domain.WithdrawalMethod(input.Method))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBelowMinimum), errors.Is(err, service.ErrInsufficientBalance):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		case errors.Is(err, service.ErrInvalidMethod):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "id", user.ID))
		default:
			err = fmt.Errorf("v1.HandleRequestWithdrawal -> h.svc.RequestWithdrawal -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, t)
}
