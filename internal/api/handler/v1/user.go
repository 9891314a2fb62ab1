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

type UserService interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) (domain.User, error)
}

type UserSubmissionService interface {
	UserSubmissions(ctx context.Context, userID string) ([]domain.Submission, error)
}

type UserHandler struct {
	svc    UserService
	ledger UserSubmissionService
}

func NewUserHandler(svc UserService, ledger UserSubmissionService) *UserHandler {
	return &UserHandler{
		svc:    svc,
		ledger: ledger,
	}
}

// HandleGetUsers godoc
// @Summary      List all users
// @Description  Admins only.
// @Tags         users
// @Produce      json
// @Success      200    {array}   domain.User
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetUsers(ctx *gin.Context) {
	users, err := h.svc.GetAllUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetUsers -> h.svc.GetAllUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleUpdateRole godoc
// @Summary      Change the role of a user
// @Description  Admins only.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userID  path      string  true  "User ID"
// @Param        input  body      request.UpdateRoleRequest  true  "New role"
// @Success      200    {object}  domain.User
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /users/{userID}/role [patch]
// @Security     BearerAuth
func (h *UserHandler) HandleUpdateRole(ctx *gin.Context) {
	var input request.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	userID := ctx.Param("userID")
	user, err := h.svc.UpdateUserRole(ctx.Request.Context(), userID, domain.Role(input.Role))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "id", userID))
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		err = fmt.Errorf("v1.HandleUpdateRole -> h.svc.UpdateUserRole -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleGetUserSubmissions godoc
// @Summary      List the submissions of a user
// @Description  Newest first. Users see their own, admins see anyone's.
// @Tags         users
// @Produce      json
// @Param        userID  path      string  true  "User ID"
// @Success      200    {array}   domain.Submission
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /users/{userID}/submissions [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetUserSubmissions(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID := ctx.Param("userID")
	if user.ID != userID && user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v cannot read submissions of %v", user.ID, userID)))
		return
	}

	subs, err := h.ledger.UserSubmissions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetUserSubmissions -> h.ledger.UserSubmissions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, subs)
}
