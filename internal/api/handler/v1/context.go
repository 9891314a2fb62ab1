package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vuctf/vuctf-api/internal/api/handler/v1/response"
	"github.com/vuctf/vuctf-api/internal/api/middleware"
	"github.com/vuctf/vuctf-api/internal/domain"
)

var (
	errNoSession = errors.New("no authenticated user in context")
)

func getUserFromContext(ctx *gin.Context) (domain.User, *response.Err) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errNoSession)
	}

	return user, nil
}
