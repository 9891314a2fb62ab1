package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vuctf/vuctf-api/internal/api/handler/v1/response"
	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/pkg/jwthelper"
	"github.com/vuctf/vuctf-api/internal/service"
)

const (
	ContextKeyUser      = "user"
	ContextKeySessionID = "session_id"

	bearerPrefix = "Bearer "
)

var (
	errMissingToken = errors.New("missing bearer token")
	errForbidden    = errors.New("insufficient role")
)

type SessionResolver interface {
	CurrentUser(ctx context.Context, userID, sessionID string) (domain.User, error)
}

type Authenticator struct {
	signingKey []byte
	sessions   SessionResolver
}

func NewAuthenticator(signingKey string, sessions SessionResolver) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
		sessions:   sessions,
	}
}

// VerifyJWT checks the bearer token and loads the open session of its user into the
// gin context. Websocket clients may pass the token as the "token" query parameter.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx)
		if tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		user, err := a.sessions.CurrentUser(ctx.Request.Context(), claims.UserID, claims.SessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}
			err = fmt.Errorf("middleware.VerifyJWT -> a.sessions.CurrentUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.Set(ContextKeyUser, user)
		ctx.Set(ContextKeySessionID, claims.SessionID)
		ctx.Next()
	}
}

// RequireRole must run after VerifyJWT.
func RequireRole(allowed ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		for _, role := range allowed {
			if user.Role == role {
				ctx.Next()
				return
			}
		}

		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("%w: %s", errForbidden, user.Role)))
	}
}

func CurrentUser(ctx *gin.Context) (domain.User, bool) {
	value, ok := ctx.Get(ContextKeyUser)
	if !ok {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)

	return user, ok
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}

	return ctx.Query("token")
}
