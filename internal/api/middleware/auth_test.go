package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/pkg/jwthelper"
	"github.com/vuctf/vuctf-api/internal/service"
)

const testKey = "test-key"

type fakeSessions struct {
	users    map[string]domain.User
	sessions map[string]string
	err      error
}

func (f *fakeSessions) CurrentUser(_ context.Context, userID, sessionID string) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	if f.sessions[userID] != sessionID {
		return domain.User{}, service.ErrSessionNotFound
	}
	return f.users[userID], nil
}

func newRouter(sessions SessionResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := append([]gin.HandlerFunc{NewAuthenticator(testKey, sessions).VerifyJWT()}, extra...)
	handlers = append(handlers, func(ctx *gin.Context) {
		user, _ := CurrentUser(ctx)
		ctx.String(http.StatusOK, user.Username)
	})
	r.GET("/protected", handlers...)

	return r
}

func do(t *testing.T, r http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func token(t *testing.T, userID, sessionID string) string {
	t.Helper()

	tok, err := jwthelper.GenerateToken([]byte(testKey), userID, sessionID)
	require.NoError(t, err)

	return tok
}

func TestVerifyJWT(t *testing.T) {
	sessions := &fakeSessions{
		users:    map[string]domain.User{"u1": {ID: "u1", Username: "alice", Role: domain.RoleUser}},
		sessions: map[string]string{"u1": "s1"},
	}
	r := newRouter(sessions)

	t.Run("valid session", func(t *testing.T) {
		rec := do(t, r, token(t, "u1", "s1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do(t, r, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("replaced session", func(t *testing.T) {
		rec := do(t, r, token(t, "u1", "old"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		tok, err := jwthelper.GenerateToken([]byte("other"), "u1", "s1")
		require.NoError(t, err)

		rec := do(t, r, tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("query token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+token(t, "u1", "s1"), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVerifyJWT_StoreFailure(t *testing.T) {
	r := newRouter(&fakeSessions{err: errors.New("redis down")})

	rec := do(t, r, token(t, "u1", "s1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRole(t *testing.T) {
	sessions := &fakeSessions{
		users: map[string]domain.User{
			"u1": {ID: "u1", Username: "alice", Role: domain.RoleUser},
			"a1": {ID: "a1", Username: "root", Role: domain.RoleAdmin},
		},
		sessions: map[string]string{"u1": "s1", "a1": "s2"},
	}
	r := newRouter(sessions, RequireRole(domain.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, do(t, r, token(t, "u1", "s1")).Code)
	assert.Equal(t, http.StatusOK, do(t, r, token(t, "a1", "s2")).Code)
}
