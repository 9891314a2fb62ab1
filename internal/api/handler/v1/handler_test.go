package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuctf/vuctf-api/internal/api/handler/v1/response"
	"github.com/vuctf/vuctf-api/internal/api/middleware"
	"github.com/vuctf/vuctf-api/internal/config"
	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/pkg/jwthelper"
	"github.com/vuctf/vuctf-api/internal/service"
)

var (
	player   = domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
	admin    = domain.User{ID: "a1", Username: "root", Role: domain.RoleAdmin}
	author   = domain.User{ID: "c1", Username: "carol", Role: domain.RoleChallengeCreator}
	outsider = domain.User{ID: "c9", Username: "dave", Role: domain.RoleChallengeCreator}
)

func init() {
	gin.SetMode(gin.TestMode)
}

// as stands in for VerifyJWT.
func as(user domain.User) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUser, user)
		ctx.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

// ---- stubs

type stubChallenges struct {
	challenges map[string]domain.Challenge
	created    domain.Challenge
}

func (s *stubChallenges) List(context.Context) ([]domain.Challenge, error) {
	out := make([]domain.Challenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubChallenges) Get(_ context.Context, id string) (domain.Challenge, error) {
	c, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, fmt.Errorf("s.repo.FindByID -> %w", service.ErrChallengeNotFound)
	}
	return c, nil
}

func (s *stubChallenges) Create(_ context.Context, c domain.Challenge, creatorID string) (domain.Challenge, error) {
	c.ID = "new"
	c.CreatedBy = creatorID
	s.created = c
	return c, nil
}

func (s *stubChallenges) Update(_ context.Context, id string, patch domain.ChallengePatch) (domain.Challenge, error) {
	c, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, service.ErrChallengeNotFound
	}
	return patch.Apply(c), nil
}

func (s *stubChallenges) Delete(_ context.Context, id string) error {
	if _, ok := s.challenges[id]; !ok {
		return service.ErrChallengeNotFound
	}
	delete(s.challenges, id)
	return nil
}

type stubLedger struct {
	result domain.SubmissionResult
	err    error
	solved bool
}

func (s *stubLedger) SubmitFlag(context.Context, string, string, string) (domain.SubmissionResult, error) {
	return s.result, s.err
}

func (s *stubLedger) HasSolved(context.Context, string, string) (bool, error) {
	return s.solved, nil
}

func (s *stubLedger) UserSubmissions(_ context.Context, userID string) ([]domain.Submission, error) {
	return []domain.Submission{{ID: "s1", UserID: userID}}, nil
}

type stubSolves struct{}

func (stubSolves) ChallengeSolves(_ context.Context, id string) ([]domain.Solve, error) {
	if id != "c1" {
		return nil, service.ErrChallengeNotFound
	}
	return []domain.Solve{{UserID: "u1", Username: "alice"}}, nil
}

func challengeRouter(user domain.User, challenges *stubChallenges, ledger *stubLedger) *gin.Engine {
	h := NewChallengeHandler(challenges, ledger, stubSolves{})

	r := gin.New()
	g := r.Group("/challenges", as(user))
	g.GET("", h.HandleListChallenges)
	g.GET("/:challengeID", h.HandleGetChallenge)
	g.GET("/:challengeID/solves", h.HandleGetSolves)
	g.POST("/:challengeID/submit", h.HandleSubmitFlag)
	g.POST("", middleware.RequireRole(domain.RoleAdmin, domain.RoleChallengeCreator), h.HandleCreateChallenge)
	g.PATCH("/:challengeID", h.HandleUpdateChallenge)
	g.DELETE("/:challengeID", h.HandleDeleteChallenge)

	return r
}

func seededChallenges() *stubChallenges {
	return &stubChallenges{challenges: map[string]domain.Challenge{
		"c1": {ID: "c1", Title: "Web 1", Category: domain.CategoryWeb, Points: 100, Flag: "VU{one}", CreatedBy: "a1"},
	}}
}

// ---- challenges

func TestHandleListChallenges_RedactsFlagForPlayers(t *testing.T) {
	rec := doJSON(t, challengeRouter(player, seededChallenges(), &stubLedger{}), http.MethodGet, "/challenges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "VU{one}")

	rec = doJSON(t, challengeRouter(admin, seededChallenges(), &stubLedger{}), http.MethodGet, "/challenges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VU{one}")
}

func TestHandleGetChallenge(t *testing.T) {
	r := challengeRouter(player, seededChallenges(), &stubLedger{solved: true})

	rec := doJSON(t, r, http.MethodGet, "/challenges/c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body response.ChallengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "c1", body.ID)
	assert.True(t, body.Solved)
	assert.Empty(t, body.Flag)

	rec = doJSON(t, r, http.MethodGet, "/challenges/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSubmitFlag(t *testing.T) {
	tests := []struct {
		name       string
		ledger     *stubLedger
		body       any
		wantStatus int
		wantBody   string
	}{
		{
			name:       "incorrect is not an error",
			ledger:     &stubLedger{result: domain.SubmissionResult{Correct: false}},
			body:       map[string]string{"flag": "nope"},
			wantStatus: http.StatusOK,
			wantBody:   `"correct":false`,
		},
		{
			name:       "first solve",
			ledger:     &stubLedger{result: domain.SubmissionResult{Correct: true, Credited: true, Score: 100}},
			body:       map[string]string{"flag": "VU{one}"},
			wantStatus: http.StatusOK,
			wantBody:   `"credited":true`,
		},
		{
			name:       "unknown challenge",
			ledger:     &stubLedger{err: fmt.Errorf("wrapped -> %w", service.ErrChallengeNotFound)},
			body:       map[string]string{"flag": "VU{one}"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "empty flag",
			ledger:     &stubLedger{},
			body:       map[string]string{"flag": ""},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure",
			ledger:     &stubLedger{err: fmt.Errorf("connection reset")},
			body:       map[string]string{"flag": "VU{one}"},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, challengeRouter(player, seededChallenges(), tt.ledger), http.MethodPost, "/challenges/c1/submit", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandleCreateChallenge(t *testing.T) {
	body := map[string]any{
		"title":       "New",
		"description": "desc",
		"category":    "Misc",
		"points":      50,
		"flag":        "VU{new}",
	}

	challenges := seededChallenges()
	rec := doJSON(t, challengeRouter(admin, challenges, &stubLedger{}), http.MethodPost, "/challenges", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a1", challenges.created.CreatedBy)

	rec = doJSON(t, challengeRouter(player, seededChallenges(), &stubLedger{}), http.MethodPost, "/challenges", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body["flag"] = "   "
	rec = doJSON(t, challengeRouter(admin, seededChallenges(), &stubLedger{}), http.MethodPost, "/challenges", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body["flag"] = "VU{new}"
	body["category"] = "Hardware"
	rec = doJSON(t, challengeRouter(admin, seededChallenges(), &stubLedger{}), http.MethodPost, "/challenges", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateAndDeleteChallenge(t *testing.T) {
	r := challengeRouter(admin, seededChallenges(), &stubLedger{})

	rec := doJSON(t, r, http.MethodPatch, "/challenges/c1", map[string]any{"points": 150})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":150`)

	rec = doJSON(t, r, http.MethodPatch, "/challenges/c1", map[string]any{"points": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/challenges/c1", map[string]any{"flag": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/challenges/missing", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/challenges/c1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/challenges/c1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChallengeCreators_OnlyChangeTheirOwn(t *testing.T) {
	challenges := seededChallenges()
	challenges.challenges["c2"] = domain.Challenge{ID: "c2", Title: "Crypto 1", Category: domain.CategoryCrypto, Points: 250, Flag: "VU{two}", CreatedBy: author.ID}

	r := challengeRouter(outsider, challenges, &stubLedger{})

	rec := doJSON(t, r, http.MethodPatch, "/challenges/c1", map[string]any{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "VU{one}")

	rec = doJSON(t, r, http.MethodPatch, "/challenges/c1", map[string]any{"flag": "VU{mine}"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/challenges/c2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, challenges.challenges, "c2")

	rec = doJSON(t, r, http.MethodPatch, "/challenges/missing", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	r = challengeRouter(author, challenges, &stubLedger{})

	rec = doJSON(t, r, http.MethodPatch, "/challenges/c2", map[string]any{"points": 300})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VU{two}", "authors see their own flag")

	rec = doJSON(t, r, http.MethodDelete, "/challenges/c2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleGetSolves(t *testing.T) {
	r := challengeRouter(player, seededChallenges(), &stubLedger{})

	rec := doJSON(t, r, http.MethodGet, "/challenges/c1/solves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	rec = doJSON(t, r, http.MethodGet, "/challenges/c9/solves", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- wallet

type stubWallet struct {
	err error
}

func (s *stubWallet) GetWallet(_ context.Context, userID string) (domain.Wallet, error) {
	return domain.Wallet{UserID: userID, Score: 1500, AvailableBalance: 1500}, nil
}

func (s *stubWallet) GetUserTransactions(context.Context, string) ([]domain.Transaction, error) {
	return []domain.Transaction{}, nil
}

func (s *stubWallet) RequestWithdrawal(_ context.Context, userID string, amount int, method domain.WithdrawalMethod) (domain.Transaction, error) {
	if s.err != nil {
		return domain.Transaction{}, s.err
	}
	return domain.Transaction{ID: "t1", UserID: userID, Amount: amount, Method: method, Status: domain.TransactionPending}, nil
}

func walletRouter(svc WalletService) *gin.Engine {
	h := NewWalletHandler(svc)

	r := gin.New()
	g := r.Group("/wallet", as(player))
	g.GET("", h.HandleGetWallet)
	g.GET("/transactions", h.HandleGetTransactions)
	g.POST("/withdrawals", h.HandleRequestWithdrawal)

	return r
}

func TestHandleRequestWithdrawal(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       map[string]any
		wantStatus int
	}{
		{name: "ok", body: map[string]any{"amount": 1000, "method": "PayPal"}, wantStatus: http.StatusCreated},
		{name: "below minimum", err: service.ErrBelowMinimum, body: map[string]any{"amount": 10, "method": "PayPal"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "insufficient", err: service.ErrInsufficientBalance, body: map[string]any{"amount": 5000, "method": "Crypto"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad method", body: map[string]any{"amount": 1000, "method": "Cash"}, wantStatus: http.StatusBadRequest},
		{name: "missing amount", body: map[string]any{"method": "PayPal"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, walletRouter(&stubWallet{err: tt.err}), http.MethodPost, "/wallet/withdrawals", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleGetWallet(t *testing.T) {
	rec := doJSON(t, walletRouter(&stubWallet{}), http.MethodGet, "/wallet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"availableBalance":1500`)

	rec = doJSON(t, walletRouter(&stubWallet{}), http.MethodGet, "/wallet/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// ---- auth

type stubAuth struct {
	err error
}

func (s *stubAuth) Signup(_ context.Context, user domain.User) (domain.User, string, error) {
	if s.err != nil {
		return domain.User{}, "", s.err
	}
	user.ID = "u1"
	user.Role = domain.RoleAdmin
	return user, "session-1", nil
}

func (s *stubAuth) Login(_ context.Context, email string) (domain.User, string, error) {
	if s.err != nil {
		return domain.User{}, "", s.err
	}
	return domain.User{ID: "u1", Email: email}, "session-2", nil
}

func (s *stubAuth) Logout(context.Context, string) error {
	return s.err
}

func authRouter(svc AuthService) *gin.Engine {
	h := NewAuthHandler(&config.APIConfig{JWTSigningKey: "k"}, svc)

	r := gin.New()
	r.POST("/auth/signup", h.HandleSignup)
	r.POST("/auth/login", h.HandleLogin)
	r.POST("/auth/logout", as(player), h.HandleLogout)
	r.GET("/me", as(player), h.HandleMe)

	return r
}

func TestHandleSignup(t *testing.T) {
	rec := doJSON(t, authRouter(&stubAuth{}), http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice_01",
		"email":    "Alice@Example.com ",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body response.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.com", body.User.Email)

	claims, err := jwthelper.ParseToken([]byte("k"), body.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestHandleSignup_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       map[string]string
		wantStatus int
	}{
		{name: "email taken", err: service.ErrUserEmailExists, body: map[string]string{"username": "alice", "email": "a@example.com"}, wantStatus: http.StatusConflict},
		{name: "username taken", err: service.ErrUserUsernameExists, body: map[string]string{"username": "alice", "email": "a@example.com"}, wantStatus: http.StatusConflict},
		{name: "digits only username", body: map[string]string{"username": "12345", "email": "a@example.com"}, wantStatus: http.StatusBadRequest},
		{name: "bad email", body: map[string]string{"username": "alice", "email": "nope"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, authRouter(&stubAuth{err: tt.err}), http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	rec := doJSON(t, authRouter(&stubAuth{}), http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, authRouter(&stubAuth{err: service.ErrUserNotFound}), http.MethodPost, "/auth/login", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleLogoutAndMe(t *testing.T) {
	r := authRouter(&stubAuth{})

	rec := doJSON(t, r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	rec = doJSON(t, r, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// ---- users

type stubUsers struct{}

func (stubUsers) GetUser(_ context.Context, id string) (domain.User, error) {
	return domain.User{ID: id}, nil
}

func (stubUsers) GetAllUsers(context.Context) ([]domain.User, error) {
	return []domain.User{player, admin}, nil
}

func (stubUsers) UpdateUserRole(_ context.Context, id string, role domain.Role) (domain.User, error) {
	if id != player.ID {
		return domain.User{}, service.ErrUserNotFound
	}
	u := player
	u.Role = role
	return u, nil
}

func TestUserHandler(t *testing.T) {
	h := NewUserHandler(stubUsers{}, &stubLedger{})

	r := gin.New()
	r.GET("/users", as(admin), h.HandleGetUsers)
	r.PATCH("/users/:userID/role", as(admin), h.HandleUpdateRole)
	r.GET("/users/:userID/submissions", as(player), h.HandleGetUserSubmissions)

	rec := doJSON(t, r, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/users/u1/role", map[string]string{"role": "challenge_creator"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"challenge_creator"`)

	rec = doJSON(t, r, http.MethodPatch, "/users/u1/role", map[string]string{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/users/ghost/role", map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/users/u1/submissions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/users/a1/submissions", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleHealthcheck(t *testing.T) {
	r := gin.New()
	r.GET("/", HandleHealthcheck)

	rec := doJSON(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
