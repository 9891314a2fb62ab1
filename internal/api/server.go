package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vuctf/vuctf-api/docs"
	v1 "github.com/vuctf/vuctf-api/internal/api/handler/v1"
	"github.com/vuctf/vuctf-api/internal/api/middleware"
	"github.com/vuctf/vuctf-api/internal/config"
	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository"
	"github.com/vuctf/vuctf-api/internal/repository/dao"
	"github.com/vuctf/vuctf-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	Catalog *service.ChallengeService
	Wallet  *service.WalletService
	Feed    *v1.FeedHandler

	auth *service.AuthService
}

type repositories struct {
	users        *repository.UserRepository
	challenges   *repository.ChallengeRepository
	submissions  *repository.SubmissionRepository
	transactions *repository.TransactionRepository
	sessions     *repository.SessionRepository
}

func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	repos := repositories{
		users:        repository.NewUserRepository(dao.NewUserDAO(db)),
		challenges:   repository.NewChallengeRepository(dao.NewChallengeDAO(db)),
		submissions:  repository.NewSubmissionRepository(dao.NewSubmissionDAO(db)),
		transactions: repository.NewTransactionRepository(dao.NewTransactionDAO(db)),
		sessions:     repository.NewSessionRepository(dao.NewSessionDAO(rdb), conf.API.SessionTTL),
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(repos)
	userHandler := s.initUserHandler(repos)
	challengeHandler := s.initChallengeHandler(repos)
	leaderboardHandler := s.initLeaderboardHandler(repos)
	walletHandler := s.initWalletHandler(repos)
	s.MountHandlers(authHandler, userHandler, challengeHandler, leaderboardHandler, walletHandler)

	return s
}

func (s *Server) initAuthHandler(repos repositories) *v1.AuthHandler {
	s.auth = service.NewAuthService(repos.users, repos.sessions)
	handler := v1.NewAuthHandler(s.Config.API, s.auth)

	return handler
}

func (s *Server) initUserHandler(repos repositories) *v1.UserHandler {
	svc := service.NewUserService(repos.users, repos.sessions)
	ledger := service.NewLedgerService(repos.challenges, repos.submissions, repos.users, repos.sessions, nil)
	handler := v1.NewUserHandler(svc, ledger)

	return handler
}

func (s *Server) initChallengeHandler(repos repositories) *v1.ChallengeHandler {
	var seeds []domain.Challenge
	if s.Config.Catalog.SeedOnStart {
		seeds = service.DefaultChallenges()
	}

	s.Feed = v1.NewFeedHandler(s.Config.API.AllowedCORSDomains)
	s.Catalog = service.NewChallengeService(repos.challenges, seeds)
	ledger := service.NewLedgerService(repos.challenges, repos.submissions, repos.users, repos.sessions, s.Feed)
	stats := service.NewStatsService(repos.users, repos.challenges, repos.submissions)
	handler := v1.NewChallengeHandler(s.Catalog, ledger, stats)

	return handler
}

func (s *Server) initLeaderboardHandler(repos repositories) *v1.LeaderboardHandler {
	svc := service.NewStatsService(repos.users, repos.challenges, repos.submissions)
	handler := v1.NewLeaderboardHandler(svc)

	return handler
}

func (s *Server) initWalletHandler(repos repositories) *v1.WalletHandler {
	s.Wallet = service.NewWalletService(repos.users, repos.transactions, repos.sessions, service.WalletLimits{
		MinWithdrawal:  s.Config.Wallet.MinWithdrawal,
		ConversionRate: s.Config.Wallet.ConversionRate,
	})
	handler := v1.NewWalletHandler(s.Wallet)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	challengeHandler *v1.ChallengeHandler,
	leaderboardHandler *v1.LeaderboardHandler,
	walletHandler *v1.WalletHandler,
) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey, s.auth).VerifyJWT()
	canManage := middleware.RequireRole(domain.RoleAdmin, domain.RoleChallengeCreator)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	session := s.Router.Group(basePath, verifyJWT)
	{
		session.POST("/auth/logout", authHandler.HandleLogout)
		session.GET("/me", authHandler.HandleMe)
		session.GET("/feed", s.Feed.HandleFeed)
	}

	challenges := s.Router.Group(basePath+"/challenges", verifyJWT)
	{
		challenges.GET("", challengeHandler.HandleListChallenges)
		challenges.GET("/:challengeID", challengeHandler.HandleGetChallenge)
		challenges.GET("/:challengeID/solves", challengeHandler.HandleGetSolves)
		challenges.POST("/:challengeID/submit", challengeHandler.HandleSubmitFlag)
		challenges.POST("", canManage, challengeHandler.HandleCreateChallenge)
		challenges.PATCH("/:challengeID", canManage, challengeHandler.HandleUpdateChallenge)
		challenges.DELETE("/:challengeID", canManage, challengeHandler.HandleDeleteChallenge)
	}

	users := s.Router.Group(basePath+"/users", verifyJWT)
	{
		users.GET("", adminOnly, userHandler.HandleGetUsers)
		users.PATCH("/:userID/role", adminOnly, userHandler.HandleUpdateRole)
		users.GET("/:userID/stats", leaderboardHandler.HandleGetUserStats)
		users.GET("/:userID/submissions", userHandler.HandleGetUserSubmissions)
	}

	board := s.Router.Group(basePath, verifyJWT)
	{
		board.GET("/leaderboard", leaderboardHandler.HandleGetLeaderboard)
	}

	wallet := s.Router.Group(basePath+"/wallet", verifyJWT)
	{
		wallet.GET("", walletHandler.HandleGetWallet)
		wallet.GET("/transactions", walletHandler.HandleGetTransactions)
		wallet.POST("/withdrawals", walletHandler.HandleRequestWithdrawal)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "VU CTF API"
	docs.SwaggerInfo.Description = "Challenges, flag submissions, leaderboard and wallet of the VU CTF platform."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
