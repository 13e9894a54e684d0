package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"trkart/internal/config"
	"trkart/internal/db"
	"trkart/internal/middleware"
	"trkart/internal/repository"
	"trkart/internal/service"
	"trkart/internal/session"
)

// NewRouter creates and configures the HTTP router with all routes
// and middleware.
func NewRouter(
	database *db.DB,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *slog.Logger,
) http.Handler {
	customerRepo := repository.NewCustomerRepository(database)
	cardRepo := repository.NewCardRepository(database)
	idempotencyRepo := repository.NewIdempotencyRepository(database)
	sessionStore := session.NewRedisStore(redisClient, cfg.Session)

	authService := service.NewAuthService(customerRepo, sessionStore)
	cardService := service.NewCardService(cardRepo)
	feasibilityService := service.NewFeasibilityService(cardRepo)
	transactionService := service.NewTransactionService(database)

	handler := NewHandler(
		authService,
		cardService,
		feasibilityService,
		transactionService,
		storeHealth{db: database, redis: redisClient},
		cfg.Session,
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout)

	authed := v1.Group("")
	authed.Use(middleware.SessionAuth(authService, cfg.Session.CookieName, logger))
	authed.Use(middleware.Idempotency(idempotencyRepo, logger))

	authed.GET("/auth/session", handler.Session)

	authed.POST("/cards", handler.CreateCard)
	authed.GET("/cards", handler.ListCards)
	authed.GET("/cards/:cardId", handler.GetCard)
	authed.DELETE("/cards/:cardId", handler.DeleteCard)
	authed.GET("/cards/:cardId/balance", handler.GetCardBalance)
	authed.GET("/cards/:cardId/transactions", handler.ListCardTransactions)

	authed.POST("/transactions", handler.CreateTransaction)
	authed.POST("/transactions/check-feasibility", handler.CheckFeasibility)
	authed.GET("/transactions", handler.ListTransactions)

	authed.POST("/transfers", handler.CreateTransfer)

	return router
}

// requestLogger logs each request at debug with method, path, and
// status.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

// storeHealth pings both backing stores; the service is healthy only
// when postgres and redis both answer.
type storeHealth struct {
	db    *db.DB
	redis *redis.Client
}

func (s storeHealth) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}
