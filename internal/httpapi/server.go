package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/knowshare/walletd/pkg/wallet"
	"go.uber.org/zap"
)

// Run boots the HTTP API using the supplied configuration and serves until
// the context is cancelled.
func Run(ctx context.Context, cfg Config, service *wallet.Service, logger *zap.Logger) error {
	handler := &httpHandler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}

	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("walletd listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", "Authorization", headerPaymentSignature},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/webhooks/payment", handler.handlePaymentWebhook)
	api.GET("/quests", handler.handleListQuests)

	authed := api.Group("")
	authed.Use(bearerAuth(cfg.JWTSigningKey))

	authed.GET("/wallet", handler.handleWallet)
	authed.POST("/wallet/charge", handler.handleCharge)
	authed.POST("/wallet/transfer", handler.handleTransfer)
	authed.POST("/articles/:id/premium", handler.handlePremiumUpgrade)
	authed.POST("/articles/:id/unlock", handler.handleUnlock)
	authed.POST("/articles/:id/suggestions", handler.handleSubmitSuggestion)
	authed.POST("/suggestions/:sid/review", handler.handleReviewSuggestion)
	authed.POST("/places/:id/hold", handler.handleCreateHold)
	authed.POST("/holds/:hid/submit", handler.handleSubmitHold)
	authed.POST("/holds/:hid/cancel", handler.handleCancelHold)
	authed.GET("/quests/progress", handler.handleQuestProgress)
	authed.POST("/quests/progress", handler.handleCompleteQuest)

	return router
}

type httpHandler struct {
	logger  *zap.Logger
	service *wallet.Service
	cfg     Config
}
