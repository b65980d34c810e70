// Package webhook serves the Dialogflow fulfillment endpoint and routes
// each call to the matching order operation.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/eaterybot/eatery/internal/ledger"
	"github.com/eaterybot/eatery/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the webhook server.
type StartOpts struct {
	DB     *gorm.DB
	Ledger *ledger.Ledger
	Port   int
	Logger *zap.Logger
}

// Start launches the webhook HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("webhook: db is required")
	}
	if opts.Ledger == nil {
		return fmt.Errorf("webhook: ledger is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(opts.DB, opts.Ledger, opts.Logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	opts.Logger.Info("webhook server listening", zap.Int("port", opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// newRouter builds the Gin engine with middleware and routes.
func newRouter(db *gorm.DB, l *ledger.Ledger, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	h := &handler{
		ledger: l,
		store:  store.New(db, log),
		log:    log,
	}

	// Dialogflow agents are commonly pointed at the bare root, so both
	// paths serve the same handler.
	router.POST("/", h.handleWebhook)
	router.POST("/webhook", h.handleWebhook)
	router.GET("/healthz", handleHealthz)
	return router
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)

		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
