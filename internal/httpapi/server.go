// Package httpapi exposes the alert trigger and settings endpoints to internal callers.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/alert"
	"github.com/ykvlv/alert-relay-bot/internal/store"
)

// AlertSender is the dispatcher seen from the HTTP layer.
type AlertSender interface {
	SendAlert(ctx context.Context, userID string, payload json.RawMessage) (alert.Result, error)
}

// Options configures the router.
type Options struct {
	// APIKey, when non-empty, is required in the X-API-Key header of every /api request.
	APIKey string
}

// Handler serves the internal API.
type Handler struct {
	sender AlertSender
	repo   store.Repo
	log    *zap.Logger
	now    func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(sender AlertSender, repo store.Repo, log *zap.Logger) *Handler {
	return &Handler{
		sender: sender,
		repo:   repo,
		log:    log.Named("http"),
		now:    time.Now,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if opts.APIKey != "" {
		api.Use(apiKeyMiddleware(opts.APIKey))
	}
	{
		api.POST("/notify", h.Notify)
		api.GET("/user/settings", h.GetSettings)
		api.POST("/user/settings", h.UpdateSettings)
	}
	return r
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-API-Key")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing api key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
