package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/relaychat/relaychat-server/internal/auth"
	"github.com/relaychat/relaychat-server/internal/config"
	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/store"
)

// NewServer builds the HTTP server: the WebSocket chat endpoint plus the
// REST surface for auth, preferences and moderation.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	handlers := NewAPIHandlers(authService, st, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	authLimiter := newIPRateLimiter(rate.Limit(cfg.AuthRPS), cfg.AuthBurst)
	authGroup := router.Group("/api/auth", authLimiter.Middleware())
	{
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/login", handlers.Login)
	}

	me := router.Group("/api/me", AuthMiddleware(authService, logger))
	{
		me.PUT("/preferences", handlers.UpdatePreferences)
	}

	admin := router.Group("/api/admin", AdminMiddleware(cfg.AdminToken, logger))
	{
		admin.POST("/ban", handlers.Ban)
		admin.POST("/unban", handlers.Unban)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
