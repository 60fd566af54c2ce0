// Package api wires the gin router: route registration, middleware and the
// WebSocket upgrade endpoint.
package api

import (
	"log/slog"
	"net/http"

	"github.com/edevrim/pingpong/internal/api/handler"
	"github.com/edevrim/pingpong/internal/api/middleware"
	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/edevrim/pingpong/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps carries everything the router needs. All fields are required
// except Hub, which may be nil in tests that do not exercise WebSockets.
type RouterDeps struct {
	Cfg   *config.Config
	Store *league.Store
	Hub   *ws.Hub
	Clock clockwork.Clock
	Log   *slog.Logger
}

// NewRouter builds the gin engine with all routes registered.
//
// Reads are public. Mutations sit behind the shared-credential JWT login.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(deps.Log))
	r.Use(corsMiddleware(deps.Cfg.Server.AllowedOrigins))

	authHandler := handler.NewAuthHandler(deps.Cfg.Auth, deps.Clock, deps.Log)
	playerHandler := handler.NewPlayerHandler(deps.Store, deps.Log)
	matchHandler := handler.NewMatchHandler(deps.Store, deps.Log)
	betHandler := handler.NewBetHandler(deps.Store, deps.Cfg.League, deps.Clock, deps.Log)
	stateHandler := handler.NewStateHandler(deps.Store)

	// ── Operational endpoints ─────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	api := r.Group("/api")

	// ── Public reads ──────────────────────────────────────────────────────────
	api.GET("/state", stateHandler.Get)
	api.GET("/players", playerHandler.List)
	api.GET("/players/:id", playerHandler.Get)
	api.GET("/players/:id/win-probability", playerHandler.WinProbability)
	api.GET("/matches", matchHandler.List)
	api.GET("/matches/current", matchHandler.Current)
	api.GET("/bets", betHandler.List)

	// ── Login ─────────────────────────────────────────────────────────────────
	api.POST("/auth/login", middleware.RateLimit(5), authHandler.Login)

	// ── Mutations (authenticated) ─────────────────────────────────────────────
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.Cfg.Auth))
	authed.Use(middleware.RateLimit(30))
	{
		authed.POST("/players", playerHandler.Add)
		authed.DELETE("/players/:id", playerHandler.Delete)

		authed.POST("/matches", matchHandler.Create)
		authed.POST("/matches/:id/start", matchHandler.Start)
		authed.POST("/matches/:id/complete", matchHandler.Complete)
		authed.POST("/matches/:id/cancel", matchHandler.Cancel)
		authed.PUT("/matches/current", matchHandler.SetCurrent)

		authed.POST("/bets", betHandler.Place)
	}

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware handles preflight and response headers. An empty origin list
// reflects any origin, which suits local development.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (len(allowed) == 0 || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Max-Age", "3600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
