// Package router wires the Gin engine with routes and middlewares.
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/metrics"
	"github.com/parkos/parklot/internal/server/handlers"
	"github.com/parkos/parklot/internal/service/auth"
)

// TokenVerifier validates bearer tokens. *auth.Service satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Handlers bundles the route handlers the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Entries *handlers.EntriesHandler
	Shifts  *handlers.ShiftsHandler
	Ledgers *handlers.LedgersHandler
	Reports *handlers.ReportsHandler
	Rates   *handlers.RatesHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, verifier TokenVerifier, m *metrics.Metrics, registry *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(m.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("")
	authed.Use(authMiddleware(verifier, logger))
	{
		authed.GET("/entries", h.Entries.List)
		authed.POST("/entries", h.Entries.Register)
		authed.GET("/entries/:id", h.Entries.Get)
		authed.GET("/entries/:id/audit", h.Entries.Audit)
		authed.POST("/entries/:id/exit", h.Entries.Exit)

		authed.GET("/shifts/active", h.Shifts.Active)
		authed.POST("/shifts/start", h.Shifts.Start)
		authed.POST("/shifts/end", h.Shifts.End)
		authed.POST("/shifts/emergency-end", h.Shifts.EmergencyEnd)
		authed.POST("/shifts/handover", h.Shifts.Handover)
		authed.GET("/shifts/active/reconciliation", h.Shifts.Reconciliation)

		authed.GET("/shifts/active/expenses", h.Ledgers.ListExpenses)
		authed.POST("/shifts/active/expenses", h.Ledgers.AddExpense)
		authed.DELETE("/shifts/active/expenses/:id", h.Ledgers.DeleteExpense)
		authed.GET("/shifts/active/deposits", h.Ledgers.ListDeposits)
		authed.POST("/shifts/active/deposits", h.Ledgers.AddDeposit)

		authed.GET("/reports/daily", h.Reports.Daily)
		authed.GET("/reports/shift/:id", h.Reports.Shift)

		authed.GET("/rates", h.Rates.List)
		authed.PUT("/rates/:vehicleType", adminOnly(), h.Rates.Upsert)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func authMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		handlers.SetCaller(c, identity)
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := handlers.Caller(c)
		if identity == nil || identity.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
