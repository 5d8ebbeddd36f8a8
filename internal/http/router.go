// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS, and
// rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The webhook path stays lean: no CORS, no rate limiting, no gzip.
//     The platform is the only caller and always gets an acknowledgment
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/bcmerchant/line-bot-backend/internal/ai"
	"github.com/bcmerchant/line-bot-backend/internal/config"
	"github.com/bcmerchant/line-bot-backend/internal/http/handlers"
	"github.com/bcmerchant/line-bot-backend/internal/http/middleware"
	"github.com/bcmerchant/line-bot-backend/internal/line"
	"github.com/bcmerchant/line-bot-backend/internal/services"
)

// Deps carries the externally constructed dependencies the router wires
// into services and handlers.
type Deps struct {
	DB        *gorm.DB
	Sender    line.Sender
	Generator ai.Generator
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), the webhook endpoint, and the
// versioned operator API with CORS, gzip, and rate limiting.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/clients
	directory := services.NewUserDirectory(deps.DB, services.NewUserRepo())
	conversations := services.NewConversationStore(deps.DB)
	registrations := services.NewRegistrationService(deps.DB)
	responder := &services.Responder{
		Sender:        deps.Sender,
		Generator:     deps.Generator,
		Directory:     directory,
		Conversations: conversations,
		Registrations: registrations,
		Replies:       services.NewReplies(language.Thai),
		Log:           log.With().Str("component", "responder").Logger(),
		HistoryLimit:  cfg.HistoryLimit,
	}

	wh := handlers.NewWebhookHandler(cfg.LINE.ChannelSecret, cfg.LINE.StrictSignature, responder)
	admin := handlers.NewAdminHandlers(directory, conversations)
	send := handlers.NewSendHandlers(deps.Sender)

	// Platform-facing webhook (always acknowledges; see handler contract)
	r.POST("/webhook", wh.Handle)

	// Operator API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	api.Use(corsPolicy(cfg.CORS.AllowedOrigins))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	api.Use(rl.Handler())
	{
		// Admin queries
		api.GET("/users", admin.ListUsers)
		api.GET("/users/:id", admin.GetUser)
		api.GET("/users/:id/history", admin.GetHistory)

		// Outbound sends
		api.POST("/push", send.Push)
		api.POST("/multicast", send.Multicast)
		api.POST("/broadcast", send.Broadcast)
	}
}

// corsPolicy builds the CORS middleware: allow-all when no origins are
// configured (dev posture), otherwise an explicit allowlist.
func corsPolicy(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:   []string{"X-Request-ID", "Content-Length"},
			MaxAge:          12 * time.Hour,
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	})
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
