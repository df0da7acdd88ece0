// Package httpapi wires the HTTP transport (Gin) to the dispatch engine's
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging, panic recovery,
// metrics, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
	"github.com/ianampudia11/go-omni-inbox/internal/config"
	"github.com/ianampudia11/go-omni-inbox/internal/domain"
	"github.com/ianampudia11/go-omni-inbox/internal/http/handlers"
	"github.com/ianampudia11/go-omni-inbox/internal/http/middleware"
	"github.com/ianampudia11/go-omni-inbox/internal/repo"
	"github.com/ianampudia11/go-omni-inbox/internal/services"
)

// channelRepoShim adapts the repository free functions to the
// services.ChannelRepo interface expected by the AccessService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type channelRepoShim struct{}

// GetChannelConnection proxies repo.GetChannelConnection.
func (channelRepoShim) GetChannelConnection(ctx context.Context, db *gorm.DB, id uint) (*domain.ChannelConnection, error) {
	return repo.GetChannelConnection(ctx, db, id)
}

// identityRepoShim adapts the contact/conversation upsert functions to the
// services.IdentityRepo interface.
type identityRepoShim struct{}

// GetOrCreateContact proxies repo.GetOrCreateContact.
func (identityRepoShim) GetOrCreateContact(ctx context.Context, db *gorm.DB, tenantID uint, canonical, displayName, source string) (*domain.Contact, error) {
	return repo.GetOrCreateContact(ctx, db, tenantID, canonical, displayName, source)
}

// GetOrCreateConversation proxies repo.GetOrCreateConversation.
func (identityRepoShim) GetOrCreateConversation(ctx context.Context, db *gorm.DB, contact *domain.Contact, conn *domain.ChannelConnection) (*domain.Conversation, error) {
	return repo.GetOrCreateConversation(ctx, db, contact, conn)
}

// messageRepoShim adapts the message audit functions to services.MessageRepo.
type messageRepoShim struct{}

// CreateMessage proxies repo.CreateMessage.
func (messageRepoShim) CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) (*domain.Message, error) {
	return repo.CreateMessage(ctx, db, m)
}

// historyRepoShim adapts the read-side functions to services.HistoryRepo.
type historyRepoShim struct{}

// GetMessage proxies repo.GetMessage.
func (historyRepoShim) GetMessage(ctx context.Context, db *gorm.DB, id, tenantID uint) (*domain.Message, error) {
	return repo.GetMessage(ctx, db, id, tenantID)
}

// GetConversation proxies repo.GetConversation.
func (historyRepoShim) GetConversation(ctx context.Context, db *gorm.DB, id, tenantID uint) (*domain.Conversation, error) {
	return repo.GetConversation(ctx, db, id, tenantID)
}

// CountMessages proxies repo.CountMessages.
func (historyRepoShim) CountMessages(ctx context.Context, db *gorm.DB, conversationID uint) (int64, error) {
	return repo.CountMessages(ctx, db, conversationID)
}

// ListMessagesPage proxies repo.ListMessagesPage.
func (historyRepoShim) ListMessagesPage(ctx context.Context, db *gorm.DB, conversationID uint, offset, limit int) ([]domain.Message, error) {
	return repo.ListMessagesPage(ctx, db, conversationID, offset, limit)
}

// registerValidators installs custom binding rules on gin's validator engine.
// `mediakind` accepts exactly the closed media-kind enum.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("mediakind", func(fl validator.FieldLevel) bool {
			return channels.MediaKind(fl.Field().String()).IsValid()
		})
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter + gzip
//  6. Metrics
//  7. CORS and Security headers
//
// The API group adds tenant resolution, then the idempotency validator, then
// the rate limiter: replay detection needs the tenant and must precede
// limiting so replays bypass the bucket. /health and /metrics stay outside
// the group and remain tenant-free.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, registry *channels.Registry, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	registerValidators()

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderTenantID, middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/registry
	access := services.NewAccessService(db, channelRepoShim{})
	identity := services.NewIdentityService(db, identityRepoShim{})
	dispatch := &services.DispatchService{
		DB:           db,
		Access:       access,
		Identity:     identity,
		Registry:     registry,
		Repo:         messageRepoShim{},
		SystemUserID: cfg.SystemUserID,
	}
	history := services.NewHistoryService(db, historyRepoShim{})
	h := handlers.New(dispatch, history, db, cfg.IdempotencyTTL)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Tenant resolution first: the idempotency lookup and the rate-limit key
	// both need the tenant, and replay detection must run before limiting so
	// replays bypass the bucket.
	api.Use(middleware.RequireTenant())
	api.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, tenantID uint, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, tenantID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByTenantOrIP())
	api.Use(rl.Handler())
	{
		// Dispatch
		api.POST("/messages/send", h.SendMessage)
		api.POST("/messages/send-media", h.SendMedia)
		api.POST("/messages/send-batch", h.SendBatch)
		api.POST("/messages/send-template", h.SendTemplate)
		api.POST("/messages/send-interactive", h.SendInteractive)

		// History
		api.GET("/messages/:id", h.GetMessage)
		api.GET("/conversations/:id/messages", h.ListConversationMessages)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
