// Package server exposes the portal over HTTP.
package server

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kylejryan/artisan-request-portal/internal/authz"
	"github.com/kylejryan/artisan-request-portal/internal/identity"
	"github.com/kylejryan/artisan-request-portal/internal/intake"
	"github.com/kylejryan/artisan-request-portal/internal/logging"
	"github.com/kylejryan/artisan-request-portal/internal/models"
)

// DefaultMaxUploadBytes bounds a submission body when Deps leaves it unset.
const DefaultMaxUploadBytes = 10 << 20 // 10MB

// Submitter is the request intake handler.
type Submitter interface {
	Submit(ctx context.Context, id intake.Identity, form intake.Form, file *intake.Attachment) (models.ServiceRequest, error)
}

// Deps holds everything the router needs. Identity and Verifier may be nil,
// in which case sign-in is unavailable and only the dev bypass header works.
type Deps struct {
	Intake         Submitter
	Identity       identity.Gateway
	Verifier       authz.TokenVerifier
	DevBypassAuth  bool
	AllowedOrigins []string
	MaxUploadBytes int64
	Metrics        prometheus.Gatherer
	Log            *slog.Logger
	Rand           func() *rand.Rand // catalog randomness; nil seeds per view
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}

	engine := gin.New()
	engine.Use(requestID(), accessLog(d.Log), recovery(d.Log))

	if len(d.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = d.AllowedOrigins
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}
		corsConfig.AllowCredentials = true
		engine.Use(cors.New(corsConfig))
	}

	engine.Use(authz.Middleware(d.Verifier, d.DevBypassAuth, d.Log))

	h := &handlers{
		intake:    d.Intake,
		identity:  d.Identity,
		maxUpload: d.MaxUploadBytes,
		rand:      d.Rand,
		log:       d.Log,
	}

	engine.GET("/health", h.health)
	engine.POST("/signup", h.signup)
	engine.POST("/login", h.login)
	engine.GET("/home", h.home)
	engine.POST("/submit_request", h.submitRequest)

	if d.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}
