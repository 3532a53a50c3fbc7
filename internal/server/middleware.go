package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/kylejryan/artisan-request-portal/internal/httpx"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "server.request_id"
)

// requestID tags each request with a ULID, reusing an inbound X-Request-ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one line per request after it completes.
func accessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// recovery turns a handler panic into a 500 notice.
func recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		log.Error("handler panic", "request_id", c.GetString(requestIDKey), "path", c.Request.URL.Path, "error", err)
		httpx.Error(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	})
}

// requestLogger returns base scoped to the current request.
func requestLogger(c *gin.Context, base *slog.Logger) *slog.Logger {
	return base.With("request_id", c.GetString(requestIDKey))
}
