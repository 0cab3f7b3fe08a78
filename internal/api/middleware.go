package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

const (
	RequestIDHeader = "X-Request-ID"
	ctxRequestIDKey = "request_id"
)

// RequestID propagates the caller's X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}

// Timing records one "http.request" timing per request, tagged with the route
// pattern and status code.
func Timing(publisher types.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		timer := metrics.NewTimer(publisher, "http.request", metrics.RouteTag(route))
		c.Next()
		timer.Stop(metrics.StatusTag(strconv.Itoa(c.Writer.Status())))
	}
}

// AccessLog logs every request at debug level and server errors at warn.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", requestID(c),
		}
		if status >= 500 {
			logger.Warn("Request served", args...)
			return
		}
		logger.Debug("Request served", args...)
	}
}
