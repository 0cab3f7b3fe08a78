// Package api exposes breedbase over HTTP with gin.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LavishGent/breedbase/internal/types"
)

// Service is the set of operations served over HTTP. *breedbase.Client satisfies it.
type Service interface {
	GetCatalog(ctx context.Context) ([]types.EnrichedBreed, error)
	Lookup(ctx context.Context, query string) (types.LookupResult, error)
	Narrate(ctx context.Context, breed string) (types.NarrativeResult, error)
	ImageInfo(ctx context.Context, fileName string) (string, error)
	Health(ctx context.Context) *types.HealthReport
}

// Handler serves the breed API over a Service.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// NewHandler creates a handler. A nil logger uses slog.Default().
func NewHandler(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger.With("component", "api")}
}

// RegisterRoutes mounts the /api group and the health check on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)

	rg := r.Group("/api")
	rg.GET("/breeds", h.breeds)
	rg.POST("/search", h.search)
	rg.POST("/narrate", h.narrate)
	rg.GET("/image-info", h.imageInfo)
}

type searchReq struct {
	Query string `json:"query"`
}

type searchResp struct {
	Source string             `json:"source"`
	Result types.LookupResult `json:"result"`
}

type narrateReq struct {
	Breed string `json:"breed"`
}

type narrateResp struct {
	Result   string `json:"result"`
	Markdown string `json:"markdown"`
	ImageURL string `json:"imageUrl,omitempty"`
	Missing  bool   `json:"missing"`
}

func (h *Handler) breeds(c *gin.Context) {
	breeds, err := h.svc.GetCatalog(c.Request.Context())
	if err != nil {
		h.fail(c, "breeds", err)
		return
	}
	c.JSON(http.StatusOK, breeds)
}

func (h *Handler) search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.svc.Lookup(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, searchResp{Source: res.Source, Result: res})
}

func (h *Handler) narrate(c *gin.Context) {
	var req narrateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.svc.Narrate(c.Request.Context(), req.Breed)
	if err != nil {
		h.fail(c, "narrate", err)
		return
	}
	c.JSON(http.StatusOK, narrateResp{
		Result:   res.Markdown,
		Markdown: res.Markdown,
		ImageURL: res.ImageURL,
		Missing:  res.Missing,
	})
}

func (h *Handler) imageInfo(c *gin.Context) {
	u, err := h.svc.ImageInfo(c.Request.Context(), c.Query("file"))
	if err != nil {
		h.fail(c, "image-info", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": u})
}

func (h *Handler) health(c *gin.Context) {
	report := h.svc.Health(c.Request.Context())
	status := http.StatusOK
	if report.Status == types.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// fail writes {"error": msg} with the status mapped from err's kind.
func (h *Handler) fail(c *gin.Context, route string, err error) {
	status := types.HTTPStatus(err)
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing will read the body.
		c.Status(499)
		return
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn("Request failed", "route", route, "status", status, "error", err, "request_id", requestID(c))
	} else {
		h.logger.Debug("Request rejected", "route", route, "status", status, "error", err, "request_id", requestID(c))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
