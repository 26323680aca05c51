package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Jacky-Bruse/movecar/internal/logger"
	"github.com/Jacky-Bruse/movecar/internal/movecar"
	"github.com/Jacky-Bruse/movecar/internal/status"

	"github.com/gin-gonic/gin"
)

// Handler exposes the move-car session over the JSON API both pages
// poll.
type Handler struct {
	service *movecar.Service
	baseURL string
	phone   string
}

// NewHandler builds the API handler. baseURL overrides the
// request-derived origin in confirm links when set (deployments behind
// a proxy); phone feeds the call-owner fallback on the main page.
func NewHandler(service *movecar.Service, baseURL, phone string) *Handler {
	return &Handler{
		service: service,
		baseURL: baseURL,
		phone:   phone,
	}
}

// RegisterRoutes mounts the JSON API. notifyLimit guards the notify
// route against rapid-fire retries.
func (h *Handler) RegisterRoutes(r *gin.Engine, notifyLimit gin.HandlerFunc) {
	api := r.Group("/api")
	api.POST("/notify", notifyLimit, h.notify)
	api.GET("/get-location", h.getLocation)
	api.POST("/owner-confirm", h.ownerConfirm)
	api.GET("/check-status", h.checkStatus)
}

// RegisterPages mounts the two operator-facing pages. Templates must
// be loaded on the engine first.
func (h *Handler) RegisterPages(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{"Phone": h.phone})
	})
	r.GET("/owner-confirm", func(c *gin.Context) {
		c.HTML(http.StatusOK, "owner-confirm.html", nil)
	})
}

type notifyRequest struct {
	Message  string               `json:"message"`
	Location *movecar.Coordinates `json:"location"`
}

func (h *Handler) notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	confirmURL := url.QueryEscape(h.origin(c) + "/owner-confirm")

	if err := h.service.Notify(c.Request.Context(), req.Message, req.Location, confirmURL); err != nil {
		logger.Error("notify failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ownerConfirmRequest struct {
	Location *movecar.Coordinates `json:"location"`
}

func (h *Handler) ownerConfirm(c *gin.Context) {
	var req ownerConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	if err := h.service.OwnerConfirm(c.Request.Context(), req.Location); err != nil {
		logger.Error("owner confirm failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) getLocation(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	raw, err := h.service.RequesterLocation(c.Request.Context())
	if errors.Is(err, status.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No location"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The stored blob is already the response JSON.
	c.Data(http.StatusOK, "application/json", []byte(raw))
}

func (h *Handler) checkStatus(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	report, err := h.service.CheckStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// bindFailed records an unreadable request body as the session error
// before responding, so polling clients see the failure too.
func (h *Handler) bindFailed(c *gin.Context, err error) {
	bindErr := fmt.Errorf("invalid request body: %w", err)
	h.service.RecordFailure(c.Request.Context(), bindErr)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   bindErr.Error(),
	})
}

// origin resolves the public origin the confirm link should point at.
func (h *Handler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return strings.TrimRight(h.baseURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
