package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/erp/barcode/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
}

// Health answers liveness probes and checks the database
//
//	GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.Response{
				"status":   "unavailable",
				"database": err.Error(),
			})
			return
		}
	}
	h.Success(c, dto.Response{"status": "ok"})
}

// GetSystemInfo returns the service name, version and uptime
//
//	GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, dto.Response{
		"name":       h.name,
		"version":    h.version,
		"go_version": runtime.Version(),
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ping is a simple responsiveness check
//
//	GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, dto.Response{
		"message":   "pong",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
