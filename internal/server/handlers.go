package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/procwatch-agent/config"
	"github.com/ngenohkevin/procwatch-agent/internal/cache"
	"github.com/ngenohkevin/procwatch-agent/internal/monitor"
	"github.com/ngenohkevin/procwatch-agent/internal/system"
	"github.com/ngenohkevin/procwatch-agent/internal/systemd"
)

// MonitorSource is the read-only view of the monitor the API serves
type MonitorSource interface {
	Latest() *monitor.Snapshot
	Alerts() []monitor.Alert
	Rules() []monitor.Rule
}

// Handlers holds all HTTP handlers
type Handlers struct {
	cfg            *config.Config
	mon            MonitorSource
	serviceManager *systemd.Manager
	cache          *cache.InventoryCache
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, mon MonitorSource) *Handlers {
	return &Handlers{
		cfg:            cfg,
		mon:            mon,
		serviceManager: systemd.NewManager(cfg.AllowedServices),
		cache:          cache.NewInventoryCache(),
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// GetInfo handles GET /api/info
func (h *Handlers) GetInfo(c *gin.Context) {
	hostInfo, err := h.cache.GetOrSet(cache.KeyHost, func() (interface{}, error) {
		return system.GetHostInfo(c.Request.Context())
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	info := hostInfo.(*system.HostInfo)
	c.JSON(http.StatusOK, gin.H{
		"hostname": info.Hostname,
		"os":       info.OS,
		"platform": info.Platform,
		"kernel":   info.KernelVersion,
		"arch":     info.KernelArch,
		"uptime":   info.UptimeHuman,
		"agent":    "procwatch-agent",
		"version":  "1.0.0",
	})
}

// GetSnapshot handles GET /api/snapshot
func (h *Handlers) GetSnapshot(c *gin.Context) {
	snapshot := h.mon.Latest()
	if snapshot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetSystemMetrics handles GET /api/snapshot/system
func (h *Handlers) GetSystemMetrics(c *gin.Context) {
	snapshot := h.mon.Latest()
	if snapshot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp": snapshot.Timestamp,
		"system":    snapshot.System,
	})
}

// ListProcesses handles GET /api/snapshot/processes with optional ?limit=N
func (h *Handlers) ListProcesses(c *gin.Context) {
	snapshot := h.mon.Latest()
	if snapshot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}

	processes := snapshot.Processes
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if limit < len(processes) {
			processes = processes[:limit]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp": snapshot.Timestamp,
		"processes": processes,
		"total":     len(snapshot.Processes),
	})
}

// ListAlerts handles GET /api/alerts with optional ?severity= filter
func (h *Handlers) ListAlerts(c *gin.Context) {
	alerts := h.mon.Alerts()

	if severity := c.Query("severity"); severity != "" {
		filtered := make([]monitor.Alert, 0, len(alerts))
		for _, a := range alerts {
			if string(a.Severity) == severity {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// ListRules handles GET /api/rules
func (h *Handlers) ListRules(c *gin.Context) {
	rules := h.mon.Rules()
	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"total": len(rules),
	})
}

// ListDisks handles GET /api/disks
func (h *Handlers) ListDisks(c *gin.Context) {
	inventory, err := h.cache.GetOrSet(cache.KeyDisks, func() (interface{}, error) {
		return system.GetDiskPartitions(c.Request.Context())
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, inventory)
}

// ListServices handles GET /api/services
func (h *Handlers) ListServices(c *gin.Context) {
	list, err := h.cache.GetOrSet(cache.KeyServices, func() (interface{}, error) {
		return h.serviceManager.List(c.Request.Context())
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetService handles GET /api/services/:name
func (h *Handlers) GetService(c *gin.Context) {
	name := c.Param("name")

	info, err := h.serviceManager.Get(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}
