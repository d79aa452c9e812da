package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/service"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/response"
)

type snapshotSource interface {
	Current() (*service.DatasetSnapshot, error)
}

// MetricsHandler serves probes, the Prometheus scrape and the JSON summary.
type MetricsHandler struct {
	metrics  *service.MetricsService
	datasets snapshotSource
	started  time.Time
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, datasets snapshotSource) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, datasets: datasets, started: time.Now()}
}

// Prometheus serves the scrape endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness probe. It never touches the dataset.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime_seconds": int64(time.Since(h.started).Seconds())})
}

// Ready answers 503 until the first dataset is published, then names it.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.datasets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	snapshot, err := h.datasets.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"data_version": snapshot.Version,
		"loaded_at":    snapshot.LoadedAt,
		"horizon":      snapshot.Dataset.Horizon(),
	})
}

// Snapshot returns aggregated request, cache and engine counters.
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}
