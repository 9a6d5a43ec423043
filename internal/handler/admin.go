package handler

import (
	"net/http"
	"runtime"
	"time"

	"fieldstock-api/internal/cache"
	"fieldstock-api/internal/repository"
	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	syncBuffer *cache.RedisSyncBuffer
	itemRepo   repository.ItemRepository
	cleanup    *service.CleanupScheduler
	dbType     string
	startTime  time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	syncBuffer *cache.RedisSyncBuffer,
	itemRepo repository.ItemRepository,
	cleanup *service.CleanupScheduler,
	dbType string,
) *AdminHandler {
	return &AdminHandler{
		syncBuffer: syncBuffer,
		itemRepo:   itemRepo,
		cleanup:    cleanup,
		dbType:     dbType,
		startTime:  time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(memStats.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":  float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	// Redis sync buffer stats
	if h.syncBuffer != nil {
		count, err := h.syncBuffer.Count(ctx)
		if err == nil {
			stats["sync_buffer"] = map[string]interface{}{
				"pending_items": count,
				"status":        "connected",
			}
		} else {
			stats["sync_buffer"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["sync_buffer"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Item store stats
	if h.itemRepo != nil {
		repoStats, err := h.itemRepo.Stats(ctx)
		if err == nil {
			repoStats["status"] = "connected"
			stats["items"] = repoStats
		} else {
			stats["items"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["items"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// FlushBuffer handles POST /api/v1/admin/flush - forces a sync buffer flush.
func (h *AdminHandler) FlushBuffer(w http.ResponseWriter, r *http.Request) {
	if h.syncBuffer == nil {
		response.OK(w, map[string]string{"status": "not_configured"})
		return
	}

	if err := h.syncBuffer.Flush(r.Context()); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "flushed"})
}

// RunCleanup handles POST /api/v1/admin/cleanup - purges old import logs now.
func (h *AdminHandler) RunCleanup(w http.ResponseWriter, r *http.Request) {
	if h.cleanup == nil {
		response.OK(w, map[string]string{"status": "not_configured"})
		return
	}

	deleted, err := h.cleanup.RunNow()
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"status":  "cleaned",
		"deleted": deleted,
	})
}
