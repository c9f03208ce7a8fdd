package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"taskdesk/internal/repository"

	"github.com/gin-gonic/gin"
)

var backendHints = map[string]string{
	"memory": "the in-process store is always available",
	"kv":     "check REDIS_ADDR, REDIS_PASSWORD and that the redis server is running",
	"blob":   "check NATS_URL and that the nats server runs with JetStream enabled (nats-server -js)",
	"sql":    "check DB_DRIVER and the DB_* settings (or SQLITE_PATH) and that the database accepts connections",
	"mongo":  "check MONGO_URI and that the mongod server is reachable",
}

// BackendHint returns the remediation hint for an unreachable backend.
func BackendHint(backend string) string {
	if hint, ok := backendHints[backend]; ok {
		return hint
	}
	return "check TASKS_BACKEND"
}

type HealthHandler struct {
	provider repository.Provider
	backend  string
	timeout  time.Duration
}

func NewHealthHandler(provider repository.Provider, backend string, timeout time.Duration) *HealthHandler {
	return &HealthHandler{provider: provider, backend: backend, timeout: timeout}
}

// Check godoc
// @Summary      Backend health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.provider.Probe(ctx); err != nil {
		log.Printf("⚠️  Backend %s unreachable: %v", h.backend, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"backend": h.backend,
			"error":   err.Error(),
			"hint":    BackendHint(h.backend),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": h.backend})
}
