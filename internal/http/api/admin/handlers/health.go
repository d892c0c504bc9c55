package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	db     *gorm.DB
	checks map[string]Pinger
}

// NewHealthHandler constructs a HealthHandler. checks are probed next to the database.
func NewHealthHandler(db *gorm.DB, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{db: db, checks: checks}
}

// Healthz pings the database and every extra dependency.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	ok := true
	results := gin.H{}
	record := func(name string, err error) {
		if err != nil {
			ok = false
			results[name] = "down"
			log.WithError(err).WithField("check", name).Warn("health: check failed")
			return
		}
		results[name] = "ok"
	}

	sqlDB, errDB := h.db.DB()
	if errDB == nil {
		errDB = sqlDB.PingContext(ctx)
	}
	record("database", errDB)

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		record(name, h.checks[name].Ping(ctx))
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ok": ok, "checks": results})
}
