package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database connection is alive.
type Pinger interface {
	Ping() error
}

type HealthController struct {
	db      Pinger
	version string
}

func NewHealthController(db Pinger, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Health reports service and database status.
// GET /health
func (hc *HealthController) Health(c *gin.Context) {
	overall := "ok"
	dbStatus := "ok"
	status := http.StatusOK
	if hc.db == nil {
		dbStatus = "not configured"
	} else if err := hc.db.Ping(); err != nil {
		overall = "degraded"
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"version":  hc.version,
		"database": dbStatus,
	})
}
