package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/yanxue-backend/internal/http/response"
)

const Banner = "研学旅行课程开发系统 API"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db   Pinger
	mode string
}

func NewHealthHandler(db Pinger, mode string) *HealthHandler {
	return &HealthHandler{db: db, mode: mode}
}

func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	status := "ok"
	if hh.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := hh.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Envelope{Success: false, Error: "database unavailable"})
			return
		}
	}
	response.RespondOK(c, gin.H{"status": status, "generationMode": hh.mode})
}

func (hh *HealthHandler) Banner(c *gin.Context) {
	c.String(http.StatusOK, Banner)
}
