package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// StatsHandler serves the admin dashboard aggregates
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a stats handler
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

// GetStats handles GET /api/admin/stats
func (h *StatsHandler) GetStats(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	stats, err := h.store.Stats()
	if err != nil {
		log.Error("Failed to aggregate stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, stats)
}
