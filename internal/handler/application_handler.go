package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// ApplicationHandler serves the admin application endpoints
type ApplicationHandler struct {
	store *store.Store
}

// NewApplicationHandler creates an application handler
func NewApplicationHandler(s *store.Store) *ApplicationHandler {
	return &ApplicationHandler{store: s}
}

// ListApplications handles GET /api/admin/applications with optional
// briefId, status and tier filters, AND-combined.
func (h *ApplicationHandler) ListApplications(c echo.Context) error {
	log := logger.FromContext(c)

	filter := store.ApplicationFilter{
		BriefID: c.QueryParam("briefId"),
		Status:  c.QueryParam("status"),
		Tier:    c.QueryParam("tier"),
	}

	apps, err := h.store.ListApplications(filter)
	if err != nil {
		log.Error("Failed to list applications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Listed applications",
		zap.String("brief_id", filter.BriefID),
		zap.String("status", filter.Status),
		zap.String("tier", filter.Tier),
		zap.Int("count", len(apps)))
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}

// UpdateApplication handles PUT /api/admin/application/:id, setting status
// and admin feedback together.
func (h *ApplicationHandler) UpdateApplication(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	var req struct {
		Status        string `json:"status"`
		AdminFeedback string `json:"adminFeedback"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.store.UpdateApplication(uint(id), req.Status, req.AdminFeedback); err != nil {
		log.Error("Failed to update application",
			zap.Uint64("application_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Application updated",
		zap.Uint64("application_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// BulkUpdate handles POST /api/admin/applications/bulk-update and returns the
// count of rows actually changed. IDs with no matching row are not errors.
func (h *ApplicationHandler) BulkUpdate(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ApplicationIDs []uint `json:"applicationIds"`
		Status         string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if len(req.ApplicationIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "applicationIds must not be empty"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	updated, err := h.store.BulkUpdateStatus(req.ApplicationIDs, req.Status)
	if err != nil {
		log.Error("Failed to bulk update applications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Applications bulk updated",
		zap.Int("requested", len(req.ApplicationIDs)),
		zap.Int64("updated", updated),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"updatedCount": updated,
	})
}
