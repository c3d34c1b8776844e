package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck handles the liveness probe
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
