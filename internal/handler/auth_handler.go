package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/pkg/jwtutil"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// AuthHandler serves the admin login endpoint
type AuthHandler struct {
	store *store.Store
	jwt   *jwtutil.JWTUtil
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(s *store.Store, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{store: s, jwt: jwt}
}

// AdminLogin handles POST /api/admin/login
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AdminLoginCounter.Inc()

	// Parse request
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_credentials")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	// Find admin in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	admin, err := h.store.FindAdminByUsername(req.Username)
	if err != nil {
		log.Warn("Admin not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Generate admin JWT token
	token, err := h.jwt.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Admin logged in", zap.String("username", admin.Username))
	return c.JSON(http.StatusOK, echo.Map{
		"token":    token,
		"username": admin.Username,
	})
}
