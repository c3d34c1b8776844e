package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MUOBSocial/MUOB-creators/internal/middleware"
	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/pkg/jwtutil"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// UserHandler serves the creator-facing endpoints. There is no password:
// identity is proven solely by knowledge of an email that has an application
// on file. This is a deliberate product decision.
type UserHandler struct {
	store *store.Store
	jwt   *jwtutil.JWTUtil
}

// NewUserHandler creates a user handler
func NewUserHandler(s *store.Store, jwt *jwtutil.JWTUtil) *UserHandler {
	return &UserHandler{store: s, jwt: jwt}
}

// Login handles POST /api/user/login
func (h *UserHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.UserLoginCounter.Inc()

	var req struct {
		Email string `json:"email"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	exists, err := h.store.HasApplicationsForEmail(req.Email)
	if err != nil {
		log.Error("Failed to look up applications by email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if !exists {
		log.Info("User login with unknown email", zap.String("email", req.Email))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no applications found with this email"})
	}

	token, err := h.jwt.GenerateUserToken(req.Email)
	if err != nil {
		log.Error("Failed to generate user token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in", zap.String("email", req.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"email": req.Email,
	})
}

// Applications handles GET /api/user/applications. The listing is scoped to
// the token's email and nothing else.
func (h *UserHandler) Applications(c echo.Context) error {
	log := logger.FromContext(c)

	email, ok := c.Get(middleware.UserEmailKey).(string)
	if !ok || email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	apps, err := h.store.ApplicationsByEmail(email)
	if err != nil {
		log.Error("Failed to list applications for email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Listed user applications",
		zap.String("email", email),
		zap.Int("count", len(apps)))
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}
