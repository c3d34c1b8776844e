package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MUOBSocial/MUOB-creators/pkg/jwtutil"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

// Context keys set by the auth middlewares
const (
	AdminIDKey   = "admin_id"
	UsernameKey  = "username"
	UserEmailKey = "user_email"
)

var (
	errMissingToken  = errors.New("missing authorization token")
	errInvalidFormat = errors.New("invalid authorization format, expected Bearer token")
	errInvalidToken  = errors.New("invalid or expired token")
)

// RequireAdmin validates the bearer token and rejects anything that is not an
// admin-scoped session. Admin tokens are not scoped per-resource.
func RequireAdmin(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := bearerClaims(c, jwtUtil)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			if claims.Scope != jwtutil.ScopeAdmin {
				logger.FromContext(c).Warn("Non-admin token on admin route",
					zap.String("scope", claims.Scope))
				prometheus.RecordAuthError("wrong_scope")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": errInvalidToken.Error()})
			}

			c.Set(AdminIDKey, claims.AdminID)
			c.Set(UsernameKey, claims.Username)
			return next(c)
		}
	}
}

// RequireUser validates the bearer token for creator-facing routes and stores
// the token's email in the context. Identity is the email claim alone.
func RequireUser(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := bearerClaims(c, jwtUtil)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			if claims.Scope != jwtutil.ScopeUser || claims.Email == "" {
				logger.FromContext(c).Warn("Non-user token on user route",
					zap.String("scope", claims.Scope))
				prometheus.RecordAuthError("wrong_scope")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": errInvalidToken.Error()})
			}

			c.Set(UserEmailKey, claims.Email)
			return next(c)
		}
	}
}

// bearerClaims extracts and validates the Authorization bearer token
func bearerClaims(c echo.Context, jwtUtil *jwtutil.JWTUtil) (*jwtutil.Claims, error) {
	log := logger.FromContext(c)

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		log.Warn("Missing Authorization header")
		prometheus.RecordAuthError("missing_token")
		return nil, errMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		log.Warn("Invalid Authorization header format")
		prometheus.RecordAuthError("invalid_auth_format")
		return nil, errInvalidFormat
	}

	claims, err := jwtUtil.ValidateToken(parts[1])
	if err != nil {
		log.Warn("Invalid JWT token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return nil, errInvalidToken
	}

	return claims, nil
}
