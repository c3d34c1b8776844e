package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/MUOBSocial/MUOB-creators/pkg/config"
)

// Token scopes. Admin tokens identify an operator account, user tokens carry
// only the creator's email.
const (
	ScopeAdmin = "admin"
	ScopeUser  = "user"
)

// Claims represents the JWT claims for both admin and user sessions
type Claims struct {
	Scope    string `json:"scope"`
	AdminID  uint   `json:"admin_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: cfg,
	}
}

// GenerateAdminToken creates a JWT token for an operator account
func (j *JWTUtil) GenerateAdminToken(adminID uint, username string) (string, error) {
	return j.sign(Claims{
		Scope:    ScopeAdmin,
		AdminID:  adminID,
		Username: username,
	})
}

// GenerateUserToken creates a JWT token scoped to a creator's email
func (j *JWTUtil) GenerateUserToken(email string) (string, error) {
	return j.sign(Claims{
		Scope: ScopeUser,
		Email: email,
	})
}

func (j *JWTUtil) sign(claims Claims) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.config.ExpirationHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*Claims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
