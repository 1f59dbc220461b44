package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/config"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
)

const (
	ContextStaffID   = "staffID"
	ContextStaffRole = "staffRole"
)

// AuthMiddleware validates an HS256 bearer token carrying the staff id in
// "sub". With AUTH_REQUIRED off every request passes untouched.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	if !cfg.AuthRequired {
		return func(c *gin.Context) { c.Next() }
	}

	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, "missing_authorization_header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			reject(c, "invalid_authorization_header")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			reject(c, "invalid_token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject(c, "invalid_token_claims")
			return
		}

		staffID, ok := claims["sub"].(float64)
		if !ok || staffID <= 0 {
			reject(c, "invalid_token_payload")
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextStaffID, uint(staffID))
		c.Set(ContextStaffRole, role)

		c.Next()
	}
}

func reject(c *gin.Context, code string) {
	httperr.Unauthorized(c, code, "No autorizado.")
	c.Abort()
}

// StaffIDFrom returns the authenticated staff id, or nil when the request was
// not authenticated.
func StaffIDFrom(c *gin.Context) *uint {
	v, ok := c.Get(ContextStaffID)
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	return &id
}
