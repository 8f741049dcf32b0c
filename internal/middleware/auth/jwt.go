package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminUser is the operator identified by a bearer token
type AdminUser struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

type contextKey string

const (
	adminContextKey contextKey = "authenticated_admin"
)

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret string
	Logger *zap.Logger
	// RequiredRole must match the token's role claim when set
	RequiredRole string
}

func unauthorized(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"status":  "error",
		"message": message,
		"code":    code,
	})
}

// JWTMiddleware validates HS256 bearer tokens minted by the admin frontend
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if config.Secret == "" {
				config.Logger.Error("Admin JWT secret is not configured, rejecting request",
					zap.String("path", path))
				return unauthorized(c, http.StatusUnauthorized, "AUTH_NOT_CONFIGURED", "Admin authentication is not configured")
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return unauthorized(c, http.StatusUnauthorized, "MISSING_AUTH_HEADER", "Authorization header required")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return unauthorized(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>")
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			})

			if err != nil || !token.Valid {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return unauthorized(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			}

			subject, _ := claims.GetSubject()
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			if config.RequiredRole != "" && role != config.RequiredRole {
				config.Logger.Warn("Token lacks required role",
					zap.String("subject", subject),
					zap.String("role", role),
					zap.String("path", path))
				return unauthorized(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			}

			admin := &AdminUser{
				Subject: subject,
				Email:   email,
				Role:    role,
			}

			ctx := context.WithValue(c.Request().Context(), adminContextKey, admin)
			c.SetRequest(c.Request().WithContext(ctx))

			config.Logger.Debug("Admin authenticated",
				zap.String("subject", subject),
				zap.String("path", path))

			return next(c)
		}
	}
}

// GetAdminFromContext extracts the authenticated admin from the request context
func GetAdminFromContext(c echo.Context) (*AdminUser, error) {
	admin, ok := c.Request().Context().Value(adminContextKey).(*AdminUser)
	if !ok || admin == nil {
		return nil, fmt.Errorf("no authenticated admin found in context")
	}
	return admin, nil
}
