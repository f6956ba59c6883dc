package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/alumnihub/internal/app/auth"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// tokenFromRequest reads the bearer token from the Authorization header.
// Browsers cannot set headers on websocket upgrades, so the token query
// parameter is accepted as well.
func tokenFromRequest(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); q != "" {
			header = q
		}
	}
	return auth.ExtractBearerToken(strings.Trim(header, "\"'"))
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	detail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) bool {
	claims, err := m.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		m.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected access token")
		if errors.Is(err, auth.ErrExpiredToken) {
			abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
			return false
		}
		abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
		return false
	}

	// ValidateAndExtractClaims already checked the id parses
	userID := uuid.MustParse(claims.UserID)
	c.Set(ContextUserID, userID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRoleType, claims.RoleType)
	return true
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing or malformed")
			return
		}
		if !m.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is presented and lets
// anonymous requests through. A presented but invalid token is still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.Query("token") == "" {
			c.Next()
			return
		}
		token, err := tokenFromRequest(c)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Malformed authorization header")
			return
		}
		if !m.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// AdminRequired must run after JWTAuth
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRoleType)
		if !exists {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		if roleStr, ok := role.(string); !ok || models.RoleType(roleStr) != models.RoleAdmin {
			detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("Admin privileges required")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// OptionalUserID returns nil for anonymous callers
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, ok := GetUserID(c)
	if !ok {
		return nil
	}
	return &id
}

// GetActor returns the authenticated caller with its role
func GetActor(c *gin.Context) (appauth.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return appauth.Actor{}, false
	}
	return appauth.NewActor(id, c.GetString(ContextRoleType)), true
}

// Unauthorized aborts a handler that found no caller in the context
func Unauthorized(c *gin.Context) {
	abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User not authenticated")
}
