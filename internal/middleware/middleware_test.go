package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleAPIError_StatusPerKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("email", "invalid email format"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid amount", apperrors.ErrInvalidAmount, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"weak password", apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword},
		{"not found", fmt.Errorf("loading: %w", apperrors.ErrUserNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"conflict", apperrors.ErrDuplicatePending, http.StatusConflict, dto.ErrorCodeConflict},
		{"email taken", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"session full", apperrors.ErrSessionFull, http.StatusConflict, dto.ErrorCodeCapacityExceeded},
		{"mentor at capacity", apperrors.ErrMentorAtCapacity, http.StatusConflict, dto.ErrorCodeCapacityExceeded},
		{"transition", apperrors.NewInvalidTransitionError("session", "draft", "live"), http.StatusConflict, dto.ErrorCodeInvalidTransition},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestErrorDetailFor_UsesCustomMessageAndField(t *testing.T) {
	status, detail := ErrorDetailFor(apperrors.NewValidationError("graduationYear", "graduation year must be between 1900 and 2100"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "graduation year must be between 1900 and 2100", detail.Message)
	assert.Equal(t, "graduationYear", detail.Field)

	status, detail = ErrorDetailFor(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Nil(t, detail.Details, "internal errors are not echoed to clients")
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "alumnihub.test",
	})
}

func authRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID.String(), "admin": actor.IsAdmin()})
	}
	r.GET("/public", m.OptionalAuth(), whoami)
	r.GET("/me", m.JWTAuth(), whoami)
	r.GET("/admin", m.JWTAuth(), m.AdminRequired(), whoami)
	return r
}

func TestAuthMiddleware_Tiers(t *testing.T) {
	jwt := newTestJWT()
	m := NewAuthMiddleware(jwt, zerolog.Nop())
	r := authRouter(m)

	memberUser := &models.User{ID: uuid.New(), Email: "jane@alumni.edu"}
	staffUser := &models.User{ID: uuid.New(), Email: "admin@alumni.edu", IsStaff: true}
	memberPair, err := jwt.GenerateTokenPair(memberUser)
	require.NoError(t, err)
	staffPair, err := jwt.GenerateTokenPair(staffUser)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"public anonymous", "/public", "", http.StatusOK},
		{"public with token", "/public", "Bearer " + memberPair.AccessToken, http.StatusOK},
		{"public with garbage token", "/public", "Bearer a.b.c", http.StatusUnauthorized},
		{"me without token", "/me", "", http.StatusUnauthorized},
		{"me with token", "/me", "Bearer " + memberPair.AccessToken, http.StatusOK},
		{"me with raw token", "/me", memberPair.AccessToken, http.StatusOK},
		{"admin as member", "/admin", "Bearer " + memberPair.AccessToken, http.StatusForbidden},
		{"admin as staff", "/admin", "Bearer " + staffPair.AccessToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddleware_QueryTokenForWebsocket(t *testing.T) {
	jwt := newTestJWT()
	r := authRouter(NewAuthMiddleware(jwt, zerolog.Nop()))
	user := &models.User{ID: uuid.New(), Email: "jane@alumni.edu"}
	pair, err := jwt.GenerateTokenPair(user)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+pair.AccessToken, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, user.ID.String(), body["userId"])
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, PerMinute(60, 2), "test", zerolog.Nop())
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, other)
	assert.Equal(t, http.StatusNoContent, w.Code, "buckets are per client")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 26)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(HeaderRequestID))
}
