package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "alumnihub.test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService()
	user := &models.User{ID: uuid.New(), Email: "grace@example.com", IsStaff: true}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)
	assert.Equal(t, int64(86400), pair.RefreshExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, string(models.RoleAdmin), claims.RoleType)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(&models.User{ID: uuid.New(), Email: "a@b.co"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@b.co"}

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "alumnihub.test"})
	pair, err := other.GenerateTokenPair(user)
	require.NoError(t, err)
	_, err = newTestJWTService().ValidateToken(pair.AccessToken)
	assert.Error(t, err, "wrong secret")

	wrongIssuer := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Minute, TokenIssuer: "elsewhere"})
	pair, err = wrongIssuer.GenerateTokenPair(user)
	require.NoError(t, err)
	_, err = newTestJWTService().ValidateToken(pair.AccessToken)
	assert.Error(t, err, "wrong issuer")

	_, err = newTestJWTService().ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer prefix", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"raw jwt", "abc.def.ghi", "abc.def.ghi", false},
		{"empty", "", "", true},
		{"bearer without token", "Bearer ", "", true},
		{"other scheme", "Basic dXNlcjpwYXNz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))

	assert.ErrorIs(t, ValidatePasswordStrength("short"), ErrWeakPassword)
	assert.NoError(t, ValidatePasswordStrength("long enough"))
}
