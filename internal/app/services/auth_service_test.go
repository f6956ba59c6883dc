package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
)

const testPassword = "Password123"

func register(t *testing.T, env *testEnv, email, username string) *dto.AuthResponse {
	t.Helper()
	resp, err := env.svc.Auth.Register(context.Background(), &dto.RegisterRequest{
		Email: email, Username: username, Password: testPassword, PasswordRetype: testPassword,
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.RegisterRequest
		wantErr error
	}{
		{
			name:    "bad email",
			req:     dto.RegisterRequest{Email: "not-an-email", Username: "jane", Password: testPassword, PasswordRetype: testPassword},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "blank username",
			req:     dto.RegisterRequest{Email: "jane@alumni.edu", Username: "  ", Password: testPassword, PasswordRetype: testPassword},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "retype mismatch",
			req:     dto.RegisterRequest{Email: "jane@alumni.edu", Username: "jane", Password: testPassword, PasswordRetype: "Password124"},
			wantErr: apperrors.ErrPasswordMismatch,
		},
		{
			name:    "short password",
			req:     dto.RegisterRequest{Email: "jane@alumni.edu", Username: "jane", Password: "short", PasswordRetype: "short"},
			wantErr: apperrors.ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			_, err := env.svc.Auth.Register(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, env.users.users)
		})
	}
}

func TestRegister_CreatesUserProfileAndPreferences(t *testing.T) {
	env := newTestEnv()

	resp := register(t, env, "  Jane@Alumni.EDU ", "jane")
	assert.Equal(t, "jane@alumni.edu", resp.User.Email)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	require.NotNil(t, resp.User.Profile)
	assert.Zero(t, resp.User.Profile.TotalPoints)

	_, err := env.users.GetProfile(context.Background(), resp.User.ID)
	assert.NoError(t, err)
	prefs, err := env.notifications.GetPreferences(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.True(t, prefs.EmailSessions)

	claims, err := env.jwt.ValidateAndExtractClaims(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
}

func TestRegister_Duplicates(t *testing.T) {
	env := newTestEnv()
	register(t, env, "jane@alumni.edu", "jane")

	_, err := env.svc.Auth.Register(context.Background(), &dto.RegisterRequest{
		Email: "JANE@alumni.edu", Username: "other", Password: testPassword, PasswordRetype: testPassword,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.svc.Auth.Register(context.Background(), &dto.RegisterRequest{
		Email: "other@alumni.edu", Username: "jane", Password: testPassword, PasswordRetype: testPassword,
	})
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	resp := register(t, env, "jane@alumni.edu", "jane")
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "ok", email: "Jane@alumni.edu", password: testPassword},
		{name: "wrong password", email: "jane@alumni.edu", password: "Password999", wantErr: apperrors.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@alumni.edu", password: testPassword, wantErr: apperrors.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, resp.User.ID, got.User.ID)
		})
	}

	require.NoError(t, env.users.SetActive(ctx, resp.User.ID, false))
	_, err := env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: "jane@alumni.edu", Password: testPassword})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshToken_Rotates(t *testing.T) {
	env := newTestEnv()
	resp := register(t, env, "jane@alumni.edu", "jane")
	ctx := context.Background()

	_, err := env.svc.Auth.RefreshToken(ctx, " ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	rotated, err := env.svc.Auth.RefreshToken(ctx, resp.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.Token.RefreshToken, rotated.RefreshToken)

	_, err = env.svc.Auth.RefreshToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked, "a refresh token is exchanged once")

	require.NoError(t, env.svc.Auth.Logout(ctx, rotated.RefreshToken))
	_, err = env.svc.Auth.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	assert.ErrorIs(t, env.svc.Auth.Logout(ctx, "unknown"), apperrors.ErrTokenNotFound)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv()
	resp := register(t, env, "jane@alumni.edu", "jane")
	ctx := context.Background()
	const next = "NewPassword456"

	err := env.svc.Auth.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{
		OldPassword: "wrong-password", NewPassword: next, NewPasswordRetype: next,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = env.svc.Auth.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{
		OldPassword: testPassword, NewPassword: next, NewPasswordRetype: "mismatch",
	})
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	require.NoError(t, env.svc.Auth.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{
		OldPassword: testPassword, NewPassword: next, NewPasswordRetype: next,
	}))

	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: "jane@alumni.edu", Password: testPassword})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: "jane@alumni.edu", Password: next})
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv()
	resp := register(t, env, "jane@alumni.edu", "jane")
	ctx := context.Background()
	const next = "NewPassword456"

	require.NoError(t, env.svc.Auth.ForgotPassword(ctx, "nobody@alumni.edu"), "unknown emails succeed silently")
	assert.Zero(t, env.mailer.count())
	assert.Empty(t, env.resets.last)

	require.NoError(t, env.svc.Auth.ForgotPassword(ctx, "Jane@alumni.edu"))
	assert.Equal(t, 1, env.mailer.count())
	token := env.resets.last
	require.NotEmpty(t, token)

	err := env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: next, NewPasswordRetype: "x"})
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	require.NoError(t, env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Token: token, NewPassword: next, NewPasswordRetype: next,
	}))

	_, err = env.svc.Auth.RefreshToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked, "reset signs out every session")

	err = env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: next, NewPasswordRetype: next})
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: "jane@alumni.edu", Password: next})
	assert.NoError(t, err)
}

func TestForgotPassword_ReplacesPreviousToken(t *testing.T) {
	env := newTestEnv()
	register(t, env, "jane@alumni.edu", "jane")
	ctx := context.Background()

	require.NoError(t, env.svc.Auth.ForgotPassword(ctx, "jane@alumni.edu"))
	first := env.resets.last
	require.NoError(t, env.svc.Auth.ForgotPassword(ctx, "jane@alumni.edu"))
	assert.NotEqual(t, first, env.resets.last)

	err := env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Token: first, NewPassword: "NewPassword456", NewPasswordRetype: "NewPassword456",
	})
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}
