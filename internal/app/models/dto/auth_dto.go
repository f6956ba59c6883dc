package dto

import "github.com/yigit/alumnihub/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterRequest creates a user account. Email is the login identifier.
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email,max=255"`
	Username       string `json:"username" binding:"required,username"`
	Password       string `json:"password" binding:"required,min=8"`
	PasswordRetype string `json:"passwordRetype" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword       string `json:"oldPassword" binding:"required"`
	NewPassword       string `json:"newPassword" binding:"required,min=8"`
	NewPasswordRetype string `json:"newPasswordRetype" binding:"required"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *models.User  `json:"user"`
}

// LogoutRequest revokes a refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset with the mailed token
type ResetPasswordRequest struct {
	Token             string `json:"token" binding:"required"`
	NewPassword       string `json:"newPassword" binding:"required,min=8"`
	NewPasswordRetype string `json:"newPasswordRetype" binding:"required"`
}
