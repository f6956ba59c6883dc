package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/auth"
	"github.com/yigit/alumnihub/internal/pkg/email"
)

// ResetTokenTTL is how long a mailed password reset link stays valid
const ResetTokenTTL = time.Hour

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// AuthService defines the interface for account and token operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authServiceImpl struct {
	tx         Transactor
	userRepo   UserStore
	tokenRepo  TokenStore
	resetRepo  ResetTokenStore
	prefsRepo  NotificationStore
	jwtService *auth.JWTService
	mailer     email.Mailer
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	tx Transactor,
	userRepo UserStore,
	tokenRepo TokenStore,
	resetRepo ResetTokenStore,
	prefsRepo NotificationStore,
	jwtService *auth.JWTService,
	mailer email.Mailer,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		tx:         tx,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		resetRepo:  resetRepo,
		prefsRepo:  prefsRepo,
		jwtService: jwtService,
		mailer:     mailer,
		now:        time.Now,
		logger:     logger,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func validateNewPassword(password, retype string) error {
	if password != retype {
		return apperrors.ErrPasswordMismatch
	}
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidPassword, err.Error())
	}
	return nil
}

// Register creates the user, its empty profile and default notification
// preferences in one transaction and logs the new user in.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	addr := normalizeEmail(req.Email)
	if !emailRegex.MatchString(addr) {
		return nil, apperrors.NewValidationError("email", "invalid email format")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "username is required")
	}
	if err := validateNewPassword(req.Password, req.PasswordRetype); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	exists, err = s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUsernameAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        addr,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
			return err
		}
		profile := models.NewProfile(user.ID)
		if err := s.userRepo.CreateProfile(ctx, tx, profile); err != nil {
			return err
		}
		user.Profile = profile
		return s.prefsRepo.CreatePreferences(ctx, tx, models.DefaultNotificationPreference(user.ID))
	})
	if err != nil {
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Str("email", user.Email).Msg("User registered")

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: user}, nil
}

// Login authenticates by email and password. Inactive users are rejected.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Debug().Str("userID", user.ID.String()).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to update last login")
	}

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: user}, nil
}

// RefreshToken rotates a stored refresh token into a new pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, _, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Revoke before issuing so a token can be exchanged only once
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return err
	}
	return nil
}

// ChangePassword re-checks the old password before storing the new hash
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if err := validateNewPassword(req.NewPassword, req.NewPasswordRetype); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("userID", userID.String()).Msg("Password changed")
	return nil
}

// ForgotPassword mails a reset link to a known active user. Unknown
// addresses succeed silently.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := email.GenerateToken()
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}
	if err := s.resetRepo.DeleteTokensByUserID(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to clear previous reset tokens")
	}
	if err := s.resetRepo.CreateToken(ctx, user.ID, token, s.now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, token); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to send password reset email")
		return fmt.Errorf("error sending password reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token, stores the new hash and revokes
// every refresh token of the user.
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := validateNewPassword(req.NewPassword, req.NewPasswordRetype); err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	var userID uuid.UUID
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		userID, err = s.resetRepo.ConsumeToken(ctx, tx, req.Token, s.now())
		if err != nil {
			return err
		}
		return s.userRepo.UpdatePassword(ctx, userID, hash)
	})
	if err != nil {
		return err
	}

	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("userID", userID.String()).Msg("Failed to revoke refresh tokens after reset")
		return fmt.Errorf("error revoking sessions: %w", err)
	}
	s.logger.Info().Str("userID", userID.String()).Msg("Password reset completed")
	return nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
