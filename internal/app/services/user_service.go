package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// UserService defines the interface for user and profile operations
type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req *dto.UpdateMeRequest) (*models.User, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	ListUsers(ctx context.Context, filter *dto.UserFilterRequest, page, size int) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	DeactivateUser(ctx context.Context, adminID, userID uuid.UUID) error
}

type userServiceImpl struct {
	userRepo  UserStore
	tokenRepo TokenStore
	stats     cache.StatsCache
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo UserStore, tokenRepo TokenStore, stats cache.StatsCache, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		stats:     stats,
		logger:    logger,
	}
}

// GetMe returns the user with its profile attached
func (s *userServiceImpl) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.GetUser(ctx, userID)
}

// GetUser returns any user with its profile attached
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// UpdateMe applies the non-nil fields of req to the caller's user and profile
func (s *userServiceImpl) UpdateMe(ctx context.Context, userID uuid.UUID, req *dto.UpdateMeRequest) (*models.User, error) {
	if err := validateUpdateMe(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			exists, err := s.userRepo.UsernameExists(ctx, username)
			if err != nil {
				return nil, fmt.Errorf("error checking if username exists: %w", err)
			}
			if exists {
				return nil, apperrors.ErrUsernameAlreadyExists
			}
			if err := s.userRepo.UpdateUsername(ctx, userID, username); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Interests != nil {
		profile.Interests = trimAll(req.Interests)
	}
	if req.SocialLinks != nil {
		profile.SocialLinks = req.SocialLinks
	}
	if req.AcademicInfo != nil {
		profile.AcademicInfo = req.AcademicInfo
	}
	if req.ProfessionalInfo != nil {
		profile.ProfessionalInfo = req.ProfessionalInfo
	}
	if req.Role != nil {
		profile.Role = *req.Role
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	s.logger.Info().Str("userID", userID.String()).Msg("Profile updated")
	return user, nil
}

func validateUpdateMe(req *dto.UpdateMeRequest) error {
	if req.Username != nil && len(strings.TrimSpace(*req.Username)) < 3 {
		return apperrors.NewValidationError("username", "username must be at least 3 characters")
	}
	if a := req.AcademicInfo; a != nil {
		if strings.TrimSpace(a.Institution) == "" || a.GraduationYear == nil || strings.TrimSpace(a.DegreeProgram) == "" {
			return apperrors.NewValidationError("academicInfo", "institution, graduationYear and degreeProgram are required")
		}
		if *a.GraduationYear < models.MinGraduationYear || *a.GraduationYear > models.MaxGraduationYear {
			return apperrors.NewValidationError("academicInfo.graduationYear",
				fmt.Sprintf("graduation year must be between %d and %d", models.MinGraduationYear, models.MaxGraduationYear))
		}
	}
	if p := req.ProfessionalInfo; p != nil {
		if strings.TrimSpace(p.Company) == "" || strings.TrimSpace(p.Role) == "" || strings.TrimSpace(p.ExperienceLevel) == "" {
			return apperrors.NewValidationError("professionalInfo", "company, role and experienceLevel are required")
		}
	}
	for _, interest := range req.Interests {
		if strings.TrimSpace(interest) == "" {
			return apperrors.NewValidationError("interests", "interests must be non-empty strings")
		}
	}
	for name, link := range req.SocialLinks {
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			return apperrors.NewValidationError("socialLinks."+name, "links must start with http:// or https://")
		}
	}
	if req.Role != nil && !req.Role.Valid() {
		return apperrors.NewValidationError("role", "role must be listener, moderator or speaker")
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// GetStats returns the gamification summary, served from cache when possible
func (s *userServiceImpl) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	if stats, ok := s.stats.Get(ctx, userID); ok {
		return stats, nil
	}
	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.stats.Set(ctx, stats)
	return stats, nil
}

// ListUsers returns a filtered page of users
func (s *userServiceImpl) ListUsers(ctx context.Context, filter *dto.UserFilterRequest, page, size int) (*dto.UserListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.userRepo.List(ctx, filter.ToFilter(), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return &dto.UserListResponse{
		Users:          users,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// DeactivateUser soft-deletes a user and revokes its refresh tokens
func (s *userServiceImpl) DeactivateUser(ctx context.Context, adminID, userID uuid.UUID) error {
	if adminID == userID {
		return apperrors.NewBadRequestError("admins cannot deactivate themselves")
	}
	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Failed to revoke tokens of deactivated user")
	}
	s.logger.Info().Str("adminID", adminID.String()).Str("userID", userID.String()).Msg("User deactivated")
	return nil
}
