package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/auth"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/events"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// VerificationService defines the interface for alumni verification operations
type VerificationService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitVerificationRequest) (*models.AlumniVerification, error)
	Approve(ctx context.Context, verificationID, approverID uuid.UUID) (*models.AlumniVerification, error)
	Reject(ctx context.Context, verificationID, rejecterID uuid.UUID) (*models.AlumniVerification, error)
	Decide(ctx context.Context, verificationID, adminID uuid.UUID, status models.VerificationStatus) (*models.AlumniVerification, error)
	Get(ctx context.Context, actor auth.Actor, verificationID uuid.UUID) (*models.AlumniVerification, error)
	ListMine(ctx context.Context, userID uuid.UUID, page, size int) (*dto.VerificationListResponse, error)
	ListAll(ctx context.Context, status *models.VerificationStatus, page, size int) (*dto.VerificationListResponse, error)
}

type verificationServiceImpl struct {
	tx        Transactor
	repo      VerificationStore
	userRepo  UserStore
	badges    BadgeService
	notifier  Notifier
	publisher events.Publisher
	stats     cache.StatsCache
	now       func() time.Time
	logger    zerolog.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	tx Transactor,
	repo VerificationStore,
	userRepo UserStore,
	badges BadgeService,
	notifier Notifier,
	publisher events.Publisher,
	stats cache.StatsCache,
	logger zerolog.Logger,
) VerificationService {
	return &verificationServiceImpl{
		tx:        tx,
		repo:      repo,
		userRepo:  userRepo,
		badges:    badges,
		notifier:  notifier,
		publisher: publisher,
		stats:     stats,
		now:       time.Now,
		logger:    logger,
	}
}

// Submit opens a pending verification. A pending or verified claim for the
// same institution and year is a conflict.
func (s *verificationServiceImpl) Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitVerificationRequest) (*models.AlumniVerification, error) {
	institution := strings.TrimSpace(req.Institution)
	if institution == "" {
		return nil, apperrors.NewValidationError("institution", "institution is required")
	}
	if req.GraduationYear < models.MinGraduationYear || req.GraduationYear > models.MaxGraduationYear {
		return nil, apperrors.NewValidationError("graduationYear",
			fmt.Sprintf("graduation year must be between %d and %d", models.MinGraduationYear, models.MaxGraduationYear))
	}
	if !req.VerificationMethod.Valid() {
		return nil, apperrors.NewValidationError("verificationMethod", "unknown verification method")
	}

	active, err := s.repo.HasActive(ctx, userID, institution, req.GraduationYear)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperrors.ErrDuplicatePending
	}

	v := &models.AlumniVerification{
		UserID:           userID,
		Institution:      institution,
		GraduationYear:   req.GraduationYear,
		DegreeProgram:    strings.TrimSpace(req.DegreeProgram),
		Status:           models.VerificationPending,
		Method:           req.VerificationMethod,
		VerificationData: req.VerificationData,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", userID.String()).Str("verificationID", v.ID.String()).Msg("Alumni verification submitted")
	return v, nil
}

// Approve verifies a pending claim and flags the owner as alumni in the same transaction
func (s *verificationServiceImpl) Approve(ctx context.Context, verificationID, approverID uuid.UUID) (*models.AlumniVerification, error) {
	return s.decide(ctx, verificationID, approverID, models.VerificationVerified)
}

// Reject closes a pending claim. The alumni flag is left untouched.
func (s *verificationServiceImpl) Reject(ctx context.Context, verificationID, rejecterID uuid.UUID) (*models.AlumniVerification, error) {
	return s.decide(ctx, verificationID, rejecterID, models.VerificationRejected)
}

// Decide dispatches an admin decision
func (s *verificationServiceImpl) Decide(ctx context.Context, verificationID, adminID uuid.UUID, status models.VerificationStatus) (*models.AlumniVerification, error) {
	switch status {
	case models.VerificationVerified, models.VerificationRejected:
		return s.decide(ctx, verificationID, adminID, status)
	default:
		return nil, apperrors.NewValidationError("verificationStatus", "decision must be verified or rejected")
	}
}

func (s *verificationServiceImpl) decide(ctx context.Context, verificationID, adminID uuid.UUID, to models.VerificationStatus) (*models.AlumniVerification, error) {
	var v *models.AlumniVerification
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		v, err = s.repo.GetByIDForUpdate(ctx, tx, verificationID)
		if err != nil {
			return err
		}

		at := s.now().UTC()
		from := v.Status
		var moved bool
		if to == models.VerificationVerified {
			moved = v.Approve(adminID, at)
		} else {
			moved = v.Reject(adminID, at)
		}
		if !moved {
			return apperrors.NewInvalidTransitionError("verification", string(from), string(to))
		}

		if err := s.repo.UpdateDecision(ctx, tx, v); err != nil {
			return err
		}
		if to == models.VerificationVerified {
			return s.userRepo.SetAlumni(ctx, tx, v.UserID, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("verificationID", v.ID.String()).
		Str("adminID", adminID.String()).
		Str("status", string(v.Status)).
		Msg("Verification decided")

	s.afterDecision(ctx, v)
	return v, nil
}

func (s *verificationServiceImpl) afterDecision(ctx context.Context, v *models.AlumniVerification) {
	s.stats.Invalidate(ctx, v.UserID)
	if err := s.publisher.Publish(ctx, events.New(events.VerificationDecided, v.UserID.String(), v)); err != nil {
		s.logger.Warn().Err(err).Str("verificationID", v.ID.String()).Msg("Failed to publish verification event")
	}

	title := "Alumni verification approved"
	message := fmt.Sprintf("Your graduation from %s (%d) has been verified.", v.Institution, v.GraduationYear)
	if v.Status == models.VerificationRejected {
		title = "Alumni verification rejected"
		message = fmt.Sprintf("Your verification for %s (%d) was not approved.", v.Institution, v.GraduationYear)
	}
	if _, err := s.notifier.Notify(ctx, NotificationRequest{
		RecipientID: v.UserID,
		Type:        models.NotificationMilestoneAchieved,
		Title:       title,
		Message:     message,
		Priority:    models.PriorityHigh,
		Reference:   &models.Reference{ID: v.ID, Type: "verification"},
	}); err != nil {
		s.logger.Warn().Err(err).Str("verificationID", v.ID.String()).Msg("Failed to notify verification decision")
	}

	if v.Status == models.VerificationVerified && s.badges != nil {
		if _, err := s.badges.EvaluateBadges(ctx, v.UserID); err != nil {
			s.logger.Error().Err(err).Str("userID", v.UserID.String()).Msg("Badge evaluation failed after verification")
		}
	}
}

// Get returns a verification visible to its owner or an admin
func (s *verificationServiceImpl) Get(ctx context.Context, actor auth.Actor, verificationID uuid.UUID) (*models.AlumniVerification, error) {
	v, err := s.repo.GetByID(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && v.UserID != actor.UserID {
		return nil, apperrors.ErrVerificationNotFound
	}
	return v, nil
}

// ListMine returns the caller's verifications
func (s *verificationServiceImpl) ListMine(ctx context.Context, userID uuid.UUID, page, size int) (*dto.VerificationListResponse, error) {
	return s.list(ctx, models.VerificationFilter{UserID: &userID}, page, size)
}

// ListAll returns every verification, optionally filtered by status
func (s *verificationServiceImpl) ListAll(ctx context.Context, status *models.VerificationStatus, page, size int) (*dto.VerificationListResponse, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown verification status")
	}
	return s.list(ctx, models.VerificationFilter{Status: status}, page, size)
}

func (s *verificationServiceImpl) list(ctx context.Context, filter models.VerificationFilter, page, size int) (*dto.VerificationListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing verifications: %w", err)
	}
	return &dto.VerificationListResponse{
		Verifications:  items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}
