package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/events"
)

// BadgeService defines the interface for badge-related operations
type BadgeService interface {
	EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error)
	ListCatalog(ctx context.Context) ([]*models.Badge, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error)
	CreateBadge(ctx context.Context, req *dto.CreateBadgeRequest) (*models.Badge, error)
}

type badgeServiceImpl struct {
	badgeRepo BadgeStore
	userRepo  UserStore
	notifier  Notifier
	publisher events.Publisher
	stats     cache.StatsCache
	rules     *ruleEvaluator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewBadgeService creates a new BadgeService
func NewBadgeService(
	badgeRepo BadgeStore,
	userRepo UserStore,
	notifier Notifier,
	publisher events.Publisher,
	stats cache.StatsCache,
	logger zerolog.Logger,
) BadgeService {
	return &badgeServiceImpl{
		badgeRepo: badgeRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		publisher: publisher,
		stats:     stats,
		rules:     &ruleEvaluator{},
		now:       time.Now,
		logger:    logger,
	}
}

// EvaluateBadges awards every active, unearned badge whose threshold and
// criteria the user now satisfies. Returns only the badges newly awarded.
func (s *badgeServiceImpl) EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error) {
	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading stats for badge evaluation: %w", err)
	}

	candidates, err := s.badgeRepo.ListUnearned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading unearned badges: %w", err)
	}

	env := newBadgeEnv(stats)
	var awarded []*models.UserBadge
	for _, badge := range candidates {
		if stats.TotalPoints < badge.RequiredPoints {
			continue
		}
		ok, err := s.rules.eval(badge.Criteria, env)
		if err != nil {
			s.logger.Warn().Err(err).Str("badgeID", badge.ID.String()).Msg("Skipping badge with unusable criteria")
			continue
		}
		if !ok {
			continue
		}

		ub := &models.UserBadge{
			UserID:    userID,
			BadgeID:   badge.ID,
			EarnedAt:  s.now().UTC(),
			EarnedFor: fmt.Sprintf("Reached %d points", stats.TotalPoints),
			Badge:     badge,
		}
		inserted, err := s.badgeRepo.Award(ctx, ub)
		if err != nil {
			return awarded, fmt.Errorf("error awarding badge %s: %w", badge.ID, err)
		}
		if !inserted {
			continue
		}
		awarded = append(awarded, ub)
		env.Badges++
		s.afterAward(ctx, ub)
	}

	if len(awarded) > 0 {
		s.stats.Invalidate(ctx, userID)
		s.logger.Info().Str("userID", userID.String()).Int("count", len(awarded)).Msg("Badges awarded")
	}
	return awarded, nil
}

func (s *badgeServiceImpl) afterAward(ctx context.Context, ub *models.UserBadge) {
	if _, err := s.notifier.Notify(ctx, NotificationRequest{
		RecipientID: ub.UserID,
		Type:        models.NotificationBadgeEarned,
		Title:       "Badge earned: " + ub.Badge.Name,
		Message:     ub.Badge.Description,
		Priority:    models.PriorityNormal,
		Reference:   &models.Reference{ID: ub.BadgeID, Type: "badge"},
	}); err != nil {
		s.logger.Warn().Err(err).Str("userID", ub.UserID.String()).Msg("Failed to notify badge award")
	}
	if err := s.publisher.Publish(ctx, events.New(events.BadgeAwarded, ub.UserID.String(), ub)); err != nil {
		s.logger.Warn().Err(err).Str("userID", ub.UserID.String()).Msg("Failed to publish badge event")
	}
}

// ListCatalog returns the active badges
func (s *badgeServiceImpl) ListCatalog(ctx context.Context) ([]*models.Badge, error) {
	return s.badgeRepo.List(ctx, true)
}

// ListUserBadges returns the badges a user has earned
func (s *badgeServiceImpl) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error) {
	return s.badgeRepo.ListUserBadges(ctx, userID)
}

// CreateBadge adds a badge after checking that its criteria compile
func (s *badgeServiceImpl) CreateBadge(ctx context.Context, req *dto.CreateBadgeRequest) (*models.Badge, error) {
	if req.Criteria != "" {
		if _, err := s.rules.compile(req.Criteria); err != nil {
			return nil, apperrors.NewValidationError("criteria", err.Error())
		}
	}

	badge := &models.Badge{
		Name:           req.Name,
		Description:    req.Description,
		BadgeType:      req.BadgeType,
		Rarity:         req.Rarity,
		IconURL:        req.IconURL,
		RequiredPoints: req.RequiredPoints,
		Criteria:       req.Criteria,
		IsActive:       true,
	}
	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		return nil, err
	}
	s.logger.Info().Str("badgeID", badge.ID.String()).Str("name", badge.Name).Msg("Badge created")
	return badge, nil
}
