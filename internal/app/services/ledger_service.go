package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/events"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// RecordInput is one ledger write
type RecordInput struct {
	UserID      uuid.UUID
	Amount      int64
	Source      models.PointsSource
	Description string
	Reference   *models.Reference
	// Bonus marks a positive amount as bonus and a negative one as penalty
	Bonus bool
}

// LedgerService defines the interface for points operations
type LedgerService interface {
	RecordTransaction(ctx context.Context, in RecordInput) (*models.PointsTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, size int) (*dto.TransactionListResponse, error)
	AddPoints(ctx context.Context, userID uuid.UUID, req *dto.AddPointsRequest) (*models.PointsTransaction, error)
	AdjustPoints(ctx context.Context, adminID uuid.UUID, req *dto.AdjustPointsRequest) (*models.PointsTransaction, error)
}

type ledgerServiceImpl struct {
	tx        Transactor
	userRepo  UserStore
	points    PointsStore
	badges    BadgeService
	publisher events.Publisher
	stats     cache.StatsCache
	logger    zerolog.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	tx Transactor,
	userRepo UserStore,
	points PointsStore,
	badges BadgeService,
	publisher events.Publisher,
	stats cache.StatsCache,
	logger zerolog.Logger,
) LedgerService {
	return &ledgerServiceImpl{
		tx:        tx,
		userRepo:  userRepo,
		points:    points,
		badges:    badges,
		publisher: publisher,
		stats:     stats,
		logger:    logger,
	}
}

// RecordTransaction appends a row and moves the cached balance in one
// transaction holding the profile row lock. Badge evaluation, the event and
// cache invalidation run after commit and only log on failure.
func (s *ledgerServiceImpl) RecordTransaction(ctx context.Context, in RecordInput) (*models.PointsTransaction, error) {
	if in.Amount == 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if !in.Source.Valid() {
		return nil, apperrors.ErrInvalidSource
	}

	t := &models.PointsTransaction{
		UserID:          in.UserID,
		TransactionType: models.TransactionTypeFor(in.Amount, in.Bonus),
		Source:          in.Source,
		Points:          in.Amount,
		Description:     in.Description,
	}
	if in.Reference != nil {
		ref := in.Reference.ID
		t.ReferenceID = &ref
		t.ReferenceType = in.Reference.Type
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		profile, err := s.userRepo.GetProfileForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		t.BalanceAfter = profile.TotalPoints + in.Amount
		if err := s.points.Create(ctx, tx, t); err != nil {
			return err
		}
		return s.userRepo.UpdateTotalPoints(ctx, tx, in.UserID, t.BalanceAfter)
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("userID", in.UserID.String()).Int64("amount", in.Amount).Msg("Ledger write failed")
		return nil, fmt.Errorf("error recording points: %w", err)
	}

	s.logger.Info().
		Str("userID", in.UserID.String()).
		Int64("amount", in.Amount).
		Int64("balance", t.BalanceAfter).
		Str("source", string(in.Source)).
		Msg("Points recorded")

	s.afterCommit(ctx, t)
	return t, nil
}

func (s *ledgerServiceImpl) afterCommit(ctx context.Context, t *models.PointsTransaction) {
	s.stats.Invalidate(ctx, t.UserID)
	if err := s.publisher.Publish(ctx, events.New(events.PointsRecorded, t.UserID.String(), t)); err != nil {
		s.logger.Warn().Err(err).Str("userID", t.UserID.String()).Msg("Failed to publish points event")
	}
	if s.badges == nil {
		return
	}
	if _, err := s.badges.EvaluateBadges(ctx, t.UserID); err != nil {
		s.logger.Error().Err(err).Str("userID", t.UserID.String()).Msg("Badge evaluation failed after ledger write")
	}
}

// ListTransactions returns the user's ledger, newest first
func (s *ledgerServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, page, size int) (*dto.TransactionListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.points.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return &dto.TransactionListResponse{
		Transactions:   items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// AddPoints records a self-reported community contribution
func (s *ledgerServiceImpl) AddPoints(ctx context.Context, userID uuid.UUID, req *dto.AddPointsRequest) (*models.PointsTransaction, error) {
	if req.Points <= 0 {
		return nil, apperrors.NewValidationError("points", "points must be a positive integer")
	}
	description := req.Description
	if description == "" {
		description = "Community contribution"
	}
	return s.RecordTransaction(ctx, RecordInput{
		UserID:      userID,
		Amount:      req.Points,
		Source:      models.SourceCommunityContribution,
		Description: description,
	})
}

// AdjustPoints is an admin correction with any signed non-zero amount
func (s *ledgerServiceImpl) AdjustPoints(ctx context.Context, adminID uuid.UUID, req *dto.AdjustPointsRequest) (*models.PointsTransaction, error) {
	s.logger.Info().
		Str("adminID", adminID.String()).
		Str("userID", req.UserID.String()).
		Int64("points", req.Points).
		Msg("Admin points adjustment")
	return s.RecordTransaction(ctx, RecordInput{
		UserID:      req.UserID,
		Amount:      req.Points,
		Source:      models.SourceAdminAdjustment,
		Description: req.Description,
		Reference:   &models.Reference{ID: adminID, Type: "admin"},
		Bonus:       req.Penalty && req.Points < 0,
	})
}

// awardAfterCommit records points for an activity that has already committed
func awardAfterCommit(ctx context.Context, ledger LedgerService, logger zerolog.Logger, in RecordInput) {
	if ledger == nil || in.Amount == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if _, err := ledger.RecordTransaction(ctx, in); err != nil {
		logger.Error().Err(err).
			Str("userID", in.UserID.String()).
			Str("source", string(in.Source)).
			Msg("Failed to award activity points")
	}
}
