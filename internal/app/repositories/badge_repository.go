package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/dberrors"
	"github.com/yigit/alumnihub/internal/pkg/logger"
)

var badgeColumns = []string{
	"b.id", "b.name", "b.description", "b.badge_type", "b.rarity", "b.icon_url",
	"b.required_points", "b.criteria", "b.is_active", "b.created_at",
}

// BadgeRepository holds the badge catalog and user awards
type BadgeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBadgeRepository creates a new BadgeRepository
func NewBadgeRepository(db *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{db: db, sb: psql}
}

func scanBadgeRows(rows pgx.Rows) ([]*models.Badge, error) {
	defer rows.Close()
	badges := []*models.Badge{}
	for rows.Next() {
		b := &models.Badge{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.BadgeType, &b.Rarity, &b.IconURL,
			&b.RequiredPoints, &b.Criteria, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning badge row: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// List returns the catalog ordered by (required_points, name)
func (r *BadgeRepository) List(ctx context.Context, activeOnly bool) ([]*models.Badge, error) {
	q := r.sb.Select(badgeColumns...).From("badges b").OrderBy("b.required_points", "b.name")
	if activeOnly {
		q = q.Where(squirrel.Eq{"b.is_active": true})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list badges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing badges")
		return nil, fmt.Errorf("error listing badges: %w", err)
	}
	return scanBadgeRows(rows)
}

// ListUnearned returns active badges the user does not hold yet
func (r *BadgeRepository) ListUnearned(ctx context.Context, userID uuid.UUID) ([]*models.Badge, error) {
	sql, args, err := r.sb.Select(badgeColumns...).From("badges b").
		Where(squirrel.Eq{"b.is_active": true}).
		Where("NOT EXISTS (SELECT 1 FROM user_badges ub WHERE ub.badge_id = b.id AND ub.user_id = ?)", userID).
		OrderBy("b.required_points", "b.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unearned badges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing unearned badges: %w", err)
	}
	return scanBadgeRows(rows)
}

// Create adds a badge to the catalog
func (r *BadgeRepository) Create(ctx context.Context, b *models.Badge) error {
	sql, args, err := r.sb.Insert("badges").
		Columns("name", "description", "badge_type", "rarity", "icon_url", "required_points", "criteria", "is_active").
		Values(b.Name, b.Description, b.BadgeType, b.Rarity, b.IconURL, b.RequiredPoints, b.Criteria, b.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create badge query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "badges_name_key") {
			return apperrors.NewConflictError("badge name already exists")
		}
		return fmt.Errorf("error creating badge: %w", err)
	}
	return nil
}

// Award inserts a user badge. It reports false when the user already held it.
func (r *BadgeRepository) Award(ctx context.Context, ub *models.UserBadge) (bool, error) {
	sql, args, err := r.sb.Insert("user_badges").
		Columns("user_id", "badge_id", "earned_for").
		Values(ub.UserID, ub.BadgeID, ub.EarnedFor).
		Suffix("ON CONFLICT (user_id, badge_id) DO NOTHING RETURNING id, earned_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build award badge query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error awarding badge: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(&ub.ID, &ub.EarnedAt); err != nil {
		return false, fmt.Errorf("error scanning awarded badge: %w", err)
	}
	return true, nil
}

// ListUserBadges returns a user's awards with the badge attached, newest first
func (r *BadgeRepository) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error) {
	cols := append([]string{"ub.id", "ub.user_id", "ub.badge_id", "ub.earned_at", "ub.earned_for"}, badgeColumns...)
	sql, args, err := r.sb.Select(cols...).
		From("user_badges ub").
		Join("badges b ON b.id = ub.badge_id").
		Where(squirrel.Eq{"ub.user_id": userID}).
		OrderBy("ub.earned_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user badges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing user badges: %w", err)
	}
	defer rows.Close()

	items := []*models.UserBadge{}
	for rows.Next() {
		ub := &models.UserBadge{Badge: &models.Badge{}}
		b := ub.Badge
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.EarnedAt, &ub.EarnedFor,
			&b.ID, &b.Name, &b.Description, &b.BadgeType, &b.Rarity, &b.IconURL,
			&b.RequiredPoints, &b.Criteria, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user badge: %w", err)
		}
		items = append(items, ub)
	}
	return items, rows.Err()
}
