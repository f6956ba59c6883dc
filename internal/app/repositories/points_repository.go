package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/logger"
)

// PointsRepository is the append-only ledger store. There is intentionally
// no update or delete method.
type PointsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPointsRepository creates a new PointsRepository
func NewPointsRepository(db *pgxpool.Pool) *PointsRepository {
	return &PointsRepository{db: db, sb: psql}
}

// Create appends a ledger row inside the caller's transaction
func (r *PointsRepository) Create(ctx context.Context, tx pgx.Tx, t *models.PointsTransaction) error {
	sql, args, err := r.sb.Insert("points_transactions").
		Columns("user_id", "transaction_type", "source", "points", "balance_after", "description", "reference_id", "reference_type").
		Values(t.UserID, t.TransactionType, t.Source, t.Points, t.BalanceAfter, t.Description, t.ReferenceID, t.ReferenceType).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create transaction query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		logger.Error().Err(err).Str("userID", t.UserID.String()).Int64("points", t.Points).Msg("Error appending ledger row")
		return fmt.Errorf("error creating points transaction: %w", err)
	}
	return nil
}

// ListByUser returns a user's ledger newest first
func (r *PointsRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit uint64) ([]*models.PointsTransaction, int64, error) {
	sql, args, err := r.sb.Select("id", "user_id", "transaction_type", "source", "points", "balance_after",
		"description", "reference_id", "reference_type", "created_at", "COUNT(*) OVER() AS total_count").
		From("points_transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list transactions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error listing ledger rows")
		return nil, 0, fmt.Errorf("error listing points transactions: %w", err)
	}
	defer rows.Close()

	items := []*models.PointsTransaction{}
	var total int64
	for rows.Next() {
		t := &models.PointsTransaction{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.TransactionType, &t.Source, &t.Points, &t.BalanceAfter,
			&t.Description, &t.ReferenceID, &t.ReferenceType, &t.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning points transaction: %w", err)
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
