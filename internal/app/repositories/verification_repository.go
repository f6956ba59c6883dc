package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/dberrors"
	"github.com/yigit/alumnihub/internal/pkg/logger"
)

var verificationColumns = []string{
	"id", "user_id", "institution", "graduation_year", "degree_program",
	"verification_status", "verification_method", "verification_data",
	"verified_at", "verified_by", "created_at", "updated_at",
}

// VerificationRepository stores alumni verification requests
type VerificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{db: db, sb: psql}
}

func scanVerification(row pgx.Row, extra ...any) (*models.AlumniVerification, error) {
	v := &models.AlumniVerification{}
	dest := []any{&v.ID, &v.UserID, &v.Institution, &v.GraduationYear, &v.DegreeProgram,
		&v.Status, &v.Method, &v.VerificationData, &v.VerifiedAt, &v.VerifiedBy, &v.CreatedAt, &v.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return v, err
}

// Create inserts a pending verification. The (user, institution, year) unique
// constraint surfaces as ErrDuplicatePending.
func (r *VerificationRepository) Create(ctx context.Context, v *models.AlumniVerification) error {
	data := v.VerificationData
	if data == nil {
		data = map[string]interface{}{}
	}
	sql, args, err := r.sb.Insert("alumni_verifications").
		Columns("user_id", "institution", "graduation_year", "degree_program", "verification_status", "verification_method", "verification_data").
		Values(v.UserID, v.Institution, v.GraduationYear, v.DegreeProgram, v.Status, v.Method, data).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create verification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicatePending
		}
		logger.Error().Err(err).Str("userID", v.UserID.String()).Msg("Error creating verification")
		return fmt.Errorf("error creating verification: %w", err)
	}
	return nil
}

// HasActive reports a pending or verified claim for the same triple
func (r *VerificationRepository) HasActive(ctx context.Context, userID uuid.UUID, institution string, year int) (bool, error) {
	sub, args, err := r.sb.Select("1").From("alumni_verifications").
		Where(squirrel.Eq{
			"user_id":             userID,
			"institution":         institution,
			"graduation_year":     year,
			"verification_status": []string{string(models.VerificationPending), string(models.VerificationVerified)},
		}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build active verification query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking active verification: %w", err)
	}
	return exists, nil
}

// GetByID retrieves a verification without locking
func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AlumniVerification, error) {
	return r.get(ctx, nil, id, false)
}

// GetByIDForUpdate locks the verification row for a decision
func (r *VerificationRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.AlumniVerification, error) {
	if err := requireTx(tx, "GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.get(ctx, tx, id, true)
}

func (r *VerificationRepository) get(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*models.AlumniVerification, error) {
	q := r.sb.Select(verificationColumns...).From("alumni_verifications").Where(squirrel.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get verification query: %w", err)
	}

	v, err := scanVerification(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrVerificationNotFound
		}
		return nil, fmt.Errorf("error retrieving verification: %w", err)
	}
	return v, nil
}

// UpdateDecision persists the status fields set by Approve or Reject
func (r *VerificationRepository) UpdateDecision(ctx context.Context, tx pgx.Tx, v *models.AlumniVerification) error {
	sql, args, err := r.sb.Update("alumni_verifications").
		Set("verification_status", v.Status).
		Set("verified_at", v.VerifiedAt).
		Set("verified_by", v.VerifiedBy).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": v.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update verification query: %w", err)
	}

	tag, err := conn(r.db, tx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("verificationID", v.ID.String()).Msg("Error updating verification")
		return fmt.Errorf("error updating verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVerificationNotFound
	}
	return nil
}

// List returns verifications matching filter, newest first
func (r *VerificationRepository) List(ctx context.Context, filter models.VerificationFilter, offset, limit uint64) ([]*models.AlumniVerification, int64, error) {
	where := squirrel.Eq{}
	if filter.UserID != nil {
		where["user_id"] = *filter.UserID
	}
	if filter.Status != nil {
		where["verification_status"] = *filter.Status
	}

	cols := append(append([]string{}, verificationColumns...), "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("alumni_verifications").Where(where).
		OrderBy("created_at DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list verifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list verifications query")
		return nil, 0, fmt.Errorf("error listing verifications: %w", err)
	}
	defer rows.Close()

	items := []*models.AlumniVerification{}
	var total int64
	for rows.Next() {
		v, err := scanVerification(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning verification row: %w", err)
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}
