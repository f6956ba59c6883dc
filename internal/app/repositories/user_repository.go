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

var userColumns = []string{
	"id", "email", "username", "password_hash", "is_verified", "is_alumni",
	"is_active", "is_staff", "last_login_at", "created_at", "updated_at",
}

var profileColumns = []string{
	"user_id", "academic_info", "professional_info", "bio", "avatar_url",
	"interests", "social_links", "role", "total_points", "created_at", "updated_at",
}

// UserRepository handles users and their 1:1 profiles
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: psql}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsVerified, &u.IsAlumni,
		&u.IsActive, &u.IsStaff, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.UserID, &p.AcademicInfo, &p.ProfessionalInfo, &p.Bio, &p.AvatarURL,
		&p.Interests, &p.SocialLinks, &p.Role, &p.TotalPoints, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateUser inserts a user and fills in the generated id and timestamps
func (r *UserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "username", "password_hash", "is_verified", "is_alumni", "is_active", "is_staff").
		Values(user.Email, user.Username, user.PasswordHash, user.IsVerified, user.IsAlumni, user.IsActive, user.IsStaff).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
			return apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, "users_username_key"):
			return apperrors.ErrUsernameAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// CreateProfile inserts the profile row owned by a user
func (r *UserRepository) CreateProfile(ctx context.Context, tx pgx.Tx, p *models.Profile) error {
	sql, args, err := r.sb.Insert("profiles").
		Columns("user_id", "academic_info", "professional_info", "bio", "avatar_url", "interests", "social_links", "role", "total_points").
		Values(p.UserID, p.AcademicInfo, p.ProfessionalInfo, p.Bio, p.AvatarURL, p.Interests, p.SocialLinks, p.Role, p.TotalPoints).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create profile query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("userID", p.UserID.String()).Msg("Error creating profile")
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

func (r *UserRepository) getUserBy(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getUserBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserBy(ctx, squirrel.Expr("lower(email) = lower(?)", email))
}

func (r *UserRepository) exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	sub, args, err := r.sb.Select("1").From("users").Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	return exists, nil
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Expr("lower(email) = lower(?)", email))
}

// UsernameExists checks if a username is taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"username": username})
}

func (r *UserRepository) updateUser(ctx context.Context, tx pgx.Tx, id uuid.UUID, set map[string]interface{}) error {
	set["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("users").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := conn(r.db, tx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return apperrors.ErrUsernameAlreadyExists
		}
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateUsername changes the display handle
func (r *UserRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return r.updateUser(ctx, nil, id, map[string]interface{}{"username": username})
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.updateUser(ctx, nil, id, map[string]interface{}{"password_hash": hash})
}

// UpdateLastLogin stamps the last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.updateUser(ctx, nil, id, map[string]interface{}{"last_login_at": time.Now()})
}

// SetAlumni flips the alumni flag; called inside the verification approval transaction
func (r *UserRepository) SetAlumni(ctx context.Context, tx pgx.Tx, id uuid.UUID, alumni bool) error {
	return r.updateUser(ctx, tx, id, map[string]interface{}{"is_alumni": alumni})
}

// SetActive soft-deletes or restores an account
func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.updateUser(ctx, nil, id, map[string]interface{}{"is_active": active})
}

// List returns users matching filter, newest first
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, offset, limit uint64) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"username": pattern},
		})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.IsAlumni != nil {
		where = append(where, squirrel.Eq{"is_alumni": *filter.IsAlumni})
	}

	cols := append(append([]string{}, userColumns...), "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("users").Where(where).
		OrderBy("created_at DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	var total int64
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsVerified, &u.IsAlumni,
			&u.IsActive, &u.IsStaff, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

// GetProfile loads the profile of a user
func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return r.getProfile(ctx, nil, userID, false)
}

// GetProfileForUpdate locks the profile row for the rest of tx
func (r *UserRepository) GetProfileForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Profile, error) {
	if err := requireTx(tx, "GetProfileForUpdate"); err != nil {
		return nil, err
	}
	return r.getProfile(ctx, tx, userID, true)
}

func (r *UserRepository) getProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, lock bool) (*models.Profile, error) {
	q := r.sb.Select(profileColumns...).From("profiles").Where(squirrel.Eq{"user_id": userID})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p, err := scanProfile(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error scanning profile row")
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return p, nil
}

// UpdateProfile writes the editable profile fields. total_points is owned by the ledger.
func (r *UserRepository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("profiles").
		Set("academic_info", p.AcademicInfo).
		Set("professional_info", p.ProfessionalInfo).
		Set("bio", p.Bio).
		Set("avatar_url", p.AvatarURL).
		Set("interests", p.Interests).
		Set("social_links", p.SocialLinks).
		Set("role", p.Role).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"user_id": p.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", p.UserID.String()).Msg("Error updating profile")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateTotalPoints sets the cached balance; callers hold the profile lock
func (r *UserRepository) UpdateTotalPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, total int64) error {
	sql, args, err := r.sb.Update("profiles").
		Set("total_points", total).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update total points query: %w", err)
	}

	tag, err := conn(r.db, tx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating total points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetStats aggregates the gamification summary of a user in one round trip
func (r *UserRepository) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	const query = `
		SELECT
			p.total_points,
			u.is_alumni,
			u.is_verified,
			(SELECT COUNT(*) FROM alumni_verifications v WHERE v.user_id = u.id),
			(SELECT COUNT(*) FROM alumni_verifications v WHERE v.user_id = u.id AND v.verification_status = 'verified'),
			(SELECT COUNT(*) FROM user_badges b WHERE b.user_id = u.id),
			(SELECT COUNT(*) FROM session_participants sp
				JOIN sessions s ON s.id = sp.session_id
				WHERE sp.user_id = u.id AND s.status = 'completed'),
			(SELECT COUNT(*) FROM sessions s WHERE s.speaker_id = u.id AND s.status = 'completed'),
			(SELECT COUNT(*) FROM community_articles a WHERE a.author_id = u.id AND a.is_published)
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1`

	st := &models.UserStats{UserID: userID}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&st.TotalPoints, &st.IsAlumni, &st.IsVerified,
		&st.VerificationCount, &st.VerifiedVerifications, &st.BadgeCount,
		&st.SessionsAttended, &st.SessionsHosted, &st.ArticlesPublished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error computing user stats")
		return nil, fmt.Errorf("error computing user stats: %w", err)
	}
	return st, nil
}
