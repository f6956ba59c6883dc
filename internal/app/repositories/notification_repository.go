package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/logger"
)

var notificationColumns = []string{
	"id", "recipient_id", "notification_type", "title", "message", "priority",
	"is_read", "is_email_sent", "action_url", "reference_id", "reference_type", "created_at", "read_at",
}

var preferenceColumns = []string{
	"user_id",
	"email_sessions", "email_recordings", "email_feedback", "email_community", "email_milestones", "email_mentorship", "email_career",
	"in_app_sessions", "in_app_recordings", "in_app_feedback", "in_app_community", "in_app_milestones", "in_app_mentorship", "in_app_career",
	"quiet_hours_start", "quiet_hours_end", "updated_at",
}

// NotificationRepository stores the inbox and delivery preferences
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db, sb: psql}
}

// Create stores an inbox entry
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns("recipient_id", "notification_type", "title", "message", "priority", "is_email_sent", "action_url", "reference_id", "reference_type").
		Values(n.RecipientID, n.Type, n.Title, n.Message, n.Priority, n.IsEmailSent, n.ActionURL, n.ReferenceID, n.ReferenceType).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		logger.Error().Err(err).Str("recipientID", n.RecipientID.String()).Msg("Error creating notification")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func scanNotification(row pgx.Row, extra ...any) (*models.Notification, error) {
	n := &models.Notification{}
	dest := []any{&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &n.Priority,
		&n.IsRead, &n.IsEmailSent, &n.ActionURL, &n.ReferenceID, &n.ReferenceType, &n.CreatedAt, &n.ReadAt}
	err := row.Scan(append(dest, extra...)...)
	return n, err
}

// GetByID retrieves a notification
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	sql, args, err := r.sb.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notification query: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("notification not found")
		}
		return nil, fmt.Errorf("error retrieving notification: %w", err)
	}
	return n, nil
}

// List returns a page of a user's inbox, newest first
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit uint64) ([]*models.Notification, int64, error) {
	where := squirrel.Eq{"recipient_id": userID}
	if unreadOnly {
		where["is_read"] = false
	}
	cols := append(append([]string{}, notificationColumns...), "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("notifications").Where(where).
		OrderBy("created_at DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	items := []*models.Notification{}
	var total int64
	for rows.Next() {
		n, err := scanNotification(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

// CountUnread counts unread inbox entries
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("notifications").
		Where(squirrel.Eq{"recipient_id": userID, "is_read": false}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unread count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead stamps read_at once; already-read rows are left alone
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"id": id, "is_read": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread entry of a user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"recipient_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetEmailSent records that the email hand-off happened
func (r *NotificationRepository) SetEmailSent(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Update("notifications").Set("is_email_sent", true).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build email sent query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error flagging email sent: %w", err)
	}
	return nil
}

// GetPreferences loads a user's delivery preferences
func (r *NotificationRepository) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	sql, args, err := r.sb.Select(preferenceColumns...).From("notification_preferences").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get preferences query: %w", err)
	}

	p := &models.NotificationPreference{}
	var start, end *string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.UserID,
		&p.EmailSessions, &p.EmailRecordings, &p.EmailFeedback, &p.EmailCommunity, &p.EmailMilestones, &p.EmailMentorship, &p.EmailCareer,
		&p.InAppSessions, &p.InAppRecordings, &p.InAppFeedback, &p.InAppCommunity, &p.InAppMilestones, &p.InAppMentorship, &p.InAppCareer,
		&start, &end, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("notification preferences not found")
		}
		return nil, fmt.Errorf("error retrieving preferences: %w", err)
	}

	if p.QuietHoursStart, err = parseClock(start); err != nil {
		return nil, err
	}
	if p.QuietHoursEnd, err = parseClock(end); err != nil {
		return nil, err
	}
	return p, nil
}

func parseClock(s *string) (*models.ClockTime, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	c, err := models.ParseClockTime(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func formatClock(c *models.ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func preferenceValues(p *models.NotificationPreference) map[string]interface{} {
	return map[string]interface{}{
		"email_sessions":    p.EmailSessions,
		"email_recordings":  p.EmailRecordings,
		"email_feedback":    p.EmailFeedback,
		"email_community":   p.EmailCommunity,
		"email_milestones":  p.EmailMilestones,
		"email_mentorship":  p.EmailMentorship,
		"email_career":      p.EmailCareer,
		"in_app_sessions":   p.InAppSessions,
		"in_app_recordings": p.InAppRecordings,
		"in_app_feedback":   p.InAppFeedback,
		"in_app_community":  p.InAppCommunity,
		"in_app_milestones": p.InAppMilestones,
		"in_app_mentorship": p.InAppMentorship,
		"in_app_career":     p.InAppCareer,
		"quiet_hours_start": formatClock(p.QuietHoursStart),
		"quiet_hours_end":   formatClock(p.QuietHoursEnd),
		"updated_at":        p.UpdatedAt,
	}
}

// CreatePreferences inserts the default row created with a user
func (r *NotificationRepository) CreatePreferences(ctx context.Context, tx pgx.Tx, p *models.NotificationPreference) error {
	p.UpdatedAt = time.Now()
	values := preferenceValues(p)
	values["user_id"] = p.UserID
	sql, args, err := r.sb.Insert("notification_preferences").SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create preferences query: %w", err)
	}

	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userID", p.UserID.String()).Msg("Error creating notification preferences")
		return fmt.Errorf("error creating preferences: %w", err)
	}
	return nil
}

// UpsertPreferences writes every preference column
func (r *NotificationRepository) UpsertPreferences(ctx context.Context, p *models.NotificationPreference) error {
	p.UpdatedAt = time.Now()
	values := preferenceValues(p)

	assignments := make([]string, 0, len(values))
	for _, col := range preferenceColumns[1:] {
		assignments = append(assignments, col+" = EXCLUDED."+col)
	}

	values["user_id"] = p.UserID
	sql, args, err := r.sb.Insert("notification_preferences").SetMap(values).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " + strings.Join(assignments, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert preferences query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userID", p.UserID.String()).Msg("Error saving notification preferences")
		return fmt.Errorf("error saving preferences: %w", err)
	}
	return nil
}
