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

var sessionColumns = []string{
	"s.id", "s.title", "s.description", "s.session_type", "s.status", "s.scheduled_date", "s.duration_minutes",
	"s.meeting_link", "s.meeting_platform", "s.speaker_id", "s.moderator_id", "s.community_id", "s.topics",
	"s.max_participants", "s.is_public", "s.started_at", "s.ended_at", "s.created_at", "s.updated_at",
}

var participantColumns = []string{
	"id", "session_id", "user_id", "role", "joined_at", "left_at",
	"duration_attended", "asked_questions", "provided_feedback",
}

const participantCountExpr = "(SELECT COUNT(*) FROM session_participants sp WHERE sp.session_id = s.id) AS participant_count"

// SessionRepository stores live sessions, participants, recordings and feedback
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db, sb: psql}
}

func scanSession(row pgx.Row, extra ...any) (*models.Session, error) {
	s := &models.Session{}
	dest := []any{&s.ID, &s.Title, &s.Description, &s.SessionType, &s.Status, &s.ScheduledDate, &s.DurationMinutes,
		&s.MeetingLink, &s.MeetingPlatform, &s.SpeakerID, &s.ModeratorID, &s.CommunityID, &s.Topics,
		&s.MaxParticipants, &s.IsPublic, &s.StartedAt, &s.EndedAt, &s.CreatedAt, &s.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return s, err
}

// Create inserts a session
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	topics := s.Topics
	if topics == nil {
		topics = []string{}
	}
	sql, args, err := r.sb.Insert("sessions").
		Columns("title", "description", "session_type", "status", "scheduled_date", "duration_minutes",
			"meeting_link", "meeting_platform", "speaker_id", "moderator_id", "community_id", "topics",
			"max_participants", "is_public").
		Values(s.Title, s.Description, s.SessionType, s.Status, s.ScheduledDate, s.DurationMinutes,
			s.MeetingLink, s.MeetingPlatform, s.SpeakerID, s.ModeratorID, s.CommunityID, topics,
			s.MaxParticipants, s.IsPublic).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("title", s.Title).Msg("Error creating session")
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// GetByID retrieves a session with its participant count
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	cols := append(append([]string{}, sessionColumns...), participantCountExpr)
	sql, args, err := r.sb.Select(cols...).From("sessions s").Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	var count int
	s, err := scanSession(r.db.QueryRow(ctx, sql, args...), &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}
	s.ParticipantCount = count
	return s, nil
}

// GetByIDForUpdate locks the session row. Joins serialise on this lock.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Session, error) {
	if err := requireTx(tx, "GetByIDForUpdate"); err != nil {
		return nil, err
	}
	sql, args, err := r.sb.Select(sessionColumns...).From("sessions s").
		Where(squirrel.Eq{"s.id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock session query: %w", err)
	}

	s, err := scanSession(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error locking session: %w", err)
	}
	return s, nil
}

// ListPublic returns public sessions, latest scheduled first
func (r *SessionRepository) ListPublic(ctx context.Context, offset, limit uint64) ([]*models.Session, int64, error) {
	cols := append(append([]string{}, sessionColumns...), participantCountExpr, "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("sessions s").
		Where(squirrel.Eq{"s.is_public": true}).
		Where(squirrel.NotEq{"s.status": models.SessionDraft}).
		OrderBy("s.scheduled_date DESC").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list sessions query")
		return nil, 0, fmt.Errorf("error listing sessions: %w", err)
	}
	defer rows.Close()

	items := []*models.Session{}
	var total int64
	for rows.Next() {
		var count int
		s, err := scanSession(rows, &count, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning session row: %w", err)
		}
		s.ParticipantCount = count
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// UpdateStatus persists status and the started/ended stamps
func (r *SessionRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, s *models.Session) error {
	sql, args, err := r.sb.Update("sessions").
		Set("status", s.Status).
		Set("started_at", s.StartedAt).
		Set("ended_at", s.EndedAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update session status query: %w", err)
	}

	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("sessionID", s.ID.String()).Msg("Error updating session status")
		return fmt.Errorf("error updating session status: %w", err)
	}
	return nil
}

func scanParticipant(row pgx.Row) (*models.SessionParticipant, error) {
	p := &models.SessionParticipant{}
	err := row.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Role, &p.JoinedAt, &p.LeftAt,
		&p.DurationAttended, &p.AskedQuestions, &p.ProvidedFeedback)
	return p, err
}

// GetParticipant returns the (session, user) row
func (r *SessionRepository) GetParticipant(ctx context.Context, tx pgx.Tx, sessionID, userID uuid.UUID) (*models.SessionParticipant, error) {
	sql, args, err := r.sb.Select(participantColumns...).From("session_participants").
		Where(squirrel.Eq{"session_id": sessionID, "user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get participant query: %w", err)
	}

	p, err := scanParticipant(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("participant not found")
		}
		return nil, fmt.Errorf("error retrieving participant: %w", err)
	}
	return p, nil
}

// CountParticipants counts every participant row of a session
func (r *SessionRepository) CountParticipants(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("session_participants").
		Where(squirrel.Eq{"session_id": sessionID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count participants query: %w", err)
	}

	var count int
	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting participants: %w", err)
	}
	return count, nil
}

// AddParticipant inserts a participant. It reports false when the
// (session, user) row already existed.
func (r *SessionRepository) AddParticipant(ctx context.Context, tx pgx.Tx, p *models.SessionParticipant) (bool, error) {
	sql, args, err := r.sb.Insert("session_participants").
		Columns("session_id", "user_id", "role").
		Values(p.SessionID, p.UserID, p.Role).
		Suffix("ON CONFLICT (session_id, user_id) DO NOTHING RETURNING id, joined_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build add participant query: %w", err)
	}

	err = conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&p.ID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		logger.Error().Err(err).Str("sessionID", p.SessionID.String()).Msg("Error adding participant")
		return false, fmt.Errorf("error adding participant: %w", err)
	}
	return true, nil
}

// LeaveParticipant stamps left_at and the attended minutes
func (r *SessionRepository) LeaveParticipant(ctx context.Context, sessionID, userID uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("session_participants").
		Set("left_at", at).
		Set("duration_attended", squirrel.Expr("GREATEST(0, EXTRACT(EPOCH FROM (?::timestamptz - joined_at))::int / 60)", at)).
		Where(squirrel.Eq{"session_id": sessionID, "user_id": userID, "left_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build leave session query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error leaving session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("active participation not found")
	}
	return nil
}

// ListParticipants returns every participant of a session in join order
func (r *SessionRepository) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionParticipant, error) {
	sql, args, err := r.sb.Select(participantColumns...).From("session_participants").
		Where(squirrel.Eq{"session_id": sessionID}).OrderBy("joined_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list participants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	items := []*models.SessionParticipant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// UpsertRecording creates or replaces the recording of a session
func (r *SessionRepository) UpsertRecording(ctx context.Context, rec *models.SessionRecording) error {
	sql, args, err := r.sb.Insert("session_recordings").
		Columns("session_id", "recording_url", "thumbnail_url", "duration_seconds", "processing_status", "processed_at").
		Values(rec.SessionID, rec.RecordingURL, rec.ThumbnailURL, rec.DurationSeconds, rec.ProcessingStatus, rec.ProcessedAt).
		Suffix(`ON CONFLICT (session_id) DO UPDATE SET
			recording_url = EXCLUDED.recording_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			duration_seconds = EXCLUDED.duration_seconds,
			processing_status = EXCLUDED.processing_status,
			processed_at = EXCLUDED.processed_at
			RETURNING id, views_count, download_count, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert recording query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rec.ID, &rec.ViewsCount, &rec.DownloadCount, &rec.CreatedAt); err != nil {
		logger.Error().Err(err).Str("sessionID", rec.SessionID.String()).Msg("Error saving recording")
		return fmt.Errorf("error saving recording: %w", err)
	}
	return nil
}

// GetRecording retrieves the recording of a session
func (r *SessionRepository) GetRecording(ctx context.Context, sessionID uuid.UUID) (*models.SessionRecording, error) {
	sql, args, err := r.sb.Select("id", "session_id", "recording_url", "thumbnail_url", "duration_seconds",
		"processing_status", "views_count", "download_count", "processed_at", "created_at").
		From("session_recordings").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get recording query: %w", err)
	}

	rec := &models.SessionRecording{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&rec.ID, &rec.SessionID, &rec.RecordingURL, &rec.ThumbnailURL,
		&rec.DurationSeconds, &rec.ProcessingStatus, &rec.ViewsCount, &rec.DownloadCount, &rec.ProcessedAt, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("recording not found")
		}
		return nil, fmt.Errorf("error retrieving recording: %w", err)
	}
	return rec, nil
}

// CreateFeedback stores one rating per (session, user)
func (r *SessionRepository) CreateFeedback(ctx context.Context, tx pgx.Tx, f *models.SessionFeedback) error {
	sql, args, err := r.sb.Insert("session_feedback").
		Columns("session_id", "user_id", "rating", "comment", "content_quality", "speaker_effectiveness", "technical_quality").
		Values(f.SessionID, f.UserID, f.Rating, f.Comment, f.ContentQuality, f.SpeakerEffectiveness, f.TechnicalQuality).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create feedback query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&f.ID, &f.CreatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("feedback already submitted for this session")
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("rating", "ratings must be between 1 and 5")
		}
		return fmt.Errorf("error creating feedback: %w", err)
	}
	return nil
}

// MarkFeedbackProvided flags the participant row after a rating
func (r *SessionRepository) MarkFeedbackProvided(ctx context.Context, tx pgx.Tx, sessionID, userID uuid.UUID) error {
	sql, args, err := r.sb.Update("session_participants").
		Set("provided_feedback", true).
		Where(squirrel.Eq{"session_id": sessionID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build feedback flag query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error flagging feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all ratings for a session, newest first
func (r *SessionRepository) ListFeedback(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionFeedback, error) {
	sql, args, err := r.sb.Select("id", "session_id", "user_id", "rating", "comment",
		"content_quality", "speaker_effectiveness", "technical_quality", "created_at").
		From("session_feedback").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing feedback: %w", err)
	}
	defer rows.Close()

	items := []*models.SessionFeedback{}
	for rows.Next() {
		f := &models.SessionFeedback{}
		if err := rows.Scan(&f.ID, &f.SessionID, &f.UserID, &f.Rating, &f.Comment,
			&f.ContentQuality, &f.SpeakerEffectiveness, &f.TechnicalQuality, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
