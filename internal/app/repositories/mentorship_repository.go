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

var programColumns = []string{
	"id", "name", "description", "program_type", "status", "max_mentees_per_mentor",
	"program_duration_weeks", "is_public", "start_date", "end_date", "created_by", "created_at",
}

var mentorColumns = []string{
	"mp.id", "mp.user_id", "mp.expertise_areas", "mp.years_experience", "mp.max_mentees",
	"mp.available_for_mentorship", "mp.preferred_mentee_level", "mp.total_mentees_helped",
	"mp.average_rating", "mp.total_sessions", "mp.bio", "mp.motivation",
	"mp.is_verified", "mp.verified_at", "mp.verified_by", "mp.created_at",
}

var menteeColumns = []string{
	"id", "user_id", "current_level", "learning_goals", "career_goals", "preferred_mentor_qualities",
	"preferred_meeting_frequency", "total_mentors", "total_sessions", "bio", "motivation", "created_at",
}

var relationshipColumns = []string{
	"id", "mentor_id", "mentee_id", "program_id", "status", "goals", "expectations", "frequency",
	"start_date", "end_date", "total_sessions", "mentee_rating", "mentor_rating", "created_at", "updated_at",
}

var mentorshipSessionColumns = []string{
	"id", "relationship_id", "title", "description", "status", "scheduled_date", "duration_minutes",
	"meeting_link", "meeting_platform", "agenda", "notes", "action_items",
	"mentee_feedback", "mentor_feedback", "started_at", "ended_at", "created_at",
}

const activeMenteesExpr = "(SELECT COUNT(*) FROM mentorship_relationships r WHERE r.mentor_id = mp.user_id AND r.status = 'active') AS current_mentee_count"

// MentorshipRepository stores programs, profiles, relationships and their sessions
type MentorshipRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMentorshipRepository creates a new MentorshipRepository
func NewMentorshipRepository(db *pgxpool.Pool) *MentorshipRepository {
	return &MentorshipRepository{db: db, sb: psql}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- Programs ---

func scanProgram(row pgx.Row) (*models.MentorshipProgram, error) {
	p := &models.MentorshipProgram{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ProgramType, &p.Status, &p.MaxMenteesPerMentor,
		&p.ProgramDurationWeeks, &p.IsPublic, &p.StartDate, &p.EndDate, &p.CreatedBy, &p.CreatedAt)
	return p, err
}

// ListPrograms returns programs, optionally only public ones
func (r *MentorshipRepository) ListPrograms(ctx context.Context, publicOnly bool) ([]*models.MentorshipProgram, error) {
	q := r.sb.Select(programColumns...).From("mentorship_programs").OrderBy("created_at DESC")
	if publicOnly {
		q = q.Where(squirrel.Eq{"is_public": true})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	items := []*models.MentorshipProgram{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning program row: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// GetProgram retrieves a program
func (r *MentorshipRepository) GetProgram(ctx context.Context, id uuid.UUID) (*models.MentorshipProgram, error) {
	sql, args, err := r.sb.Select(programColumns...).From("mentorship_programs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	p, err := scanProgram(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("mentorship program not found")
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return p, nil
}

// CreateProgram inserts a program
func (r *MentorshipRepository) CreateProgram(ctx context.Context, p *models.MentorshipProgram) error {
	sql, args, err := r.sb.Insert("mentorship_programs").
		Columns("name", "description", "program_type", "status", "max_mentees_per_mentor",
			"program_duration_weeks", "is_public", "start_date", "end_date", "created_by").
		Values(p.Name, p.Description, p.ProgramType, p.Status, p.MaxMenteesPerMentor,
			p.ProgramDurationWeeks, p.IsPublic, p.StartDate, p.EndDate, p.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create program query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		logger.Error().Err(err).Str("name", p.Name).Msg("Error creating mentorship program")
		return fmt.Errorf("error creating program: %w", err)
	}
	return nil
}

// --- Mentor profiles ---

func scanMentor(row pgx.Row, extra ...any) (*models.MentorProfile, error) {
	m := &models.MentorProfile{}
	dest := []any{&m.ID, &m.UserID, &m.ExpertiseAreas, &m.YearsExperience, &m.MaxMentees,
		&m.AvailableForMentorship, &m.PreferredMenteeLevel, &m.TotalMenteesHelped,
		&m.AverageRating, &m.TotalSessions, &m.Bio, &m.Motivation,
		&m.IsVerified, &m.VerifiedAt, &m.VerifiedBy, &m.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	return m, err
}

// GetMentorByUserID loads a mentor profile with its active mentee count
func (r *MentorshipRepository) GetMentorByUserID(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	cols := append(append([]string{}, mentorColumns...), activeMenteesExpr)
	sql, args, err := r.sb.Select(cols...).From("mentor_profiles mp").Where(squirrel.Eq{"mp.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get mentor query: %w", err)
	}

	var current int
	m, err := scanMentor(r.db.QueryRow(ctx, sql, args...), &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMentorNotFound
		}
		return nil, fmt.Errorf("error retrieving mentor profile: %w", err)
	}
	m.CurrentMenteeCount = current
	return m, nil
}

// GetMentorForUpdate locks the mentor profile row. Activations for the same
// mentor serialise on it.
func (r *MentorshipRepository) GetMentorForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.MentorProfile, error) {
	if err := requireTx(tx, "GetMentorForUpdate"); err != nil {
		return nil, err
	}
	sql, args, err := r.sb.Select(mentorColumns...).From("mentor_profiles mp").
		Where(squirrel.Eq{"mp.user_id": userID}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock mentor query: %w", err)
	}

	m, err := scanMentor(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMentorNotFound
		}
		return nil, fmt.Errorf("error locking mentor profile: %w", err)
	}
	return m, nil
}

// UpsertMentor creates or updates the caller's mentor profile
func (r *MentorshipRepository) UpsertMentor(ctx context.Context, m *models.MentorProfile) error {
	sql, args, err := r.sb.Insert("mentor_profiles").
		Columns("user_id", "expertise_areas", "years_experience", "max_mentees", "available_for_mentorship",
			"preferred_mentee_level", "bio", "motivation").
		Values(m.UserID, nonNil(m.ExpertiseAreas), m.YearsExperience, m.MaxMentees, m.AvailableForMentorship,
			m.PreferredMenteeLevel, m.Bio, m.Motivation).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			expertise_areas = EXCLUDED.expertise_areas,
			years_experience = EXCLUDED.years_experience,
			max_mentees = EXCLUDED.max_mentees,
			available_for_mentorship = EXCLUDED.available_for_mentorship,
			preferred_mentee_level = EXCLUDED.preferred_mentee_level,
			bio = EXCLUDED.bio,
			motivation = EXCLUDED.motivation
			RETURNING id, total_mentees_helped, average_rating, total_sessions, is_verified, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert mentor query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.TotalMenteesHelped, &m.AverageRating,
		&m.TotalSessions, &m.IsVerified, &m.CreatedAt); err != nil {
		logger.Error().Err(err).Str("userID", m.UserID.String()).Msg("Error saving mentor profile")
		return fmt.Errorf("error saving mentor profile: %w", err)
	}
	return nil
}

// ListAvailableMentors returns mentors open for new mentees, most experienced first
func (r *MentorshipRepository) ListAvailableMentors(ctx context.Context, offset, limit uint64) ([]*models.MentorProfile, int64, error) {
	cols := append(append([]string{}, mentorColumns...), activeMenteesExpr, "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("mentor_profiles mp").
		Where(squirrel.Eq{"mp.available_for_mentorship": true}).
		OrderBy("mp.years_experience DESC", "mp.created_at").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list mentors query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing mentors: %w", err)
	}
	defer rows.Close()

	items := []*models.MentorProfile{}
	var total int64
	for rows.Next() {
		var current int
		m, err := scanMentor(rows, &current, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning mentor row: %w", err)
		}
		m.CurrentMenteeCount = current
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// IncrementMenteesHelped bumps total_mentees_helped after a completed relationship
func (r *MentorshipRepository) IncrementMenteesHelped(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	sql, args, err := r.sb.Update("mentor_profiles").
		Set("total_mentees_helped", squirrel.Expr("total_mentees_helped + 1")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mentees helped query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing mentees helped: %w", err)
	}
	return nil
}

// --- Mentee profiles ---

// GetMenteeByUserID loads a mentee profile
func (r *MentorshipRepository) GetMenteeByUserID(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error) {
	sql, args, err := r.sb.Select(menteeColumns...).From("mentee_profiles").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get mentee query: %w", err)
	}

	m := &models.MenteeProfile{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.UserID, &m.CurrentLevel, &m.LearningGoals, &m.CareerGoals,
		&m.PreferredMentorQualities, &m.PreferredMeetingFrequency, &m.TotalMentors, &m.TotalSessions,
		&m.Bio, &m.Motivation, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMenteeNotFound
		}
		return nil, fmt.Errorf("error retrieving mentee profile: %w", err)
	}
	return m, nil
}

// UpsertMentee creates or updates the caller's mentee profile
func (r *MentorshipRepository) UpsertMentee(ctx context.Context, m *models.MenteeProfile) error {
	sql, args, err := r.sb.Insert("mentee_profiles").
		Columns("user_id", "current_level", "learning_goals", "career_goals", "preferred_mentor_qualities",
			"preferred_meeting_frequency", "bio", "motivation").
		Values(m.UserID, m.CurrentLevel, nonNil(m.LearningGoals), m.CareerGoals, nonNil(m.PreferredMentorQualities),
			m.PreferredMeetingFrequency, m.Bio, m.Motivation).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			current_level = EXCLUDED.current_level,
			learning_goals = EXCLUDED.learning_goals,
			career_goals = EXCLUDED.career_goals,
			preferred_mentor_qualities = EXCLUDED.preferred_mentor_qualities,
			preferred_meeting_frequency = EXCLUDED.preferred_meeting_frequency,
			bio = EXCLUDED.bio,
			motivation = EXCLUDED.motivation
			RETURNING id, total_mentors, total_sessions, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert mentee query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.TotalMentors, &m.TotalSessions, &m.CreatedAt); err != nil {
		logger.Error().Err(err).Str("userID", m.UserID.String()).Msg("Error saving mentee profile")
		return fmt.Errorf("error saving mentee profile: %w", err)
	}
	return nil
}

// --- Relationships ---

func scanRelationship(row pgx.Row) (*models.MentorshipRelationship, error) {
	rel := &models.MentorshipRelationship{}
	err := row.Scan(&rel.ID, &rel.MentorID, &rel.MenteeID, &rel.ProgramID, &rel.Status, &rel.Goals,
		&rel.Expectations, &rel.Frequency, &rel.StartDate, &rel.EndDate, &rel.TotalSessions,
		&rel.MenteeRating, &rel.MentorRating, &rel.CreatedAt, &rel.UpdatedAt)
	return rel, err
}

// CreateRelationship inserts a pending relationship
func (r *MentorshipRepository) CreateRelationship(ctx context.Context, rel *models.MentorshipRelationship) error {
	sql, args, err := r.sb.Insert("mentorship_relationships").
		Columns("mentor_id", "mentee_id", "program_id", "status", "goals", "expectations", "frequency").
		Values(rel.MentorID, rel.MenteeID, rel.ProgramID, rel.Status, rel.Goals, rel.Expectations, rel.Frequency).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create relationship query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rel.ID, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "mentorship_relationships_triple_key") {
			return apperrors.NewConflictError("mentorship already requested in this program")
		}
		logger.Error().Err(err).Str("mentorID", rel.MentorID.String()).Msg("Error creating relationship")
		return fmt.Errorf("error creating relationship: %w", err)
	}
	return nil
}

// GetRelationship retrieves a relationship
func (r *MentorshipRepository) GetRelationship(ctx context.Context, id uuid.UUID) (*models.MentorshipRelationship, error) {
	return r.getRelationship(ctx, nil, id, false)
}

// GetRelationshipForUpdate locks a relationship row
func (r *MentorshipRepository) GetRelationshipForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.MentorshipRelationship, error) {
	if err := requireTx(tx, "GetRelationshipForUpdate"); err != nil {
		return nil, err
	}
	return r.getRelationship(ctx, tx, id, true)
}

func (r *MentorshipRepository) getRelationship(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*models.MentorshipRelationship, error) {
	q := r.sb.Select(relationshipColumns...).From("mentorship_relationships").Where(squirrel.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get relationship query: %w", err)
	}

	rel, err := scanRelationship(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRelationshipNotFound
		}
		return nil, fmt.Errorf("error retrieving relationship: %w", err)
	}
	return rel, nil
}

// UpdateRelationship persists status, dates and ratings
func (r *MentorshipRepository) UpdateRelationship(ctx context.Context, tx pgx.Tx, rel *models.MentorshipRelationship) error {
	rel.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("mentorship_relationships").
		Set("status", rel.Status).
		Set("start_date", rel.StartDate).
		Set("end_date", rel.EndDate).
		Set("mentee_rating", rel.MenteeRating).
		Set("mentor_rating", rel.MentorRating).
		Set("updated_at", rel.UpdatedAt).
		Where(squirrel.Eq{"id": rel.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update relationship query: %w", err)
	}

	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("relationshipID", rel.ID.String()).Msg("Error updating relationship")
		return fmt.Errorf("error updating relationship: %w", err)
	}
	return nil
}

// CountActiveForMentor counts the active relationships of a mentor
func (r *MentorshipRepository) CountActiveForMentor(ctx context.Context, tx pgx.Tx, mentorUserID uuid.UUID) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("mentorship_relationships").
		Where(squirrel.Eq{"mentor_id": mentorUserID, "status": models.RelationshipActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count active query: %w", err)
	}

	var count int
	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting active relationships: %w", err)
	}
	return count, nil
}

// ListRelationshipsForUser returns relationships where the user is mentor or mentee
func (r *MentorshipRepository) ListRelationshipsForUser(ctx context.Context, userID uuid.UUID) ([]*models.MentorshipRelationship, error) {
	sql, args, err := r.sb.Select(relationshipColumns...).From("mentorship_relationships").
		Where(squirrel.Or{squirrel.Eq{"mentor_id": userID}, squirrel.Eq{"mentee_id": userID}}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list relationships query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing relationships: %w", err)
	}
	defer rows.Close()

	items := []*models.MentorshipRelationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning relationship row: %w", err)
		}
		items = append(items, rel)
	}
	return items, rows.Err()
}

// IncrementRelationshipSessions bumps total_sessions on the relationship and both profiles
func (r *MentorshipRepository) IncrementRelationshipSessions(ctx context.Context, tx pgx.Tx, rel *models.MentorshipRelationship) error {
	q := conn(r.db, tx)

	updates := []squirrel.UpdateBuilder{
		r.sb.Update("mentorship_relationships").Set("total_sessions", squirrel.Expr("total_sessions + 1")).Where(squirrel.Eq{"id": rel.ID}),
		r.sb.Update("mentor_profiles").Set("total_sessions", squirrel.Expr("total_sessions + 1")).Where(squirrel.Eq{"user_id": rel.MentorID}),
		r.sb.Update("mentee_profiles").Set("total_sessions", squirrel.Expr("total_sessions + 1")).Where(squirrel.Eq{"user_id": rel.MenteeID}),
	}
	for _, u := range updates {
		sql, args, err := u.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build session counter query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error incrementing session counters: %w", err)
		}
	}
	return nil
}

// --- Mentorship sessions ---

func scanMentorshipSession(row pgx.Row) (*models.MentorshipSession, error) {
	s := &models.MentorshipSession{}
	err := row.Scan(&s.ID, &s.RelationshipID, &s.Title, &s.Description, &s.Status, &s.ScheduledDate, &s.DurationMinutes,
		&s.MeetingLink, &s.MeetingPlatform, &s.Agenda, &s.Notes, &s.ActionItems,
		&s.MenteeFeedback, &s.MentorFeedback, &s.StartedAt, &s.EndedAt, &s.CreatedAt)
	return s, err
}

// CreateSession schedules a mentorship session
func (r *MentorshipRepository) CreateSession(ctx context.Context, s *models.MentorshipSession) error {
	sql, args, err := r.sb.Insert("mentorship_sessions").
		Columns("relationship_id", "title", "description", "status", "scheduled_date", "duration_minutes",
			"meeting_link", "meeting_platform", "agenda", "action_items").
		Values(s.RelationshipID, s.Title, s.Description, s.Status, s.ScheduledDate, s.DurationMinutes,
			s.MeetingLink, s.MeetingPlatform, s.Agenda, nonNil(s.ActionItems)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create mentorship session query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		logger.Error().Err(err).Str("relationshipID", s.RelationshipID.String()).Msg("Error creating mentorship session")
		return fmt.Errorf("error creating mentorship session: %w", err)
	}
	return nil
}

// GetSession retrieves a mentorship session
func (r *MentorshipRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.MentorshipSession, error) {
	sql, args, err := r.sb.Select(mentorshipSessionColumns...).From("mentorship_sessions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get mentorship session query: %w", err)
	}

	s, err := scanMentorshipSession(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("mentorship session not found")
		}
		return nil, fmt.Errorf("error retrieving mentorship session: %w", err)
	}
	return s, nil
}

// UpdateSession persists the mutable fields of a mentorship session
func (r *MentorshipRepository) UpdateSession(ctx context.Context, tx pgx.Tx, s *models.MentorshipSession) error {
	sql, args, err := r.sb.Update("mentorship_sessions").
		Set("status", s.Status).
		Set("notes", s.Notes).
		Set("mentee_feedback", s.MenteeFeedback).
		Set("mentor_feedback", s.MentorFeedback).
		Set("started_at", s.StartedAt).
		Set("ended_at", s.EndedAt).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update mentorship session query: %w", err)
	}

	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating mentorship session: %w", err)
	}
	return nil
}

// ListSessions returns a relationship's sessions, soonest first
func (r *MentorshipRepository) ListSessions(ctx context.Context, relationshipID uuid.UUID) ([]*models.MentorshipSession, error) {
	sql, args, err := r.sb.Select(mentorshipSessionColumns...).From("mentorship_sessions").
		Where(squirrel.Eq{"relationship_id": relationshipID}).
		OrderBy("scheduled_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list mentorship sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing mentorship sessions: %w", err)
	}
	defer rows.Close()

	items := []*models.MentorshipSession{}
	for rows.Next() {
		s, err := scanMentorshipSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning mentorship session row: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
