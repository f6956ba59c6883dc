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
	"github.com/yigit/alumnihub/internal/pkg/events"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

const defaultMaxMentees = 3

// MentorshipService defines the interface for mentorship operations
type MentorshipService interface {
	ListPrograms(ctx context.Context) ([]*models.MentorshipProgram, error)
	CreateProgram(ctx context.Context, adminID uuid.UUID, req *dto.CreateProgramRequest) (*models.MentorshipProgram, error)

	UpsertMentorProfile(ctx context.Context, userID uuid.UUID, req *dto.MentorProfileRequest) (*models.MentorProfile, error)
	GetMentorProfile(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error)
	ListMentors(ctx context.Context, page, size int) (*dto.MentorListResponse, error)
	UpsertMenteeProfile(ctx context.Context, userID uuid.UUID, req *dto.MenteeProfileRequest) (*models.MenteeProfile, error)
	GetMenteeProfile(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error)

	RequestMentorship(ctx context.Context, menteeID uuid.UUID, req *dto.RequestMentorshipRequest) (*models.MentorshipRelationship, error)
	GetRelationship(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID) (*models.MentorshipRelationship, error)
	ListRelationships(ctx context.Context, userID uuid.UUID) ([]*models.MentorshipRelationship, error)
	UpdateRelationshipStatus(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID, status models.RelationshipStatus) (*models.MentorshipRelationship, error)

	ScheduleSession(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID, req *dto.ScheduleMentorshipSessionRequest) (*models.MentorshipSession, error)
	ListSessions(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID) ([]*models.MentorshipSession, error)
	UpdateSessionStatus(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, req *dto.MentorshipSessionStatusRequest) (*models.MentorshipSession, error)
	SubmitSessionFeedback(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, req *dto.MentorshipFeedbackRequest) (*models.MentorshipSession, error)
}

type mentorshipServiceImpl struct {
	tx        Transactor
	repo      MentorshipStore
	ledger    LedgerService
	notifier  Notifier
	publisher events.Publisher
	points    PointRules
	now       func() time.Time
	logger    zerolog.Logger
}

// NewMentorshipService creates a new MentorshipService
func NewMentorshipService(
	tx Transactor,
	repo MentorshipStore,
	ledger LedgerService,
	notifier Notifier,
	publisher events.Publisher,
	points PointRules,
	logger zerolog.Logger,
) MentorshipService {
	return &mentorshipServiceImpl{
		tx:        tx,
		repo:      repo,
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
		points:    points,
		now:       time.Now,
		logger:    logger,
	}
}

// ListPrograms returns the public programs
func (s *mentorshipServiceImpl) ListPrograms(ctx context.Context) ([]*models.MentorshipProgram, error) {
	return s.repo.ListPrograms(ctx, true)
}

// CreateProgram adds an active program
func (s *mentorshipServiceImpl) CreateProgram(ctx context.Context, adminID uuid.UUID, req *dto.CreateProgramRequest) (*models.MentorshipProgram, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperrors.NewValidationError("endDate", "endDate must not be before startDate")
	}
	p := &models.MentorshipProgram{
		Name:                 strings.TrimSpace(req.Name),
		Description:          req.Description,
		ProgramType:          req.ProgramType,
		Status:               models.ProgramActive,
		MaxMenteesPerMentor:  req.MaxMenteesPerMentor,
		ProgramDurationWeeks: req.ProgramDurationWeeks,
		IsPublic:             true,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		CreatedBy:            &adminID,
	}
	if p.MaxMenteesPerMentor == 0 {
		p.MaxMenteesPerMentor = defaultMaxMentees
	}
	if p.ProgramDurationWeeks == 0 {
		p.ProgramDurationWeeks = 12
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	if err := s.repo.CreateProgram(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("programID", p.ID.String()).Str("name", p.Name).Msg("Mentorship program created")
	return p, nil
}

// UpsertMentorProfile creates or replaces the caller's mentor profile
func (s *mentorshipServiceImpl) UpsertMentorProfile(ctx context.Context, userID uuid.UUID, req *dto.MentorProfileRequest) (*models.MentorProfile, error) {
	if len(req.ExpertiseAreas) == 0 {
		return nil, apperrors.NewValidationError("expertiseAreas", "at least one expertise area is required")
	}
	m := &models.MentorProfile{
		UserID:                 userID,
		ExpertiseAreas:         trimAll(req.ExpertiseAreas),
		YearsExperience:        req.YearsExperience,
		MaxMentees:             req.MaxMentees,
		AvailableForMentorship: true,
		PreferredMenteeLevel:   req.PreferredMenteeLevel,
		Bio:                    req.Bio,
		Motivation:             req.Motivation,
	}
	if m.MaxMentees == 0 {
		m.MaxMentees = defaultMaxMentees
	}
	if m.PreferredMenteeLevel == "" {
		m.PreferredMenteeLevel = models.LevelAny
	}
	if req.AvailableForMentorship != nil {
		m.AvailableForMentorship = *req.AvailableForMentorship
	}
	if err := s.repo.UpsertMentor(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMentorProfile returns a mentor profile with its active mentee count
func (s *mentorshipServiceImpl) GetMentorProfile(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	return s.repo.GetMentorByUserID(ctx, userID)
}

// ListMentors returns mentors that are available for new mentees
func (s *mentorshipServiceImpl) ListMentors(ctx context.Context, page, size int) (*dto.MentorListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListAvailableMentors(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing mentors: %w", err)
	}
	return &dto.MentorListResponse{
		Mentors:        items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// UpsertMenteeProfile creates or replaces the caller's mentee profile
func (s *mentorshipServiceImpl) UpsertMenteeProfile(ctx context.Context, userID uuid.UUID, req *dto.MenteeProfileRequest) (*models.MenteeProfile, error) {
	m := &models.MenteeProfile{
		UserID:                    userID,
		CurrentLevel:              req.CurrentLevel,
		LearningGoals:             trimAll(req.LearningGoals),
		CareerGoals:               req.CareerGoals,
		PreferredMentorQualities:  trimAll(req.PreferredMentorQualities),
		PreferredMeetingFrequency: req.PreferredMeetingFrequency,
		Bio:                       req.Bio,
		Motivation:                req.Motivation,
	}
	if m.PreferredMeetingFrequency == "" {
		m.PreferredMeetingFrequency = "biweekly"
	}
	if err := s.repo.UpsertMentee(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMenteeProfile returns a mentee profile
func (s *mentorshipServiceImpl) GetMenteeProfile(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error) {
	return s.repo.GetMenteeByUserID(ctx, userID)
}

// RequestMentorship opens a pending relationship with an available mentor
// inside an active program.
func (s *mentorshipServiceImpl) RequestMentorship(ctx context.Context, menteeID uuid.UUID, req *dto.RequestMentorshipRequest) (*models.MentorshipRelationship, error) {
	if req.MentorID == menteeID {
		return nil, apperrors.NewValidationError("mentorId", "you cannot mentor yourself")
	}

	mentor, err := s.repo.GetMentorByUserID(ctx, req.MentorID)
	if err != nil {
		return nil, err
	}
	if !mentor.AvailableForMentorship {
		return nil, apperrors.NewCustomError(apperrors.ErrCapacityExceeded, "mentor is not accepting mentees")
	}

	program, err := s.repo.GetProgram(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.Status != models.ProgramActive {
		return nil, apperrors.NewInvalidTransitionError("program", string(program.Status), "enrolment")
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = "biweekly"
	}
	rel := &models.MentorshipRelationship{
		MentorID:     req.MentorID,
		MenteeID:     menteeID,
		ProgramID:    req.ProgramID,
		Status:       models.RelationshipPending,
		Goals:        req.Goals,
		Expectations: req.Expectations,
		Frequency:    frequency,
	}
	if err := s.repo.CreateRelationship(ctx, rel); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("relationshipID", rel.ID.String()).
		Str("mentorID", rel.MentorID.String()).
		Str("menteeID", rel.MenteeID.String()).
		Msg("Mentorship requested")

	s.notify(ctx, rel.MentorID, "New mentorship request", "Someone asked you to mentor them in "+program.Name+".", rel.ID)
	return rel, nil
}

// GetRelationship returns a relationship visible to its parties or an admin
func (s *mentorshipServiceImpl) GetRelationship(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID) (*models.MentorshipRelationship, error) {
	rel, err := s.repo.GetRelationship(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if err := auth.RequireParty(actor, "mentorship", rel.MentorID, rel.MenteeID); err != nil {
			return nil, err
		}
	}
	return rel, nil
}

// ListRelationships returns the relationships where the user is mentor or mentee
func (s *mentorshipServiceImpl) ListRelationships(ctx context.Context, userID uuid.UUID) ([]*models.MentorshipRelationship, error) {
	return s.repo.ListRelationshipsForUser(ctx, userID)
}

// UpdateRelationshipStatus applies a lifecycle transition. Activation holds
// the mentor profile row lock while counting active mentees so concurrent
// activations cannot exceed max_mentees.
func (s *mentorshipServiceImpl) UpdateRelationshipStatus(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID, status models.RelationshipStatus) (*models.MentorshipRelationship, error) {
	var rel *models.MentorshipRelationship
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rel, err = s.repo.GetRelationshipForUpdate(ctx, tx, relationshipID)
		if err != nil {
			return err
		}
		if err := s.authorizeTransition(actor, rel, status); err != nil {
			return err
		}
		if !rel.Status.CanTransitionTo(status) {
			return apperrors.NewInvalidTransitionError("mentorship", string(rel.Status), string(status))
		}

		if status == models.RelationshipActive {
			mentor, err := s.repo.GetMentorForUpdate(ctx, tx, rel.MentorID)
			if err != nil {
				return err
			}
			active, err := s.repo.CountActiveForMentor(ctx, tx, rel.MentorID)
			if err != nil {
				return err
			}
			if active >= mentor.MaxMentees {
				return apperrors.ErrMentorAtCapacity
			}
		}

		now := s.now().UTC()
		switch status {
		case models.RelationshipActive:
			if rel.StartDate == nil {
				rel.StartDate = &now
			}
		case models.RelationshipCompleted, models.RelationshipTerminated:
			rel.EndDate = &now
		}
		rel.Status = status
		if err := s.repo.UpdateRelationship(ctx, tx, rel); err != nil {
			return err
		}
		if status == models.RelationshipCompleted {
			return s.repo.IncrementMenteesHelped(ctx, tx, rel.MentorID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("relationshipID", rel.ID.String()).Str("status", string(status)).Msg("Mentorship status changed")
	if err := s.publisher.Publish(ctx, events.New(events.MentorshipChanged, rel.ID.String(), rel)); err != nil {
		s.logger.Warn().Err(err).Str("relationshipID", rel.ID.String()).Msg("Failed to publish mentorship event")
	}

	other := rel.MentorID
	if actor.UserID == rel.MentorID {
		other = rel.MenteeID
	}
	s.notify(ctx, other, "Mentorship "+string(status), "Your mentorship is now "+string(status)+".", rel.ID)

	if status == models.RelationshipCompleted {
		awardAfterCommit(ctx, s.ledger, s.logger, RecordInput{
			UserID:      rel.MentorID,
			Amount:      s.points.Mentorship,
			Source:      models.SourceMentorship,
			Description: "Completed a mentorship",
			Reference:   &models.Reference{ID: rel.ID, Type: "mentorship"},
		})
	}
	return rel, nil
}

// authorizeTransition lets the mentor accept a request; the rest may be
// done by either party. Admins may do anything.
func (s *mentorshipServiceImpl) authorizeTransition(actor auth.Actor, rel *models.MentorshipRelationship, to models.RelationshipStatus) error {
	if actor.IsAdmin() {
		return nil
	}
	if rel.Status == models.RelationshipPending && to == models.RelationshipActive {
		if actor.UserID != rel.MentorID {
			return apperrors.NewForbiddenError("only the mentor can accept a mentorship request")
		}
		return nil
	}
	return auth.RequireParty(actor, "mentorship", rel.MentorID, rel.MenteeID)
}

// ScheduleSession books a meeting on an active relationship
func (s *mentorshipServiceImpl) ScheduleSession(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID, req *dto.ScheduleMentorshipSessionRequest) (*models.MentorshipSession, error) {
	rel, err := s.repo.GetRelationship(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireParty(actor, "mentorship", rel.MentorID, rel.MenteeID); err != nil {
		return nil, err
	}
	if rel.Status != models.RelationshipActive {
		return nil, apperrors.NewInvalidTransitionError("mentorship", string(rel.Status), "scheduling")
	}

	session := &models.MentorshipSession{
		RelationshipID:  relationshipID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Status:          models.MentorshipSessionScheduled,
		ScheduledDate:   req.ScheduledDate.UTC(),
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		MeetingPlatform: req.MeetingPlatform,
		Agenda:          req.Agenda,
		ActionItems:     []string{},
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = 60
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	other := rel.MentorID
	if actor.UserID == rel.MentorID {
		other = rel.MenteeID
	}
	s.notifyTyped(ctx, other, models.NotificationSessionScheduled, "Mentorship session scheduled",
		session.Title+" on "+session.ScheduledDate.Format(time.RFC1123), rel.ID)
	return session, nil
}

// ListSessions returns the meetings of a relationship
func (s *mentorshipServiceImpl) ListSessions(ctx context.Context, actor auth.Actor, relationshipID uuid.UUID) ([]*models.MentorshipSession, error) {
	if _, err := s.GetRelationship(ctx, actor, relationshipID); err != nil {
		return nil, err
	}
	return s.repo.ListSessions(ctx, relationshipID)
}

func (s *mentorshipServiceImpl) sessionWithRelationship(ctx context.Context, actor auth.Actor, sessionID uuid.UUID) (*models.MentorshipSession, *models.MentorshipRelationship, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	rel, err := s.repo.GetRelationship(ctx, session.RelationshipID)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireParty(actor, "mentorship session", rel.MentorID, rel.MenteeID); err != nil {
		return nil, nil, err
	}
	return session, rel, nil
}

// UpdateSessionStatus moves a meeting through its lifecycle. Completion
// bumps the session counters of the relationship and both profiles.
func (s *mentorshipServiceImpl) UpdateSessionStatus(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, req *dto.MentorshipSessionStatusRequest) (*models.MentorshipSession, error) {
	session, rel, err := s.sessionWithRelationship(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.NewInvalidTransitionError("mentorship session", string(session.Status), string(req.Status))
	}

	now := s.now().UTC()
	switch req.Status {
	case models.MentorshipSessionInProgress:
		session.StartedAt = &now
	case models.MentorshipSessionCompleted:
		session.EndedAt = &now
	}
	session.Status = req.Status
	if req.Notes != "" {
		session.Notes = req.Notes
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.UpdateSession(ctx, tx, session); err != nil {
			return err
		}
		if req.Status == models.MentorshipSessionCompleted {
			return s.repo.IncrementRelationshipSessions(ctx, tx, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitSessionFeedback stores one party's feedback. A rating lands on the
// relationship under the author's side.
func (s *mentorshipServiceImpl) SubmitSessionFeedback(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, req *dto.MentorshipFeedbackRequest) (*models.MentorshipSession, error) {
	session, rel, err := s.sessionWithRelationship(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, apperrors.NewValidationError("rating", "rating must be between 1 and 5")
	}

	isMentor := actor.UserID == rel.MentorID
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if isMentor {
			session.MentorFeedback = req.Feedback
		} else {
			session.MenteeFeedback = req.Feedback
		}
		if err := s.repo.UpdateSession(ctx, tx, session); err != nil {
			return err
		}
		if req.Rating == nil {
			return nil
		}

		locked, err := s.repo.GetRelationshipForUpdate(ctx, tx, rel.ID)
		if err != nil {
			return err
		}
		if isMentor {
			locked.MentorRating = req.Rating
		} else {
			locked.MenteeRating = req.Rating
		}
		return s.repo.UpdateRelationship(ctx, tx, locked)
	})
	if err != nil {
		return nil, err
	}

	other := rel.MentorID
	if isMentor {
		other = rel.MenteeID
	}
	s.notifyTyped(ctx, other, models.NotificationFeedbackReceived, "New mentorship feedback", session.Title, rel.ID)
	return session, nil
}

func (s *mentorshipServiceImpl) notify(ctx context.Context, to uuid.UUID, title, message string, relationshipID uuid.UUID) {
	s.notifyTyped(ctx, to, models.NotificationMentorshipUpdate, title, message, relationshipID)
}

func (s *mentorshipServiceImpl) notifyTyped(ctx context.Context, to uuid.UUID, t models.NotificationType, title, message string, relationshipID uuid.UUID) {
	if _, err := s.notifier.Notify(ctx, NotificationRequest{
		RecipientID: to,
		Type:        t,
		Title:       title,
		Message:     message,
		Priority:    models.PriorityNormal,
		Reference:   &models.Reference{ID: relationshipID, Type: "mentorship"},
	}); err != nil {
		s.logger.Warn().Err(err).Str("recipientID", to.String()).Msg("Failed to send mentorship notification")
	}
}
