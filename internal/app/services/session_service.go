package services

import (
	"context"
	"errors"
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

// SessionService defines the interface for learning session operations
type SessionService interface {
	Create(ctx context.Context, actor auth.Actor, req *dto.CreateSessionRequest) (*models.Session, error)
	ListPublic(ctx context.Context, page, size int) (*dto.SessionListResponse, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	Join(ctx context.Context, sessionID, userID uuid.UUID) (*dto.JoinSessionResponse, error)
	Leave(ctx context.Context, sessionID, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, status models.SessionStatus) (*models.Session, error)
	ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionParticipant, error)
	UpsertRecording(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, req *dto.UpsertRecordingRequest) (*models.SessionRecording, error)
	GetRecording(ctx context.Context, sessionID uuid.UUID) (*models.SessionRecording, error)
	SubmitFeedback(ctx context.Context, sessionID, userID uuid.UUID, req *dto.SessionFeedbackRequest) (*models.SessionFeedback, error)
	ListFeedback(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionFeedback, error)
}

type sessionServiceImpl struct {
	tx        Transactor
	repo      SessionStore
	ledger    LedgerService
	notifier  Notifier
	publisher events.Publisher
	points    PointRules
	now       func() time.Time
	logger    zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	tx Transactor,
	repo SessionStore,
	ledger LedgerService,
	notifier Notifier,
	publisher events.Publisher,
	points PointRules,
	logger zerolog.Logger,
) SessionService {
	return &sessionServiceImpl{
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

// Create stores a session with the caller as speaker. It starts as draft
// unless the request asks to publish it straight away.
func (s *sessionServiceImpl) Create(ctx context.Context, actor auth.Actor, req *dto.CreateSessionRequest) (*models.Session, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	if req.MaxParticipants < 1 {
		return nil, apperrors.NewValidationError("maxParticipants", "maxParticipants must be at least 1")
	}

	speaker := actor.UserID
	session := &models.Session{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		SessionType:     req.SessionType,
		Status:          models.SessionDraft,
		ScheduledDate:   req.ScheduledDate.UTC(),
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		MeetingPlatform: req.MeetingPlatform,
		SpeakerID:       &speaker,
		ModeratorID:     req.ModeratorID,
		CommunityID:     req.CommunityID,
		Topics:          req.Topics,
		MaxParticipants: req.MaxParticipants,
		IsPublic:        true,
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = 60
	}
	if req.IsPublic != nil {
		session.IsPublic = *req.IsPublic
	}
	if req.Publish {
		session.Status = models.SessionScheduled
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info().Str("sessionID", session.ID.String()).Str("speakerID", speaker.String()).Msg("Session created")
	return session, nil
}

// ListPublic returns public, non-draft sessions
func (s *sessionServiceImpl) ListPublic(ctx context.Context, page, size int) (*dto.SessionListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListPublic(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	return &dto.SessionListResponse{
		Sessions:       items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// Get returns a session with its participant count
func (s *sessionServiceImpl) Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	return s.repo.GetByID(ctx, sessionID)
}

// Join adds the user under the session row lock. A repeated join returns
// the existing row; a full session fails with ErrSessionFull.
func (s *sessionServiceImpl) Join(ctx context.Context, sessionID, userID uuid.UUID) (*dto.JoinSessionResponse, error) {
	resp := &dto.JoinSessionResponse{}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		session, err := s.repo.GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !session.Status.Joinable() {
			return apperrors.NewInvalidTransitionError("session", string(session.Status), "joined")
		}

		existing, err := s.repo.GetParticipant(ctx, tx, sessionID, userID)
		if err == nil {
			resp.Participant = existing
			return nil
		}
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}

		count, err := s.repo.CountParticipants(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if count >= session.MaxParticipants {
			return apperrors.ErrSessionFull
		}

		p := &models.SessionParticipant{
			SessionID: sessionID,
			UserID:    userID,
			Role:      models.ParticipantAttendee,
		}
		inserted, err := s.repo.AddParticipant(ctx, tx, p)
		if err != nil {
			return err
		}
		if !inserted {
			p, err = s.repo.GetParticipant(ctx, tx, sessionID, userID)
			if err != nil {
				return err
			}
		}
		resp.Participant = p
		resp.Created = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Created {
		s.logger.Info().Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("Participant joined session")
	}
	return resp, nil
}

// Leave stamps left_at on the caller's participation
func (s *sessionServiceImpl) Leave(ctx context.Context, sessionID, userID uuid.UUID) error {
	return s.repo.LeaveParticipant(ctx, sessionID, userID, s.now().UTC())
}

// UpdateStatus moves the session through its lifecycle. Only the speaker or
// an admin may do so. Completion awards hosting and attendance points.
func (s *sessionServiceImpl) UpdateStatus(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, status models.SessionStatus) (*models.Session, error) {
	var session *models.Session
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		session, err = s.repo.GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(actor, session.SpeakerID, "session"); err != nil {
			return err
		}
		if !session.Status.CanTransitionTo(status) {
			return apperrors.NewInvalidTransitionError("session", string(session.Status), string(status))
		}

		now := s.now().UTC()
		switch status {
		case models.SessionLive:
			session.StartedAt = &now
		case models.SessionCompleted:
			session.EndedAt = &now
		}
		session.Status = status
		return s.repo.UpdateStatus(ctx, tx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("sessionID", sessionID.String()).Str("status", string(status)).Msg("Session status changed")
	if err := s.publisher.Publish(ctx, events.New(events.SessionStatusChanged, sessionID.String(), session)); err != nil {
		s.logger.Warn().Err(err).Str("sessionID", sessionID.String()).Msg("Failed to publish session event")
	}

	switch status {
	case models.SessionCompleted:
		s.awardCompletion(ctx, session)
	case models.SessionLive, models.SessionCancelled:
		s.notifyParticipants(ctx, session, status)
	}
	return session, nil
}

func (s *sessionServiceImpl) awardCompletion(ctx context.Context, session *models.Session) {
	ref := &models.Reference{ID: session.ID, Type: "session"}
	if session.SpeakerID != nil {
		awardAfterCommit(ctx, s.ledger, s.logger, RecordInput{
			UserID:      *session.SpeakerID,
			Amount:      s.points.SessionHosted,
			Source:      models.SourceSessionHosted,
			Description: "Hosted session: " + session.Title,
			Reference:   ref,
		})
	}

	participants, err := s.repo.ListParticipants(ctx, session.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("sessionID", session.ID.String()).Msg("Failed to load participants for attendance points")
		return
	}
	for _, p := range participants {
		if session.SpeakerID != nil && p.UserID == *session.SpeakerID {
			continue
		}
		awardAfterCommit(ctx, s.ledger, s.logger, RecordInput{
			UserID:      p.UserID,
			Amount:      s.points.SessionAttended,
			Source:      models.SourceSessionAttended,
			Description: "Attended session: " + session.Title,
			Reference:   ref,
		})
	}
}

func (s *sessionServiceImpl) notifyParticipants(ctx context.Context, session *models.Session, status models.SessionStatus) {
	participants, err := s.repo.ListParticipants(ctx, session.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("sessionID", session.ID.String()).Msg("Failed to load participants for notification")
		return
	}

	title := session.Title + " is live now"
	priority := models.PriorityHigh
	if status == models.SessionCancelled {
		title = session.Title + " was cancelled"
		priority = models.PriorityNormal
	}
	for _, p := range participants {
		if _, err := s.notifier.Notify(ctx, NotificationRequest{
			RecipientID: p.UserID,
			Type:        models.NotificationSessionReminder,
			Title:       title,
			Message:     session.Description,
			Priority:    priority,
			ActionURL:   session.MeetingLink,
			Reference:   &models.Reference{ID: session.ID, Type: "session"},
		}); err != nil {
			s.logger.Warn().Err(err).Str("userID", p.UserID.String()).Msg("Failed to notify session participant")
		}
	}
}

// ListParticipants returns the participants in join order
func (s *sessionServiceImpl) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionParticipant, error) {
	if _, err := s.repo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListParticipants(ctx, sessionID)
}

// UpsertRecording attaches the recording. A completed recording notifies participants.
func (s *sessionServiceImpl) UpsertRecording(ctx context.Context, actor auth.Actor, sessionID uuid.UUID, req *dto.UpsertRecordingRequest) (*models.SessionRecording, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(actor, session.SpeakerID, "session"); err != nil {
		return nil, err
	}

	rec := &models.SessionRecording{
		SessionID:        sessionID,
		RecordingURL:     req.RecordingURL,
		ThumbnailURL:     req.ThumbnailURL,
		DurationSeconds:  req.DurationSeconds,
		ProcessingStatus: req.ProcessingStatus,
	}
	if rec.ProcessingStatus == models.RecordingCompleted {
		at := s.now().UTC()
		rec.ProcessedAt = &at
	}
	if err := s.repo.UpsertRecording(ctx, rec); err != nil {
		return nil, err
	}

	if rec.ProcessingStatus == models.RecordingCompleted {
		participants, err := s.repo.ListParticipants(ctx, sessionID)
		if err != nil {
			s.logger.Warn().Err(err).Str("sessionID", sessionID.String()).Msg("Failed to load participants for recording notice")
			return rec, nil
		}
		for _, p := range participants {
			if _, err := s.notifier.Notify(ctx, NotificationRequest{
				RecipientID: p.UserID,
				Type:        models.NotificationRecordingAvailable,
				Title:       "Recording available: " + session.Title,
				Message:     "The recording of a session you attended is ready to watch.",
				Priority:    models.PriorityNormal,
				ActionURL:   rec.RecordingURL,
				Reference:   &models.Reference{ID: sessionID, Type: "session"},
			}); err != nil {
				s.logger.Warn().Err(err).Str("userID", p.UserID.String()).Msg("Failed to notify recording")
			}
		}
	}
	return rec, nil
}

// GetRecording returns the recording of a session
func (s *sessionServiceImpl) GetRecording(ctx context.Context, sessionID uuid.UUID) (*models.SessionRecording, error) {
	return s.repo.GetRecording(ctx, sessionID)
}

// SubmitFeedback stores one rating per participant and tells the speaker
func (s *sessionServiceImpl) SubmitFeedback(ctx context.Context, sessionID, userID uuid.UUID, req *dto.SessionFeedbackRequest) (*models.SessionFeedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.NewValidationError("rating", "rating must be between 1 and 5")
	}
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := &models.SessionFeedback{
		SessionID:            sessionID,
		UserID:               userID,
		Rating:               req.Rating,
		Comment:              req.Comment,
		ContentQuality:       req.ContentQuality,
		SpeakerEffectiveness: req.SpeakerEffectiveness,
		TechnicalQuality:     req.TechnicalQuality,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.repo.GetParticipant(ctx, tx, sessionID, userID); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewForbiddenError("only participants may rate this session")
			}
			return err
		}
		if err := s.repo.CreateFeedback(ctx, tx, f); err != nil {
			return err
		}
		return s.repo.MarkFeedbackProvided(ctx, tx, sessionID, userID)
	})
	if err != nil {
		return nil, err
	}

	if session.SpeakerID != nil {
		if _, err := s.notifier.Notify(ctx, NotificationRequest{
			RecipientID: *session.SpeakerID,
			Type:        models.NotificationFeedbackReceived,
			Title:       "New feedback on " + session.Title,
			Message:     fmt.Sprintf("A participant rated your session %d/5.", f.Rating),
			Priority:    models.PriorityLow,
			Reference:   &models.Reference{ID: sessionID, Type: "session"},
		}); err != nil {
			s.logger.Warn().Err(err).Str("sessionID", sessionID.String()).Msg("Failed to notify speaker of feedback")
		}
	}
	return f, nil
}

// ListFeedback returns the ratings of a session
func (s *sessionServiceImpl) ListFeedback(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionFeedback, error) {
	if _, err := s.repo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListFeedback(ctx, sessionID)
}
