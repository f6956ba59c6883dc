package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/email"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
	"github.com/yigit/alumnihub/internal/pkg/websocket"
)

// NotificationRequest describes one notification to deliver
type NotificationRequest struct {
	RecipientID uuid.UUID
	Type        models.NotificationType
	Title       string
	Message     string
	Priority    models.NotificationPriority
	ActionURL   string
	Reference   *models.Reference
}

// Notifier is what other services use to reach a user
type Notifier interface {
	Notify(ctx context.Context, req NotificationRequest) (*models.Notification, error)
}

// NotificationService manages the inbox and delivery preferences
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *dto.UpdatePreferencesRequest) (*models.NotificationPreference, error)
}

type notificationServiceImpl struct {
	notificationRepo NotificationStore
	userRepo         UserStore
	mailer           email.Mailer
	pusher           Pusher
	now              func() time.Time
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo NotificationStore,
	userRepo UserStore,
	mailer email.Mailer,
	pusher Pusher,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		pusher:           pusher,
		now:              time.Now,
		logger:           logger,
	}
}

// Notify applies the recipient's preferences. The inbox row is written only
// when in-app delivery is enabled for the category; email goes out when the
// email switch is on and the current UTC time is outside quiet hours.
// A nil notification with a nil error means nothing was stored.
func (s *notificationServiceImpl) Notify(ctx context.Context, req NotificationRequest) (*models.Notification, error) {
	prefs, err := s.preferencesOrDefault(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	category := req.Type.Category()
	inApp := prefs.InAppEnabled(category)
	sendEmail := prefs.EmailEnabled(category) && !prefs.IsQuietHours(now)

	s.logger.Debug().
		Str("recipientID", req.RecipientID.String()).
		Str("type", string(req.Type)).
		Bool("inApp", inApp).
		Bool("email", sendEmail).
		Msg("Dispatching notification")

	var n *models.Notification
	if inApp {
		priority := req.Priority
		if priority == "" {
			priority = models.PriorityNormal
		}
		n = &models.Notification{
			RecipientID: req.RecipientID,
			Type:        req.Type,
			Title:       req.Title,
			Message:     req.Message,
			Priority:    priority,
			ActionURL:   req.ActionURL,
		}
		if req.Reference != nil {
			ref := req.Reference.ID
			n.ReferenceID = &ref
			n.ReferenceType = req.Reference.Type
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			return nil, fmt.Errorf("error storing notification: %w", err)
		}
		if s.pusher != nil {
			s.pusher.PushToUser(req.RecipientID, &websocket.Message{Type: websocket.MessageNotification, Payload: n})
		}
	}

	if sendEmail {
		s.sendEmail(ctx, req, n)
	}

	return n, nil
}

func (s *notificationServiceImpl) sendEmail(ctx context.Context, req NotificationRequest, n *models.Notification) {
	user, err := s.userRepo.GetByID(ctx, req.RecipientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("recipientID", req.RecipientID.String()).Msg("Cannot resolve notification email recipient")
		return
	}
	if err := s.mailer.SendNotification(ctx, user.Email, req.Title, req.Message); err != nil {
		s.logger.Warn().Err(err).Str("recipientID", req.RecipientID.String()).Msg("Notification email failed")
		return
	}
	if n != nil {
		if err := s.notificationRepo.SetEmailSent(ctx, n.ID); err != nil {
			s.logger.Warn().Err(err).Str("notificationID", n.ID.String()).Msg("Failed to flag notification email as sent")
			return
		}
		n.IsEmailSent = true
	}
}

func (s *notificationServiceImpl) preferencesOrDefault(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	prefs, err := s.notificationRepo.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return models.DefaultNotificationPreference(userID), nil
		}
		return nil, fmt.Errorf("error loading notification preferences: %w", err)
	}
	return prefs, nil
}

// List returns a page of the inbox plus the unread total
func (s *notificationServiceImpl) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) (*dto.NotificationListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.notificationRepo.List(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return &dto.NotificationListResponse{
		Notifications:  items,
		UnreadCount:    unread,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// MarkRead is idempotent. Another user's notification reads as not found.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.RecipientID != userID {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	if n.IsRead {
		return nil
	}
	return s.notificationRepo.MarkRead(ctx, notificationID, s.now().UTC())
}

// MarkAllRead marks every unread notification of the user
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return n, nil
}

// CountUnread returns the unread inbox size
func (s *notificationServiceImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// GetPreferences returns the stored preferences or the defaults
func (s *notificationServiceImpl) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	return s.preferencesOrDefault(ctx, userID)
}

// UpdatePreferences applies the non-nil switches and quiet hour bounds
func (s *notificationServiceImpl) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *dto.UpdatePreferencesRequest) (*models.NotificationPreference, error) {
	prefs, err := s.preferencesOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	toggles := []struct {
		src *bool
		dst *bool
	}{
		{req.EmailSessions, &prefs.EmailSessions},
		{req.EmailRecordings, &prefs.EmailRecordings},
		{req.EmailFeedback, &prefs.EmailFeedback},
		{req.EmailCommunity, &prefs.EmailCommunity},
		{req.EmailMilestones, &prefs.EmailMilestones},
		{req.EmailMentorship, &prefs.EmailMentorship},
		{req.EmailCareer, &prefs.EmailCareer},
		{req.InAppSessions, &prefs.InAppSessions},
		{req.InAppRecordings, &prefs.InAppRecordings},
		{req.InAppFeedback, &prefs.InAppFeedback},
		{req.InAppCommunity, &prefs.InAppCommunity},
		{req.InAppMilestones, &prefs.InAppMilestones},
		{req.InAppMentorship, &prefs.InAppMentorship},
		{req.InAppCareer, &prefs.InAppCareer},
	}
	for _, t := range toggles {
		if t.src != nil {
			*t.dst = *t.src
		}
	}

	if prefs.QuietHoursStart, err = applyClock(req.QuietHoursStart, prefs.QuietHoursStart, "quietHoursStart"); err != nil {
		return nil, err
	}
	if prefs.QuietHoursEnd, err = applyClock(req.QuietHoursEnd, prefs.QuietHoursEnd, "quietHoursEnd"); err != nil {
		return nil, err
	}

	if err := s.notificationRepo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("error saving notification preferences: %w", err)
	}
	return prefs, nil
}

// applyClock keeps current for nil, clears for "" and parses anything else
func applyClock(raw *string, current *models.ClockTime, field string) (*models.ClockTime, error) {
	if raw == nil {
		return current, nil
	}
	if *raw == "" {
		return nil, nil
	}
	c, err := models.ParseClockTime(*raw)
	if err != nil {
		return nil, apperrors.NewValidationError(field, "must be a time of day formatted HH:MM")
	}
	return &c, nil
}
