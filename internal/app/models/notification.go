package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what a notification is about
type NotificationType string

const (
	NotificationSessionReminder    NotificationType = "session_reminder"
	NotificationSessionScheduled   NotificationType = "session_scheduled"
	NotificationRecordingAvailable NotificationType = "recording_available"
	NotificationFeedbackReceived   NotificationType = "feedback_received"
	NotificationCommunityActivity  NotificationType = "community_activity"
	NotificationMilestoneAchieved  NotificationType = "milestone_achieved"
	NotificationBadgeEarned        NotificationType = "badge_earned"
	NotificationMentorshipUpdate   NotificationType = "mentorship_update"
	NotificationCareerOpportunity  NotificationType = "career_opportunity"
)

// NotificationPriority orders notifications in the inbox
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// NotificationCategory is the preference bucket a type belongs to
type NotificationCategory string

const (
	CategorySessions   NotificationCategory = "sessions"
	CategoryRecordings NotificationCategory = "recordings"
	CategoryFeedback   NotificationCategory = "feedback"
	CategoryCommunity  NotificationCategory = "community"
	CategoryMilestones NotificationCategory = "milestones"
	CategoryMentorship NotificationCategory = "mentorship"
	CategoryCareer     NotificationCategory = "career"
)

// Category returns the preference bucket for t
func (t NotificationType) Category() NotificationCategory {
	switch t {
	case NotificationSessionReminder, NotificationSessionScheduled:
		return CategorySessions
	case NotificationRecordingAvailable:
		return CategoryRecordings
	case NotificationFeedbackReceived:
		return CategoryFeedback
	case NotificationCommunityActivity:
		return CategoryCommunity
	case NotificationMilestoneAchieved, NotificationBadgeEarned:
		return CategoryMilestones
	case NotificationMentorshipUpdate:
		return CategoryMentorship
	default:
		return CategoryCareer
	}
}

// Notification is an inbox entry
type Notification struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	RecipientID   uuid.UUID            `json:"recipientId" db:"recipient_id"`
	Type          NotificationType     `json:"notificationType" db:"notification_type"`
	Title         string               `json:"title" db:"title"`
	Message       string               `json:"message" db:"message"`
	Priority      NotificationPriority `json:"priority" db:"priority"`
	IsRead        bool                 `json:"isRead" db:"is_read"`
	IsEmailSent   bool                 `json:"isEmailSent" db:"is_email_sent"`
	ActionURL     string               `json:"actionUrl,omitempty" db:"action_url"`
	ReferenceID   *uuid.UUID           `json:"referenceId,omitempty" db:"reference_id"`
	ReferenceType string               `json:"referenceType,omitempty" db:"reference_type"`
	CreatedAt     time.Time            `json:"createdAt" db:"created_at"`
	ReadAt        *time.Time           `json:"readAt,omitempty" db:"read_at"`
}

// MarkRead is idempotent: read_at is stamped only the first time
func (n *Notification) MarkRead(at time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &at
	return true
}

// ClockTime is a wall clock time of day stored as "HH:MM"
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM"
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid time of day %q", s)
	}
	return c, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

// NotificationPreference holds per-category delivery switches
type NotificationPreference struct {
	UserID uuid.UUID `json:"userId" db:"user_id"`

	EmailSessions   bool `json:"emailSessions" db:"email_sessions"`
	EmailRecordings bool `json:"emailRecordings" db:"email_recordings"`
	EmailFeedback   bool `json:"emailFeedback" db:"email_feedback"`
	EmailCommunity  bool `json:"emailCommunity" db:"email_community"`
	EmailMilestones bool `json:"emailMilestones" db:"email_milestones"`
	EmailMentorship bool `json:"emailMentorship" db:"email_mentorship"`
	EmailCareer     bool `json:"emailCareer" db:"email_career"`

	InAppSessions   bool `json:"inAppSessions" db:"in_app_sessions"`
	InAppRecordings bool `json:"inAppRecordings" db:"in_app_recordings"`
	InAppFeedback   bool `json:"inAppFeedback" db:"in_app_feedback"`
	InAppCommunity  bool `json:"inAppCommunity" db:"in_app_community"`
	InAppMilestones bool `json:"inAppMilestones" db:"in_app_milestones"`
	InAppMentorship bool `json:"inAppMentorship" db:"in_app_mentorship"`
	InAppCareer     bool `json:"inAppCareer" db:"in_app_career"`

	QuietHoursStart *ClockTime `json:"-" db:"quiet_hours_start"`
	QuietHoursEnd   *ClockTime `json:"-" db:"quiet_hours_end"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// DefaultNotificationPreference enables everything except community and career email
func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:          userID,
		EmailSessions:   true,
		EmailRecordings: true,
		EmailFeedback:   true,
		EmailMilestones: true,
		EmailMentorship: true,
		InAppSessions:   true,
		InAppRecordings: true,
		InAppFeedback:   true,
		InAppCommunity:  true,
		InAppMilestones: true,
		InAppMentorship: true,
		InAppCareer:     true,
	}
}

// EmailEnabled reports the email switch for a category
func (p *NotificationPreference) EmailEnabled(c NotificationCategory) bool {
	switch c {
	case CategorySessions:
		return p.EmailSessions
	case CategoryRecordings:
		return p.EmailRecordings
	case CategoryFeedback:
		return p.EmailFeedback
	case CategoryCommunity:
		return p.EmailCommunity
	case CategoryMilestones:
		return p.EmailMilestones
	case CategoryMentorship:
		return p.EmailMentorship
	case CategoryCareer:
		return p.EmailCareer
	}
	return false
}

// InAppEnabled reports the in-app switch for a category
func (p *NotificationPreference) InAppEnabled(c NotificationCategory) bool {
	switch c {
	case CategorySessions:
		return p.InAppSessions
	case CategoryRecordings:
		return p.InAppRecordings
	case CategoryFeedback:
		return p.InAppFeedback
	case CategoryCommunity:
		return p.InAppCommunity
	case CategoryMilestones:
		return p.InAppMilestones
	case CategoryMentorship:
		return p.InAppMentorship
	case CategoryCareer:
		return p.InAppCareer
	}
	return false
}

// IsQuietHours reports whether t falls inside the quiet window.
// A window whose start is after its end spans midnight.
func (p *NotificationPreference) IsQuietHours(t time.Time) bool {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	start, end := p.QuietHoursStart.minutes(), p.QuietHoursEnd.minutes()
	if start <= end {
		return start <= now && now <= end
	}
	return now >= start || now <= end
}
