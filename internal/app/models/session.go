package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a learning session
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionScheduled SessionStatus = "scheduled"
	SessionLive      SessionStatus = "live"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionDraft:     {SessionScheduled, SessionCancelled},
	SessionScheduled: {SessionLive, SessionCancelled},
	SessionLive:      {SessionCompleted},
}

// CanTransitionTo reports whether the session lifecycle allows s -> next
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Joinable reports whether participants may join in this state
func (s SessionStatus) Joinable() bool {
	return s == SessionScheduled || s == SessionLive
}

// SessionType is the format of a session
type SessionType string

const (
	SessionKeynote  SessionType = "keynote"
	SessionWorkshop SessionType = "workshop"
	SessionPanel    SessionType = "panel"
	SessionQnA      SessionType = "qna"
)

// Session is a scheduled learning session
type Session struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	Title           string        `json:"title" db:"title"`
	Description     string        `json:"description" db:"description"`
	SessionType     SessionType   `json:"sessionType" db:"session_type"`
	Status          SessionStatus `json:"status" db:"status"`
	ScheduledDate   time.Time     `json:"scheduledDate" db:"scheduled_date"`
	DurationMinutes int           `json:"durationMinutes" db:"duration_minutes"`
	MeetingLink     string        `json:"meetingLink,omitempty" db:"meeting_link"`
	MeetingPlatform string        `json:"meetingPlatform,omitempty" db:"meeting_platform"`
	SpeakerID       *uuid.UUID    `json:"speakerId,omitempty" db:"speaker_id"`
	ModeratorID     *uuid.UUID    `json:"moderatorId,omitempty" db:"moderator_id"`
	CommunityID     *uuid.UUID    `json:"communityId,omitempty" db:"community_id"`
	Topics          []string      `json:"topics" db:"topics"`
	MaxParticipants int           `json:"maxParticipants" db:"max_participants"`
	IsPublic        bool          `json:"isPublic" db:"is_public"`
	StartedAt       *time.Time    `json:"startedAt,omitempty" db:"started_at"`
	EndedAt         *time.Time    `json:"endedAt,omitempty" db:"ended_at"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`

	ParticipantCount int `json:"participantCount"`
}

// IsUpcoming reports a scheduled session in the future
func (s *Session) IsUpcoming(now time.Time) bool {
	return s.Status == SessionScheduled && s.ScheduledDate.After(now)
}

// ParticipantRole is the role a user plays in a session
type ParticipantRole string

const (
	ParticipantAttendee  ParticipantRole = "attendee"
	ParticipantSpeaker   ParticipantRole = "speaker"
	ParticipantModerator ParticipantRole = "moderator"
	ParticipantObserver  ParticipantRole = "observer"
)

// SessionParticipant is unique per (session, user)
type SessionParticipant struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	SessionID        uuid.UUID       `json:"sessionId" db:"session_id"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	Role             ParticipantRole `json:"role" db:"role"`
	JoinedAt         time.Time       `json:"joinedAt" db:"joined_at"`
	LeftAt           *time.Time      `json:"leftAt,omitempty" db:"left_at"`
	DurationAttended int             `json:"durationAttended" db:"duration_attended"`
	AskedQuestions   bool            `json:"askedQuestions" db:"asked_questions"`
	ProvidedFeedback bool            `json:"providedFeedback" db:"provided_feedback"`
}

// RecordingStatus is the processing state of a recording
type RecordingStatus string

const (
	RecordingProcessing RecordingStatus = "processing"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

// SessionRecording is 1:1 with a session
type SessionRecording struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	SessionID        uuid.UUID       `json:"sessionId" db:"session_id"`
	RecordingURL     string          `json:"recordingUrl" db:"recording_url"`
	ThumbnailURL     string          `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`
	DurationSeconds  int             `json:"durationSeconds" db:"duration_seconds"`
	ProcessingStatus RecordingStatus `json:"processingStatus" db:"processing_status"`
	ViewsCount       int             `json:"viewsCount" db:"views_count"`
	DownloadCount    int             `json:"downloadCount" db:"download_count"`
	ProcessedAt      *time.Time      `json:"processedAt,omitempty" db:"processed_at"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// SessionFeedback is unique per (session, user)
type SessionFeedback struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	SessionID            uuid.UUID `json:"sessionId" db:"session_id"`
	UserID               uuid.UUID `json:"userId" db:"user_id"`
	Rating               int       `json:"rating" db:"rating"`
	Comment              string    `json:"comment,omitempty" db:"comment"`
	ContentQuality       *int      `json:"contentQuality,omitempty" db:"content_quality"`
	SpeakerEffectiveness *int      `json:"speakerEffectiveness,omitempty" db:"speaker_effectiveness"`
	TechnicalQuality     *int      `json:"technicalQuality,omitempty" db:"technical_quality"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
}
