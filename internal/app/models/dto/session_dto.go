package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/alumnihub/internal/app/models"
)

// CreateSessionRequest schedules a learning session; the caller is the speaker
type CreateSessionRequest struct {
	Title           string             `json:"title" binding:"required,max=200"`
	Description     string             `json:"description" binding:"required"`
	SessionType     models.SessionType `json:"sessionType" binding:"required,oneof=keynote workshop panel qna"`
	ScheduledDate   time.Time          `json:"scheduledDate" binding:"required"`
	DurationMinutes int                `json:"durationMinutes" binding:"omitempty,min=1,max=1440"`
	MeetingLink     string             `json:"meetingLink" binding:"omitempty,url"`
	MeetingPlatform string             `json:"meetingPlatform" binding:"max=50"`
	ModeratorID     *uuid.UUID         `json:"moderatorId"`
	CommunityID     *uuid.UUID         `json:"communityId"`
	Topics          []string           `json:"topics"`
	MaxParticipants int                `json:"maxParticipants" binding:"required,min=1"`
	IsPublic        *bool              `json:"isPublic"`
	Publish         bool               `json:"publish"`
}

// SessionStatusRequest moves a session through its lifecycle
type SessionStatusRequest struct {
	Status models.SessionStatus `json:"status" binding:"required,oneof=scheduled live completed cancelled"`
}

// UpsertRecordingRequest attaches or updates the session recording
type UpsertRecordingRequest struct {
	RecordingURL     string                 `json:"recordingUrl" binding:"required,url"`
	ThumbnailURL     string                 `json:"thumbnailUrl" binding:"omitempty,url"`
	DurationSeconds  int                    `json:"durationSeconds" binding:"min=0"`
	ProcessingStatus models.RecordingStatus `json:"processingStatus" binding:"required,oneof=processing completed failed"`
}

// SessionFeedbackRequest rates a session
type SessionFeedbackRequest struct {
	Rating               int    `json:"rating" binding:"required,min=1,max=5"`
	Comment              string `json:"comment" binding:"max=2000"`
	ContentQuality       *int   `json:"contentQuality" binding:"omitempty,min=1,max=5"`
	SpeakerEffectiveness *int   `json:"speakerEffectiveness" binding:"omitempty,min=1,max=5"`
	TechnicalQuality     *int   `json:"technicalQuality" binding:"omitempty,min=1,max=5"`
}

// SessionListResponse is a page of sessions
type SessionListResponse struct {
	Sessions []*models.Session `json:"sessions"`
	PaginationInfo
}

// JoinSessionResponse reports the participant row and whether it was new
type JoinSessionResponse struct {
	Participant *models.SessionParticipant `json:"participant"`
	Created     bool                       `json:"created"`
}
