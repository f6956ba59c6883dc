package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/alumnihub/internal/app/models"
)

// MentorProfileRequest creates or updates the caller's mentor profile
type MentorProfileRequest struct {
	ExpertiseAreas         []string           `json:"expertiseAreas" binding:"required,min=1"`
	YearsExperience        int                `json:"yearsExperience" binding:"min=0,max=80"`
	MaxMentees             int                `json:"maxMentees" binding:"omitempty,min=1,max=50"`
	AvailableForMentorship *bool              `json:"availableForMentorship"`
	PreferredMenteeLevel   models.MenteeLevel `json:"preferredMenteeLevel" binding:"omitempty,oneof=student early_career mid_career any"`
	Bio                    string             `json:"bio" binding:"max=2000"`
	Motivation             string             `json:"motivation" binding:"max=2000"`
}

// MenteeProfileRequest creates or updates the caller's mentee profile
type MenteeProfileRequest struct {
	CurrentLevel              models.MenteeLevel `json:"currentLevel" binding:"required,oneof=student early_career mid_career career_changer"`
	LearningGoals             []string           `json:"learningGoals"`
	CareerGoals               string             `json:"careerGoals" binding:"max=2000"`
	PreferredMentorQualities  []string           `json:"preferredMentorQualities"`
	PreferredMeetingFrequency string             `json:"preferredMeetingFrequency" binding:"omitempty,oneof=weekly biweekly monthly flexible"`
	Bio                       string             `json:"bio" binding:"max=2000"`
	Motivation                string             `json:"motivation" binding:"max=2000"`
}

// CreateProgramRequest adds a mentorship program
type CreateProgramRequest struct {
	Name                 string             `json:"name" binding:"required,max=200"`
	Description          string             `json:"description" binding:"required"`
	ProgramType          models.ProgramType `json:"programType" binding:"required,oneof=career technical leadership academic personal"`
	MaxMenteesPerMentor  int                `json:"maxMenteesPerMentor" binding:"omitempty,min=1"`
	ProgramDurationWeeks int                `json:"programDurationWeeks" binding:"omitempty,min=1"`
	IsPublic             *bool              `json:"isPublic"`
	StartDate            *time.Time         `json:"startDate"`
	EndDate              *time.Time         `json:"endDate"`
}

// RequestMentorshipRequest asks a mentor for a relationship inside a program
type RequestMentorshipRequest struct {
	MentorID     uuid.UUID `json:"mentorId" binding:"required"`
	ProgramID    uuid.UUID `json:"programId" binding:"required"`
	Goals        string    `json:"goals" binding:"required"`
	Expectations string    `json:"expectations"`
	Frequency    string    `json:"frequency" binding:"omitempty,oneof=weekly biweekly monthly flexible"`
}

// RelationshipStatusRequest moves a relationship through its lifecycle
type RelationshipStatusRequest struct {
	Status models.RelationshipStatus `json:"status" binding:"required,oneof=active paused completed terminated"`
}

// ScheduleMentorshipSessionRequest books a meeting on an active relationship
type ScheduleMentorshipSessionRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description"`
	ScheduledDate   time.Time `json:"scheduledDate" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=1,max=480"`
	MeetingLink     string    `json:"meetingLink" binding:"omitempty,url"`
	MeetingPlatform string    `json:"meetingPlatform" binding:"max=50"`
	Agenda          string    `json:"agenda"`
}

// MentorshipSessionStatusRequest moves a mentorship session through its lifecycle
type MentorshipSessionStatusRequest struct {
	Status models.MentorshipSessionStatus `json:"status" binding:"required,oneof=confirmed in_progress completed cancelled no_show"`
	Notes  string                         `json:"notes"`
}

// MentorshipFeedbackRequest records one party's feedback on a meeting
type MentorshipFeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required,max=4000"`
	Rating   *int   `json:"rating" binding:"omitempty,min=1,max=5"`
}

// MentorListResponse is a page of available mentors
type MentorListResponse struct {
	Mentors []*models.MentorProfile `json:"mentors"`
	PaginationInfo
}

// RelationshipListResponse lists the caller's relationships
type RelationshipListResponse struct {
	Relationships []*models.MentorshipRelationship `json:"relationships"`
}
