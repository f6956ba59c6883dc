package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProgramType classifies a mentorship program
type ProgramType string

const (
	ProgramCareer     ProgramType = "career"
	ProgramTechnical  ProgramType = "technical"
	ProgramLeadership ProgramType = "leadership"
	ProgramAcademic   ProgramType = "academic"
	ProgramPersonal   ProgramType = "personal"
)

// ProgramStatus is the state of a mentorship program
type ProgramStatus string

const (
	ProgramActive    ProgramStatus = "active"
	ProgramInactive  ProgramStatus = "inactive"
	ProgramCompleted ProgramStatus = "completed"
	ProgramPaused    ProgramStatus = "paused"
)

// MentorshipProgram groups relationships under a shared goal
type MentorshipProgram struct {
	ID                   uuid.UUID     `json:"id" db:"id"`
	Name                 string        `json:"name" db:"name"`
	Description          string        `json:"description" db:"description"`
	ProgramType          ProgramType   `json:"programType" db:"program_type"`
	Status               ProgramStatus `json:"status" db:"status"`
	MaxMenteesPerMentor  int           `json:"maxMenteesPerMentor" db:"max_mentees_per_mentor"`
	ProgramDurationWeeks int           `json:"programDurationWeeks" db:"program_duration_weeks"`
	IsPublic             bool          `json:"isPublic" db:"is_public"`
	StartDate            *time.Time    `json:"startDate,omitempty" db:"start_date"`
	EndDate              *time.Time    `json:"endDate,omitempty" db:"end_date"`
	CreatedBy            *uuid.UUID    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
}

// MenteeLevel is the career stage of a mentee
type MenteeLevel string

const (
	LevelStudent       MenteeLevel = "student"
	LevelEarlyCareer   MenteeLevel = "early_career"
	LevelMidCareer     MenteeLevel = "mid_career"
	LevelCareerChanger MenteeLevel = "career_changer"
	LevelAny           MenteeLevel = "any"
)

// MentorProfile is 1:1 with a user offering mentorship
type MentorProfile struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	UserID                 uuid.UUID       `json:"userId" db:"user_id"`
	ExpertiseAreas         []string        `json:"expertiseAreas" db:"expertise_areas"`
	YearsExperience        int             `json:"yearsExperience" db:"years_experience"`
	MaxMentees             int             `json:"maxMentees" db:"max_mentees"`
	AvailableForMentorship bool            `json:"availableForMentorship" db:"available_for_mentorship"`
	PreferredMenteeLevel   MenteeLevel     `json:"preferredMenteeLevel" db:"preferred_mentee_level"`
	TotalMenteesHelped     int             `json:"totalMenteesHelped" db:"total_mentees_helped"`
	AverageRating          decimal.Decimal `json:"averageRating" db:"average_rating"`
	TotalSessions          int             `json:"totalSessions" db:"total_sessions"`
	Bio                    string          `json:"bio" db:"bio"`
	Motivation             string          `json:"motivation" db:"motivation"`
	IsVerified             bool            `json:"isVerified" db:"is_verified"`
	VerifiedAt             *time.Time      `json:"verifiedAt,omitempty" db:"verified_at"`
	VerifiedBy             *uuid.UUID      `json:"verifiedBy,omitempty" db:"verified_by"`
	CreatedAt              time.Time       `json:"createdAt" db:"created_at"`

	CurrentMenteeCount int `json:"currentMenteeCount"`
}

// CanAcceptMentees reports whether the mentor has a free slot
func (m *MentorProfile) CanAcceptMentees() bool {
	return m.AvailableForMentorship && m.CurrentMenteeCount < m.MaxMentees
}

// MenteeProfile is 1:1 with a user seeking mentorship
type MenteeProfile struct {
	ID                        uuid.UUID   `json:"id" db:"id"`
	UserID                    uuid.UUID   `json:"userId" db:"user_id"`
	CurrentLevel              MenteeLevel `json:"currentLevel" db:"current_level"`
	LearningGoals             []string    `json:"learningGoals" db:"learning_goals"`
	CareerGoals               string      `json:"careerGoals" db:"career_goals"`
	PreferredMentorQualities  []string    `json:"preferredMentorQualities" db:"preferred_mentor_qualities"`
	PreferredMeetingFrequency string      `json:"preferredMeetingFrequency" db:"preferred_meeting_frequency"`
	TotalMentors              int         `json:"totalMentors" db:"total_mentors"`
	TotalSessions             int         `json:"totalSessions" db:"total_sessions"`
	Bio                       string      `json:"bio" db:"bio"`
	Motivation                string      `json:"motivation" db:"motivation"`
	CreatedAt                 time.Time   `json:"createdAt" db:"created_at"`
}

// RelationshipStatus is the lifecycle of a mentorship
type RelationshipStatus string

const (
	RelationshipPending    RelationshipStatus = "pending"
	RelationshipActive     RelationshipStatus = "active"
	RelationshipPaused     RelationshipStatus = "paused"
	RelationshipCompleted  RelationshipStatus = "completed"
	RelationshipTerminated RelationshipStatus = "terminated"
)

var relationshipTransitions = map[RelationshipStatus][]RelationshipStatus{
	RelationshipPending: {RelationshipActive, RelationshipTerminated},
	RelationshipActive:  {RelationshipPaused, RelationshipCompleted, RelationshipTerminated},
	RelationshipPaused:  {RelationshipActive, RelationshipCompleted, RelationshipTerminated},
}

// CanTransitionTo reports whether s -> next is allowed
func (s RelationshipStatus) CanTransitionTo(next RelationshipStatus) bool {
	for _, allowed := range relationshipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports completed or terminated
func (s RelationshipStatus) IsTerminal() bool {
	return s == RelationshipCompleted || s == RelationshipTerminated
}

// Valid reports whether s is a known status
func (s RelationshipStatus) Valid() bool {
	switch s {
	case RelationshipPending, RelationshipActive, RelationshipPaused, RelationshipCompleted, RelationshipTerminated:
		return true
	}
	return false
}

// MentorshipRelationship links a mentor, a mentee and a program
type MentorshipRelationship struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	MentorID      uuid.UUID          `json:"mentorId" db:"mentor_id"`
	MenteeID      uuid.UUID          `json:"menteeId" db:"mentee_id"`
	ProgramID     uuid.UUID          `json:"programId" db:"program_id"`
	Status        RelationshipStatus `json:"status" db:"status"`
	Goals         string             `json:"goals" db:"goals"`
	Expectations  string             `json:"expectations" db:"expectations"`
	Frequency     string             `json:"frequency" db:"frequency"`
	StartDate     *time.Time         `json:"startDate,omitempty" db:"start_date"`
	EndDate       *time.Time         `json:"endDate,omitempty" db:"end_date"`
	TotalSessions int                `json:"totalSessions" db:"total_sessions"`
	MenteeRating  *int               `json:"menteeRating,omitempty" db:"mentee_rating"`
	MentorRating  *int               `json:"mentorRating,omitempty" db:"mentor_rating"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" db:"updated_at"`
}

// MentorshipSessionStatus is the lifecycle of a 1:1 meeting
type MentorshipSessionStatus string

const (
	MentorshipSessionScheduled  MentorshipSessionStatus = "scheduled"
	MentorshipSessionConfirmed  MentorshipSessionStatus = "confirmed"
	MentorshipSessionInProgress MentorshipSessionStatus = "in_progress"
	MentorshipSessionCompleted  MentorshipSessionStatus = "completed"
	MentorshipSessionCancelled  MentorshipSessionStatus = "cancelled"
	MentorshipSessionNoShow     MentorshipSessionStatus = "no_show"
)

var mentorshipSessionTransitions = map[MentorshipSessionStatus][]MentorshipSessionStatus{
	MentorshipSessionScheduled:  {MentorshipSessionConfirmed, MentorshipSessionCancelled, MentorshipSessionNoShow},
	MentorshipSessionConfirmed:  {MentorshipSessionInProgress, MentorshipSessionCancelled, MentorshipSessionNoShow},
	MentorshipSessionInProgress: {MentorshipSessionCompleted},
}

// CanTransitionTo reports whether s -> next is allowed
func (s MentorshipSessionStatus) CanTransitionTo(next MentorshipSessionStatus) bool {
	for _, allowed := range mentorshipSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MentorshipSession is a meeting between mentor and mentee
type MentorshipSession struct {
	ID              uuid.UUID               `json:"id" db:"id"`
	RelationshipID  uuid.UUID               `json:"relationshipId" db:"relationship_id"`
	Title           string                  `json:"title" db:"title"`
	Description     string                  `json:"description" db:"description"`
	Status          MentorshipSessionStatus `json:"status" db:"status"`
	ScheduledDate   time.Time               `json:"scheduledDate" db:"scheduled_date"`
	DurationMinutes int                     `json:"durationMinutes" db:"duration_minutes"`
	MeetingLink     string                  `json:"meetingLink,omitempty" db:"meeting_link"`
	MeetingPlatform string                  `json:"meetingPlatform,omitempty" db:"meeting_platform"`
	Agenda          string                  `json:"agenda" db:"agenda"`
	Notes           string                  `json:"notes" db:"notes"`
	ActionItems     []string                `json:"actionItems" db:"action_items"`
	MenteeFeedback  string                  `json:"menteeFeedback,omitempty" db:"mentee_feedback"`
	MentorFeedback  string                  `json:"mentorFeedback,omitempty" db:"mentor_feedback"`
	StartedAt       *time.Time              `json:"startedAt,omitempty" db:"started_at"`
	EndedAt         *time.Time              `json:"endedAt,omitempty" db:"ended_at"`
	CreatedAt       time.Time               `json:"createdAt" db:"created_at"`
}
