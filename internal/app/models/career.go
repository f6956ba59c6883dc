package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CareerLevel is the seniority of a career path step
type CareerLevel string

const (
	CareerEntry     CareerLevel = "entry"
	CareerMid       CareerLevel = "mid"
	CareerSenior    CareerLevel = "senior"
	CareerLead      CareerLevel = "lead"
	CareerExecutive CareerLevel = "executive"
)

// CareerPath is one step in a progression
type CareerPath struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Level       CareerLevel `json:"level" db:"level"`
	Industry    string      `json:"industry" db:"industry"`
	NextLevelID *uuid.UUID  `json:"nextLevelId,omitempty" db:"next_level_id"`
}

// EmploymentType of a job posting
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentFreelance  EmploymentType = "freelance"
)

// JobPosting is a career opportunity
type JobPosting struct {
	ID                  uuid.UUID        `json:"id" db:"id"`
	Title               string           `json:"title" db:"title"`
	Company             string           `json:"company" db:"company"`
	Description         string           `json:"description" db:"description"`
	Requirements        string           `json:"requirements" db:"requirements"`
	Responsibilities    string           `json:"responsibilities" db:"responsibilities"`
	Location            string           `json:"location" db:"location"`
	IsRemote            bool             `json:"isRemote" db:"is_remote"`
	EmploymentType      EmploymentType   `json:"employmentType" db:"employment_type"`
	ExperienceLevel     string           `json:"experienceLevel" db:"experience_level"`
	SalaryMin           *decimal.Decimal `json:"salaryMin,omitempty" db:"salary_min"`
	SalaryMax           *decimal.Decimal `json:"salaryMax,omitempty" db:"salary_max"`
	SalaryCurrency      string           `json:"salaryCurrency" db:"salary_currency"`
	Skills              []string         `json:"skills" db:"skills"`
	ApplicationDeadline *time.Time       `json:"applicationDeadline,omitempty" db:"application_deadline"`
	ApplicationURL      string           `json:"applicationUrl,omitempty" db:"application_url"`
	IsActive            bool             `json:"isActive" db:"is_active"`
	IsFeatured          bool             `json:"isFeatured" db:"is_featured"`
	ViewsCount          int              `json:"viewsCount" db:"views_count"`
	ApplicationsCount   int              `json:"applicationsCount" db:"applications_count"`
	PostedBy            *uuid.UUID       `json:"postedBy,omitempty" db:"posted_by"`
	CreatedAt           time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time        `json:"updatedAt" db:"updated_at"`
}

// IsExpired reports a posting whose deadline has passed
func (j *JobPosting) IsExpired(now time.Time) bool {
	return j.ApplicationDeadline != nil && j.ApplicationDeadline.Before(now)
}

// AcceptsApplications reports an active, unexpired posting
func (j *JobPosting) AcceptsApplications(now time.Time) bool {
	return j.IsActive && !j.IsExpired(now)
}

// JobFilter narrows job listings
type JobFilter struct {
	Search          string
	IsRemote        *bool
	EmploymentType  string
	ExperienceLevel string
}

// SkillCategory groups skills
type SkillCategory string

const (
	SkillTechnical SkillCategory = "technical"
	SkillSoft      SkillCategory = "soft"
	SkillDomain    SkillCategory = "domain"
	SkillTool      SkillCategory = "tool"
)

// Skill is an entry in the skills catalog
type Skill struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	Name            string        `json:"name" db:"name"`
	Description     string        `json:"description" db:"description"`
	Category        SkillCategory `json:"category" db:"category"`
	DifficultyLevel int           `json:"difficultyLevel" db:"difficulty_level"`
}

// Proficiency of a user in a skill
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// UserSkill is unique per (user, skill)
type UserSkill struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"userId" db:"user_id"`
	SkillID         uuid.UUID   `json:"skillId" db:"skill_id"`
	Proficiency     Proficiency `json:"proficiency" db:"proficiency"`
	YearsExperience int         `json:"yearsExperience" db:"years_experience"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`

	SkillName string `json:"skillName,omitempty"`
}

// ApplicationStatus is the hiring pipeline state
type ApplicationStatus string

const (
	ApplicationApplied      ApplicationStatus = "applied"
	ApplicationReviewing    ApplicationStatus = "reviewing"
	ApplicationInterviewing ApplicationStatus = "interviewing"
	ApplicationOffered      ApplicationStatus = "offered"
	ApplicationHired        ApplicationStatus = "hired"
	ApplicationRejected     ApplicationStatus = "rejected"
	ApplicationWithdrawn    ApplicationStatus = "withdrawn"
)

// IsFinal reports a closed application
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationHired || s == ApplicationRejected || s == ApplicationWithdrawn
}

// JobApplication is unique per (posting, applicant)
type JobApplication struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	JobPostingID uuid.UUID         `json:"jobPostingId" db:"job_posting_id"`
	ApplicantID  uuid.UUID         `json:"applicantId" db:"applicant_id"`
	CoverLetter  string            `json:"coverLetter" db:"cover_letter"`
	Status       ApplicationStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}
