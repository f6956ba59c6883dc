package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yigit/alumnihub/internal/app/models"
)

// CreateJobPostingRequest publishes a job opportunity
type CreateJobPostingRequest struct {
	Title               string                `json:"title" binding:"required,max=200"`
	Company             string                `json:"company" binding:"required,max=200"`
	Description         string                `json:"description" binding:"required"`
	Requirements        string                `json:"requirements"`
	Responsibilities    string                `json:"responsibilities"`
	Location            string                `json:"location" binding:"max=200"`
	IsRemote            bool                  `json:"isRemote"`
	EmploymentType      models.EmploymentType `json:"employmentType" binding:"required,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel     string                `json:"experienceLevel" binding:"required,oneof=entry junior mid senior lead executive"`
	SalaryMin           *decimal.Decimal      `json:"salaryMin" swaggertype:"string"`
	SalaryMax           *decimal.Decimal      `json:"salaryMax" swaggertype:"string"`
	SalaryCurrency      string                `json:"salaryCurrency" binding:"omitempty,currency"`
	Skills              []string              `json:"skills"`
	ApplicationDeadline *time.Time            `json:"applicationDeadline"`
	ApplicationURL      string                `json:"applicationUrl" binding:"omitempty,url"`
}

// JobFilterRequest narrows the job listing
type JobFilterRequest struct {
	Search          string `form:"search"`
	IsRemote        *bool  `form:"isRemote"`
	EmploymentType  string `form:"employmentType"`
	ExperienceLevel string `form:"experienceLevel"`
}

// ToFilter converts query parameters into a repository filter
func (r JobFilterRequest) ToFilter() models.JobFilter {
	return models.JobFilter{
		Search:          r.Search,
		IsRemote:        r.IsRemote,
		EmploymentType:  r.EmploymentType,
		ExperienceLevel: r.ExperienceLevel,
	}
}

// ApplyJobRequest applies to a posting
type ApplyJobRequest struct {
	CoverLetter string `json:"coverLetter" binding:"max=5000"`
}

// ApplicationStatusRequest moves an application through the hiring pipeline
type ApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required,oneof=reviewing interviewing offered hired rejected withdrawn"`
}

// UserSkillRequest upserts a skill on the caller's profile
type UserSkillRequest struct {
	SkillID         uuid.UUID          `json:"skillId" binding:"required"`
	Proficiency     models.Proficiency `json:"proficiency" binding:"required,oneof=beginner intermediate advanced expert"`
	YearsExperience int                `json:"yearsExperience" binding:"min=0,max=80"`
}

// JobListResponse is a page of job postings
type JobListResponse struct {
	Jobs []*models.JobPosting `json:"jobs"`
	PaginationInfo
}

// ApplicationListResponse lists applications
type ApplicationListResponse struct {
	Applications []*models.JobApplication `json:"applications"`
}

// CreateSkillRequest adds a skill to the catalog
type CreateSkillRequest struct {
	Name            string               `json:"name" binding:"required,max=100"`
	Category        models.SkillCategory `json:"category" binding:"required,oneof=technical soft domain tool"`
	Description     string               `json:"description"`
	DifficultyLevel int                  `json:"difficultyLevel" binding:"omitempty,min=1,max=5"`
}

// CreateCareerPathRequest adds a step to a career ladder
type CreateCareerPathRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	Level       string     `json:"level" binding:"required,oneof=entry mid senior lead executive"`
	Industry    string     `json:"industry" binding:"required,max=100"`
	NextLevelID *uuid.UUID `json:"nextLevelId"`
}
