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

// CareerService defines the interface for jobs, skills and career paths
type CareerService interface {
	ListJobs(ctx context.Context, filter *dto.JobFilterRequest, page, size int) (*dto.JobListResponse, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error)
	CreateJob(ctx context.Context, posterID uuid.UUID, req *dto.CreateJobPostingRequest) (*models.JobPosting, error)
	Apply(ctx context.Context, jobID, applicantID uuid.UUID, req *dto.ApplyJobRequest) (*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, actor auth.Actor, applicationID uuid.UUID, status models.ApplicationStatus) (*models.JobApplication, error)
	ListApplicationsForJob(ctx context.Context, actor auth.Actor, jobID uuid.UUID) (*dto.ApplicationListResponse, error)
	ListMyApplications(ctx context.Context, userID uuid.UUID) (*dto.ApplicationListResponse, error)

	ListSkills(ctx context.Context) ([]*models.Skill, error)
	CreateSkill(ctx context.Context, req *dto.CreateSkillRequest) (*models.Skill, error)
	UpsertUserSkill(ctx context.Context, userID uuid.UUID, req *dto.UserSkillRequest) (*models.UserSkill, error)
	ListUserSkills(ctx context.Context, userID uuid.UUID) ([]*models.UserSkill, error)

	ListCareerPaths(ctx context.Context, industry string) ([]*models.CareerPath, error)
	CreateCareerPath(ctx context.Context, req *dto.CreateCareerPathRequest) (*models.CareerPath, error)
}

type careerServiceImpl struct {
	tx        Transactor
	repo      CareerStore
	notifier  Notifier
	publisher events.Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCareerService creates a new CareerService
func NewCareerService(tx Transactor, repo CareerStore, notifier Notifier, publisher events.Publisher, logger zerolog.Logger) CareerService {
	return &careerServiceImpl{
		tx:        tx,
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// ListJobs returns active postings whose deadline has not passed
func (s *careerServiceImpl) ListJobs(ctx context.Context, filter *dto.JobFilterRequest, page, size int) (*dto.JobListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	jobs, total, err := s.repo.ListJobs(ctx, filter.ToFilter(), s.now().UTC(), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing jobs: %w", err)
	}
	return &dto.JobListResponse{
		Jobs:           jobs,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// GetJob returns a posting and counts the view
func (s *careerServiceImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*models.JobPosting, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementJobViews(ctx, jobID); err != nil {
		s.logger.Warn().Err(err).Str("jobID", jobID.String()).Msg("Failed to increment job views")
	} else {
		job.ViewsCount++
	}
	return job, nil
}

// CreateJob publishes a posting owned by posterID
func (s *careerServiceImpl) CreateJob(ctx context.Context, posterID uuid.UUID, req *dto.CreateJobPostingRequest) (*models.JobPosting, error) {
	if req.SalaryMin != nil && req.SalaryMin.IsNegative() {
		return nil, apperrors.NewValidationError("salaryMin", "salary cannot be negative")
	}
	if req.SalaryMin != nil && req.SalaryMax != nil && req.SalaryMin.GreaterThan(*req.SalaryMax) {
		return nil, apperrors.NewValidationError("salaryMax", "salaryMax must be greater than or equal to salaryMin")
	}
	if req.ApplicationDeadline != nil && req.ApplicationDeadline.Before(s.now()) {
		return nil, apperrors.NewValidationError("applicationDeadline", "deadline must be in the future")
	}

	currency := strings.ToUpper(req.SalaryCurrency)
	if currency == "" {
		currency = "USD"
	}
	job := &models.JobPosting{
		Title:               strings.TrimSpace(req.Title),
		Company:             strings.TrimSpace(req.Company),
		Description:         req.Description,
		Requirements:        req.Requirements,
		Responsibilities:    req.Responsibilities,
		Location:            req.Location,
		IsRemote:            req.IsRemote,
		EmploymentType:      req.EmploymentType,
		ExperienceLevel:     req.ExperienceLevel,
		SalaryMin:           req.SalaryMin,
		SalaryMax:           req.SalaryMax,
		SalaryCurrency:      currency,
		Skills:              trimAll(req.Skills),
		ApplicationDeadline: req.ApplicationDeadline,
		ApplicationURL:      req.ApplicationURL,
		IsActive:            true,
		PostedBy:            &posterID,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().Str("jobID", job.ID.String()).Str("company", job.Company).Msg("Job posting created")
	return job, nil
}

// Apply records an application on an open posting
func (s *careerServiceImpl) Apply(ctx context.Context, jobID, applicantID uuid.UUID, req *dto.ApplyJobRequest) (*models.JobApplication, error) {
	var job *models.JobPosting
	app := &models.JobApplication{
		JobPostingID: jobID,
		ApplicantID:  applicantID,
		CoverLetter:  req.CoverLetter,
		Status:       models.ApplicationApplied,
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		job, err = s.repo.GetJobForUpdate(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.AcceptsApplications(s.now()) {
			from := "inactive"
			if job.IsActive {
				from = "expired"
			}
			return apperrors.NewInvalidTransitionError("job posting", from, "applied")
		}
		if err := s.repo.CreateApplication(ctx, tx, app); err != nil {
			return err
		}
		return s.repo.IncrementApplications(ctx, tx, jobID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("jobID", jobID.String()).Str("applicantID", applicantID.String()).Msg("Job application submitted")
	if err := s.publisher.Publish(ctx, events.New(events.JobApplied, jobID.String(), app)); err != nil {
		s.logger.Warn().Err(err).Str("jobID", jobID.String()).Msg("Failed to publish job event")
	}
	if job.PostedBy != nil {
		s.notify(ctx, *job.PostedBy, "New application", "Someone applied to "+job.Title, app.ID)
	}
	return app, nil
}

// UpdateApplicationStatus moves an application along the pipeline. The
// poster or an admin may do so; the applicant may only withdraw.
func (s *careerServiceImpl) UpdateApplicationStatus(ctx context.Context, actor auth.Actor, applicationID uuid.UUID, status models.ApplicationStatus) (*models.JobApplication, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.GetJob(ctx, app.JobPostingID)
	if err != nil {
		return nil, err
	}

	applicantWithdrawing := status == models.ApplicationWithdrawn && actor.UserID == app.ApplicantID
	if !applicantWithdrawing {
		if err := auth.RequireOwnerOrAdmin(actor, job.PostedBy, "job posting"); err != nil {
			return nil, err
		}
	}
	if app.Status.IsFinal() {
		return nil, apperrors.NewInvalidTransitionError("application", string(app.Status), string(status))
	}

	if err := s.repo.UpdateApplicationStatus(ctx, applicationID, status); err != nil {
		return nil, err
	}
	app.Status = status

	if !applicantWithdrawing {
		s.notify(ctx, app.ApplicantID, "Application update",
			fmt.Sprintf("Your application for %s is now %s", job.Title, status), app.ID)
	}
	return app, nil
}

// ListApplicationsForJob is visible to the poster and admins
func (s *careerServiceImpl) ListApplicationsForJob(ctx context.Context, actor auth.Actor, jobID uuid.UUID) (*dto.ApplicationListResponse, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(actor, job.PostedBy, "job posting"); err != nil {
		return nil, err
	}
	items, err := s.repo.ListApplicationsForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &dto.ApplicationListResponse{Applications: items}, nil
}

// ListMyApplications returns the caller's applications
func (s *careerServiceImpl) ListMyApplications(ctx context.Context, userID uuid.UUID) (*dto.ApplicationListResponse, error) {
	items, err := s.repo.ListApplicationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ApplicationListResponse{Applications: items}, nil
}

func (s *careerServiceImpl) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	return s.repo.ListSkills(ctx)
}

// CreateSkill adds to the catalog. Names are unique.
func (s *careerServiceImpl) CreateSkill(ctx context.Context, req *dto.CreateSkillRequest) (*models.Skill, error) {
	skill := &models.Skill{
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		Description:     req.Description,
		DifficultyLevel: req.DifficultyLevel,
	}
	if skill.DifficultyLevel == 0 {
		skill.DifficultyLevel = 1
	}
	if err := s.repo.CreateSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// UpsertUserSkill sets the caller's proficiency in a catalog skill
func (s *careerServiceImpl) UpsertUserSkill(ctx context.Context, userID uuid.UUID, req *dto.UserSkillRequest) (*models.UserSkill, error) {
	skill, err := s.repo.GetSkill(ctx, req.SkillID)
	if err != nil {
		return nil, err
	}
	us := &models.UserSkill{
		UserID:          userID,
		SkillID:         skill.ID,
		Proficiency:     req.Proficiency,
		YearsExperience: req.YearsExperience,
		SkillName:       skill.Name,
	}
	if err := s.repo.UpsertUserSkill(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

func (s *careerServiceImpl) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]*models.UserSkill, error) {
	return s.repo.ListUserSkills(ctx, userID)
}

// ListCareerPaths returns the paths, optionally for one industry
func (s *careerServiceImpl) ListCareerPaths(ctx context.Context, industry string) ([]*models.CareerPath, error) {
	return s.repo.ListCareerPaths(ctx, strings.TrimSpace(industry))
}

// CreateCareerPath adds a step. A next level must already exist.
func (s *careerServiceImpl) CreateCareerPath(ctx context.Context, req *dto.CreateCareerPathRequest) (*models.CareerPath, error) {
	p := &models.CareerPath{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Level:       models.CareerLevel(req.Level),
		Industry:    strings.TrimSpace(req.Industry),
		NextLevelID: req.NextLevelID,
	}
	if err := s.repo.CreateCareerPath(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *careerServiceImpl) notify(ctx context.Context, to uuid.UUID, title, message string, applicationID uuid.UUID) {
	if _, err := s.notifier.Notify(ctx, NotificationRequest{
		RecipientID: to,
		Type:        models.NotificationCareerOpportunity,
		Title:       title,
		Message:     message,
		Priority:    models.PriorityNormal,
		Reference:   &models.Reference{ID: applicationID, Type: "job_application"},
	}); err != nil {
		s.logger.Warn().Err(err).Str("recipientID", to.String()).Msg("Failed to send career notification")
	}
}
