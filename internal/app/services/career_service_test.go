package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/events"
)

func jobRequest() *dto.CreateJobPostingRequest {
	return &dto.CreateJobPostingRequest{
		Title:           " Backend Engineer ",
		Company:         "Acme",
		Description:     "Build APIs",
		EmploymentType:  models.EmploymentFullTime,
		ExperienceLevel: "mid",
		Skills:          []string{"Go ", " SQL"},
	}
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCreateJob_Validation(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		tweak func(r *dto.CreateJobPostingRequest)
	}{
		{name: "negative salary", tweak: func(r *dto.CreateJobPostingRequest) { r.SalaryMin = decimalPtr(-1) }},
		{name: "min above max", tweak: func(r *dto.CreateJobPostingRequest) {
			r.SalaryMin, r.SalaryMax = decimalPtr(90000), decimalPtr(50000)
		}},
		{name: "deadline passed", tweak: func(r *dto.CreateJobPostingRequest) { r.ApplicationDeadline = &past }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := jobRequest()
			tt.tweak(req)
			_, err := env.svc.Career.CreateJob(context.Background(), uuid.New(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestCreateJob_Defaults(t *testing.T) {
	env := newTestEnv()
	poster := uuid.New()
	req := jobRequest()
	req.SalaryMin, req.SalaryMax = decimalPtr(50000), decimalPtr(70000)

	job, err := env.svc.Career.CreateJob(context.Background(), poster, req)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "USD", job.SalaryCurrency)
	assert.Equal(t, []string{"Go", "SQL"}, job.Skills)
	assert.True(t, job.IsActive)
	require.NotNil(t, job.PostedBy)
	assert.Equal(t, poster, *job.PostedBy)

	req.SalaryCurrency = "eur"
	job, err = env.svc.Career.CreateJob(context.Background(), poster, req)
	require.NoError(t, err)
	assert.Equal(t, "EUR", job.SalaryCurrency)
}

func TestGetJob_CountsViews(t *testing.T) {
	env := newTestEnv()
	job, err := env.svc.Career.CreateJob(context.Background(), uuid.New(), jobRequest())
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		got, err := env.svc.Career.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.ViewsCount)
	}

	_, err = env.svc.Career.GetJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrJobPostingNotFound)
}

func TestApply(t *testing.T) {
	env := newTestEnv()
	poster := uuid.New()
	applicant := uuid.New()
	ctx := context.Background()

	job, err := env.svc.Career.CreateJob(ctx, poster, jobRequest())
	require.NoError(t, err)

	app, err := env.svc.Career.Apply(ctx, job.ID, applicant, &dto.ApplyJobRequest{CoverLetter: "Hire me"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, 1, env.career.jobs[job.ID].ApplicationsCount)
	assert.Equal(t, 1, env.publisher.count(events.JobApplied))
	assert.Len(t, env.notifications.forUser(poster, models.NotificationCareerOpportunity), 1)

	_, err = env.svc.Career.Apply(ctx, job.ID, applicant, &dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 1, env.career.jobs[job.ID].ApplicationsCount)
}

func TestApply_ClosedPostings(t *testing.T) {
	tests := []struct {
		name  string
		close func(j *models.JobPosting)
	}{
		{name: "inactive", close: func(j *models.JobPosting) { j.IsActive = false }},
		{name: "expired", close: func(j *models.JobPosting) {
			past := time.Now().Add(-time.Minute)
			j.ApplicationDeadline = &past
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			job, err := env.svc.Career.CreateJob(context.Background(), uuid.New(), jobRequest())
			require.NoError(t, err)
			tt.close(env.career.jobs[job.ID])

			_, err = env.svc.Career.Apply(context.Background(), job.ID, uuid.New(), &dto.ApplyJobRequest{})
			assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

			list, err := env.svc.Career.ListJobs(context.Background(), &dto.JobFilterRequest{}, 1, 10)
			require.NoError(t, err)
			assert.Empty(t, list.Jobs)
		})
	}
}

func TestUpdateApplicationStatus(t *testing.T) {
	env := newTestEnv()
	poster := uuid.New()
	applicant := uuid.New()
	ctx := context.Background()

	job, err := env.svc.Career.CreateJob(ctx, poster, jobRequest())
	require.NoError(t, err)
	app, err := env.svc.Career.Apply(ctx, job.ID, applicant, &dto.ApplyJobRequest{})
	require.NoError(t, err)

	_, err = env.svc.Career.UpdateApplicationStatus(ctx, member(applicant), app.ID, models.ApplicationHired)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "applicants may only withdraw")

	_, err = env.svc.Career.UpdateApplicationStatus(ctx, member(uuid.New()), app.ID, models.ApplicationReviewing)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := env.svc.Career.UpdateApplicationStatus(ctx, member(poster), app.ID, models.ApplicationInterviewing)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationInterviewing, updated.Status)
	assert.Len(t, env.notifications.forUser(applicant, models.NotificationCareerOpportunity), 1)

	withdrawn, err := env.svc.Career.UpdateApplicationStatus(ctx, member(applicant), app.ID, models.ApplicationWithdrawn)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationWithdrawn, withdrawn.Status)

	_, err = env.svc.Career.UpdateApplicationStatus(ctx, admin(), app.ID, models.ApplicationOffered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	forJob, err := env.svc.Career.ListApplicationsForJob(ctx, member(poster), job.ID)
	require.NoError(t, err)
	assert.Len(t, forJob.Applications, 1)

	_, err = env.svc.Career.ListApplicationsForJob(ctx, member(applicant), job.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	mine, err := env.svc.Career.ListMyApplications(ctx, applicant)
	require.NoError(t, err)
	assert.Len(t, mine.Applications, 1)
}

func TestSkillsAndCareerPaths(t *testing.T) {
	env := newTestEnv()
	user := uuid.New()
	ctx := context.Background()

	skill, err := env.svc.Career.CreateSkill(ctx, &dto.CreateSkillRequest{Name: " Go ", Category: models.SkillTechnical})
	require.NoError(t, err)
	assert.Equal(t, "Go", skill.Name)
	assert.Equal(t, 1, skill.DifficultyLevel)

	_, err = env.svc.Career.CreateSkill(ctx, &dto.CreateSkillRequest{Name: "Go", Category: models.SkillTechnical})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	us, err := env.svc.Career.UpsertUserSkill(ctx, user, &dto.UserSkillRequest{
		SkillID: skill.ID, Proficiency: models.ProficiencyAdvanced, YearsExperience: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Go", us.SkillName)

	_, err = env.svc.Career.UpsertUserSkill(ctx, user, &dto.UserSkillRequest{
		SkillID: skill.ID, Proficiency: models.ProficiencyExpert, YearsExperience: 6,
	})
	require.NoError(t, err)

	skills, err := env.svc.Career.ListUserSkills(ctx, user)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, models.ProficiencyExpert, skills[0].Proficiency)

	_, err = env.svc.Career.UpsertUserSkill(ctx, user, &dto.UserSkillRequest{SkillID: uuid.New(), Proficiency: models.ProficiencyBeginner})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	senior, err := env.svc.Career.CreateCareerPath(ctx, &dto.CreateCareerPathRequest{
		Title: "Senior Engineer", Level: "senior", Industry: "Software",
	})
	require.NoError(t, err)
	_, err = env.svc.Career.CreateCareerPath(ctx, &dto.CreateCareerPathRequest{
		Title: "Engineer", Level: "mid", Industry: "Software", NextLevelID: &senior.ID,
	})
	require.NoError(t, err)
	_, err = env.svc.Career.CreateCareerPath(ctx, &dto.CreateCareerPathRequest{
		Title: "Analyst", Level: "entry", Industry: "Finance",
	})
	require.NoError(t, err)

	paths, err := env.svc.Career.ListCareerPaths(ctx, " Software ")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}
