package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/dberrors"
	"github.com/yigit/alumnihub/internal/pkg/logger"
)

var jobColumns = []string{
	"id", "title", "company", "description", "requirements", "responsibilities", "location", "is_remote",
	"employment_type", "experience_level", "salary_min", "salary_max", "salary_currency", "skills",
	"application_deadline", "application_url", "is_active", "is_featured", "views_count", "applications_count",
	"posted_by", "created_at", "updated_at",
}

var applicationColumns = []string{
	"id", "job_posting_id", "applicant_id", "cover_letter", "status", "created_at", "updated_at",
}

// CareerRepository stores job postings, applications, skills and career paths
type CareerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCareerRepository creates a new CareerRepository
func NewCareerRepository(db *pgxpool.Pool) *CareerRepository {
	return &CareerRepository{db: db, sb: psql}
}

func scanJob(row pgx.Row, extra ...any) (*models.JobPosting, error) {
	j := &models.JobPosting{}
	dest := []any{&j.ID, &j.Title, &j.Company, &j.Description, &j.Requirements, &j.Responsibilities, &j.Location, &j.IsRemote,
		&j.EmploymentType, &j.ExperienceLevel, &j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency, &j.Skills,
		&j.ApplicationDeadline, &j.ApplicationURL, &j.IsActive, &j.IsFeatured, &j.ViewsCount, &j.ApplicationsCount,
		&j.PostedBy, &j.CreatedAt, &j.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return j, err
}

// ListJobs returns active, unexpired postings matching filter. Featured first.
func (r *CareerRepository) ListJobs(ctx context.Context, filter models.JobFilter, now time.Time, offset, limit uint64) ([]*models.JobPosting, int64, error) {
	cols := append(append([]string{}, jobColumns...), "COUNT(*) OVER() AS total_count")
	q := r.sb.Select(cols...).From("job_postings").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Or{squirrel.Eq{"application_deadline": nil}, squirrel.GtOrEq{"application_deadline": now}})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"company": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filter.IsRemote != nil {
		q = q.Where(squirrel.Eq{"is_remote": *filter.IsRemote})
	}
	if filter.EmploymentType != "" {
		q = q.Where(squirrel.Eq{"employment_type": filter.EmploymentType})
	}
	if filter.ExperienceLevel != "" {
		q = q.Where(squirrel.Eq{"experience_level": filter.ExperienceLevel})
	}

	sql, args, err := q.OrderBy("is_featured DESC", "created_at DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list jobs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list jobs query")
		return nil, 0, fmt.Errorf("error listing jobs: %w", err)
	}
	defer rows.Close()

	items := []*models.JobPosting{}
	var total int64
	for rows.Next() {
		j, err := scanJob(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning job row: %w", err)
		}
		items = append(items, j)
	}
	return items, total, rows.Err()
}

// GetJob retrieves a posting
func (r *CareerRepository) GetJob(ctx context.Context, id uuid.UUID) (*models.JobPosting, error) {
	return r.getJob(ctx, nil, id, false)
}

// GetJobForUpdate locks a posting before an application is recorded against it
func (r *CareerRepository) GetJobForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.JobPosting, error) {
	if err := requireTx(tx, "GetJobForUpdate"); err != nil {
		return nil, err
	}
	return r.getJob(ctx, tx, id, true)
}

func (r *CareerRepository) getJob(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*models.JobPosting, error) {
	q := r.sb.Select(jobColumns...).From("job_postings").Where(squirrel.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	j, err := scanJob(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobPostingNotFound
		}
		return nil, fmt.Errorf("error retrieving job posting: %w", err)
	}
	return j, nil
}

// CreateJob inserts a posting
func (r *CareerRepository) CreateJob(ctx context.Context, j *models.JobPosting) error {
	sql, args, err := r.sb.Insert("job_postings").
		Columns("title", "company", "description", "requirements", "responsibilities", "location", "is_remote",
			"employment_type", "experience_level", "salary_min", "salary_max", "salary_currency", "skills",
			"application_deadline", "application_url", "is_active", "is_featured", "posted_by").
		Values(j.Title, j.Company, j.Description, j.Requirements, j.Responsibilities, j.Location, j.IsRemote,
			j.EmploymentType, j.ExperienceLevel, j.SalaryMin, j.SalaryMax, j.SalaryCurrency, nonNil(j.Skills),
			j.ApplicationDeadline, j.ApplicationURL, j.IsActive, j.IsFeatured, j.PostedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create job query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("salaryMax", "salary range is invalid")
		}
		logger.Error().Err(err).Str("title", j.Title).Msg("Error creating job posting")
		return fmt.Errorf("error creating job posting: %w", err)
	}
	return nil
}

// IncrementJobViews bumps views_count
func (r *CareerRepository) IncrementJobViews(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Update("job_postings").
		Set("views_count", squirrel.Expr("views_count + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build job views query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing job views: %w", err)
	}
	return nil
}

// IncrementApplications bumps applications_count
func (r *CareerRepository) IncrementApplications(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	sql, args, err := r.sb.Update("job_postings").
		Set("applications_count", squirrel.Expr("applications_count + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build applications count query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing applications: %w", err)
	}
	return nil
}

func scanApplication(row pgx.Row, extra ...any) (*models.JobApplication, error) {
	a := &models.JobApplication{}
	dest := []any{&a.ID, &a.JobPostingID, &a.ApplicantID, &a.CoverLetter, &a.Status, &a.CreatedAt, &a.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return a, err
}

// CreateApplication inserts an application, one per (posting, applicant)
func (r *CareerRepository) CreateApplication(ctx context.Context, tx pgx.Tx, a *models.JobApplication) error {
	sql, args, err := r.sb.Insert("job_applications").
		Columns("job_posting_id", "applicant_id", "cover_letter", "status").
		Values(a.JobPostingID, a.ApplicantID, a.CoverLetter, a.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("already applied to this job posting")
		}
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// GetApplication retrieves an application
func (r *CareerRepository) GetApplication(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	sql, args, err := r.sb.Select(applicationColumns...).From("job_applications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	a, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("application not found")
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return a, nil
}

// UpdateApplicationStatus persists the pipeline status
func (r *CareerRepository) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	sql, args, err := r.sb.Update("job_applications").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating application: %w", err)
	}
	return nil
}

func (r *CareerRepository) listApplications(ctx context.Context, where squirrel.Eq) ([]*models.JobApplication, error) {
	sql, args, err := r.sb.Select(applicationColumns...).From("job_applications").
		Where(where).OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	items := []*models.JobApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// ListApplicationsForJob returns every application to a posting
func (r *CareerRepository) ListApplicationsForJob(ctx context.Context, jobID uuid.UUID) ([]*models.JobApplication, error) {
	return r.listApplications(ctx, squirrel.Eq{"job_posting_id": jobID})
}

// ListApplicationsForUser returns an applicant's applications
func (r *CareerRepository) ListApplicationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.JobApplication, error) {
	return r.listApplications(ctx, squirrel.Eq{"applicant_id": userID})
}

// ListSkills returns the skills catalog
func (r *CareerRepository) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	sql, args, err := r.sb.Select("id", "name", "description", "category", "difficulty_level").
		From("skills").OrderBy("category", "name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list skills query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing skills: %w", err)
	}
	defer rows.Close()

	items := []*models.Skill{}
	for rows.Next() {
		s := &models.Skill{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.DifficultyLevel); err != nil {
			return nil, fmt.Errorf("error scanning skill row: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// GetSkill retrieves a catalog entry
func (r *CareerRepository) GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	sql, args, err := r.sb.Select("id", "name", "description", "category", "difficulty_level").
		From("skills").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get skill query: %w", err)
	}

	s := &models.Skill{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.DifficultyLevel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("skill not found")
		}
		return nil, fmt.Errorf("error retrieving skill: %w", err)
	}
	return s, nil
}

// CreateSkill inserts a catalog entry. Existing names are left untouched.
func (r *CareerRepository) CreateSkill(ctx context.Context, s *models.Skill) error {
	sql, args, err := r.sb.Insert("skills").
		Columns("name", "description", "category", "difficulty_level").
		Values(s.Name, s.Description, s.Category, s.DifficultyLevel).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create skill query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "skills_name_key") {
			return apperrors.NewConflictError("skill already exists")
		}
		return fmt.Errorf("error creating skill: %w", err)
	}
	return nil
}

// UpsertUserSkill records or updates a user's proficiency in a skill
func (r *CareerRepository) UpsertUserSkill(ctx context.Context, us *models.UserSkill) error {
	sql, args, err := r.sb.Insert("user_skills").
		Columns("user_id", "skill_id", "proficiency", "years_experience").
		Values(us.UserID, us.SkillID, us.Proficiency, us.YearsExperience).
		Suffix(`ON CONFLICT (user_id, skill_id) DO UPDATE SET
			proficiency = EXCLUDED.proficiency,
			years_experience = EXCLUDED.years_experience,
			updated_at = NOW()
			RETURNING id, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert user skill query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&us.ID, &us.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("skill not found")
		}
		logger.Error().Err(err).Str("userID", us.UserID.String()).Msg("Error saving user skill")
		return fmt.Errorf("error saving user skill: %w", err)
	}
	return nil
}

// ListUserSkills returns a user's skills with their names
func (r *CareerRepository) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]*models.UserSkill, error) {
	sql, args, err := r.sb.Select("us.id", "us.user_id", "us.skill_id", "us.proficiency", "us.years_experience", "us.updated_at", "s.name").
		From("user_skills us").
		Join("skills s ON s.id = us.skill_id").
		Where(squirrel.Eq{"us.user_id": userID}).
		OrderBy("s.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list user skills query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing user skills: %w", err)
	}
	defer rows.Close()

	items := []*models.UserSkill{}
	for rows.Next() {
		us := &models.UserSkill{}
		if err := rows.Scan(&us.ID, &us.UserID, &us.SkillID, &us.Proficiency, &us.YearsExperience, &us.UpdatedAt, &us.SkillName); err != nil {
			return nil, fmt.Errorf("error scanning user skill row: %w", err)
		}
		items = append(items, us)
	}
	return items, rows.Err()
}

// ListCareerPaths returns career path steps, optionally for one industry
func (r *CareerRepository) ListCareerPaths(ctx context.Context, industry string) ([]*models.CareerPath, error) {
	q := r.sb.Select("id", "title", "description", "level", "industry", "next_level_id").
		From("career_paths").OrderBy("industry", "title")
	if industry != "" {
		q = q.Where(squirrel.Eq{"industry": industry})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list career paths query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing career paths: %w", err)
	}
	defer rows.Close()

	items := []*models.CareerPath{}
	for rows.Next() {
		p := &models.CareerPath{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Level, &p.Industry, &p.NextLevelID); err != nil {
			return nil, fmt.Errorf("error scanning career path row: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CreateCareerPath inserts a path step
func (r *CareerRepository) CreateCareerPath(ctx context.Context, p *models.CareerPath) error {
	sql, args, err := r.sb.Insert("career_paths").
		Columns("title", "description", "level", "industry", "next_level_id").
		Values(p.Title, p.Description, p.Level, p.Industry, p.NextLevelID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create career path query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("next level career path not found")
		}
		return fmt.Errorf("error creating career path: %w", err)
	}
	return nil
}
