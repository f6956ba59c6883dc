package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/app/services"
	"github.com/yigit/alumnihub/internal/middleware"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// CareerController handles job postings, applications, skills and career paths
type CareerController struct {
	careerService services.CareerService
	logger        zerolog.Logger
}

// NewCareerController creates a new CareerController
func NewCareerController(careerService services.CareerService, logger zerolog.Logger) *CareerController {
	return &CareerController{
		careerService: careerService,
		logger:        logger,
	}
}

// ListJobs lists active postings
// @Summary List job postings
// @Tags career
// @Produce json
// @Param search query string false "Matches title, company or description"
// @Param isRemote query bool false "Remote only"
// @Param employmentType query string false "full_time, part_time, contract, internship or freelance"
// @Param experienceLevel query string false "entry, junior, mid, senior, lead or executive"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.JobListResponse} "Job postings"
// @Router /jobs [get]
func (c *CareerController) ListJobs(ctx *gin.Context) {
	var filter dto.JobFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.careerService.ListJobs(ctx.Request.Context(), &filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetJob returns one posting
// @Summary Get job posting
// @Tags career
// @Produce json
// @Param id path string true "Job posting ID"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting} "Job posting"
// @Failure 404 {object} dto.ErrorResponse "Job posting not found"
// @Router /jobs/{id} [get]
func (c *CareerController) GetJob(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.careerService.GetJob(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job))
}

// CreateJob publishes a posting
// @Summary Create job posting
// @Tags career
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobPostingRequest true "Job posting"
// @Success 201 {object} dto.APIResponse{data=models.JobPosting} "Job posting created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /jobs [post]
func (c *CareerController) CreateJob(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.CreateJobPostingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	job, err := c.careerService.CreateJob(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("jobID", job.ID.String()).Str("posterID", userID.String()).Msg("Job posting created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(job))
}

// Apply submits an application to a posting
// @Summary Apply to job
// @Tags career
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job posting ID"
// @Param request body dto.ApplyJobRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.JobApplication} "Application submitted"
// @Failure 409 {object} dto.ErrorResponse "Already applied or posting closed"
// @Router /jobs/{id}/applications [post]
func (c *CareerController) Apply(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApplyJobRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.careerService.Apply(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app))
}

// ListApplicationsForJob lists applications to a posting for its poster
// @Summary List applications for a job
// @Tags career
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job posting ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse} "Applications"
// @Failure 403 {object} dto.ErrorResponse "Not the poster"
// @Router /jobs/{id}/applications [get]
func (c *CareerController) ListApplicationsForJob(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.careerService.ListApplicationsForJob(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListMyApplications lists the caller's applications
// @Summary List my applications
// @Tags career
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse} "Applications"
// @Router /applications/me [get]
func (c *CareerController) ListMyApplications(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	resp, err := c.careerService.ListMyApplications(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateApplicationStatus moves an application through the pipeline
// @Summary Update application status
// @Description The poster moves applications forward. The applicant may only withdraw.
// @Tags career
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Application ID"
// @Param request body dto.ApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.JobApplication} "Updated application"
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 409 {object} dto.ErrorResponse "Application already final"
// @Router /applications/{applicationId}/status [put]
func (c *CareerController) UpdateApplicationStatus(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "applicationId")
	if !ok {
		return
	}

	var req dto.ApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.careerService.UpdateApplicationStatus(ctx.Request.Context(), actor, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app))
}

// ListSkills returns the skill catalog
// @Summary List skills
// @Tags career
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Skill} "Skills"
// @Router /skills [get]
func (c *CareerController) ListSkills(ctx *gin.Context) {
	skills, err := c.careerService.ListSkills(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(skills))
}

// CreateSkill adds a skill to the catalog
// @Summary Create skill
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSkillRequest true "Skill"
// @Success 201 {object} dto.APIResponse{data=models.Skill} "Skill created"
// @Failure 409 {object} dto.ErrorResponse "Skill exists"
// @Router /admin/skills [post]
func (c *CareerController) CreateSkill(ctx *gin.Context) {
	var req dto.CreateSkillRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	skill, err := c.careerService.CreateSkill(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(skill))
}

// UpsertMySkill sets a skill and proficiency on the caller's profile
// @Summary Upsert my skill
// @Tags career
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UserSkillRequest true "Skill"
// @Success 200 {object} dto.APIResponse{data=models.UserSkill} "User skill"
// @Failure 404 {object} dto.ErrorResponse "Skill not found"
// @Router /skills/me [put]
func (c *CareerController) UpsertMySkill(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.UserSkillRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	skill, err := c.careerService.UpsertUserSkill(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(skill))
}

// ListUserSkills lists a user's skills
// @Summary List a user's skills
// @Tags career
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=[]models.UserSkill} "Skills"
// @Router /users/{id}/skills [get]
func (c *CareerController) ListUserSkills(ctx *gin.Context) {
	userID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	skills, err := c.careerService.ListUserSkills(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(skills))
}

// ListCareerPaths lists career ladders, optionally for one industry
// @Summary List career paths
// @Tags career
// @Produce json
// @Param industry query string false "Industry"
// @Success 200 {object} dto.APIResponse{data=[]models.CareerPath} "Career paths"
// @Router /career-paths [get]
func (c *CareerController) ListCareerPaths(ctx *gin.Context) {
	paths, err := c.careerService.ListCareerPaths(ctx.Request.Context(), ctx.Query("industry"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paths))
}

// CreateCareerPath adds a step to a career ladder
// @Summary Create career path
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCareerPathRequest true "Career path"
// @Success 201 {object} dto.APIResponse{data=models.CareerPath} "Career path created"
// @Router /admin/career-paths [post]
func (c *CareerController) CreateCareerPath(ctx *gin.Context) {
	var req dto.CreateCareerPathRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	path, err := c.careerService.CreateCareerPath(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(path))
}
