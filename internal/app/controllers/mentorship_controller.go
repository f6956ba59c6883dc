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

// MentorshipController handles programs, profiles, relationships and meetings
type MentorshipController struct {
	mentorshipService services.MentorshipService
	logger            zerolog.Logger
}

// NewMentorshipController creates a new MentorshipController
func NewMentorshipController(mentorshipService services.MentorshipService, logger zerolog.Logger) *MentorshipController {
	return &MentorshipController{
		mentorshipService: mentorshipService,
		logger:            logger,
	}
}

// ListPrograms lists public mentorship programs
// @Summary List mentorship programs
// @Tags mentorship
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.MentorshipProgram} "Programs"
// @Router /mentorship/programs [get]
func (c *MentorshipController) ListPrograms(ctx *gin.Context) {
	programs, err := c.mentorshipService.ListPrograms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(programs))
}

// CreateProgram adds a mentorship program
// @Summary Create mentorship program
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProgramRequest true "Program"
// @Success 201 {object} dto.APIResponse{data=models.MentorshipProgram} "Program created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /admin/mentorship/programs [post]
func (c *MentorshipController) CreateProgram(ctx *gin.Context) {
	adminID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.CreateProgramRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	program, err := c.mentorshipService.CreateProgram(ctx.Request.Context(), adminID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(program))
}

// UpsertMentorProfile creates or updates the caller's mentor profile
// @Summary Upsert mentor profile
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MentorProfileRequest true "Mentor profile"
// @Success 200 {object} dto.APIResponse{data=models.MentorProfile} "Mentor profile"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /mentorship/mentor-profile [put]
func (c *MentorshipController) UpsertMentorProfile(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.MentorProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.mentorshipService.UpsertMentorProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// GetMentorProfile returns a user's mentor profile
// @Summary Get mentor profile
// @Tags mentorship
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.MentorProfile} "Mentor profile"
// @Failure 404 {object} dto.ErrorResponse "Mentor not found"
// @Router /mentorship/mentors/{userId} [get]
func (c *MentorshipController) GetMentorProfile(ctx *gin.Context) {
	userID, ok := middleware.UUIDParam(ctx, "userId")
	if !ok {
		return
	}

	profile, err := c.mentorshipService.GetMentorProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// ListMentors lists mentors accepting mentees
// @Summary List mentors
// @Tags mentorship
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.MentorListResponse} "Mentors"
// @Router /mentorship/mentors [get]
func (c *MentorshipController) ListMentors(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.mentorshipService.ListMentors(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpsertMenteeProfile creates or updates the caller's mentee profile
// @Summary Upsert mentee profile
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MenteeProfileRequest true "Mentee profile"
// @Success 200 {object} dto.APIResponse{data=models.MenteeProfile} "Mentee profile"
// @Router /mentorship/mentee-profile [put]
func (c *MentorshipController) UpsertMenteeProfile(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.MenteeProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.mentorshipService.UpsertMenteeProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// GetMyMenteeProfile returns the caller's mentee profile
// @Summary Get my mentee profile
// @Tags mentorship
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.MenteeProfile} "Mentee profile"
// @Failure 404 {object} dto.ErrorResponse "No mentee profile"
// @Router /mentorship/mentee-profile [get]
func (c *MentorshipController) GetMyMenteeProfile(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	profile, err := c.mentorshipService.GetMenteeProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// RequestMentorship asks a mentor for a relationship
// @Summary Request mentorship
// @Description Creates a pending relationship. The caller needs a mentee profile.
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RequestMentorshipRequest true "Request"
// @Success 201 {object} dto.APIResponse{data=models.MentorshipRelationship} "Pending relationship"
// @Failure 404 {object} dto.ErrorResponse "Mentor, mentee profile or program not found"
// @Failure 409 {object} dto.ErrorResponse "Mentor at capacity or relationship exists"
// @Router /mentorship/relationships [post]
func (c *MentorshipController) RequestMentorship(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.RequestMentorshipRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	rel, err := c.mentorshipService.RequestMentorship(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(rel))
}

// ListRelationships lists relationships where the caller is mentor or mentee
// @Summary List my relationships
// @Tags mentorship
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RelationshipListResponse} "Relationships"
// @Router /mentorship/relationships [get]
func (c *MentorshipController) ListRelationships(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	rels, err := c.mentorshipService.ListRelationships(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RelationshipListResponse{Relationships: rels}))
}

// GetRelationship returns one relationship to a party or an admin
// @Summary Get relationship
// @Tags mentorship
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Success 200 {object} dto.APIResponse{data=models.MentorshipRelationship} "Relationship"
// @Failure 404 {object} dto.ErrorResponse "Relationship not found"
// @Router /mentorship/relationships/{id} [get]
func (c *MentorshipController) GetRelationship(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	rel, err := c.mentorshipService.GetRelationship(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rel))
}

// UpdateRelationshipStatus accepts, pauses, completes or terminates a relationship
// @Summary Update relationship status
// @Description Only the mentor accepts a pending request. Completion credits mentorship points to the mentor.
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Param request body dto.RelationshipStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.MentorshipRelationship} "Updated relationship"
// @Failure 403 {object} dto.ErrorResponse "Not a party to the relationship"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or mentor at capacity"
// @Router /mentorship/relationships/{id}/status [put]
func (c *MentorshipController) UpdateRelationshipStatus(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RelationshipStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	rel, err := c.mentorshipService.UpdateRelationshipStatus(ctx.Request.Context(), actor, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("relationshipID", id.String()).
		Str("status", string(rel.Status)).
		Msg("Mentorship relationship updated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rel))
}

// ScheduleSession books a meeting on an active relationship
// @Summary Schedule mentorship session
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Param request body dto.ScheduleMentorshipSessionRequest true "Meeting"
// @Success 201 {object} dto.APIResponse{data=models.MentorshipSession} "Scheduled session"
// @Failure 409 {object} dto.ErrorResponse "Relationship not active"
// @Router /mentorship/relationships/{id}/sessions [post]
func (c *MentorshipController) ScheduleSession(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ScheduleMentorshipSessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.mentorshipService.ScheduleSession(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(session))
}

// ListSessions lists meetings of a relationship
// @Summary List mentorship sessions
// @Tags mentorship
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Success 200 {object} dto.APIResponse{data=[]models.MentorshipSession} "Sessions"
// @Router /mentorship/relationships/{id}/sessions [get]
func (c *MentorshipController) ListSessions(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	sessions, err := c.mentorshipService.ListSessions(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sessions))
}

// UpdateSessionStatus confirms, starts, completes or cancels a meeting
// @Summary Update mentorship session status
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Mentorship session ID"
// @Param request body dto.MentorshipSessionStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.MentorshipSession} "Updated session"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition"
// @Router /mentorship/sessions/{sessionId}/status [put]
func (c *MentorshipController) UpdateSessionStatus(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "sessionId")
	if !ok {
		return
	}

	var req dto.MentorshipSessionStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.mentorshipService.UpdateSessionStatus(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// SubmitSessionFeedback records the caller's side of the feedback
// @Summary Submit mentorship session feedback
// @Tags mentorship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Mentorship session ID"
// @Param request body dto.MentorshipFeedbackRequest true "Feedback"
// @Success 200 {object} dto.APIResponse{data=models.MentorshipSession} "Session with feedback"
// @Failure 409 {object} dto.ErrorResponse "Session not completed"
// @Router /mentorship/sessions/{sessionId}/feedback [post]
func (c *MentorshipController) SubmitSessionFeedback(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "sessionId")
	if !ok {
		return
	}

	var req dto.MentorshipFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.mentorshipService.SubmitSessionFeedback(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}
