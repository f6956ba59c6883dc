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

// SessionController handles learning sessions
type SessionController struct {
	sessionService services.SessionService
	logger         zerolog.Logger
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService, logger zerolog.Logger) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSession schedules a session with the caller as speaker
// @Summary Create session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSessionRequest true "Session details"
// @Success 201 {object} dto.APIResponse{data=models.Session} "Session created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.CreateSessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("sessionID", session.ID.String()).Str("speakerID", actor.UserID.String()).Msg("Session created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(session))
}

// ListSessions lists upcoming public sessions
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.SessionListResponse} "Sessions"
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.sessionService.ListPublic(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetSession returns one session
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.Session} "Session"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.sessionService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// JoinSession registers the caller as a participant
// @Summary Join session
// @Description Joining twice returns the existing registration with 200. A new registration returns 201.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 201 {object} dto.APIResponse{data=dto.JoinSessionResponse} "Registered"
// @Success 200 {object} dto.APIResponse{data=dto.JoinSessionResponse} "Already registered"
// @Failure 409 {object} dto.ErrorResponse "Session full or not open for registration"
// @Router /sessions/{id}/join [post]
func (c *SessionController) JoinSession(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.sessionService.Join(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.NewSuccessResponse(resp))
}

// LeaveSession cancels the caller's registration
// @Summary Leave session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse "Left session"
// @Failure 404 {object} dto.ErrorResponse "Not registered"
// @Router /sessions/{id}/join [delete]
func (c *SessionController) LeaveSession(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.sessionService.Leave(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessage("Left session"))
}

// UpdateStatus moves a session through its lifecycle
// @Summary Update session status
// @Description Speaker, moderator or admin only. Completing a session credits points to the speaker and attendees.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SessionStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Session} "Updated session"
// @Failure 403 {object} dto.ErrorResponse "Not the speaker or moderator"
// @Failure 409 {object} dto.ErrorResponse "Invalid status transition"
// @Router /sessions/{id}/status [put]
func (c *SessionController) UpdateStatus(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SessionStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.UpdateStatus(ctx.Request.Context(), actor, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// ListParticipants lists registered participants
// @Summary List session participants
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=[]models.SessionParticipant} "Participants"
// @Router /sessions/{id}/participants [get]
func (c *SessionController) ListParticipants(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	participants, err := c.sessionService.ListParticipants(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(participants))
}

// UpsertRecording attaches the recording of a session
// @Summary Attach recording
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.UpsertRecordingRequest true "Recording"
// @Success 200 {object} dto.APIResponse{data=models.SessionRecording} "Recording"
// @Failure 403 {object} dto.ErrorResponse "Not the speaker or moderator"
// @Router /sessions/{id}/recording [put]
func (c *SessionController) UpsertRecording(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpsertRecordingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	rec, err := c.sessionService.UpsertRecording(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rec))
}

// GetRecording returns the recording of a session
// @Summary Get recording
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.SessionRecording} "Recording"
// @Failure 404 {object} dto.ErrorResponse "No recording"
// @Router /sessions/{id}/recording [get]
func (c *SessionController) GetRecording(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	rec, err := c.sessionService.GetRecording(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rec))
}

// SubmitFeedback rates a session the caller took part in
// @Summary Submit session feedback
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SessionFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=models.SessionFeedback} "Feedback"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 409 {object} dto.ErrorResponse "Feedback already submitted"
// @Router /sessions/{id}/feedback [post]
func (c *SessionController) SubmitFeedback(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SessionFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.sessionService.SubmitFeedback(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(fb))
}

// ListFeedback lists feedback on a session
// @Summary List session feedback
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=[]models.SessionFeedback} "Feedback"
// @Router /sessions/{id}/feedback [get]
func (c *SessionController) ListFeedback(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	feedback, err := c.sessionService.ListFeedback(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(feedback))
}
