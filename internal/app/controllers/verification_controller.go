package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/app/services"
	"github.com/yigit/alumnihub/internal/middleware"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// VerificationController handles alumni verification requests
type VerificationController struct {
	verificationService services.VerificationService
	logger              zerolog.Logger
}

// NewVerificationController creates a new VerificationController
func NewVerificationController(verificationService services.VerificationService, logger zerolog.Logger) *VerificationController {
	return &VerificationController{
		verificationService: verificationService,
		logger:              logger,
	}
}

// Submit opens a verification for the caller
// @Summary Submit alumni verification
// @Description At most one pending verification per user
// @Tags verifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitVerificationRequest true "Graduation details"
// @Success 201 {object} dto.APIResponse{data=models.AlumniVerification} "Pending verification"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "A verification is already pending"
// @Router /verifications [post]
func (c *VerificationController) Submit(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.SubmitVerificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	v, err := c.verificationService.Submit(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(v))
}

// ListMine returns the caller's verification history
// @Summary List my verifications
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.VerificationListResponse} "Verifications"
// @Router /verifications/me [get]
func (c *VerificationController) ListMine(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.verificationService.ListMine(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Get returns one verification to its owner or an admin
// @Summary Get verification
// @Tags verifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Success 200 {object} dto.APIResponse{data=models.AlumniVerification} "Verification"
// @Failure 404 {object} dto.ErrorResponse "Verification not found"
// @Router /verifications/{id} [get]
func (c *VerificationController) Get(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	v, err := c.verificationService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(v))
}

// ListAll returns verifications for review
// @Summary List verifications
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, verified or rejected"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.VerificationListResponse} "Verifications"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Router /admin/verifications [get]
func (c *VerificationController) ListAll(ctx *gin.Context) {
	var status *models.VerificationStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.VerificationStatus(raw)
		if !s.Valid() {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status").
				WithField("status").
				WithDetails("must be one of pending, verified, rejected")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
		status = &s
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.verificationService.ListAll(ctx.Request.Context(), status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Decide approves or rejects a pending verification
// @Summary Decide verification
// @Description Approving marks the user as verified alumni. Decisions are final.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Param request body dto.VerificationDecisionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.AlumniVerification} "Decided verification"
// @Failure 404 {object} dto.ErrorResponse "Verification not found"
// @Failure 409 {object} dto.ErrorResponse "Verification already decided"
// @Router /admin/verifications/{id}/decision [post]
func (c *VerificationController) Decide(ctx *gin.Context) {
	adminID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.VerificationDecisionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	v, err := c.verificationService.Decide(ctx.Request.Context(), id, adminID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("verificationID", id.String()).
		Str("status", string(v.Status)).
		Msg("Verification decided")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(v))
}
