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

// UserController handles user and profile operations
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the caller's account with profile
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User} "Current user"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	user, err := c.userService.GetMe(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// UpdateMe applies a partial update to the caller's user and profile
// @Summary Update current user
// @Description Only fields present in the body are changed
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateMeRequest true "Profile changes"
// @Success 200 {object} dto.APIResponse{data=models.User} "Updated user"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Username taken"
// @Router /users/me [patch]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.UpdateMeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.UpdateMe(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// GetStats returns the caller's points, level and badge count
// @Summary Get current user stats
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.UserStats} "Stats"
// @Router /users/me/stats [get]
func (c *UserController) GetStats(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	stats, err := c.userService.GetStats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// ListUsers lists accounts for administrators
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches username or email"
// @Param isActive query bool false "Filter by active flag"
// @Param isAlumni query bool false "Filter by verified alumni"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse} "Users"
// @Failure 403 {object} dto.ErrorResponse "Admin privileges required"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	var filter dto.UserFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	users, err := c.userService.ListUsers(ctx.Request.Context(), &filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}

// GetUser returns any user by id
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User} "User"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// DeactivateUser disables an account and revokes its sessions
// @Summary Deactivate user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse "User deactivated"
// @Failure 400 {object} dto.ErrorResponse "Cannot deactivate yourself"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/deactivate [post]
func (c *UserController) DeactivateUser(ctx *gin.Context) {
	adminID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.DeactivateUser(ctx.Request.Context(), adminID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("adminID", adminID.String()).Str("userID", id.String()).Msg("User deactivated")
	ctx.JSON(http.StatusOK, dto.NewSuccessMessage("User deactivated"))
}
