package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/app/services"
	"github.com/yigit/alumnihub/internal/middleware"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// NotificationController serves the caller's inbox and preferences
type NotificationController struct {
	notificationService services.NotificationService
	logger              zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List returns the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse} "Notifications"
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	unreadOnly, _ := strconv.ParseBool(ctx.Query("unread"))
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.notificationService.List(ctx.Request.Context(), userID, unreadOnly, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UnreadCount returns the number of unread notifications
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Unread count"
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	count, err := c.notificationService.CountUnread(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"unreadCount": count}))
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.APIResponse "Marked read"
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessage("Notification marked as read"))
}

// MarkAllRead marks every unread notification as read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Number of notifications marked"
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	n, err := c.notificationService.MarkAllRead(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"marked": n}))
}

// GetPreferences returns the caller's notification preferences
// @Summary Get notification preferences
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PreferenceResponse} "Preferences"
// @Router /notifications/preferences [get]
func (c *NotificationController) GetPreferences(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	prefs, err := c.notificationService.GetPreferences(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewPreferenceResponse(prefs)))
}

// UpdatePreferences toggles channels and sets quiet hours
// @Summary Update notification preferences
// @Description Quiet hours are "HH:MM" in UTC. An empty string clears a bound.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdatePreferencesRequest true "Preference changes"
// @Success 200 {object} dto.APIResponse{data=dto.PreferenceResponse} "Updated preferences"
// @Failure 400 {object} dto.ErrorResponse "Malformed quiet hours"
// @Router /notifications/preferences [patch]
func (c *NotificationController) UpdatePreferences(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.UpdatePreferencesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	prefs, err := c.notificationService.UpdatePreferences(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewPreferenceResponse(prefs)))
}
