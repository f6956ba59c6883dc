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

// GamificationController serves the points ledger and badge catalog
type GamificationController struct {
	ledger services.LedgerService
	badges services.BadgeService
	logger zerolog.Logger
}

// NewGamificationController creates a new GamificationController
func NewGamificationController(ledger services.LedgerService, badges services.BadgeService, logger zerolog.Logger) *GamificationController {
	return &GamificationController{
		ledger: ledger,
		badges: badges,
		logger: logger,
	}
}

// ListTransactions returns the caller's ledger, newest first
// @Summary List my points transactions
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.TransactionListResponse} "Transactions"
// @Router /points/transactions [get]
func (c *GamificationController) ListTransactions(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.ledger.ListTransactions(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// AddPoints records a community contribution for the caller
// @Summary Record a contribution
// @Tags gamification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddPointsRequest true "Points to add"
// @Success 201 {object} dto.APIResponse{data=models.PointsTransaction} "Recorded transaction"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount"
// @Router /points [post]
func (c *GamificationController) AddPoints(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.AddPointsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tx, err := c.ledger.AddPoints(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(tx))
}

// AdjustPoints applies an admin correction to any user's ledger
// @Summary Adjust a user's points
// @Description Positive amounts are bonuses. Negative amounts are recorded as penalties or corrections.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdjustPointsRequest true "Adjustment"
// @Success 201 {object} dto.APIResponse{data=models.PointsTransaction} "Recorded transaction"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/points/adjust [post]
func (c *GamificationController) AdjustPoints(ctx *gin.Context) {
	adminID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.AdjustPointsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tx, err := c.ledger.AdjustPoints(ctx.Request.Context(), adminID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("adminID", adminID.String()).
		Str("userID", req.UserID.String()).
		Int64("points", req.Points).
		Msg("Points adjusted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(tx))
}

// ListBadges returns the badge catalog
// @Summary List badges
// @Tags gamification
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Badge} "Badge catalog"
// @Router /badges [get]
func (c *GamificationController) ListBadges(ctx *gin.Context) {
	badges, err := c.badges.ListCatalog(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(badges))
}

// ListMyBadges returns the badges the caller has earned
// @Summary List my badges
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.UserBadge} "Earned badges"
// @Router /badges/me [get]
func (c *GamificationController) ListMyBadges(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	badges, err := c.badges.ListUserBadges(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(badges))
}

// ListUserBadges returns the badges another user has earned
// @Summary List a user's badges
// @Tags gamification
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=[]models.UserBadge} "Earned badges"
// @Router /users/{id}/badges [get]
func (c *GamificationController) ListUserBadges(ctx *gin.Context) {
	userID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	badges, err := c.badges.ListUserBadges(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(badges))
}

// CreateBadge adds a badge to the catalog
// @Summary Create badge
// @Description The criteria expression is compiled on create and rejected if it does not evaluate to a boolean
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBadgeRequest true "Badge definition"
// @Success 201 {object} dto.APIResponse{data=models.Badge} "Created badge"
// @Failure 400 {object} dto.ErrorResponse "Invalid criteria"
// @Failure 409 {object} dto.ErrorResponse "Badge name taken"
// @Router /admin/badges [post]
func (c *GamificationController) CreateBadge(ctx *gin.Context) {
	var req dto.CreateBadgeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	badge, err := c.badges.CreateBadge(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(badge))
}
