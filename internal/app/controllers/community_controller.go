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

// CommunityController handles community related operations
type CommunityController struct {
	communityService services.CommunityService
	logger           zerolog.Logger
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService, logger zerolog.Logger) *CommunityController {
	return &CommunityController{
		communityService: communityService,
		logger:           logger,
	}
}

// GetAllCommunities handles retrieving communities with optional filtering
// @Summary Get all communities
// @Description Lists public communities with optional search and type filter
// @Tags communities
// @Produce json
// @Param search query string false "Search by name or description"
// @Param communityType query string false "institution, subject, professional or interest"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param size query int false "Page size (default: 10, max: 100)" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.CommunityListResponse} "Communities retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /communities [get]
func (c *CommunityController) GetAllCommunities(ctx *gin.Context) {
	var filter dto.CommunityFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	// Parse pagination parameters using helper
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.communityService.ListCommunities(ctx.Request.Context(), &filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetCommunityByID returns one community and, for a signed-in caller, their membership
// @Summary Get community by ID
// @Tags communities
// @Produce json
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityDetailResponse} "Community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id} [get]
func (c *CommunityController) GetCommunityByID(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.communityService.GetCommunity(ctx.Request.Context(), id, middleware.OptionalUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateCommunity creates a community with the caller as its admin
// @Summary Create community
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommunityRequest true "Community details"
// @Success 201 {object} dto.APIResponse{data=models.Community} "Community created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Community name taken"
// @Router /communities [post]
func (c *CommunityController) CreateCommunity(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}

	var req dto.CreateCommunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	community, err := c.communityService.CreateCommunity(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("communityID", community.ID.String()).Str("creatorID", userID.String()).Msg("Community created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(community))
}

// JoinCommunity adds the caller as a member
// @Summary Join community
// @Description Idempotent. Communities that require approval create a pending membership.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse{data=models.CommunityMember} "Membership"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id}/members [post]
func (c *CommunityController) JoinCommunity(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	member, err := c.communityService.Join(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(member))
}

// LeaveCommunity removes the caller's membership
// @Summary Leave community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse "Left community"
// @Failure 404 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/members [delete]
func (c *CommunityController) LeaveCommunity(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.communityService.Leave(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessage("Left community"))
}

// ApproveMember activates a pending membership
// @Summary Approve member
// @Description Community admins and platform admins only
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param userId path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.CommunityMember} "Approved membership"
// @Failure 403 {object} dto.ErrorResponse "Not a community admin"
// @Failure 404 {object} dto.ErrorResponse "Membership not found"
// @Router /communities/{id}/members/{userId}/approve [post]
func (c *CommunityController) ApproveMember(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	memberID, ok := middleware.UUIDParam(ctx, "userId")
	if !ok {
		return
	}

	member, err := c.communityService.ApproveMember(ctx.Request.Context(), actor, id, memberID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(member))
}

// GetMembers lists active members
// @Summary List community members
// @Tags communities
// @Produce json
// @Param id path string true "Community ID"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members"
// @Router /communities/{id}/members [get]
func (c *CommunityController) GetMembers(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.communityService.ListMembers(ctx.Request.Context(), id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateTopic opens a discussion thread. Members only.
// @Summary Create topic
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param request body dto.CreateTopicRequest true "Topic"
// @Success 201 {object} dto.APIResponse{data=models.CommunityTopic} "Topic created"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/topics [post]
func (c *CommunityController) CreateTopic(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateTopicRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	topic, err := c.communityService.CreateTopic(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(topic))
}

// ListTopics lists a community's discussion threads. Members only.
// @Summary List topics
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.TopicListResponse} "Topics"
// @Router /communities/{id}/topics [get]
func (c *CommunityController) ListTopics(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.communityService.ListTopics(ctx.Request.Context(), id, userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreatePost replies to a topic
// @Summary Create post
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topicId path string true "Topic ID"
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=models.CommunityPost} "Post created"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /topics/{topicId}/posts [post]
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	topicID, ok := middleware.UUIDParam(ctx, "topicId")
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.communityService.CreatePost(ctx.Request.Context(), topicID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// ListPosts lists replies in a topic, oldest first
// @Summary List posts
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param topicId path string true "Topic ID"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts"
// @Router /topics/{topicId}/posts [get]
func (c *CommunityController) ListPosts(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	topicID, ok := middleware.UUIDParam(ctx, "topicId")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.communityService.ListPosts(ctx.Request.Context(), topicID, userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateArticle drafts an article in a community
// @Summary Create article
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param request body dto.CreateArticleRequest true "Article"
// @Success 201 {object} dto.APIResponse{data=models.CommunityArticle} "Draft created"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/articles [post]
func (c *CommunityController) CreateArticle(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateArticleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	article, err := c.communityService.CreateArticle(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(article))
}

// ListArticles lists published articles of a community
// @Summary List articles
// @Tags communities
// @Produce json
// @Param id path string true "Community ID"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ArticleListResponse} "Articles"
// @Router /communities/{id}/articles [get]
func (c *CommunityController) ListArticles(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.communityService.ListArticles(ctx.Request.Context(), id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetArticle returns a published article, or a draft to its author
// @Summary Get article
// @Tags communities
// @Produce json
// @Param articleId path string true "Article ID"
// @Success 200 {object} dto.APIResponse{data=models.CommunityArticle} "Article"
// @Failure 404 {object} dto.ErrorResponse "Article not found"
// @Router /articles/{articleId} [get]
func (c *CommunityController) GetArticle(ctx *gin.Context) {
	articleID, ok := middleware.UUIDParam(ctx, "articleId")
	if !ok {
		return
	}

	article, err := c.communityService.GetArticle(ctx.Request.Context(), articleID, middleware.OptionalUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(article))
}

// PublishArticle publishes the caller's draft and credits article points
// @Summary Publish article
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param articleId path string true "Article ID"
// @Success 200 {object} dto.APIResponse{data=models.CommunityArticle} "Published article"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 409 {object} dto.ErrorResponse "Already published"
// @Router /articles/{articleId}/publish [post]
func (c *CommunityController) PublishArticle(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.Unauthorized(ctx)
		return
	}
	articleID, ok := middleware.UUIDParam(ctx, "articleId")
	if !ok {
		return
	}

	article, err := c.communityService.PublishArticle(ctx.Request.Context(), articleID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(article))
}
