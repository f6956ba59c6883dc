package dto

import "github.com/yigit/alumnihub/internal/app/models"

// --- Request DTOs ---

// CreateCommunityRequest represents community creation data
type CreateCommunityRequest struct {
	Name             string               `json:"name" binding:"required,max=200"`
	Description      string               `json:"description" binding:"required"`
	CommunityType    models.CommunityType `json:"communityType" binding:"required,oneof=institution subject professional interest"`
	Category         string               `json:"category" binding:"max=100"`
	Institution      string               `json:"institution" binding:"max=255"`
	IsPublic         *bool                `json:"isPublic"`
	RequiresApproval bool                 `json:"requiresApproval"`
}

// CommunityFilterRequest represents community filter parameters
type CommunityFilterRequest struct {
	Search        string `form:"search"`
	CommunityType string `form:"communityType"`
}

// ToFilter converts query parameters into a repository filter
func (r CommunityFilterRequest) ToFilter() models.CommunityFilter {
	return models.CommunityFilter{
		Search:        r.Search,
		CommunityType: models.CommunityType(r.CommunityType),
	}
}

// CreateTopicRequest opens a discussion thread
type CreateTopicRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

// CreatePostRequest replies to a topic
type CreatePostRequest struct {
	Content  string          `json:"content" binding:"required"`
	PostType models.PostType `json:"postType" binding:"omitempty,oneof=discussion question announcement resource"`
}

// CreateArticleRequest drafts an article in a community
type CreateArticleRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Summary string   `json:"summary" binding:"max=500"`
	Tags    []string `json:"tags"`
}

// --- Response DTOs ---

// CommunityListResponse represents a list of communities
type CommunityListResponse struct {
	Communities []*models.Community `json:"communities"`
	PaginationInfo
}

// CommunityDetailResponse adds the caller's membership to a community
type CommunityDetailResponse struct {
	*models.Community
	Membership *models.CommunityMember `json:"membership,omitempty"`
}

// MemberListResponse is a page of members
type MemberListResponse struct {
	Members []*models.CommunityMember `json:"members"`
	PaginationInfo
}

// TopicListResponse is a page of topics
type TopicListResponse struct {
	Topics []*models.CommunityTopic `json:"topics"`
	PaginationInfo
}

// PostListResponse is a page of posts
type PostListResponse struct {
	Posts []*models.CommunityPost `json:"posts"`
	PaginationInfo
}

// ArticleListResponse is a page of articles
type ArticleListResponse struct {
	Articles []*models.CommunityArticle `json:"articles"`
	PaginationInfo
}
