package models

import (
	"time"

	"github.com/google/uuid"
)

// CommunityType classifies a community
type CommunityType string

const (
	CommunityInstitution  CommunityType = "institution"
	CommunitySubject      CommunityType = "subject"
	CommunityProfessional CommunityType = "professional"
	CommunityInterest     CommunityType = "interest"
)

// Community represents an institution, subject or interest group
type Community struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	Name             string        `json:"name" db:"name"`
	Description      string        `json:"description" db:"description"`
	CommunityType    CommunityType `json:"communityType" db:"community_type"`
	Category         string        `json:"category,omitempty" db:"category"`
	Institution      string        `json:"institution,omitempty" db:"institution"`
	IsPublic         bool          `json:"isPublic" db:"is_public"`
	IsActive         bool          `json:"isActive" db:"is_active"`
	RequiresApproval bool          `json:"requiresApproval" db:"requires_approval"`
	MemberCount      int           `json:"memberCount" db:"member_count"`
	SessionCount     int           `json:"sessionCount" db:"session_count"`
	ArticleCount     int           `json:"articleCount" db:"article_count"`
	CreatedBy        *uuid.UUID    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// MemberRole is a member's role inside a community
type MemberRole string

const (
	MemberRoleMember    MemberRole = "member"
	MemberRoleModerator MemberRole = "moderator"
	MemberRoleAdmin     MemberRole = "admin"
)

// CommunityMember links a user to a community
type CommunityMember struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	CommunityID       uuid.UUID  `json:"communityId" db:"community_id"`
	UserID            uuid.UUID  `json:"userId" db:"user_id"`
	Role              MemberRole `json:"role" db:"role"`
	IsActive          bool       `json:"isActive" db:"is_active"`
	JoinedAt          time.Time  `json:"joinedAt" db:"joined_at"`
	LeftAt            *time.Time `json:"leftAt,omitempty" db:"left_at"`
	SessionsAttended  int        `json:"sessionsAttended" db:"sessions_attended"`
	SessionsHosted    int        `json:"sessionsHosted" db:"sessions_hosted"`
	ArticlesPublished int        `json:"articlesPublished" db:"articles_published"`
	TotalPoints       int64      `json:"totalPoints" db:"total_points"`

	Username string `json:"username,omitempty"`
}

// CommunityTopic is a discussion thread
type CommunityTopic struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CommunityID uuid.UUID  `json:"communityId" db:"community_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty" db:"created_by"`
	IsPinned    bool       `json:"isPinned" db:"is_pinned"`
	IsLocked    bool       `json:"isLocked" db:"is_locked"`
	PostCount   int        `json:"postCount" db:"post_count"`
	ViewCount   int        `json:"viewCount" db:"view_count"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// PostType classifies a post
type PostType string

const (
	PostDiscussion   PostType = "discussion"
	PostQuestion     PostType = "question"
	PostAnnouncement PostType = "announcement"
	PostResource     PostType = "resource"
)

// CommunityPost is a reply in a topic
type CommunityPost struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TopicID   uuid.UUID  `json:"topicId" db:"topic_id"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty" db:"author_id"`
	Content   string     `json:"content" db:"content"`
	PostType  PostType   `json:"postType" db:"post_type"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CommunityArticle is long form content published in a community
type CommunityArticle struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CommunityID uuid.UUID  `json:"communityId" db:"community_id"`
	AuthorID    *uuid.UUID `json:"authorId,omitempty" db:"author_id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	Summary     string     `json:"summary" db:"summary"`
	Tags        []string   `json:"tags" db:"tags"`
	IsFeatured  bool       `json:"isFeatured" db:"is_featured"`
	IsPublished bool       `json:"isPublished" db:"is_published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// CommunityFilter narrows community listings
type CommunityFilter struct {
	Search        string
	CommunityType CommunityType
}
