package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/auth"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/events"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
)

// CommunityService defines the interface for community operations
type CommunityService interface {
	ListCommunities(ctx context.Context, filter *dto.CommunityFilterRequest, page, size int) (*dto.CommunityListResponse, error)
	GetCommunity(ctx context.Context, communityID uuid.UUID, viewerID *uuid.UUID) (*dto.CommunityDetailResponse, error)
	CreateCommunity(ctx context.Context, creatorID uuid.UUID, req *dto.CreateCommunityRequest) (*models.Community, error)
	Join(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMember, error)
	Leave(ctx context.Context, communityID, userID uuid.UUID) error
	ApproveMember(ctx context.Context, actor auth.Actor, communityID, userID uuid.UUID) (*models.CommunityMember, error)
	ListMembers(ctx context.Context, communityID uuid.UUID, page, size int) (*dto.MemberListResponse, error)

	CreateTopic(ctx context.Context, communityID, userID uuid.UUID, req *dto.CreateTopicRequest) (*models.CommunityTopic, error)
	ListTopics(ctx context.Context, communityID, userID uuid.UUID, page, size int) (*dto.TopicListResponse, error)
	CreatePost(ctx context.Context, topicID, userID uuid.UUID, req *dto.CreatePostRequest) (*models.CommunityPost, error)
	ListPosts(ctx context.Context, topicID, userID uuid.UUID, page, size int) (*dto.PostListResponse, error)

	CreateArticle(ctx context.Context, communityID, userID uuid.UUID, req *dto.CreateArticleRequest) (*models.CommunityArticle, error)
	PublishArticle(ctx context.Context, articleID, userID uuid.UUID) (*models.CommunityArticle, error)
	GetArticle(ctx context.Context, articleID uuid.UUID, viewerID *uuid.UUID) (*models.CommunityArticle, error)
	ListArticles(ctx context.Context, communityID uuid.UUID, page, size int) (*dto.ArticleListResponse, error)
}

type communityServiceImpl struct {
	tx        Transactor
	repo      CommunityStore
	ledger    LedgerService
	publisher events.Publisher
	points    PointRules
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	tx Transactor,
	repo CommunityStore,
	ledger LedgerService,
	publisher events.Publisher,
	points PointRules,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		tx:        tx,
		repo:      repo,
		ledger:    ledger,
		publisher: publisher,
		points:    points,
		now:       time.Now,
		logger:    logger,
	}
}

// ListCommunities returns public, active communities, largest first
func (s *communityServiceImpl) ListCommunities(ctx context.Context, filter *dto.CommunityFilterRequest, page, size int) (*dto.CommunityListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.List(ctx, filter.ToFilter(), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing communities: %w", err)
	}
	return &dto.CommunityListResponse{
		Communities:    items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// GetCommunity returns a community and, for a signed-in viewer, their membership
func (s *communityServiceImpl) GetCommunity(ctx context.Context, communityID uuid.UUID, viewerID *uuid.UUID) (*dto.CommunityDetailResponse, error) {
	c, err := s.repo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	resp := &dto.CommunityDetailResponse{Community: c}
	if viewerID != nil {
		m, err := s.repo.GetMember(ctx, nil, communityID, *viewerID)
		switch {
		case err == nil:
			resp.Membership = m
		case !errors.Is(err, apperrors.ErrResourceNotFound):
			return nil, err
		}
	}
	return resp, nil
}

// CreateCommunity stores a community with the creator as its admin member
func (s *communityServiceImpl) CreateCommunity(ctx context.Context, creatorID uuid.UUID, req *dto.CreateCommunityRequest) (*models.Community, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	c := &models.Community{
		Name:             name,
		Description:      req.Description,
		CommunityType:    req.CommunityType,
		Category:         req.Category,
		Institution:      req.Institution,
		IsPublic:         true,
		IsActive:         true,
		RequiresApproval: req.RequiresApproval,
		CreatedBy:        &creatorID,
	}
	if req.IsPublic != nil {
		c.IsPublic = *req.IsPublic
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.Create(ctx, tx, c); err != nil {
			return err
		}
		admin := &models.CommunityMember{
			CommunityID: c.ID,
			UserID:      creatorID,
			Role:        models.MemberRoleAdmin,
			IsActive:    true,
		}
		if err := s.repo.CreateMember(ctx, tx, admin); err != nil {
			return err
		}
		count, err := s.repo.RecountMembers(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		c.MemberCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("communityID", c.ID.String()).Str("name", c.Name).Msg("Community created")
	return c, nil
}

// Join is idempotent. A community that requires approval gets an inactive
// membership until an admin approves it.
func (s *communityServiceImpl) Join(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMember, error) {
	var member *models.CommunityMember
	var changed bool
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		c, err := s.repo.GetByIDForUpdate(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return apperrors.NewInvalidTransitionError("community", "inactive", "joined")
		}

		member, err = s.repo.GetMember(ctx, tx, communityID, userID)
		switch {
		case err == nil:
			if member.IsActive || (c.RequiresApproval && member.LeftAt == nil) {
				return nil
			}
			member.IsActive = !c.RequiresApproval
			member.LeftAt = nil
			member.JoinedAt = s.now().UTC()
			if err := s.repo.UpdateMember(ctx, tx, member); err != nil {
				return err
			}
		case errors.Is(err, apperrors.ErrResourceNotFound):
			member = &models.CommunityMember{
				CommunityID: communityID,
				UserID:      userID,
				Role:        models.MemberRoleMember,
				IsActive:    !c.RequiresApproval,
			}
			if err := s.repo.CreateMember(ctx, tx, member); err != nil {
				return err
			}
		default:
			return err
		}

		changed = true
		_, err = s.repo.RecountMembers(ctx, tx, communityID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info().
			Str("communityID", communityID.String()).
			Str("userID", userID.String()).
			Bool("pendingApproval", !member.IsActive).
			Msg("Community joined")
		if err := s.publisher.Publish(ctx, events.New(events.CommunityJoined, communityID.String(), member)); err != nil {
			s.logger.Warn().Err(err).Str("communityID", communityID.String()).Msg("Failed to publish community event")
		}
	}
	return member, nil
}

// Leave deactivates the membership and recounts
func (s *communityServiceImpl) Leave(ctx context.Context, communityID, userID uuid.UUID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.repo.GetByIDForUpdate(ctx, tx, communityID); err != nil {
			return err
		}
		m, err := s.repo.GetMember(ctx, tx, communityID, userID)
		if err != nil {
			return err
		}
		if !m.IsActive && m.LeftAt != nil {
			return nil
		}
		at := s.now().UTC()
		m.IsActive = false
		m.LeftAt = &at
		if err := s.repo.UpdateMember(ctx, tx, m); err != nil {
			return err
		}
		_, err = s.repo.RecountMembers(ctx, tx, communityID)
		return err
	})
}

// ApproveMember activates a pending membership. Community admins and
// platform admins may approve.
func (s *communityServiceImpl) ApproveMember(ctx context.Context, actor auth.Actor, communityID, userID uuid.UUID) (*models.CommunityMember, error) {
	var member *models.CommunityMember
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.repo.GetByIDForUpdate(ctx, tx, communityID); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			approver, err := s.repo.GetMember(ctx, tx, communityID, actor.UserID)
			if err != nil || !approver.IsActive || approver.Role == models.MemberRoleMember {
				return apperrors.NewForbiddenError("only community admins can approve members")
			}
		}

		var err error
		member, err = s.repo.GetMember(ctx, tx, communityID, userID)
		if err != nil {
			return err
		}
		if member.IsActive {
			return nil
		}
		if member.LeftAt != nil {
			return apperrors.NewInvalidTransitionError("membership", "left", "active")
		}
		member.IsActive = true
		if err := s.repo.UpdateMember(ctx, tx, member); err != nil {
			return err
		}
		_, err = s.repo.RecountMembers(ctx, tx, communityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers returns the active members
func (s *communityServiceImpl) ListMembers(ctx context.Context, communityID uuid.UUID, page, size int) (*dto.MemberListResponse, error) {
	if _, err := s.repo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListMembers(ctx, communityID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}
	return &dto.MemberListResponse{
		Members:        items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// requireMember rejects users without an active membership
func (s *communityServiceImpl) requireMember(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMember, error) {
	m, err := s.repo.GetMember(ctx, nil, communityID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewForbiddenError("only community members can do that")
		}
		return nil, err
	}
	if !m.IsActive {
		return nil, apperrors.NewForbiddenError("only community members can do that")
	}
	return m, nil
}

// CreateTopic opens a thread in a community the caller belongs to
func (s *communityServiceImpl) CreateTopic(ctx context.Context, communityID, userID uuid.UUID, req *dto.CreateTopicRequest) (*models.CommunityTopic, error) {
	if _, err := s.repo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	t := &models.CommunityTopic{
		CommunityID: communityID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedBy:   &userID,
	}
	if err := s.repo.CreateTopic(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTopics returns the threads of a community, visible to members
func (s *communityServiceImpl) ListTopics(ctx context.Context, communityID, userID uuid.UUID, page, size int) (*dto.TopicListResponse, error) {
	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListTopics(ctx, communityID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing topics: %w", err)
	}
	return &dto.TopicListResponse{
		Topics:         items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// CreatePost replies to an unlocked topic
func (s *communityServiceImpl) CreatePost(ctx context.Context, topicID, userID uuid.UUID, req *dto.CreatePostRequest) (*models.CommunityPost, error) {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, topic.CommunityID, userID); err != nil {
		return nil, err
	}
	if topic.IsLocked {
		return nil, apperrors.NewForbiddenError("topic is locked")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewValidationError("content", "content is required")
	}

	p := &models.CommunityPost{
		TopicID:  topicID,
		AuthorID: &userID,
		Content:  req.Content,
		PostType: req.PostType,
	}
	if p.PostType == "" {
		p.PostType = models.PostDiscussion
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.CreatePost(ctx, tx, p); err != nil {
			return err
		}
		return s.repo.IncrementTopicPosts(ctx, tx, topicID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPosts returns the replies of a topic, visible to members
func (s *communityServiceImpl) ListPosts(ctx context.Context, topicID, userID uuid.UUID, page, size int) (*dto.PostListResponse, error) {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, topic.CommunityID, userID); err != nil {
		return nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListPosts(ctx, topicID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return &dto.PostListResponse{
		Posts:          items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// CreateArticle stores an unpublished article by a member
func (s *communityServiceImpl) CreateArticle(ctx context.Context, communityID, userID uuid.UUID, req *dto.CreateArticleRequest) (*models.CommunityArticle, error) {
	if _, err := s.repo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	a := &models.CommunityArticle{
		CommunityID: communityID,
		AuthorID:    &userID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Summary:     req.Summary,
		Tags:        trimAll(req.Tags),
	}
	if err := s.repo.CreateArticle(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PublishArticle publishes the author's draft, bumps the counters and
// awards article points after commit.
func (s *communityServiceImpl) PublishArticle(ctx context.Context, articleID, userID uuid.UUID) (*models.CommunityArticle, error) {
	var article *models.CommunityArticle
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		article, err = s.repo.GetArticleForUpdate(ctx, tx, articleID)
		if err != nil {
			return err
		}
		if article.AuthorID == nil || *article.AuthorID != userID {
			return apperrors.NewForbiddenError("only the author can publish this article")
		}
		if article.IsPublished {
			return apperrors.NewInvalidTransitionError("article", "published", "published")
		}

		at := s.now().UTC()
		if err := s.repo.PublishArticle(ctx, tx, articleID, at); err != nil {
			return err
		}
		if err := s.repo.IncrementArticleCount(ctx, tx, article.CommunityID); err != nil {
			return err
		}
		if err := s.repo.IncrementMemberArticles(ctx, tx, article.CommunityID, userID); err != nil {
			return err
		}
		article.IsPublished = true
		article.PublishedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("articleID", articleID.String()).Str("authorID", userID.String()).Msg("Article published")
	awardAfterCommit(ctx, s.ledger, s.logger, RecordInput{
		UserID:      userID,
		Amount:      s.points.Article,
		Source:      models.SourceArticlePublished,
		Description: "Published article: " + article.Title,
		Reference:   &models.Reference{ID: articleID, Type: "article"},
	})
	return article, nil
}

// GetArticle returns a published article, or a draft to its author
func (s *communityServiceImpl) GetArticle(ctx context.Context, articleID uuid.UUID, viewerID *uuid.UUID) (*models.CommunityArticle, error) {
	a, err := s.repo.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished && (viewerID == nil || a.AuthorID == nil || *a.AuthorID != *viewerID) {
		return nil, apperrors.NewResourceNotFoundError("article not found")
	}
	return a, nil
}

// ListArticles returns the published articles of a community
func (s *communityServiceImpl) ListArticles(ctx context.Context, communityID uuid.UUID, page, size int) (*dto.ArticleListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListArticles(ctx, communityID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	return &dto.ArticleListResponse{
		Articles:       items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}
