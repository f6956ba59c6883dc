package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/dberrors"
	"github.com/yigit/alumnihub/internal/pkg/logger"
)

var communityColumns = []string{
	"id", "name", "description", "community_type", "category", "institution",
	"is_public", "is_active", "requires_approval", "member_count", "session_count", "article_count",
	"created_by", "created_at", "updated_at",
}

var memberColumns = []string{
	"m.id", "m.community_id", "m.user_id", "m.role", "m.is_active", "m.joined_at", "m.left_at",
	"m.sessions_attended", "m.sessions_hosted", "m.articles_published", "m.total_points",
}

var topicColumns = []string{
	"id", "community_id", "title", "description", "created_by", "is_pinned", "is_locked",
	"post_count", "view_count", "created_at", "updated_at",
}

var articleColumns = []string{
	"id", "community_id", "author_id", "title", "content", "summary", "tags",
	"is_featured", "is_published", "published_at", "created_at", "updated_at",
}

// CommunityRepository handles database operations for communities and their content
type CommunityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db, sb: psql}
}

func scanCommunity(row pgx.Row, extra ...any) (*models.Community, error) {
	c := &models.Community{}
	dest := []any{&c.ID, &c.Name, &c.Description, &c.CommunityType, &c.Category, &c.Institution,
		&c.IsPublic, &c.IsActive, &c.RequiresApproval, &c.MemberCount, &c.SessionCount, &c.ArticleCount,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return c, err
}

// List retrieves public, active communities, largest first
func (r *CommunityRepository) List(ctx context.Context, filter models.CommunityFilter, offset, limit uint64) ([]*models.Community, int64, error) {
	cols := append(append([]string{}, communityColumns...), "COUNT(*) OVER() AS total_count")
	q := r.sb.Select(cols...).From("communities").
		Where(squirrel.Eq{"is_public": true, "is_active": true})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filter.CommunityType != "" {
		q = q.Where(squirrel.Eq{"community_type": filter.CommunityType})
	}

	sql, args, err := q.OrderBy("member_count DESC", "name").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list communities query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list communities query")
		return nil, 0, fmt.Errorf("error listing communities: %w", err)
	}
	defer rows.Close()

	items := []*models.Community{}
	var total int64
	for rows.Next() {
		c, err := scanCommunity(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning community row: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// GetByID retrieves a community
func (r *CommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	return r.get(ctx, nil, id, false)
}

// GetByIDForUpdate locks the community row so member_count can be recomputed
func (r *CommunityRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Community, error) {
	if err := requireTx(tx, "GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.get(ctx, tx, id, true)
}

func (r *CommunityRepository) get(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*models.Community, error) {
	q := r.sb.Select(communityColumns...).From("communities").Where(squirrel.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get community query: %w", err)
	}

	c, err := scanCommunity(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("error retrieving community: %w", err)
	}
	return c, nil
}

// Create inserts a community
func (r *CommunityRepository) Create(ctx context.Context, tx pgx.Tx, c *models.Community) error {
	sql, args, err := r.sb.Insert("communities").
		Columns("name", "description", "community_type", "category", "institution", "is_public", "is_active", "requires_approval", "created_by").
		Values(c.Name, c.Description, c.CommunityType, c.Category, c.Institution, c.IsPublic, c.IsActive, c.RequiresApproval, c.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create community query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "communities_name_key") {
			return apperrors.NewConflictError("community name already exists")
		}
		logger.Error().Err(err).Str("name", c.Name).Msg("Error creating community")
		return fmt.Errorf("error creating community: %w", err)
	}
	return nil
}

// GetMember returns the membership row of a user, active or not
func (r *CommunityRepository) GetMember(ctx context.Context, tx pgx.Tx, communityID, userID uuid.UUID) (*models.CommunityMember, error) {
	sql, args, err := r.sb.Select(memberColumns...).From("community_members m").
		Where(squirrel.Eq{"m.community_id": communityID, "m.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get member query: %w", err)
	}

	m := &models.CommunityMember{}
	err = conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CommunityID, &m.UserID, &m.Role, &m.IsActive,
		&m.JoinedAt, &m.LeftAt, &m.SessionsAttended, &m.SessionsHosted, &m.ArticlesPublished, &m.TotalPoints)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("membership not found")
		}
		return nil, fmt.Errorf("error retrieving membership: %w", err)
	}
	return m, nil
}

// CreateMember inserts a membership row
func (r *CommunityRepository) CreateMember(ctx context.Context, tx pgx.Tx, m *models.CommunityMember) error {
	sql, args, err := r.sb.Insert("community_members").
		Columns("community_id", "user_id", "role", "is_active").
		Values(m.CommunityID, m.UserID, m.Role, m.IsActive).
		Suffix("RETURNING id, joined_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create member query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&m.ID, &m.JoinedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("already a member of this community")
		}
		return fmt.Errorf("error creating membership: %w", err)
	}
	return nil
}

// UpdateMember persists role and activity flags of a membership
func (r *CommunityRepository) UpdateMember(ctx context.Context, tx pgx.Tx, m *models.CommunityMember) error {
	sql, args, err := r.sb.Update("community_members").
		Set("role", m.Role).
		Set("is_active", m.IsActive).
		Set("left_at", m.LeftAt).
		Set("joined_at", m.JoinedAt).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update member query: %w", err)
	}

	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating membership: %w", err)
	}
	return nil
}

// RecountMembers sets member_count from the active membership rows and returns it
func (r *CommunityRepository) RecountMembers(ctx context.Context, tx pgx.Tx, communityID uuid.UUID) (int, error) {
	sql, args, err := r.sb.Update("communities").
		Set("member_count", squirrel.Expr("(SELECT COUNT(*) FROM community_members WHERE community_id = ? AND is_active)", communityID)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": communityID}).
		Suffix("RETURNING member_count").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build recount members query: %w", err)
	}

	var count int
	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Str("communityID", communityID.String()).Msg("Error recounting members")
		return 0, fmt.Errorf("error recounting members: %w", err)
	}
	return count, nil
}

// ListMembers returns the active members with their usernames
func (r *CommunityRepository) ListMembers(ctx context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityMember, int64, error) {
	cols := append(append([]string{}, memberColumns...), "u.username", "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("community_members m").
		Join("users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.community_id": communityID, "m.is_active": true}).
		OrderBy("m.joined_at").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list members query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing members: %w", err)
	}
	defer rows.Close()

	items := []*models.CommunityMember{}
	var total int64
	for rows.Next() {
		m := &models.CommunityMember{}
		if err := rows.Scan(&m.ID, &m.CommunityID, &m.UserID, &m.Role, &m.IsActive, &m.JoinedAt, &m.LeftAt,
			&m.SessionsAttended, &m.SessionsHosted, &m.ArticlesPublished, &m.TotalPoints, &m.Username, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning member row: %w", err)
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// IncrementArticleCount bumps the community article counter
func (r *CommunityRepository) IncrementArticleCount(ctx context.Context, tx pgx.Tx, communityID uuid.UUID) error {
	sql, args, err := r.sb.Update("communities").
		Set("article_count", squirrel.Expr("article_count + 1")).
		Where(squirrel.Eq{"id": communityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build article count query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing article count: %w", err)
	}
	return nil
}

// IncrementMemberArticles bumps articles_published on the author's membership
func (r *CommunityRepository) IncrementMemberArticles(ctx context.Context, tx pgx.Tx, communityID, userID uuid.UUID) error {
	sql, args, err := r.sb.Update("community_members").
		Set("articles_published", squirrel.Expr("articles_published + 1")).
		Where(squirrel.Eq{"community_id": communityID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build member articles query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing member articles: %w", err)
	}
	return nil
}

func scanTopic(row pgx.Row, extra ...any) (*models.CommunityTopic, error) {
	t := &models.CommunityTopic{}
	dest := []any{&t.ID, &t.CommunityID, &t.Title, &t.Description, &t.CreatedBy, &t.IsPinned, &t.IsLocked,
		&t.PostCount, &t.ViewCount, &t.CreatedAt, &t.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return t, err
}

// CreateTopic inserts a discussion topic
func (r *CommunityRepository) CreateTopic(ctx context.Context, t *models.CommunityTopic) error {
	sql, args, err := r.sb.Insert("community_topics").
		Columns("community_id", "title", "description", "created_by", "is_pinned", "is_locked").
		Values(t.CommunityID, t.Title, t.Description, t.CreatedBy, t.IsPinned, t.IsLocked).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create topic query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("communityID", t.CommunityID.String()).Msg("Error creating topic")
		return fmt.Errorf("error creating topic: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic
func (r *CommunityRepository) GetTopic(ctx context.Context, id uuid.UUID) (*models.CommunityTopic, error) {
	sql, args, err := r.sb.Select(topicColumns...).From("community_topics").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get topic query: %w", err)
	}

	t, err := scanTopic(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("topic not found")
		}
		return nil, fmt.Errorf("error retrieving topic: %w", err)
	}
	return t, nil
}

// ListTopics returns pinned topics first, then the most recently created
func (r *CommunityRepository) ListTopics(ctx context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityTopic, int64, error) {
	cols := append(append([]string{}, topicColumns...), "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("community_topics").
		Where(squirrel.Eq{"community_id": communityID}).
		OrderBy("is_pinned DESC", "created_at DESC").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list topics query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing topics: %w", err)
	}
	defer rows.Close()

	items := []*models.CommunityTopic{}
	var total int64
	for rows.Next() {
		t, err := scanTopic(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning topic row: %w", err)
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// CreatePost inserts a post into a topic
func (r *CommunityRepository) CreatePost(ctx context.Context, tx pgx.Tx, p *models.CommunityPost) error {
	sql, args, err := r.sb.Insert("community_posts").
		Columns("topic_id", "author_id", "content", "post_type").
		Values(p.TopicID, p.AuthorID, p.Content, p.PostType).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create post query: %w", err)
	}

	if err := conn(r.db, tx).QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// IncrementTopicPosts bumps post_count on a topic
func (r *CommunityRepository) IncrementTopicPosts(ctx context.Context, tx pgx.Tx, topicID uuid.UUID) error {
	sql, args, err := r.sb.Update("community_topics").
		Set("post_count", squirrel.Expr("post_count + 1")).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": topicID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build topic posts query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing topic posts: %w", err)
	}
	return nil
}

// ListPosts returns a topic's posts oldest first
func (r *CommunityRepository) ListPosts(ctx context.Context, topicID uuid.UUID, offset, limit uint64) ([]*models.CommunityPost, int64, error) {
	sql, args, err := r.sb.Select("id", "topic_id", "author_id", "content", "post_type", "created_at", "updated_at", "COUNT(*) OVER() AS total_count").
		From("community_posts").
		Where(squirrel.Eq{"topic_id": topicID}).
		OrderBy("created_at").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	items := []*models.CommunityPost{}
	var total int64
	for rows.Next() {
		p := &models.CommunityPost{}
		if err := rows.Scan(&p.ID, &p.TopicID, &p.AuthorID, &p.Content, &p.PostType, &p.CreatedAt, &p.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning post row: %w", err)
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func scanArticle(row pgx.Row, extra ...any) (*models.CommunityArticle, error) {
	a := &models.CommunityArticle{}
	dest := []any{&a.ID, &a.CommunityID, &a.AuthorID, &a.Title, &a.Content, &a.Summary, &a.Tags,
		&a.IsFeatured, &a.IsPublished, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return a, err
}

// CreateArticle inserts a draft article
func (r *CommunityRepository) CreateArticle(ctx context.Context, a *models.CommunityArticle) error {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	sql, args, err := r.sb.Insert("community_articles").
		Columns("community_id", "author_id", "title", "content", "summary", "tags").
		Values(a.CommunityID, a.AuthorID, a.Title, a.Content, a.Summary, tags).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create article query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("communityID", a.CommunityID.String()).Msg("Error creating article")
		return fmt.Errorf("error creating article: %w", err)
	}
	return nil
}

// GetArticle retrieves an article
func (r *CommunityRepository) GetArticle(ctx context.Context, id uuid.UUID) (*models.CommunityArticle, error) {
	return r.getArticle(ctx, nil, id, false)
}

// GetArticleForUpdate locks an article before publishing it
func (r *CommunityRepository) GetArticleForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.CommunityArticle, error) {
	if err := requireTx(tx, "GetArticleForUpdate"); err != nil {
		return nil, err
	}
	return r.getArticle(ctx, tx, id, true)
}

func (r *CommunityRepository) getArticle(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*models.CommunityArticle, error) {
	q := r.sb.Select(articleColumns...).From("community_articles").Where(squirrel.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get article query: %w", err)
	}

	a, err := scanArticle(conn(r.db, tx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("article not found")
		}
		return nil, fmt.Errorf("error retrieving article: %w", err)
	}
	return a, nil
}

// PublishArticle marks an article published
func (r *CommunityRepository) PublishArticle(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("community_articles").
		Set("is_published", true).
		Set("published_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build publish article query: %w", err)
	}
	if _, err := conn(r.db, tx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error publishing article: %w", err)
	}
	return nil
}

// ListArticles returns a community's published articles, newest first
func (r *CommunityRepository) ListArticles(ctx context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityArticle, int64, error) {
	cols := append(append([]string{}, articleColumns...), "COUNT(*) OVER() AS total_count")
	sql, args, err := r.sb.Select(cols...).From("community_articles").
		Where(squirrel.Eq{"community_id": communityID, "is_published": true}).
		OrderBy("is_featured DESC", "published_at DESC").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list articles query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing articles: %w", err)
	}
	defer rows.Close()

	items := []*models.CommunityArticle{}
	var total int64
	for rows.Next() {
		a, err := scanArticle(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning article row: %w", err)
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
