package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/db"
	"github.com/yigit/alumnihub/internal/pkg/websocket"
)

// Transactor runs fn inside one database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// Pusher delivers live messages to a user's open connections
type Pusher interface {
	PushToUser(userID uuid.UUID, msg *websocket.Message)
}

// UserStore is the persistence surface for users and profiles
type UserStore interface {
	CreateUser(ctx context.Context, tx pgx.Tx, user *models.User) error
	CreateProfile(ctx context.Context, tx pgx.Tx, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	SetAlumni(ctx context.Context, tx pgx.Tx, id uuid.UUID, alumni bool) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, filter models.UserFilter, offset, limit uint64) ([]*models.User, int64, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetProfileForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	UpdateTotalPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, total int64) error
	GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// TokenStore keeps refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (uuid.UUID, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// ResetTokenStore keeps single-use password reset tokens
type ResetTokenStore interface {
	CreateToken(ctx context.Context, userID uuid.UUID, token string, expiryDate time.Time) error
	ConsumeToken(ctx context.Context, tx pgx.Tx, token string, now time.Time) (uuid.UUID, error)
	DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) error
}

// VerificationStore persists alumni verifications
type VerificationStore interface {
	Create(ctx context.Context, v *models.AlumniVerification) error
	HasActive(ctx context.Context, userID uuid.UUID, institution string, year int) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AlumniVerification, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.AlumniVerification, error)
	UpdateDecision(ctx context.Context, tx pgx.Tx, v *models.AlumniVerification) error
	List(ctx context.Context, filter models.VerificationFilter, offset, limit uint64) ([]*models.AlumniVerification, int64, error)
}

// PointsStore is the append-only ledger table
type PointsStore interface {
	Create(ctx context.Context, tx pgx.Tx, t *models.PointsTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit uint64) ([]*models.PointsTransaction, int64, error)
}

// BadgeStore holds the badge catalog and awards
type BadgeStore interface {
	List(ctx context.Context, activeOnly bool) ([]*models.Badge, error)
	ListUnearned(ctx context.Context, userID uuid.UUID) ([]*models.Badge, error)
	Create(ctx context.Context, b *models.Badge) error
	Award(ctx context.Context, ub *models.UserBadge) (bool, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error)
}

// NotificationStore holds inbox rows and preferences
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit uint64) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	SetEmailSent(ctx context.Context, id uuid.UUID) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	CreatePreferences(ctx context.Context, tx pgx.Tx, p *models.NotificationPreference) error
	UpsertPreferences(ctx context.Context, p *models.NotificationPreference) error
}

// CommunityStore persists communities and their content
type CommunityStore interface {
	List(ctx context.Context, filter models.CommunityFilter, offset, limit uint64) ([]*models.Community, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Community, error)
	Create(ctx context.Context, tx pgx.Tx, c *models.Community) error
	GetMember(ctx context.Context, tx pgx.Tx, communityID, userID uuid.UUID) (*models.CommunityMember, error)
	CreateMember(ctx context.Context, tx pgx.Tx, m *models.CommunityMember) error
	UpdateMember(ctx context.Context, tx pgx.Tx, m *models.CommunityMember) error
	RecountMembers(ctx context.Context, tx pgx.Tx, communityID uuid.UUID) (int, error)
	ListMembers(ctx context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityMember, int64, error)
	IncrementArticleCount(ctx context.Context, tx pgx.Tx, communityID uuid.UUID) error
	IncrementMemberArticles(ctx context.Context, tx pgx.Tx, communityID, userID uuid.UUID) error
	CreateTopic(ctx context.Context, t *models.CommunityTopic) error
	GetTopic(ctx context.Context, id uuid.UUID) (*models.CommunityTopic, error)
	ListTopics(ctx context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityTopic, int64, error)
	CreatePost(ctx context.Context, tx pgx.Tx, p *models.CommunityPost) error
	IncrementTopicPosts(ctx context.Context, tx pgx.Tx, topicID uuid.UUID) error
	ListPosts(ctx context.Context, topicID uuid.UUID, offset, limit uint64) ([]*models.CommunityPost, int64, error)
	CreateArticle(ctx context.Context, a *models.CommunityArticle) error
	GetArticle(ctx context.Context, id uuid.UUID) (*models.CommunityArticle, error)
	GetArticleForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.CommunityArticle, error)
	PublishArticle(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error
	ListArticles(ctx context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityArticle, int64, error)
}

// SessionStore persists learning sessions
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Session, error)
	ListPublic(ctx context.Context, offset, limit uint64) ([]*models.Session, int64, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, s *models.Session) error
	GetParticipant(ctx context.Context, tx pgx.Tx, sessionID, userID uuid.UUID) (*models.SessionParticipant, error)
	CountParticipants(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (int, error)
	AddParticipant(ctx context.Context, tx pgx.Tx, p *models.SessionParticipant) (bool, error)
	LeaveParticipant(ctx context.Context, sessionID, userID uuid.UUID, at time.Time) error
	ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionParticipant, error)
	UpsertRecording(ctx context.Context, rec *models.SessionRecording) error
	GetRecording(ctx context.Context, sessionID uuid.UUID) (*models.SessionRecording, error)
	CreateFeedback(ctx context.Context, tx pgx.Tx, f *models.SessionFeedback) error
	MarkFeedbackProvided(ctx context.Context, tx pgx.Tx, sessionID, userID uuid.UUID) error
	ListFeedback(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionFeedback, error)
}

// MentorshipStore persists programs, profiles, relationships and meetings
type MentorshipStore interface {
	ListPrograms(ctx context.Context, publicOnly bool) ([]*models.MentorshipProgram, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*models.MentorshipProgram, error)
	CreateProgram(ctx context.Context, p *models.MentorshipProgram) error
	GetMentorByUserID(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error)
	GetMentorForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.MentorProfile, error)
	UpsertMentor(ctx context.Context, m *models.MentorProfile) error
	ListAvailableMentors(ctx context.Context, offset, limit uint64) ([]*models.MentorProfile, int64, error)
	IncrementMenteesHelped(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
	GetMenteeByUserID(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error)
	UpsertMentee(ctx context.Context, m *models.MenteeProfile) error
	CreateRelationship(ctx context.Context, rel *models.MentorshipRelationship) error
	GetRelationship(ctx context.Context, id uuid.UUID) (*models.MentorshipRelationship, error)
	GetRelationshipForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.MentorshipRelationship, error)
	UpdateRelationship(ctx context.Context, tx pgx.Tx, rel *models.MentorshipRelationship) error
	CountActiveForMentor(ctx context.Context, tx pgx.Tx, mentorUserID uuid.UUID) (int, error)
	ListRelationshipsForUser(ctx context.Context, userID uuid.UUID) ([]*models.MentorshipRelationship, error)
	IncrementRelationshipSessions(ctx context.Context, tx pgx.Tx, rel *models.MentorshipRelationship) error
	CreateSession(ctx context.Context, s *models.MentorshipSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.MentorshipSession, error)
	UpdateSession(ctx context.Context, tx pgx.Tx, s *models.MentorshipSession) error
	ListSessions(ctx context.Context, relationshipID uuid.UUID) ([]*models.MentorshipSession, error)
}

// CareerStore persists jobs, applications, skills and career paths
type CareerStore interface {
	ListJobs(ctx context.Context, filter models.JobFilter, now time.Time, offset, limit uint64) ([]*models.JobPosting, int64, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.JobPosting, error)
	GetJobForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.JobPosting, error)
	CreateJob(ctx context.Context, j *models.JobPosting) error
	IncrementJobViews(ctx context.Context, id uuid.UUID) error
	IncrementApplications(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	CreateApplication(ctx context.Context, tx pgx.Tx, a *models.JobApplication) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error
	ListApplicationsForJob(ctx context.Context, jobID uuid.UUID) ([]*models.JobApplication, error)
	ListApplicationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.JobApplication, error)
	ListSkills(ctx context.Context) ([]*models.Skill, error)
	GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	CreateSkill(ctx context.Context, s *models.Skill) error
	UpsertUserSkill(ctx context.Context, us *models.UserSkill) error
	ListUserSkills(ctx context.Context, userID uuid.UUID) ([]*models.UserSkill, error)
	ListCareerPaths(ctx context.Context, industry string) ([]*models.CareerPath, error)
	CreateCareerPath(ctx context.Context, p *models.CareerPath) error
}
