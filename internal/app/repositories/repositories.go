package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository               *UserRepository
	TokenRepository              *TokenRepository
	PasswordResetTokenRepository *PasswordResetTokenRepository
	VerificationRepository       *VerificationRepository
	PointsRepository             *PointsRepository
	BadgeRepository              *BadgeRepository
	NotificationRepository       *NotificationRepository
	CommunityRepository          *CommunityRepository
	SessionRepository            *SessionRepository
	MentorshipRepository         *MentorshipRepository
	CareerRepository             *CareerRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:               NewUserRepository(db),
		TokenRepository:              NewTokenRepository(db),
		PasswordResetTokenRepository: NewPasswordResetTokenRepository(db),
		VerificationRepository:       NewVerificationRepository(db),
		PointsRepository:             NewPointsRepository(db),
		BadgeRepository:              NewBadgeRepository(db),
		NotificationRepository:       NewNotificationRepository(db),
		CommunityRepository:          NewCommunityRepository(db),
		SessionRepository:            NewSessionRepository(db),
		MentorshipRepository:         NewMentorshipRepository(db),
		CareerRepository:             NewCareerRepository(db),
	}
}
