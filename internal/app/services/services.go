package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/pkg/auth"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/email"
	"github.com/yigit/alumnihub/internal/pkg/events"
)

// PointRules is the number of points each activity is worth
type PointRules struct {
	SessionHosted   int64
	SessionAttended int64
	Article         int64
	Mentorship      int64
}

// Stores is the persistence each service depends on
type Stores struct {
	Users         UserStore
	Tokens        TokenStore
	ResetTokens   ResetTokenStore
	Verifications VerificationStore
	Points        PointsStore
	Badges        BadgeStore
	Notifications NotificationStore
	Communities   CommunityStore
	Sessions      SessionStore
	Mentorship    MentorshipStore
	Career        CareerStore
}

// Infra bundles the shared non-database collaborators
type Infra struct {
	Tx         Transactor
	JWT        *auth.JWTService
	Mailer     email.Mailer
	Pusher     Pusher
	Publisher  events.Publisher
	StatsCache cache.StatsCache
	Points     PointRules
}

// Services holds every service of the application
type Services struct {
	Auth         AuthService
	User         UserService
	Notification NotificationService
	Badge        BadgeService
	Ledger       LedgerService
	Verification VerificationService
	Community    CommunityService
	Session      SessionService
	Mentorship   MentorshipService
	Career       CareerService
}

// New wires the services in dependency order: notifications, then badges,
// then the ledger that evaluates badges, then everything that awards points.
func New(stores Stores, infra Infra, logger zerolog.Logger) *Services {
	svc := &Services{}

	svc.Notification = NewNotificationService(stores.Notifications, stores.Users, infra.Mailer, infra.Pusher,
		logger.With().Str("service", "notification").Logger())
	svc.Badge = NewBadgeService(stores.Badges, stores.Users, svc.Notification, infra.Publisher, infra.StatsCache,
		logger.With().Str("service", "badge").Logger())
	svc.Ledger = NewLedgerService(infra.Tx, stores.Users, stores.Points, svc.Badge, infra.Publisher, infra.StatsCache,
		logger.With().Str("service", "ledger").Logger())

	svc.Auth = NewAuthService(infra.Tx, stores.Users, stores.Tokens, stores.ResetTokens, stores.Notifications,
		infra.JWT, infra.Mailer, logger.With().Str("service", "auth").Logger())
	svc.User = NewUserService(stores.Users, stores.Tokens, infra.StatsCache,
		logger.With().Str("service", "user").Logger())
	svc.Verification = NewVerificationService(infra.Tx, stores.Verifications, stores.Users, svc.Badge, svc.Notification,
		infra.Publisher, infra.StatsCache, logger.With().Str("service", "verification").Logger())
	svc.Community = NewCommunityService(infra.Tx, stores.Communities, svc.Ledger, infra.Publisher, infra.Points,
		logger.With().Str("service", "community").Logger())
	svc.Session = NewSessionService(infra.Tx, stores.Sessions, svc.Ledger, svc.Notification, infra.Publisher, infra.Points,
		logger.With().Str("service", "session").Logger())
	svc.Mentorship = NewMentorshipService(infra.Tx, stores.Mentorship, svc.Ledger, svc.Notification, infra.Publisher, infra.Points,
		logger.With().Str("service", "mentorship").Logger())
	svc.Career = NewCareerService(infra.Tx, stores.Career, svc.Notification, infra.Publisher,
		logger.With().Str("service", "career").Logger())

	return svc
}
