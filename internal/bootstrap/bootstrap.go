package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/alumnihub/internal/app/controllers"
	appMigrations "github.com/yigit/alumnihub/internal/app/migrations"
	appRepos "github.com/yigit/alumnihub/internal/app/repositories"
	appRoutes "github.com/yigit/alumnihub/internal/app/routes"
	appServices "github.com/yigit/alumnihub/internal/app/services"
	"github.com/yigit/alumnihub/internal/config"
	"github.com/yigit/alumnihub/internal/db"
	appMiddleware "github.com/yigit/alumnihub/internal/middleware"
	pkgAuth "github.com/yigit/alumnihub/internal/pkg/auth"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/email"
	"github.com/yigit/alumnihub/internal/pkg/events"
	"github.com/yigit/alumnihub/internal/pkg/helpers"
	"github.com/yigit/alumnihub/internal/pkg/logger"
	"github.com/yigit/alumnihub/internal/pkg/websocket"
	"github.com/yigit/alumnihub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Limiters       appRoutes.Limiters
	JWTService     *pkgAuth.JWTService
	Hub            *websocket.Hub
	MessageHandler *websocket.MessageHandler
	Redis          *redis.Client // nil when redis is disabled or unreachable
	Publisher      events.Publisher
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	defer cancelMigrate()
	if err := appMigrations.NewMigrator(database.Pool, logger.Component("migrations")).MigrateFromDirectory(migrateCtx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database, cfg, lgr.With().Str("component", "seed").Logger()); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// connectRedis returns nil when redis is disabled or unreachable; callers
// fall back to in-process behavior.
func connectRedis(cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, using in-process stats and rate limits")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, using in-process stats and rate limits")
		return nil
	}
	lgr.Info().Msg("Redis connection established")
	return client
}

// BuildDependencies initializes repositories, services, controllers and the realtime hub.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Redis = connectRedis(cfg, lgr)
	var statsCache cache.StatsCache = cache.NoopStatsCache{}
	if deps.Redis != nil {
		statsCache = cache.NewRedisStatsCache(deps.Redis,
			helpers.ParseDuration(cfg.Redis.StatsTTL, 5*time.Minute),
			logger.Component("stats-cache"))
	}

	deps.Publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Component("events"))

	if !cfg.SMTPEnabled() {
		lgr.Warn().Msg("SMTP not configured, emails will be logged and dropped")
	}
	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.Server.PublicURL,
	}, logger.Component("mailer"))

	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	r := deps.Repos
	deps.Services = appServices.New(appServices.Stores{
		Users:         r.UserRepository,
		Tokens:        r.TokenRepository,
		ResetTokens:   r.PasswordResetTokenRepository,
		Verifications: r.VerificationRepository,
		Points:        r.PointsRepository,
		Badges:        r.BadgeRepository,
		Notifications: r.NotificationRepository,
		Communities:   r.CommunityRepository,
		Sessions:      r.SessionRepository,
		Mentorship:    r.MentorshipRepository,
		Career:        r.CareerRepository,
	}, appServices.Infra{
		Tx:         database,
		JWT:        deps.JWTService,
		Mailer:     mailer,
		Pusher:     deps.Hub,
		Publisher:  deps.Publisher,
		StatsCache: statsCache,
		Points: appServices.PointRules{
			SessionHosted:   cfg.Gamification.SessionHostedPoints,
			SessionAttended: cfg.Gamification.SessionAttendedPoints,
			Article:         cfg.Gamification.ArticlePoints,
			Mentorship:      cfg.Gamification.MentorshipPoints,
		},
	}, lgr)

	deps.MessageHandler = websocket.NewMessageHandler(deps.Services.Notification, deps.Hub, logger.Component("websocket"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, logger.Component("auth"))
	if cfg.RateLimit.Enabled {
		deps.Limiters = appRoutes.Limiters{
			General: appMiddleware.NewRateLimiter(deps.Redis,
				appMiddleware.PerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst), "api", logger.Component("ratelimit")),
			Auth: appMiddleware.NewRateLimiter(deps.Redis,
				appMiddleware.PerMinute(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthPerMinute), "auth", logger.Component("ratelimit")),
		}
	}

	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(svc.Auth, logger.Component("auth")),
		User:         appControllers.NewUserController(svc.User, logger.Component("users")),
		Gamification: appControllers.NewGamificationController(svc.Ledger, svc.Badge, logger.Component("gamification")),
		Verification: appControllers.NewVerificationController(svc.Verification, logger.Component("verification")),
		Notification: appControllers.NewNotificationController(svc.Notification, logger.Component("notifications")),
		Community:    appControllers.NewCommunityController(svc.Community, logger.Component("communities")),
		Session:      appControllers.NewSessionController(svc.Session, logger.Component("sessions")),
		Mentorship:   appControllers.NewMentorshipController(svc.Mentorship, logger.Component("mentorship")),
		Career:       appControllers.NewCareerController(svc.Career, logger.Component("career")),
		WebSocket:    websocket.NewHandler(deps.Hub, logger.Component("websocket")),
	}

	return deps, nil
}

// Start launches the background workers. They stop when ctx is cancelled.
func (d *Dependencies) Start(ctx context.Context) {
	go d.Hub.Run(ctx)
	d.MessageHandler.Start(ctx)
}

// Close releases the external clients
func (d *Dependencies) Close() {
	if err := d.Publisher.Close(); err != nil {
		d.Logger.Error().Err(err).Msg("Failed to close event publisher")
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	httpLogger := logger.Component("http")
	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(httpLogger),
		appMiddleware.RequestLogger(httpLogger),
		appMiddleware.Metrics(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Limiters)

	router.GET("/metrics", appMiddleware.MetricsHandler())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
