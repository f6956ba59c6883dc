package seed

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
	appRepos "github.com/yigit/alumnihub/internal/app/repositories"
	"github.com/yigit/alumnihub/internal/app/services"
	"github.com/yigit/alumnihub/internal/config"
	"github.com/yigit/alumnihub/internal/db"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/auth"
)

// DefaultBadges is the starter catalog. Criteria read the user's stats.
var DefaultBadges = []models.Badge{
	{Name: "First Steps", Description: "Joined the alumni network and earned your first points", BadgeType: models.BadgeParticipation, Rarity: models.RarityCommon, RequiredPoints: 1},
	{Name: "Verified Alumni", Description: "Confirmed graduate of a partner institution", BadgeType: models.BadgeSpecial, Rarity: models.RarityUncommon, Criteria: "verified && alumni"},
	{Name: "Century", Description: "Collected 100 points", BadgeType: models.BadgeMilestone, Rarity: models.RarityUncommon, RequiredPoints: 100},
	{Name: "Eager Learner", Description: "Attended five learning sessions", BadgeType: models.BadgeParticipation, Rarity: models.RarityUncommon, Criteria: "sessions_attended >= 5"},
	{Name: "Speaker", Description: "Hosted a learning session", BadgeType: models.BadgeAchievement, Rarity: models.RarityRare, Criteria: "sessions_hosted >= 1"},
	{Name: "Author", Description: "Published three community articles", BadgeType: models.BadgeAchievement, Rarity: models.RarityRare, Criteria: "articles_published >= 3"},
	{Name: "Luminary", Description: "Collected 1000 points as a verified alumnus", BadgeType: models.BadgeMilestone, Rarity: models.RarityLegendary, RequiredPoints: 1000, Criteria: "alumni"},
}

// DefaultSkills seeds the skill catalog
var DefaultSkills = []models.Skill{
	{Name: "Go", Category: models.SkillTechnical, Description: "The Go programming language", DifficultyLevel: 3},
	{Name: "SQL", Category: models.SkillTechnical, Description: "Relational query languages", DifficultyLevel: 2},
	{Name: "Public Speaking", Category: models.SkillSoft, DifficultyLevel: 3},
	{Name: "Product Management", Category: models.SkillDomain, DifficultyLevel: 4},
	{Name: "Kubernetes", Category: models.SkillTool, DifficultyLevel: 4},
}

// CreateDefaultData creates the admin account and the starter catalogs if
// they do not exist. Errors are collected so one failure does not stop the rest.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, cfg *config.Config, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(database.Pool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	adminID, err := createAdmin(ctx, database, repos, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		finalErr = errors.Join(finalErr, err)
	}

	for i := range DefaultBadges {
		b := DefaultBadges[i]
		b.IsActive = true
		if err := services.ValidateCriteria(b.Criteria); err != nil {
			lgr.Error().Err(err).Str("badge", b.Name).Msg("Skipping badge with invalid criteria")
			continue
		}
		err := repos.BadgeRepository.Create(ctx, &b)
		switch {
		case err == nil:
			lgr.Debug().Str("badge", b.Name).Msg("Badge created")
		case errors.Is(err, apperrors.ErrConflict):
		default:
			lgr.Error().Err(err).Str("badge", b.Name).Msg("Error creating badge")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for i := range DefaultSkills {
		s := DefaultSkills[i]
		if err := repos.CareerRepository.CreateSkill(ctx, &s); err != nil && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("skill", s.Name).Msg("Error creating skill")
			finalErr = errors.Join(finalErr, err)
		}
	}

	programs, err := repos.MentorshipRepository.ListPrograms(ctx, false)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	} else if len(programs) == 0 {
		program := &models.MentorshipProgram{
			Name:                 "Alumni Career Mentorship",
			Description:          "Open program pairing recent graduates with experienced alumni",
			ProgramType:          models.ProgramCareer,
			Status:               models.ProgramActive,
			MaxMenteesPerMentor:  3,
			ProgramDurationWeeks: 12,
			IsPublic:             true,
			CreatedBy:            adminID,
		}
		if err := repos.MentorshipRepository.CreateProgram(ctx, program); err != nil {
			lgr.Error().Err(err).Msg("Error creating default mentorship program")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, database *db.PostgresDB, repos *appRepos.Repositories, cfg *config.Config, lgr zerolog.Logger) (*uuid.UUID, error) {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		lgr.Warn().Msg("Admin credentials not configured, skipping admin creation")
		return nil, nil
	}

	existing, err := repos.UserRepository.GetByEmail(ctx, cfg.Admin.Email)
	if err == nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return &existing.ID, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	lgr.Info().Msg("Creating default admin user...")
	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Email:        cfg.Admin.Email,
		Username:     cfg.Admin.Username,
		PasswordHash: hash,
		IsVerified:   true,
		IsActive:     true,
		IsStaff:      true,
	}
	err = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := repos.UserRepository.CreateUser(ctx, tx, admin); err != nil {
			return err
		}
		if err := repos.UserRepository.CreateProfile(ctx, tx, models.NewProfile(admin.ID)); err != nil {
			return err
		}
		return repos.NotificationRepository.CreatePreferences(ctx, tx, models.DefaultNotificationPreference(admin.ID))
	})
	if err != nil {
		return nil, err
	}

	lgr.Info().Str("adminID", admin.ID.String()).Msg("Default admin user created successfully")
	return &admin.ID, nil
}
