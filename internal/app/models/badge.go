package models

import (
	"time"

	"github.com/google/uuid"
)

// BadgeType groups badges in the catalog
type BadgeType string

const (
	BadgeParticipation BadgeType = "participation"
	BadgeAchievement   BadgeType = "achievement"
	BadgeMilestone     BadgeType = "milestone"
	BadgeSpecial       BadgeType = "special"
)

// BadgeRarity is a display hint
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityUncommon  BadgeRarity = "uncommon"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// Badge is a template that users can earn once
type Badge struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Description    string      `json:"description" db:"description"`
	BadgeType      BadgeType   `json:"badgeType" db:"badge_type"`
	Rarity         BadgeRarity `json:"rarity" db:"rarity"`
	IconURL        string      `json:"iconUrl,omitempty" db:"icon_url"`
	RequiredPoints int64       `json:"requiredPoints" db:"required_points"`
	// Criteria is an optional boolean expression over the user's stats,
	// e.g. "sessions_hosted >= 3 && alumni".
	Criteria  string    `json:"criteria,omitempty" db:"criteria"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserBadge is an award instance, unique per (user, badge)
type UserBadge struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	BadgeID   uuid.UUID `json:"badgeId" db:"badge_id"`
	EarnedAt  time.Time `json:"earnedAt" db:"earned_at"`
	EarnedFor string    `json:"earnedFor,omitempty" db:"earned_for"`

	Badge *Badge `json:"badge,omitempty"`
}
