package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger row
type TransactionType string

const (
	TransactionEarned  TransactionType = "earned"
	TransactionSpent   TransactionType = "spent"
	TransactionBonus   TransactionType = "bonus"
	TransactionPenalty TransactionType = "penalty"
)

// PointsSource is the activity that produced a ledger row
type PointsSource string

const (
	SourceSessionHosted         PointsSource = "session_hosted"
	SourceSessionAttended       PointsSource = "session_attended"
	SourceSessionModerated      PointsSource = "session_moderated"
	SourceArticlePublished      PointsSource = "article_published"
	SourceCommunityContribution PointsSource = "community_contribution"
	SourceMentorship            PointsSource = "mentorship"
	SourceBadgeEarned           PointsSource = "badge_earned"
	SourceAdminAdjustment       PointsSource = "admin_adjustment"
)

// Valid reports whether s is one of the enumerated sources
func (s PointsSource) Valid() bool {
	switch s {
	case SourceSessionHosted, SourceSessionAttended, SourceSessionModerated,
		SourceArticlePublished, SourceCommunityContribution, SourceMentorship,
		SourceBadgeEarned, SourceAdminAdjustment:
		return true
	}
	return false
}

// TransactionTypeFor derives the ledger row type from the sign of the delta.
// bonus upgrades a positive delta, penalty a negative one.
func TransactionTypeFor(amount int64, bonus bool) TransactionType {
	if amount > 0 {
		if bonus {
			return TransactionBonus
		}
		return TransactionEarned
	}
	if bonus {
		return TransactionPenalty
	}
	return TransactionSpent
}

// Reference points a ledger row at the entity that caused it
type Reference struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`
}

// PointsTransaction is an immutable ledger row
type PointsTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	TransactionType TransactionType `json:"transactionType" db:"transaction_type"`
	Source          PointsSource    `json:"source" db:"source"`
	Points          int64           `json:"points" db:"points"`
	BalanceAfter    int64           `json:"balanceAfter" db:"balance_after"`
	Description     string          `json:"description" db:"description"`
	ReferenceID     *uuid.UUID      `json:"referenceId,omitempty" db:"reference_id"`
	ReferenceType   string          `json:"referenceType,omitempty" db:"reference_type"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}
