package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/alumnihub/internal/app/models"
)

// SubmitVerificationRequest opens an alumni verification
type SubmitVerificationRequest struct {
	Institution        string                    `json:"institution" binding:"required,max=255"`
	GraduationYear     int                       `json:"graduationYear" binding:"required,min=1900,max=2100"`
	DegreeProgram      string                    `json:"degreeProgram" binding:"required,max=255"`
	VerificationMethod models.VerificationMethod `json:"verificationMethod" binding:"required,oneof=linkedin manual email"`
	VerificationData   map[string]interface{}    `json:"verificationData,omitempty"`
}

// VerificationDecisionRequest is the admin decision on a pending verification
type VerificationDecisionRequest struct {
	Status models.VerificationStatus `json:"verificationStatus" binding:"required,oneof=verified rejected"`
}

// VerificationListResponse is a page of verifications
type VerificationListResponse struct {
	Verifications []*models.AlumniVerification `json:"verifications"`
	PaginationInfo
}

// AddPointsRequest lets an owner record a community contribution
type AddPointsRequest struct {
	Points      int64  `json:"points" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
}

// AdjustPointsRequest is an admin ledger correction; points may be negative
type AdjustPointsRequest struct {
	UserID      uuid.UUID `json:"userId" binding:"required"`
	Points      int64     `json:"points" binding:"required"`
	Description string    `json:"description" binding:"required,max=500"`
	Penalty     bool      `json:"penalty"`
}

// TransactionListResponse is a page of ledger rows
type TransactionListResponse struct {
	Transactions []*models.PointsTransaction `json:"transactions"`
	PaginationInfo
}

// CreateBadgeRequest adds a badge to the catalog
type CreateBadgeRequest struct {
	Name           string             `json:"name" binding:"required,max=100"`
	Description    string             `json:"description" binding:"required"`
	BadgeType      models.BadgeType   `json:"badgeType" binding:"required,oneof=participation achievement milestone special"`
	Rarity         models.BadgeRarity `json:"rarity" binding:"required,oneof=common uncommon rare epic legendary"`
	IconURL        string             `json:"iconUrl" binding:"omitempty,url"`
	RequiredPoints int64              `json:"requiredPoints" binding:"min=0"`
	Criteria       string             `json:"criteria" binding:"max=500"`
}

// UpdatePreferencesRequest toggles notification channels. Nil fields are unchanged.
type UpdatePreferencesRequest struct {
	EmailSessions   *bool `json:"emailSessions,omitempty"`
	EmailRecordings *bool `json:"emailRecordings,omitempty"`
	EmailFeedback   *bool `json:"emailFeedback,omitempty"`
	EmailCommunity  *bool `json:"emailCommunity,omitempty"`
	EmailMilestones *bool `json:"emailMilestones,omitempty"`
	EmailMentorship *bool `json:"emailMentorship,omitempty"`
	EmailCareer     *bool `json:"emailCareer,omitempty"`

	InAppSessions   *bool `json:"inAppSessions,omitempty"`
	InAppRecordings *bool `json:"inAppRecordings,omitempty"`
	InAppFeedback   *bool `json:"inAppFeedback,omitempty"`
	InAppCommunity  *bool `json:"inAppCommunity,omitempty"`
	InAppMilestones *bool `json:"inAppMilestones,omitempty"`
	InAppMentorship *bool `json:"inAppMentorship,omitempty"`
	InAppCareer     *bool `json:"inAppCareer,omitempty"`

	// "HH:MM"; an empty string clears the bound
	QuietHoursStart *string `json:"quietHoursStart,omitempty" binding:"omitempty,clock"`
	QuietHoursEnd   *string `json:"quietHoursEnd,omitempty" binding:"omitempty,clock"`
}

// PreferenceResponse renders preferences with quiet hours as strings
type PreferenceResponse struct {
	*models.NotificationPreference
	QuietHoursStart string `json:"quietHoursStart,omitempty"`
	QuietHoursEnd   string `json:"quietHoursEnd,omitempty"`
}

// NewPreferenceResponse formats the quiet hour bounds
func NewPreferenceResponse(p *models.NotificationPreference) PreferenceResponse {
	resp := PreferenceResponse{NotificationPreference: p}
	if p.QuietHoursStart != nil {
		resp.QuietHoursStart = p.QuietHoursStart.String()
	}
	if p.QuietHoursEnd != nil {
		resp.QuietHoursEnd = p.QuietHoursEnd.String()
	}
	return resp
}

// NotificationListResponse is a page of the inbox
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
	PaginationInfo
}
