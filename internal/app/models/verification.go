package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the state of an alumni verification
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// IsTerminal reports whether no further transitions are defined
func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationVerified || s == VerificationRejected
}

// Valid reports whether s is a known status
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// VerificationMethod is how the claim is evidenced
type VerificationMethod string

const (
	VerificationMethodLinkedIn VerificationMethod = "linkedin"
	VerificationMethodManual   VerificationMethod = "manual"
	VerificationMethodEmail    VerificationMethod = "email"
)

// Valid reports whether m is a known method
func (m VerificationMethod) Valid() bool {
	switch m {
	case VerificationMethodLinkedIn, VerificationMethodManual, VerificationMethodEmail:
		return true
	}
	return false
}

const (
	MinGraduationYear = 1900
	MaxGraduationYear = 2100
)

// AlumniVerification is a claim of alumni status awaiting an admin decision
type AlumniVerification struct {
	ID               uuid.UUID              `json:"id" db:"id"`
	UserID           uuid.UUID              `json:"userId" db:"user_id"`
	Institution      string                 `json:"institution" db:"institution"`
	GraduationYear   int                    `json:"graduationYear" db:"graduation_year"`
	DegreeProgram    string                 `json:"degreeProgram" db:"degree_program"`
	Status           VerificationStatus     `json:"verificationStatus" db:"verification_status"`
	Method           VerificationMethod     `json:"verificationMethod" db:"verification_method"`
	VerificationData map[string]interface{} `json:"verificationData,omitempty" db:"verification_data"`
	VerifiedAt       *time.Time             `json:"verifiedAt,omitempty" db:"verified_at"`
	VerifiedBy       *uuid.UUID             `json:"verifiedBy,omitempty" db:"verified_by"`
	CreatedAt        time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time              `json:"updatedAt" db:"updated_at"`
}

// Approve moves a pending verification to verified
func (v *AlumniVerification) Approve(approver uuid.UUID, at time.Time) bool {
	if v.Status != VerificationPending {
		return false
	}
	v.Status = VerificationVerified
	v.VerifiedAt = &at
	v.VerifiedBy = &approver
	v.UpdatedAt = at
	return true
}

// Reject moves a pending verification to rejected
func (v *AlumniVerification) Reject(rejecter uuid.UUID, at time.Time) bool {
	if v.Status != VerificationPending {
		return false
	}
	v.Status = VerificationRejected
	v.VerifiedBy = &rejecter
	v.UpdatedAt = at
	return true
}

// VerificationFilter narrows verification listings
type VerificationFilter struct {
	UserID *uuid.UUID
	Status *VerificationStatus
}
