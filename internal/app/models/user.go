package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleType is the access tier carried in the JWT
type RoleType string

const (
	RoleMember RoleType = "MEMBER"
	RoleAdmin  RoleType = "ADMIN"
)

// ProfileRole is the platform role shown on a profile
type ProfileRole string

const (
	ProfileRoleListener  ProfileRole = "listener"
	ProfileRoleModerator ProfileRole = "moderator"
	ProfileRoleSpeaker   ProfileRole = "speaker"
)

// Valid reports whether r is a known profile role
func (r ProfileRole) Valid() bool {
	switch r {
	case ProfileRoleListener, ProfileRoleModerator, ProfileRoleSpeaker:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email" example:"jane@alumni.edu"`
	Username     string     `json:"username" db:"username" example:"jane"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsVerified   bool       `json:"isVerified" db:"is_verified"`
	IsAlumni     bool       `json:"isAlumni" db:"is_alumni"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	IsStaff      bool       `json:"isStaff" db:"is_staff"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`

	Profile *Profile `json:"profile,omitempty"`
}

// Role maps the staff flag onto the token role
func (u *User) Role() RoleType {
	if u.IsStaff {
		return RoleAdmin
	}
	return RoleMember
}

// AcademicInfo is the structured academic part of a profile.
// All fields are optional; validation only applies when the block is set.
type AcademicInfo struct {
	Institution    string `json:"institution,omitempty"`
	GraduationYear *int   `json:"graduationYear,omitempty"`
	DegreeProgram  string `json:"degreeProgram,omitempty"`
	CurrentStatus  string `json:"currentStatus,omitempty"`
}

// ProfessionalInfo is the structured professional part of a profile
type ProfessionalInfo struct {
	Company         string `json:"company,omitempty"`
	Role            string `json:"role,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	Industry        string `json:"industry,omitempty"`
}

// Profile holds the extended attributes of a user, 1:1 with User
type Profile struct {
	UserID           uuid.UUID         `json:"userId" db:"user_id"`
	AcademicInfo     *AcademicInfo     `json:"academicInfo,omitempty" db:"academic_info"`
	ProfessionalInfo *ProfessionalInfo `json:"professionalInfo,omitempty" db:"professional_info"`
	Bio              string            `json:"bio" db:"bio"`
	AvatarURL        string            `json:"avatarUrl,omitempty" db:"avatar_url"`
	Interests        []string          `json:"interests" db:"interests"`
	SocialLinks      map[string]string `json:"socialLinks" db:"social_links"`
	Role             ProfileRole       `json:"role" db:"role"`
	TotalPoints      int64             `json:"totalPoints" db:"total_points"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time         `json:"updatedAt" db:"updated_at"`
}

// NewProfile returns the empty profile created alongside a user
func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:      userID,
		Interests:   []string{},
		SocialLinks: map[string]string{},
		Role:        ProfileRoleListener,
	}
}

// UserStats is the gamification summary of a user
type UserStats struct {
	UserID                uuid.UUID `json:"userId"`
	TotalPoints           int64     `json:"totalPoints"`
	VerificationCount     int       `json:"verificationCount"`
	VerifiedVerifications int       `json:"verifiedVerifications"`
	BadgeCount            int       `json:"badgeCount"`
	SessionsAttended      int       `json:"sessionsAttended"`
	SessionsHosted        int       `json:"sessionsHosted"`
	ArticlesPublished     int       `json:"articlesPublished"`
	IsAlumni              bool      `json:"isAlumni"`
	IsVerified            bool      `json:"isVerified"`
}

// UserFilter narrows the admin user listing
type UserFilter struct {
	Search   string
	IsActive *bool
	IsAlumni *bool
}
