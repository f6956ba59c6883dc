package dto

import "github.com/yigit/alumnihub/internal/app/models"

// UpdateMeRequest carries partial updates to the caller's user and profile.
// Nil fields are left unchanged.
type UpdateMeRequest struct {
	Username         *string                  `json:"username,omitempty" binding:"omitempty,username"`
	Bio              *string                  `json:"bio,omitempty" binding:"omitempty,max=2000"`
	AvatarURL        *string                  `json:"avatarUrl,omitempty" binding:"omitempty,url"`
	Interests        []string                 `json:"interests,omitempty"`
	SocialLinks      map[string]string        `json:"socialLinks,omitempty"`
	AcademicInfo     *models.AcademicInfo     `json:"academicInfo,omitempty"`
	ProfessionalInfo *models.ProfessionalInfo `json:"professionalInfo,omitempty"`
	Role             *models.ProfileRole      `json:"role,omitempty"`
}

// UserFilterRequest represents user filtering parameters
type UserFilterRequest struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"isActive"`
	IsAlumni *bool  `form:"isAlumni"`
}

// UserListResponse represents a list of users with pagination
type UserListResponse struct {
	Users []*models.User `json:"users"`
	PaginationInfo
}

// ToFilter converts query parameters into a repository filter
func (r UserFilterRequest) ToFilter() models.UserFilter {
	return models.UserFilter{
		Search:   r.Search,
		IsActive: r.IsActive,
		IsAlumni: r.IsAlumni,
	}
}
