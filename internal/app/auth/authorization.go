package auth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uuid.UUID
	Role   models.RoleType
}

// NewActor builds an actor from the identity stored by the auth middleware
func NewActor(userID uuid.UUID, role string) Actor {
	return Actor{UserID: userID, Role: models.RoleType(role)}
}

// IsAdmin reports whether the actor holds the admin tier
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Owns reports whether id names the actor
func (a Actor) Owns(id *uuid.UUID) bool {
	return id != nil && *id == a.UserID
}

// RequireAdmin rejects non-admin actors
func RequireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return apperrors.NewForbiddenError("admin privileges required")
	}
	return nil
}

// RequireOwnerOrAdmin rejects actors that neither own the resource nor are admins
func RequireOwnerOrAdmin(a Actor, ownerID *uuid.UUID, resource string) error {
	if a.IsAdmin() || a.Owns(ownerID) {
		return nil
	}
	return apperrors.NewForbiddenError(fmt.Sprintf("you don't have permission to modify this %s", resource))
}

// RequireParty rejects actors that are not one of the listed parties
func RequireParty(a Actor, resource string, parties ...uuid.UUID) error {
	for _, p := range parties {
		if p == a.UserID {
			return nil
		}
	}
	return apperrors.NewForbiddenError(fmt.Sprintf("only participants of this %s may do that", resource))
}
