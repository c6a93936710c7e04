package services

import "github.com/innut/innut/internal/auth"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           string
}

// ActorFromClaims builds an Actor from verified token claims.
func ActorFromClaims(claims *auth.Claims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	}
}

// IsSuperAdmin reports whether the actor holds the back-office role.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == auth.RoleSuperAdmin
}

// CanActFor reports whether the actor may read or mutate userID's notifications.
func (a Actor) CanActFor(userID string) bool {
	return a.UserID != "" && (a.UserID == userID || a.IsSuperAdmin())
}
