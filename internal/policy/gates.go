package policy

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
)

// Facts is everything a gate may inspect. Services fill in the fields that
// apply to the resource at hand; unset resource fields never grant access.
type Facts struct {
	Actor *models.User
	Now   time.Time

	// OwnerID is the owner of the project the request targets, or of the
	// project a task belongs to.
	OwnerID uint64
	// IsParticipant reports whether Actor is in the project's participant set.
	IsParticipant bool
	// SubjectUserID is the user a user-administration request targets.
	SubjectUserID uint64
}

// Gate is a predicate over Facts.
type Gate func(Facts) bool

// Authenticated passes for any resolved user.
func Authenticated(f Facts) bool {
	return f.Actor != nil
}

// Admin passes for admin and superuser roles.
func Admin(f Facts) bool {
	return f.Actor != nil && f.Actor.IsAdmin()
}

// Subscribed passes while the actor's subscription is active at f.Now.
func Subscribed(f Facts) bool {
	return f.Actor != nil && subscription.IsActive(f.Actor, f.Now)
}

// Owner passes when the actor owns the target project.
func Owner(f Facts) bool {
	return f.Actor != nil && f.OwnerID != 0 && f.Actor.ID == f.OwnerID
}

// Participant passes when the actor was added to the target project.
func Participant(f Facts) bool {
	return f.Actor != nil && f.IsParticipant
}

// Self passes when the actor is the targeted user.
func Self(f Facts) bool {
	return f.Actor != nil && f.SubjectUserID != 0 && f.Actor.ID == f.SubjectUserID
}

// All passes when every gate passes.
func All(gates ...Gate) Gate {
	return func(f Facts) bool {
		for _, g := range gates {
			if !g(f) {
				return false
			}
		}
		return len(gates) > 0
	}
}

// Any passes when at least one gate passes.
func Any(gates ...Gate) Gate {
	return func(f Facts) bool {
		for _, g := range gates {
			if g(f) {
				return true
			}
		}
		return false
	}
}
