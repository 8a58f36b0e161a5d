package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

type State string

const (
	StateUnsubscribed State = "unsubscribed"
	StateActive       State = "active"
	StateExpired      State = "expired"
)

var (
	ErrAlreadyActive = errors.New("you already have an active subscription")
	ErrUnknownPlan   = errors.New("invalid subscription plan")
	ErrNotSubscribed = errors.New("you are not subscribed")
)

// StateOf derives the subscription state of u at now. A subscribed user with
// no end date holds a perpetual grant.
func StateOf(u *models.User, now time.Time) State {
	if !u.IsSubscribed {
		return StateUnsubscribed
	}
	if u.SubscriptionEndsAt == nil || u.SubscriptionEndsAt.After(now) {
		return StateActive
	}
	return StateExpired
}

// IsActive reports whether u currently holds paid access.
func IsActive(u *models.User, now time.Time) bool {
	return StateOf(u, now) == StateActive
}

// Status is the read-side view of a user's subscription.
type Status struct {
	IsSubscribed bool       `json:"is_subscribed"`
	EndsAt       *time.Time `json:"subscription_end_date"`
	State        State      `json:"status"`
}

// Machine applies subscription transitions to user records. It holds no
// state of its own beyond the plan table and clock.
type Machine struct {
	catalog Catalog
	now     func() time.Time
}

// NewMachine creates a state machine over catalog. A nil now uses time.Now.
func NewMachine(catalog Catalog, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{catalog: catalog, now: now}
}

// Catalog returns the plan table.
func (m *Machine) Catalog() Catalog {
	return m.catalog
}

// Now returns the machine's current time.
func (m *Machine) Now() time.Time {
	return m.now()
}

// PrepareSubscribe validates a subscribe request and returns the plan to charge.
func (m *Machine) PrepareSubscribe(u *models.User, planName string) (Plan, error) {
	if IsActive(u, m.now()) {
		return Plan{}, ErrAlreadyActive
	}
	plan, ok := m.catalog.Lookup(planName)
	if !ok {
		return Plan{}, fmt.Errorf("%w: available plans are %s", ErrUnknownPlan, strings.Join(m.catalog.Names(), ", "))
	}
	return plan, nil
}

// Activate moves u to the active state for plan, starting now. Callers must
// only invoke it after payment succeeded.
func (m *Machine) Activate(u *models.User, plan Plan) {
	endsAt := m.now().UTC().Add(plan.Duration())
	u.IsSubscribed = true
	u.SubscriptionEndsAt = &endsAt
}

// Unsubscribe clears the subscription of u.
func (m *Machine) Unsubscribe(u *models.User) error {
	if !u.IsSubscribed {
		return ErrNotSubscribed
	}
	u.IsSubscribed = false
	u.SubscriptionEndsAt = nil
	return nil
}

// Status reports the subscription of u as of now.
func (m *Machine) Status(u *models.User) Status {
	return Status{
		IsSubscribed: u.IsSubscribed,
		EndsAt:       u.SubscriptionEndsAt,
		State:        StateOf(u, m.now()),
	}
}
