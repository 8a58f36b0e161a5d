package subscription

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a named subscription tier.
type Plan struct {
	Name         string          `json:"name"`
	DurationDays int             `json:"duration_days"`
	Price        decimal.Decimal `json:"price"`
}

// Duration returns the length of the paid window.
func (p Plan) Duration() time.Duration {
	return time.Duration(p.DurationDays) * 24 * time.Hour
}

// Catalog is an immutable plan table keyed by plan tag.
type Catalog struct {
	plans map[string]Plan
}

// NewCatalog builds a catalog from plans. Later duplicates replace earlier ones.
func NewCatalog(plans ...Plan) Catalog {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.Name] = p
	}
	return Catalog{plans: m}
}

// DefaultCatalog returns the monthly and yearly plans.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Plan{Name: "monthly", DurationDays: 30, Price: decimal.RequireFromString("9.99")},
		Plan{Name: "yearly", DurationDays: 365, Price: decimal.RequireFromString("99.99")},
	)
}

// Lookup returns the plan with the given tag.
func (c Catalog) Lookup(name string) (Plan, bool) {
	p, ok := c.plans[name]
	return p, ok
}

// List returns all plans ordered by duration.
func (c Catalog) List() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DurationDays == out[j].DurationDays {
			return out[i].Name < out[j].Name
		}
		return out[i].DurationDays < out[j].DurationDays
	})
	return out
}

// Names returns the plan tags ordered by duration.
func (c Catalog) Names() []string {
	plans := c.List()
	names := make([]string, len(plans))
	for i, p := range plans {
		names[i] = p.Name
	}
	return names
}
