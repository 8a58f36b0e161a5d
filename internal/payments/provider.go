package payments

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDeclined is returned by a Provider when the charge was refused.
var ErrDeclined = errors.New("payment declined")

// Charge describes a single subscription payment attempt.
type Charge struct {
	UserID uint64
	Plan   string
	Amount decimal.Decimal
}

// Receipt identifies a processed charge, approved or not.
type Receipt struct {
	Reference string
	Approved  bool
}

// Provider charges users for subscriptions. Implementations return
// ErrDeclined together with a receipt when the charge is refused; any other
// error means the provider could not be reached.
type Provider interface {
	Charge(ctx context.Context, charge Charge) (Receipt, error)
}

// SimulatedProvider approves charges at random.
type SimulatedProvider struct {
	approvalRate float64
}

// NewSimulatedProvider creates a provider that approves the given fraction of
// charges. Rates outside [0,1] are clamped.
func NewSimulatedProvider(approvalRate float64) *SimulatedProvider {
	if approvalRate < 0 {
		approvalRate = 0
	}
	if approvalRate > 1 {
		approvalRate = 1
	}
	return &SimulatedProvider{approvalRate: approvalRate}
}

func (p *SimulatedProvider) Charge(ctx context.Context, _ Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	return settle(rand.Float64() < p.approvalRate)
}

// StaticProvider returns a fixed outcome for every charge.
type StaticProvider struct {
	Approve bool
}

func (p StaticProvider) Charge(ctx context.Context, _ Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	return settle(p.Approve)
}

// ScriptedProvider replays a fixed sequence of outcomes, then repeats the
// last one. It records every charge it receives.
type ScriptedProvider struct {
	mu       sync.Mutex
	outcomes []bool
	charges  []Charge
}

func NewScriptedProvider(outcomes ...bool) *ScriptedProvider {
	return &ScriptedProvider{outcomes: outcomes}
}

func (p *ScriptedProvider) Charge(ctx context.Context, charge Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	approve := true
	if n := len(p.charges); len(p.outcomes) > 0 {
		approve = p.outcomes[min(n, len(p.outcomes)-1)]
	}
	p.charges = append(p.charges, charge)
	return settle(approve)
}

// Charges returns a copy of the charges seen so far.
func (p *ScriptedProvider) Charges() []Charge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Charge(nil), p.charges...)
}

func settle(approved bool) (Receipt, error) {
	r := Receipt{Reference: uuid.NewString(), Approved: approved}
	if !approved {
		return r, ErrDeclined
	}
	return r, nil
}
