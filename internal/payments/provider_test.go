package payments

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedProvider_Extremes(t *testing.T) {
	ctx := context.Background()
	charge := Charge{UserID: 1, Plan: "monthly", Amount: decimal.RequireFromString("9.99")}

	always := NewSimulatedProvider(1)
	for i := 0; i < 20; i++ {
		r, err := always.Charge(ctx, charge)
		require.NoError(t, err)
		assert.True(t, r.Approved)
		assert.NotEmpty(t, r.Reference)
	}

	never := NewSimulatedProvider(-3)
	for i := 0; i < 20; i++ {
		r, err := never.Charge(ctx, charge)
		assert.ErrorIs(t, err, ErrDeclined)
		assert.False(t, r.Approved)
		assert.NotEmpty(t, r.Reference)
	}
}

func TestStaticProvider(t *testing.T) {
	_, err := StaticProvider{Approve: true}.Charge(context.Background(), Charge{})
	assert.NoError(t, err)

	_, err = StaticProvider{}.Charge(context.Background(), Charge{})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestScriptedProvider(t *testing.T) {
	p := NewScriptedProvider(false, true)
	ctx := context.Background()

	_, err := p.Charge(ctx, Charge{UserID: 1})
	assert.ErrorIs(t, err, ErrDeclined)
	_, err = p.Charge(ctx, Charge{UserID: 2})
	assert.NoError(t, err)
	_, err = p.Charge(ctx, Charge{UserID: 3})
	assert.NoError(t, err)

	charges := p.Charges()
	require.Len(t, charges, 3)
	assert.Equal(t, uint64(2), charges[1].UserID)
}

func TestProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedProvider(1).Charge(ctx, Charge{})
	assert.ErrorIs(t, err, context.Canceled)
}
