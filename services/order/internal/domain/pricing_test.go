package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(price string, qty int) LineItem {
	return LineItem{UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestComputePricing_Scenario(t *testing.T) {
	t.Parallel()

	p, err := ComputePricing([]LineItem{item("100", 2), item("50", 1)}, decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.Equal(t, "250.00", p.Subtotal.StringFixed(2))
	assert.Equal(t, "270.00", p.TotalAmount.StringFixed(2))
}

func TestComputePricing_Rounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		items    []LineItem
		charge   string
		subtotal string
		total    string
	}{
		{"half up", []LineItem{item("0.005", 1)}, "0", "0.01", "0.01"},
		{"below half", []LineItem{item("0.004", 1)}, "0", "0.00", "0.00"},
		{"thirds", []LineItem{item("0.333", 3)}, "0.001", "1.00", "1.00"},
		{"empty", nil, "5.5", "0.00", "5.50"},
		{"zero price", []LineItem{item("0", 10)}, "0", "0.00", "0.00"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := ComputePricing(tt.items, decimal.RequireFromString(tt.charge))
			require.NoError(t, err)
			assert.Equal(t, tt.subtotal, p.Subtotal.StringFixed(2))
			assert.Equal(t, tt.total, p.TotalAmount.StringFixed(2))
		})
	}
}

func TestComputePricing_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		items  []LineItem
		charge decimal.Decimal
		want   error
	}{
		{"zero quantity", []LineItem{item("1", 0)}, decimal.Zero, ErrInvalidQuantity},
		{"negative quantity", []LineItem{item("1", 1), item("1", -2)}, decimal.Zero, ErrInvalidQuantity},
		{"negative price", []LineItem{item("-0.01", 1)}, decimal.Zero, ErrInvalidPrice},
		{"negative charge", []LineItem{item("1", 1)}, decimal.NewFromInt(-1), ErrInvalidCharge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ComputePricing(tt.items, tt.charge)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestComputePricing_RandomItemSets(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 500; run++ {
		n := rng.Intn(8)
		items := make([]LineItem, n)
		manual := decimal.Zero
		for i := range items {
			cents := rng.Int63n(1_000_000)
			qty := rng.Intn(50) + 1
			price := decimal.New(cents, -2)
			items[i] = LineItem{UnitPrice: price, Quantity: qty}
			manual = manual.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}
		charge := decimal.New(rng.Int63n(100_000), -2)

		p, err := ComputePricing(items, charge)
		require.NoError(t, err)
		assert.True(t, p.Subtotal.Equal(manual.Round(2)), "run %d: %s != %s", run, p.Subtotal, manual)
		assert.True(t, p.TotalAmount.Equal(manual.Add(charge).Round(2)), "run %d", run)
		assert.True(t, p.TotalAmount.Equal(p.Subtotal.Add(charge)), "run %d", run)
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"3.0", 3, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"1.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1000001", 0, true},
		{"1e6", 1_000_000, false},
		{"2E1", 20, false},
		{"0e-200000000", 0, true},
		{"1e-2000000", 0, true},
		{"1e2000000", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"20", "20", false},
		{" 19.99 ", "19.99", false},
		{"0.005", "0.005", false},
		{"1e3", "1000", false},
		{"-1", "", true},
		{"x", "", true},
		{"", "", true},
		{"1e-2000000", "", true},
		{"0e-200000000", "", true},
		{"1e200", "", true},
		{"1234567890123456789012345", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tt.raw, ErrInvalidCharge)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCharge)
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), got.String())
		})
	}
}

func TestComputePricing_RejectsExtremeExponents(t *testing.T) {
	t.Parallel()

	_, err := ComputePricing([]LineItem{{UnitPrice: decimal.New(1, -2_000_000), Quantity: 1}}, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ComputePricing([]LineItem{item("10", 1)}, decimal.New(1, 2_000_000))
	require.ErrorIs(t, err, ErrInvalidCharge)
}

func TestMoneyEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, MoneyEqual(decimal.RequireFromString("270"), decimal.RequireFromString("270.00")))
	assert.True(t, MoneyEqual(decimal.RequireFromString("1.004"), decimal.RequireFromString("1.00")))
	assert.False(t, MoneyEqual(decimal.RequireFromString("270.01"), decimal.RequireFromString("270")))
}
