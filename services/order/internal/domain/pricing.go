package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	moneyPlaces = 2

	// bounds on client amounts, checked before any rescaling arithmetic
	minAmountExponent = -8
	maxAmountExponent = 12
	maxAmountDigits   = 24

	maxQuantity = 1_000_000
)

type Pricing struct {
	Subtotal    decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputePricing derives subtotal and total from line items and a
// transportation charge. Amounts are rounded half-up to cents.
func ComputePricing(items []LineItem, transportationCharge decimal.Decimal) (Pricing, error) {
	if transportationCharge.IsNegative() || !amountInRange(transportationCharge) {
		return Pricing{}, ErrInvalidCharge
	}

	subtotal := decimal.Zero
	for i, it := range items {
		if it.Quantity <= 0 {
			return Pricing{}, fmt.Errorf("item %d: %w", i, ErrInvalidQuantity)
		}
		if it.UnitPrice.IsNegative() || !amountInRange(it.UnitPrice) {
			return Pricing{}, fmt.Errorf("item %d: %w", i, ErrInvalidPrice)
		}
		subtotal = subtotal.Add(it.Total())
	}

	subtotal = roundMoney(subtotal)
	return Pricing{
		Subtotal:    subtotal,
		TotalAmount: roundMoney(subtotal.Add(transportationCharge)),
	}, nil
}

// ParseQuantity converts a wire quantity into an item count, rejecting
// fractions and non-positive values.
func ParseQuantity(raw string) (int, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	if d.Exponent() < minAmountExponent || d.Exponent() > maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	if !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(maxQuantity)) || !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return int(d.IntPart()), nil
}

// ParseAmount reads a client supplied money value. Malformed, negative or
// out of range input is reported as invalid.
func ParseAmount(raw string, invalid error) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", invalid, raw)
	}
	if d.IsNegative() || !amountInRange(d) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", invalid, raw)
	}
	return d, nil
}

func amountInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= minAmountExponent && exp <= maxAmountExponent && d.NumDigits() <= maxAmountDigits
}

// Round on a non-negative value is half-up.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// MoneyEqual compares two amounts at cent precision.
func MoneyEqual(a, b decimal.Decimal) bool {
	return roundMoney(a).Equal(roundMoney(b))
}
