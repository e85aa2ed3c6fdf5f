package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T, method PaymentMethod) Order {
	t.Helper()
	o, err := NewOrder(
		uuid.New(),
		StoreRef{ID: uuid.New(), Name: "Corner Store"},
		CustomerRef{ID: uuid.New(), Name: "Ann", Phone: "+10000000000", Address: "1 Main St"},
		method,
		[]LineItem{item("100", 2), item("50", 1)},
		testNow.Add(-time.Hour),
	)
	require.NoError(t, err)
	return o
}

func TestTransition_Matrix(t *testing.T) {
	t.Parallel()

	legal := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:        true,
		{StatusPending, StatusRejected}:         true,
		{StatusConfirmed, StatusOutForDelivery}: true,
		{StatusOutForDelivery, StatusDelivered}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				t.Parallel()
				o := newTestOrder(t, PaymentCOD)
				o.Status = from

				next, err := Transition(o, to, TransitionContext{Reason: "no stock"}, testNow)
				if !legal[[2]Status{from, to}] {
					require.ErrorIs(t, err, ErrIllegalTransition)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, to, next.Status)
				assert.Equal(t, testNow, next.UpdatedAt)
				assert.Equal(t, from, o.Status, "input must not be modified")
			})
		}
	}
}

func TestTransition_DeliveredIsTerminal(t *testing.T) {
	t.Parallel()

	o := newTestOrder(t, PaymentCOD)
	o.Status = StatusDelivered
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())

	for _, to := range statuses {
		_, err := Transition(o, to, TransitionContext{Reason: "x"}, testNow)
		assert.ErrorIs(t, err, ErrIllegalTransition, "delivered -> %s", to)
	}
}

func TestTransition_RejectRequiresReason(t *testing.T) {
	t.Parallel()

	o := newTestOrder(t, PaymentCOD)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := Transition(o, StatusRejected, TransitionContext{Reason: reason}, testNow)
		require.ErrorIs(t, err, ErrMissingReason)
	}

	next, err := Transition(o, StatusRejected, TransitionContext{Reason: "  out of stock "}, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, next.Status)
	assert.Equal(t, "out of stock", next.RejectionReason)
	assert.Empty(t, o.RejectionReason)
}

func TestTransition_ConfirmPaymentRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  PaymentMethod
		paid    bool
		wantErr error
	}{
		{"cod unpaid", PaymentCOD, false, nil},
		{"cod paid", PaymentCOD, true, nil},
		{"online unpaid", PaymentOnline, false, ErrPaymentRequired},
		{"online paid", PaymentOnline, true, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := newTestOrder(t, tt.method)
			if tt.paid {
				o = o.MarkPaid("pay_1", testNow)
			}
			next, err := Transition(o, StatusConfirmed, TransitionContext{}, testNow)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusConfirmed, next.Status)
		})
	}
}

func TestTransition_Scenario(t *testing.T) {
	t.Parallel()

	o := newTestOrder(t, PaymentCOD)
	o, err := o.WithTransportationCharge(decimal.NewFromInt(20), testNow)
	require.NoError(t, err)
	assert.Equal(t, "250.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "270.00", o.TotalAmount.StringFixed(2))

	o, err = Transition(o, StatusConfirmed, TransitionContext{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	_, err = Transition(o, StatusRejected, TransitionContext{Reason: "changed mind"}, testNow)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestNextStatuses(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []Status{StatusConfirmed, StatusRejected}, NextStatuses(StatusPending))
	assert.Empty(t, NextStatuses(StatusDelivered))
	assert.True(t, CanTransition(StatusConfirmed, StatusOutForDelivery))
	assert.False(t, CanTransition(StatusConfirmed, StatusDelivered))
}
