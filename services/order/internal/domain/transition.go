package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusRejected},
	StatusConfirmed:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusRejected:       {},
	StatusDelivered:      {},
}

type TransitionContext struct {
	Reason string
	// ExpectedVersion of zero skips the caller-side version check.
	ExpectedVersion int64
	// StoreID restricts the transition to orders of that store; uuid.Nil
	// means a system actor.
	StoreID uuid.UUID
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func NextStatuses(from Status) []Status {
	return append([]Status(nil), allowedTransitions[from]...)
}

func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Transition applies the order status rules and returns the next state of o.
// o itself is not modified.
func Transition(o Order, target Status, tc TransitionContext, now time.Time) (Order, error) {
	if !CanTransition(o.Status, target) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, target)
	}

	next := o.Clone()

	switch {
	case o.Status == StatusPending && target == StatusRejected:
		reason := strings.TrimSpace(tc.Reason)
		if reason == "" {
			return Order{}, ErrMissingReason
		}
		next.RejectionReason = reason

	case o.Status == StatusPending && target == StatusConfirmed:
		if o.PaymentMethod == PaymentOnline && !o.IsPaid() {
			return Order{}, ErrPaymentRequired
		}
	}

	next.Status = target
	next.UpdatedAt = now
	return next, nil
}
