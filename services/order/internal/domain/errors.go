package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation")
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	ErrInvalidPrice    = fmt.Errorf("%w: unit price must not be negative", ErrValidation)
	ErrInvalidCharge   = fmt.Errorf("%w: transportation charge must not be negative", ErrValidation)

	ErrIllegalTransition = errors.New("illegal status transition")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrPaymentRequired   = errors.New("online order must be paid before confirmation")
	ErrOrderLocked       = errors.New("order is no longer pending")

	ErrOrderNotFound          = errors.New("order not found")
	ErrAmountMismatch         = errors.New("payment amount does not match order total")
	ErrPaymentInvalid         = errors.New("payment reference is not valid")
	ErrConcurrentModification = errors.New("order was modified concurrently, refetch and retry")
	ErrOutOfStock             = errors.New("product is out of stock")
)
