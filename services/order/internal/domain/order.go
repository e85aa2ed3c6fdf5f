package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusRejected       Status = "rejected"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
)

var statuses = []Status{StatusPending, StatusConfirmed, StatusRejected, StatusOutForDelivery, StatusDelivered}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentOnline, PaymentCOD:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: unknown payment method %q", ErrValidation, s)
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type LineItem struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// StoreRef and CustomerRef are display snapshots taken at checkout, not
// ownership links.
type StoreRef struct {
	ID   uuid.UUID
	Name string
}

type CustomerRef struct {
	ID      uuid.UUID
	Name    string
	Phone   string
	Address string
}

type Order struct {
	ID       uuid.UUID
	Store    StoreRef
	Customer CustomerRef

	Status           Status
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	PaymentReference string
	RejectionReason  string

	Items                []LineItem
	Subtotal             decimal.Decimal
	TransportationCharge decimal.Decimal
	TotalAmount          decimal.Decimal

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder builds a pending, unpaid order and prices it.
func NewOrder(id uuid.UUID, store StoreRef, customer CustomerRef, method PaymentMethod, items []LineItem, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, fmt.Errorf("%w: items required", ErrValidation)
	}
	if store.ID == uuid.Nil {
		return Order{}, fmt.Errorf("%w: store required", ErrValidation)
	}
	if customer.ID == uuid.Nil {
		return Order{}, fmt.Errorf("%w: customer required", ErrValidation)
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return Order{}, err
	}

	pricing, err := ComputePricing(items, decimal.Zero)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:                   id,
		Store:                store,
		Customer:             customer,
		Status:               StatusPending,
		PaymentMethod:        method,
		PaymentStatus:        PaymentUnpaid,
		Items:                append([]LineItem(nil), items...),
		TransportationCharge: decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	o.applyPricing(pricing)
	return o, nil
}

func (o Order) Clone() Order {
	o.Items = append([]LineItem(nil), o.Items...)
	return o
}

// WithTransportationCharge sets the store-assigned charge and reprices the
// order. Only pending, unpaid orders can be repriced; a paid total must
// keep matching the verified amount.
func (o Order) WithTransportationCharge(charge decimal.Decimal, now time.Time) (Order, error) {
	if o.Status != StatusPending {
		return Order{}, fmt.Errorf("%w: status is %s", ErrOrderLocked, o.Status)
	}
	if o.IsPaid() {
		return Order{}, fmt.Errorf("%w: order is already paid", ErrOrderLocked)
	}

	pricing, err := ComputePricing(o.Items, charge)
	if err != nil {
		return Order{}, err
	}

	next := o.Clone()
	next.TransportationCharge = roundMoney(charge)
	next.applyPricing(pricing)
	next.UpdatedAt = now
	return next, nil
}

// MarkPaid flips the payment status. The payment verification gate is its
// only caller.
func (o Order) MarkPaid(reference string, now time.Time) Order {
	next := o.Clone()
	next.PaymentStatus = PaymentPaid
	next.PaymentReference = reference
	next.UpdatedAt = now
	return next
}

func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

func (o *Order) applyPricing(p Pricing) {
	o.Subtotal = p.Subtotal
	o.TotalAmount = p.TotalAmount
}
