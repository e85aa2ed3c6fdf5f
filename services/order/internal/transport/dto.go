package transport

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/google/uuid"
)

// Quantities are decoded as json.Number so that fractional values reach
// domain.ParseQuantity instead of failing inside the JSON decoder.
type CreateOrderItem struct {
	ProductID uuid.UUID   `json:"product_id"`
	Quantity  json.Number `json:"quantity"`
}

type CreateOrderRequest struct {
	Items            []CreateOrderItem `json:"items"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentReference string            `json:"payment_reference,omitempty"`
	CustomerName     string            `json:"customer_name"`
	CustomerPhone    string            `json:"customer_phone"`
	DeliveryAddress  string            `json:"delivery_address"`
}

type PricingItem struct {
	UnitPrice string      `json:"unit_price"`
	Quantity  json.Number `json:"quantity"`
}

type PricingRequest struct {
	Items                []PricingItem `json:"items"`
	TransportationCharge string        `json:"transportation_charge"`
}

type PricingResponse struct {
	Subtotal    string `json:"subtotal"`
	TotalAmount string `json:"total_amount"`
}

type TransitionRequest struct {
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
}

type TransportationRequest struct {
	Charge string `json:"transportation_charge"`
}

type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

type Order struct {
	ID                   uuid.UUID   `json:"id"`
	StoreID              uuid.UUID   `json:"store_id"`
	StoreName            string      `json:"store_name"`
	UserID               uuid.UUID   `json:"user_id"`
	CustomerName         string      `json:"customer_name"`
	CustomerPhone        string      `json:"customer_phone"`
	DeliveryAddress      string      `json:"delivery_address"`
	Status               string      `json:"status"`
	PaymentMethod        string      `json:"payment_method"`
	PaymentStatus        string      `json:"payment_status"`
	PaymentReference     string      `json:"payment_reference,omitempty"`
	RejectionReason      string      `json:"rejection_reason,omitempty"`
	Items                []OrderItem `json:"items"`
	Subtotal             string      `json:"subtotal"`
	TransportationCharge string      `json:"transportation_charge"`
	TotalAmount          string      `json:"total_amount"`
	NextStatuses         []string    `json:"next_statuses"`
	Version              int64       `json:"version"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

func FromDomain(o domain.Order) Order {
	items := make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			LineTotal: it.Total().StringFixed(2),
		}
	}

	next := domain.NextStatuses(o.Status)
	nextNames := make([]string, len(next))
	for i, s := range next {
		nextNames[i] = string(s)
	}

	return Order{
		ID:                   o.ID,
		StoreID:              o.Store.ID,
		StoreName:            o.Store.Name,
		UserID:               o.Customer.ID,
		CustomerName:         o.Customer.Name,
		CustomerPhone:        o.Customer.Phone,
		DeliveryAddress:      o.Customer.Address,
		Status:               string(o.Status),
		PaymentMethod:        string(o.PaymentMethod),
		PaymentStatus:        string(o.PaymentStatus),
		PaymentReference:     o.PaymentReference,
		RejectionReason:      o.RejectionReason,
		Items:                items,
		Subtotal:             o.Subtotal.StringFixed(2),
		TransportationCharge: o.TransportationCharge.StringFixed(2),
		TotalAmount:          o.TotalAmount.StringFixed(2),
		NextStatuses:         nextNames,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func FromDomainList(orders []domain.Order) []Order {
	out := make([]Order, len(orders))
	for i := range orders {
		out[i] = FromDomain(orders[i])
	}
	return out
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// NewPageMeta describes the window a list query actually served.
func NewPageMeta(offset, limit int, total int64) PageMeta {
	page := offset/limit + 1
	return PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}
