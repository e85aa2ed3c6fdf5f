package repo

import (
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

func toDomain(m models.Order) domain.Order {
	items := make([]domain.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	return domain.Order{
		ID:    m.ID,
		Store: domain.StoreRef{ID: m.StoreID, Name: m.StoreName},
		Customer: domain.CustomerRef{
			ID:      m.UserID,
			Name:    m.CustomerName,
			Phone:   m.CustomerPhone,
			Address: m.DeliveryAddress,
		},
		Status:               domain.Status(m.Status),
		PaymentMethod:        domain.PaymentMethod(m.PaymentMethod),
		PaymentStatus:        domain.PaymentStatus(m.PaymentStatus),
		PaymentReference:     m.PaymentReference,
		RejectionReason:      m.RejectionReason,
		Items:                items,
		Subtotal:             m.Subtotal,
		TransportationCharge: m.TransportationCharge,
		TotalAmount:          m.TotalAmount,
		Version:              m.Version,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

func fromDomain(o domain.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = models.OrderItem{
			OrderID:   o.ID,
			Position:  i,
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	return models.Order{
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
		Subtotal:             o.Subtotal,
		TransportationCharge: o.TransportationCharge,
		TotalAmount:          o.TotalAmount,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Items:                items,
	}
}

// mutableColumns are the order columns a compare-and-swap may rewrite.
// Items and customer/store snapshots are fixed at checkout.
func mutableColumns(o domain.Order) map[string]any {
	return map[string]any{
		"status":                string(o.Status),
		"payment_status":        string(o.PaymentStatus),
		"payment_reference":     o.PaymentReference,
		"rejection_reason":      o.RejectionReason,
		"subtotal":              o.Subtotal,
		"transportation_charge": o.TransportationCharge,
		"total_amount":          o.TotalAmount,
		"updated_at":            o.UpdatedAt,
	}
}
