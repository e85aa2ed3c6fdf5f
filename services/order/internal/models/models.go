package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name      string    `gorm:"not null"              json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	StoreID     uuid.UUID       `gorm:"type:uuid;index;not null"          json:"store_id"`
	Name        string          `gorm:"not null"                          json:"name"`
	Description string          `gorm:"not null;default:''"               json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock>=0" json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Order timestamps come from the service clock, so gorm's auto timestamps
// are switched off.
type Order struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID         uuid.UUID `gorm:"type:uuid;index;not null"`
	StoreName       string    `gorm:"not null;default:''"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerName    string    `gorm:"not null;default:''"`
	CustomerPhone   string    `gorm:"not null;default:''"`
	DeliveryAddress string    `gorm:"not null;default:''"`

	Status           string `gorm:"size:32;index;not null"`
	PaymentMethod    string `gorm:"size:16;not null"`
	PaymentStatus    string `gorm:"size:16;not null"`
	PaymentReference string `gorm:"size:128;index"`
	RejectionReason  string

	Subtotal             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TransportationCharge decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Position  int       `gorm:"not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Name      string    `gorm:"not null"`
	Image     string
	Quantity  int             `gorm:"not null;check:quantity>0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func All() []any {
	return []any{&Store{}, &Product{}, &Order{}, &OrderItem{}}
}
