package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a snapshot of the product at the time the order was placed.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
}

type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PaymentResult is what the payment provider reported for the order.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type Order struct {
	ID              uuid.UUID       `json:"_id"`
	UserID          uuid.UUID       `json:"user"`
	UserName        string          `json:"userName,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	Prices
	IsPaid      bool       `json:"isPaid"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	IsDelivered bool       `json:"isDelivered"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

type CreateInput struct {
	Items           []ItemInput
	ShippingAddress ShippingAddress
	PaymentMethod   string
}

// Viewer is the authenticated caller an order is read or mutated on behalf of.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (v Viewer) canSee(o *Order) bool {
	return v.IsAdmin || v.UserID == o.UserID
}
