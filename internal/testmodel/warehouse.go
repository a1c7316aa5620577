// Package testmodel holds a small warehouse domain used by tests and the
// sample command. It has self references, generic containers, interfaces
// and constructed values.
package testmodel

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping or billing address.
type Address struct {
	ID         uint   `json:"id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code" validate:"len=5"`
	Country    string `json:"country"     validate:"oneof=DE FR NL PL"`
	IsDefault  bool   `json:"is_default"`
}

// Customer places orders. Orders point back at their customer.
type Customer struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"         validate:"email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	Addresses []Address `json:"addresses,omitempty" validate:"min=1,max=3"`
	Orders    []Order   `json:"orders,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Product is a sellable item.
type Product struct {
	ID          uint    `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"        validate:"min=3,max=12"`
	Description string  `json:"description"`
	Price       Money   `json:"price"`
	Stock       int     `json:"stock"       validate:"min=0,max=500"`
	IsActive    bool    `json:"is_active"`
	Weight      float64 `json:"weight"`

	OrderItems []OrderItem `json:"-"`
}

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every Status, for enum registration.
var Statuses = []any{StatusPending, StatusPaid, StatusShipped, StatusCancelled}

// Order is a customer purchase.
type Order struct {
	ID          uint   `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      Status `json:"status"`
	Total       Money  `json:"total"`

	ShippingAddress Address  `json:"shipping_address"`
	BillingAddress  *Address `json:"billing_address,omitempty"`

	Customer Customer          `json:"customer"`
	Items    []OrderItem       `json:"items"`
	Notes    map[string]string `json:"notes,omitempty"`

	PlacedAt  *time.Time `json:"placed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// OrderItem is a line of an order.
type OrderItem struct {
	ID        uint  `json:"id"`
	Quantity  int   `json:"quantity"`
	UnitPrice Money `json:"unit_price"`

	Order   *Order  `json:"-"`
	Product Product `json:"product"`
}
