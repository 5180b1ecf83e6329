package models

import "time"

// Category groups catalog products. Categories are loaded at seed time and
// never mutated by clients.
type Category struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Products []Product `json:"products"`
}

// Product represents a catalog item
type Product struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Price       float64 `db:"price" json:"price"`
	Description string  `db:"description" json:"description"`
	CategoryID  int64   `db:"category_id" json:"categoryId"`
}

// UserDetails holds the contact fields submitted with an order
type UserDetails struct {
	FirstName string `json:"firstName" validate:"required,mintrim=2"`
	LastName  string `json:"lastName" validate:"required,mintrim=2"`
	Email     string `json:"email" validate:"required,email"`
}

// Order represents a persisted customer order
type Order struct {
	ID             string      `json:"id"`
	UserDetails    UserDetails `json:"userDetails"`
	Items          []OrderItem `json:"selectedProducts"`
	TotalAmount    float64     `json:"totalAmount"`
	OrderDate      time.Time   `json:"orderDate"`
	Status         string      `json:"status"`
	IdempotencyKey string      `json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// OrderItem represents one line of a persisted order. ProductID keeps the
// client-side id, which is either a catalog product id or a synthetic
// "custom-" id for user-defined entries.
type OrderItem struct {
	ID          int64   `db:"id" json:"-"`
	OrderID     string  `db:"order_id" json:"-"`
	ProductID   string  `db:"product_id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Category    string  `db:"category" json:"category"`
	Price       float64 `db:"price" json:"price"`
	Description string  `db:"description" json:"description,omitempty"`
	Quantity    int     `db:"quantity" json:"quantity"`
	IsCustom    bool    `db:"is_custom" json:"isCustom,omitempty"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

// OrderSubmission is the payload accepted by POST /api/orders. TotalAmount is
// accepted for wire compatibility but never trusted; the server recomputes
// the total from the line items.
type OrderSubmission struct {
	UserDetails      UserDetails     `json:"userDetails"`
	SelectedProducts []SubmittedItem `json:"selectedProducts" validate:"required,min=1,dive"`
	TotalAmount      float64         `json:"totalAmount,omitempty"`
}

// SubmittedItem is one line item of an order submission
type SubmittedItem struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	IsCustom    bool    `json:"isCustom,omitempty"`
}
