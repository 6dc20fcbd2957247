package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the simulated transaction outcome recorded on an order
type OrderStatus string

const (
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusDeclined OrderStatus = "declined"
	OrderStatusFailed   OrderStatus = "failed"
)

// Customer holds the contact and shipping details captured at checkout.
// A new customer row is written for every order; there is no dedup by email.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	ZipCode   string    `json:"zipCode" db:"zip_code"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Order represents a placed order and its line items
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderNumber   string          `json:"orderNumber" db:"order_number"`
	CustomerID    uuid.UUID       `json:"customerId" db:"customer_id"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Status        OrderStatus     `json:"status" db:"status"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	Items         []*OrderItem    `json:"items"`
}

// OrderItem is a single order line
type OrderItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID  uuid.UUID       `json:"productId" db:"product_id"`
	VariantID  *uuid.UUID      `json:"variantId" db:"variant_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	Price      decimal.Decimal `json:"price" db:"price"`
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal returns price × quantity
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
