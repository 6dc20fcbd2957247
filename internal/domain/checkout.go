package domain

import "github.com/shopspring/decimal"

// CheckoutRequest is the body of POST /orders. Only the presence of the three
// sections is enforced server-side; field level checks belong to the checkout form.
type CheckoutRequest struct {
	Customer *CustomerInput `json:"customer" validate:"required"`
	Payment  *PaymentInput  `json:"payment" validate:"required"`
	Order    *OrderInput    `json:"order" validate:"required"`
}

// CustomerInput carries contact and shipping fields
type CustomerInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

// PaymentInput carries the simulated card details
type PaymentInput struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

// OrderInput is the single-line order summary shown on the checkout page
type OrderInput struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	ColorName string          `json:"colorName"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

// ToCustomer maps the checkout contact section onto a Customer record
func (c *CustomerInput) ToCustomer() *Customer {
	return &Customer{
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
		City:     c.City,
		State:    c.State,
		ZipCode:  c.ZipCode,
	}
}
