package notification

import (
	"bytes"
	"fmt"
	"html/template"
	netmail "net/mail"

	"storefront/internal/config"

	"github.com/shopspring/decimal"
)

const (
	SubjectConfirmation = "Your Order Confirmation"
	SubjectIssue        = "Issue with Your Order"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #4CAF50;">Order Confirmed!</h1>
  <p>Dear {{.CustomerName}},</p>
  <p>Thank you for your purchase. Your order has been successfully processed.</p>
  <div style="border: 1px solid #eee; padding: 15px; margin: 15px 0;">
    <h2 style="margin-top: 0;">Order Details</h2>
    <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
    <p><strong>Product:</strong> {{.ProductName}}</p>
    <p><strong>Quantity:</strong> {{.Quantity}}</p>
    <p><strong>Total:</strong> ${{.Total}}</p>
  </div>
  <p>We will ship your order soon. You will receive a notification when it's on the way.</p>
  <p>Thank you for shopping with us!</p>
</div>`))

var issueTemplate = template.Must(template.New("issue").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #F44336;">Order Issue</h1>
  <p>Dear {{.CustomerName}},</p>
  <p>We're sorry, but there was an issue processing your order.</p>
  <p>This is usually due to payment issues. Please check your payment details and try again.</p>
  <p>If you continue to experience problems, please contact our customer support.</p>
  <p>Thank you for your understanding.</p>
</div>`))

// OrderDetails feeds the order emails
type OrderDetails struct {
	CustomerName string
	OrderNumber  string
	ProductName  string
	Quantity     int
	Total        decimal.Decimal
}

// Composer renders order emails with the configured sender identities
type Composer struct {
	from    string
	noReply string
}

func NewComposer(cfg config.MailConfig) *Composer {
	return &Composer{
		from:    (&netmail.Address{Name: cfg.FromName, Address: cfg.FromAddress}).String(),
		noReply: (&netmail.Address{Name: cfg.NoReplyName, Address: cfg.NoReplyAddress}).String(),
	}
}

// Confirmation renders the approved-order email
func (c *Composer) Confirmation(to string, d OrderDetails) (Message, error) {
	var buf bytes.Buffer
	err := confirmationTemplate.Execute(&buf, struct {
		OrderDetails
		Total string
	}{OrderDetails: d, Total: d.Total.StringFixed(2)})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render confirmation email: %w", err)
	}

	return Message{From: c.from, To: to, Subject: SubjectConfirmation, HTML: buf.String()}, nil
}

// Issue renders the email sent for declined or failed transactions
func (c *Composer) Issue(to string, d OrderDetails) (Message, error) {
	var buf bytes.Buffer
	if err := issueTemplate.Execute(&buf, d); err != nil {
		return Message{}, fmt.Errorf("failed to render issue email: %w", err)
	}

	return Message{From: c.noReply, To: to, Subject: SubjectIssue, HTML: buf.String()}, nil
}
