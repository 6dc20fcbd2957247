package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNoItems = errors.New("order must have at least one item")

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create inserts the order together with its items
	Create(ctx context.Context, order *domain.Order) error
	DeleteAll(ctx context.Context) error
}

type orderRepository struct {
	db Querier
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db Querier) OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order row and then each item row. Callers wanting
// all-or-nothing semantics run it inside Store.WithinTx.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return ErrOrderNoItems
	}

	query := `
		INSERT INTO orders (id, order_number, customer_id, subtotal, total, status, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.Subtotal,
		order.Total,
		order.Status,
		order.TransactionID,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, variant_id, quantity, price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, item := range order.Items {
		item.OrderID = order.ID

		var variantID uuid.NullUUID
		if item.VariantID != nil {
			variantID = uuid.NullUUID{UUID: *item.VariantID, Valid: true}
		}

		_, err := r.db.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			variantID,
			item.Quantity,
			item.Price,
			item.TotalPrice,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// DeleteAll removes every order; order items go with them via ON DELETE CASCADE
func (r *orderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}
