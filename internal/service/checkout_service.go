package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/notification"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

var (
	tracer = otel.Tracer("storefront/internal/service")
	meter  = otel.Meter("storefront/internal/service")
)

// Defaults for a product fabricated from the checkout payload when the
// catalog has nothing to offer.
const (
	DefaultProductName        = "Demo Product"
	DefaultProductDescription = "This is a demo product for simulation"
	DefaultProductImage       = "/images/shoes.png"
	DefaultProductInventory   = 100
	DefaultColorValue         = "#000000"
)

var DefaultProductPrice = decimal.RequireFromString("79.99")

var ErrMissingFields = errors.New("missing required fields")

// Fulfillment reports what happened to the order graph
type Fulfillment string

const (
	FulfillmentRecorded                   Fulfillment = "recorded"
	FulfillmentRecordedInventoryUnchanged Fulfillment = "recorded_inventory_unchanged"
	FulfillmentNotRecorded                Fulfillment = "not_recorded"
	FulfillmentSkipped                    Fulfillment = "skipped"
)

// NotificationStatus reports whether the customer email went out
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// EventStatus reports whether the order event reached the broker
type EventStatus string

const (
	EventPublished EventStatus = "published"
	EventFailed    EventStatus = "failed"
	EventDisabled  EventStatus = "disabled"
)

// PlacementResult is everything PlaceOrder did for one submission. Outcome
// alone drives the HTTP status; the other fields say which downstream steps
// succeeded.
type PlacementResult struct {
	Outcome        domain.OrderStatus
	OrderNumber    string
	Fulfillment    Fulfillment
	Notification   NotificationStatus
	Event          EventStatus
	OrderID        *uuid.UUID
	ProductID      *uuid.UUID
	PersistenceErr error
	NotifyErr      error
	EventErr       error
}

// CheckoutService defines the interface for order placement
type CheckoutService interface {
	// PlaceOrder classifies the submission, records approved orders and
	// notifies the customer. The error is only non-nil for malformed input.
	PlaceOrder(ctx context.Context, req *domain.CheckoutRequest) (*PlacementResult, error)
}

type checkoutService struct {
	store     repository.Store
	sender    notification.Sender
	composer  *notification.Composer
	publisher events.Publisher
	numbers   *OrderNumberGenerator
	logger    *zap.Logger
	now       func() time.Time

	placements metric.Int64Counter
}

// NewCheckoutService creates a new instance of CheckoutService. A nil
// publisher disables order events.
func NewCheckoutService(
	store repository.Store,
	sender notification.Sender,
	composer *notification.Composer,
	publisher events.Publisher,
	logger *zap.Logger,
) CheckoutService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	placements, err := meter.Int64Counter("storefront.checkout.placements",
		metric.WithDescription("Checkout submissions by outcome and downstream result"),
	)
	if err != nil {
		logger.Warn("Failed to create placements counter", zap.Error(err))
		placements = noop.Int64Counter{}
	}

	return &checkoutService{
		store:      store,
		sender:     sender,
		composer:   composer,
		publisher:  publisher,
		numbers:    NewOrderNumberGenerator(),
		logger:     logger,
		now:        time.Now,
		placements: placements,
	}
}

func (s *checkoutService) PlaceOrder(ctx context.Context, req *domain.CheckoutRequest) (*PlacementResult, error) {
	if req == nil || req.Customer == nil || req.Payment == nil || req.Order == nil {
		return nil, ErrMissingFields
	}

	// The charge is already decided once we get here, so recording and
	// notifying must not stop when the client goes away.
	ctx, span := tracer.Start(context.WithoutCancel(ctx), "checkout.PlaceOrder")
	defer span.End()

	now := s.now().UTC()
	result := &PlacementResult{
		Outcome:     Classify(req.Payment.CardNumber),
		OrderNumber: s.numbers.Next(),
		Fulfillment: FulfillmentSkipped,
	}
	span.SetAttributes(
		attribute.String("order.number", result.OrderNumber),
		attribute.String("order.status", string(result.Outcome)),
	)

	if result.Outcome == domain.OrderStatusApproved {
		s.record(ctx, req, result, now)
	}

	s.notify(ctx, req, result)
	s.publish(ctx, req, result, now)

	span.SetAttributes(attribute.String("order.fulfillment", string(result.Fulfillment)))
	s.placements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", string(result.Outcome)),
		attribute.String("fulfillment", string(result.Fulfillment)),
		attribute.String("notification", string(result.Notification)),
		attribute.String("event", string(result.Event)),
	))
	s.logger.Info("Order placed",
		zap.String("order_number", result.OrderNumber),
		zap.String("status", string(result.Outcome)),
		zap.String("fulfillment", string(result.Fulfillment)),
		zap.String("notification", string(result.Notification)),
		zap.String("event", string(result.Event)),
	)

	return result, nil
}

// record writes customer, order, item and the inventory decrement in one
// transaction. Failures are captured on the result instead of returned.
func (s *checkoutService) record(ctx context.Context, req *domain.CheckoutRequest, result *PlacementResult, now time.Time) {
	ctx, span := tracer.Start(ctx, "checkout.record")
	defer span.End()

	var (
		order          *domain.Order
		product        *domain.Product
		inventoryShort bool
	)

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		product, err = s.resolveProduct(ctx, repos, req.Order, now)
		if err != nil {
			return fmt.Errorf("failed to resolve product: %w", err)
		}

		customer := req.Customer.ToCustomer()
		customer.ID = uuid.New()
		customer.CreatedAt = now
		if err := repos.Customers.Create(ctx, customer); err != nil {
			return err
		}

		order = buildOrder(result, customer, product, req.Order, now)
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}

		_, err = repos.Products.DecrementInventory(ctx, product.ID, req.Order.Quantity)
		if errors.Is(err, repository.ErrInsufficientInventory) {
			inventoryShort = true
			return nil
		}
		return err
	})
	if err != nil {
		result.Fulfillment = FulfillmentNotRecorded
		result.PersistenceErr = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "order not recorded")
		s.logger.Error("Failed to record order",
			zap.String("order_number", result.OrderNumber),
			zap.Error(err),
		)
		return
	}

	result.OrderID = &order.ID
	result.ProductID = &product.ID
	result.Fulfillment = FulfillmentRecorded
	if inventoryShort {
		result.Fulfillment = FulfillmentRecordedInventoryUnchanged
		s.logger.Warn("Order recorded without inventory change",
			zap.String("order_number", result.OrderNumber),
			zap.String("product_id", product.ID.String()),
			zap.Int("quantity", req.Order.Quantity),
			zap.Int("inventory", product.Inventory),
		)
	}
}

// resolveProduct tries the submitted product id, then the oldest catalog
// product, and finally fabricates one from the payload.
func (s *checkoutService) resolveProduct(ctx context.Context, repos repository.Repositories, in *domain.OrderInput, now time.Time) (*domain.Product, error) {
	if id, err := uuid.Parse(in.ProductID); err == nil {
		product, err := repos.Products.FindByID(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
	}

	product, err := repos.Products.FindFirst(ctx)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, err
	}

	return s.fabricateProduct(ctx, repos, in, now)
}

func (s *checkoutService) fabricateProduct(ctx context.Context, repos repository.Repositories, in *domain.OrderInput, now time.Time) (*domain.Product, error) {
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: DefaultProductDescription,
		Price:       in.Price,
		Image:       in.Image,
		Inventory:   DefaultProductInventory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Name == "" {
		product.Name = DefaultProductName
	}
	if product.Price.IsZero() {
		product.Price = DefaultProductPrice
	}
	if product.Image == "" {
		product.Image = DefaultProductImage
	}

	if err := repos.Products.Create(ctx, product); err != nil {
		return nil, err
	}

	if in.ColorName != "" {
		variant := &domain.Variant{
			ID:        uuid.New(),
			ProductID: product.ID,
			Type:      domain.VariantTypeColor,
			Name:      in.ColorName,
			Value:     DefaultColorValue,
			CreatedAt: now,
		}
		err := repos.Optional(ctx, "fabricated_variant", func(repos repository.Repositories) error {
			return repos.Variants.Create(ctx, variant)
		})
		if err != nil {
			s.logger.Warn("Failed to create color variant for fabricated product",
				zap.String("product_id", product.ID.String()),
				zap.String("color", in.ColorName),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Fabricated product for empty catalog",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	return product, nil
}

func buildOrder(result *PlacementResult, customer *domain.Customer, product *domain.Product, in *domain.OrderInput, now time.Time) *domain.Order {
	price := in.Price
	if price.IsZero() {
		price = product.Price
	}

	return &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   result.OrderNumber,
		CustomerID:    customer.ID,
		Subtotal:      in.Subtotal,
		Total:         in.Total,
		Status:        result.Outcome,
		TransactionID: NewTransactionID(now),
		CreatedAt:     now,
		Items: []*domain.OrderItem{{
			ID:         uuid.New(),
			ProductID:  product.ID,
			Quantity:   in.Quantity,
			Price:      price,
			TotalPrice: domain.LineTotal(price, in.Quantity),
			CreatedAt:  now,
		}},
	}
}

func (s *checkoutService) notify(ctx context.Context, req *domain.CheckoutRequest, result *PlacementResult) {
	ctx, span := tracer.Start(ctx, "checkout.notify")
	defer span.End()

	details := notification.OrderDetails{
		CustomerName: req.Customer.FullName,
		OrderNumber:  result.OrderNumber,
		ProductName:  req.Order.Name,
		Quantity:     req.Order.Quantity,
		Total:        req.Order.Total,
	}

	var (
		msg notification.Message
		err error
	)
	if result.Outcome == domain.OrderStatusApproved {
		msg, err = s.composer.Confirmation(req.Customer.Email, details)
	} else {
		msg, err = s.composer.Issue(req.Customer.Email, details)
	}
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}

	if err != nil {
		result.Notification = NotificationFailed
		result.NotifyErr = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification failed")
		s.logger.Error("Failed to send order email",
			zap.String("order_number", result.OrderNumber),
			zap.String("to", req.Customer.Email),
			zap.Error(err),
		)
		return
	}

	result.Notification = NotificationSent
}

func (s *checkoutService) publish(ctx context.Context, req *domain.CheckoutRequest, result *PlacementResult, now time.Time) {
	if _, disabled := s.publisher.(events.NoopPublisher); disabled {
		result.Event = EventDisabled
		return
	}

	ctx, span := tracer.Start(ctx, "checkout.publish")
	defer span.End()

	err := s.publisher.Publish(ctx, events.OrderPlacedEvent{
		EventID:       uuid.New(),
		OrderNumber:   result.OrderNumber,
		Status:        result.Outcome,
		Fulfillment:   string(result.Fulfillment),
		CustomerEmail: req.Customer.Email,
		ProductID:     result.ProductID,
		Quantity:      req.Order.Quantity,
		Total:         req.Order.Total,
		Timestamp:     now,
	})
	if err != nil {
		result.Event = EventFailed
		result.EventErr = err
		span.RecordError(err)
		s.logger.Error("Failed to publish order event",
			zap.String("order_number", result.OrderNumber),
			zap.Error(err),
		)
		return
	}

	result.Event = EventPublished
}
