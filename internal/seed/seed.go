// Package seed loads the demo sneaker catalog.
package seed

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productSeed struct {
	Name        string
	Description string
	Price       string
	Image       string
	Inventory   int
}

var catalog = []productSeed{
	{
		Name:        "Converse Chuck Taylor All Star II Hi",
		Description: "The Converse Chuck Taylor All Star II Hi gives the classic Chuck Taylor a modern upgrade with premium materials and enhanced comfort features while maintaining the iconic look you love.",
		Price:       "79.99",
		Image:       "/images/shoes.png",
		Inventory:   50,
	},
	{
		Name:        "Nike Air Max 270",
		Description: "The Nike Air Max 270 delivers visible cushioning under every step with a large Air unit and comfortable foam. It features a stretchy inner sleeve for a snug, sock-like fit while the padded heel adds extra comfort.",
		Price:       "149.99",
		Image:       "/images/nike-air-max.png",
		Inventory:   35,
	},
	{
		Name:        "Adidas Ultraboost 21",
		Description: "Feel the energy with each step in the Adidas Ultraboost 21. Featuring responsive Boost cushioning and a supportive Primeknit upper, these running shoes deliver comfort and performance for every run.",
		Price:       "179.99",
		Image:       "/images/adidas-ultraboost.png",
		Inventory:   40,
	},
	{
		Name:        "New Balance 574 Classic",
		Description: "The New Balance 574 Classic is a comfortable, casual sneaker with a suede and mesh upper and ENCAP midsole technology for support. Perfect for everyday wear with iconic style.",
		Price:       "89.99",
		Image:       "/images/new-balance.png",
		Inventory:   45,
	},
	{
		Name:        "Puma RS-X Reinvention",
		Description: "The Puma RS-X Reinvention is a bold, chunky sneaker that reimagines Puma's classic Running System technology with exaggerated design elements and vibrant color combinations.",
		Price:       "110.00",
		Image:       "/images/puma-rs.png",
		Inventory:   30,
	},
	{
		Name:        "Vans Old Skool",
		Description: "The Vans Old Skool is a classic skate shoe with the iconic side stripe, featuring a durable suede and canvas upper with padded collars for support and flexibility.",
		Price:       "65.00",
		Image:       "/images/vans-old-skool.png",
		Inventory:   55,
	},
}

var colors = []struct{ Name, Value string }{
	{"Black", "#000000"},
	{"White", "#FFFFFF"},
	{"Red", "#FF0000"},
}

var sizes = []string{"7", "8", "9", "10", "11"}

// Seed wipes the store and inserts the demo catalog in one transaction.
// Products are stamped a millisecond apart in catalog order so the first
// entry is the oldest.
func Seed(ctx context.Context, store repository.Store, now time.Time, logger *zap.Logger) error {
	return store.WithinTx(ctx, func(repos repository.Repositories) error {
		logger.Info("Cleaning existing data")

		if err := repos.Orders.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repos.Customers.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repos.Variants.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repos.Products.DeleteAll(ctx); err != nil {
			return err
		}

		logger.Info("Seeding database")

		for i, p := range catalog {
			createdAt := now.Add(time.Duration(i) * time.Millisecond)
			product := &domain.Product{
				ID:          uuid.New(),
				Name:        p.Name,
				Description: p.Description,
				Price:       decimal.RequireFromString(p.Price),
				Image:       p.Image,
				Inventory:   p.Inventory,
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			}
			if err := repos.Products.Create(ctx, product); err != nil {
				return fmt.Errorf("seed %q: %w", p.Name, err)
			}

			for _, c := range colors {
				if err := repos.Variants.Create(ctx, &domain.Variant{
					ID:        uuid.New(),
					ProductID: product.ID,
					Type:      domain.VariantTypeColor,
					Name:      c.Name,
					Value:     c.Value,
					CreatedAt: createdAt,
				}); err != nil {
					return fmt.Errorf("seed %q color %s: %w", p.Name, c.Name, err)
				}
			}

			for _, s := range sizes {
				if err := repos.Variants.Create(ctx, &domain.Variant{
					ID:        uuid.New(),
					ProductID: product.ID,
					Type:      domain.VariantTypeSize,
					Name:      "US " + s,
					Value:     s,
					CreatedAt: createdAt,
				}); err != nil {
					return fmt.Errorf("seed %q size %s: %w", p.Name, s, err)
				}
			}

			logger.Info("Created product", zap.String("product_id", product.ID.String()), zap.String("name", p.Name))
		}

		return nil
	})
}
