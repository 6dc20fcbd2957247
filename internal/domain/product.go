package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices are encoded as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// VariantType tags a variant as a color or a size
type VariantType string

const (
	VariantTypeColor VariantType = "color"
	VariantTypeSize  VariantType = "size"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
	Inventory   int             `json:"inventory" db:"inventory"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Variant is a color or size option of a product. Variants are never mutated after creation.
type Variant struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ProductID uuid.UUID   `json:"productId" db:"product_id"`
	Type      VariantType `json:"type" db:"type"`
	Name      string      `json:"name" db:"name"`
	Value     string      `json:"value" db:"value"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// VariantGroups partitions a product's variants by type
type VariantGroups struct {
	Colors []*Variant `json:"colors"`
	Sizes  []*Variant `json:"sizes"`
}

// ProductWithVariants is the read projection served by the catalog endpoints
type ProductWithVariants struct {
	*Product
	Variants VariantGroups `json:"variants"`
}

// GroupVariants splits variants into colors and sizes, keeping their order.
// Variants with an unknown type are dropped.
func GroupVariants(variants []*Variant) VariantGroups {
	groups := VariantGroups{
		Colors: []*Variant{},
		Sizes:  []*Variant{},
	}
	for _, v := range variants {
		switch v.Type {
		case VariantTypeColor:
			groups.Colors = append(groups.Colors, v)
		case VariantTypeSize:
			groups.Sizes = append(groups.Sizes, v)
		}
	}
	return groups
}
