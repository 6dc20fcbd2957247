package repository

import (
	"context"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// VariantRepository defines the interface for variant data access
type VariantRepository interface {
	Create(ctx context.Context, variant *domain.Variant) error
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error)
	// FindByProductIDs loads the variants of several products in one query, keyed by product
	FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.Variant, error)
	DeleteAll(ctx context.Context) error
}

type variantRepository struct {
	db Querier
}

// NewVariantRepository creates a new instance of VariantRepository
func NewVariantRepository(db Querier) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(ctx context.Context, variant *domain.Variant) error {
	query := `
		INSERT INTO variants (id, product_id, type, name, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.ProductID,
		variant.Type,
		variant.Name,
		variant.Value,
		variant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}

	return nil
}

func (r *variantRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	byProduct, err := r.FindByProductIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	variants := byProduct[productID]
	if variants == nil {
		variants = []*domain.Variant{}
	}
	return variants, nil
}

func (r *variantRepository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.Variant, error) {
	result := make(map[uuid.UUID][]*domain.Variant, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, product_id, type, name, value, created_at
		FROM variants
		WHERE product_id = ANY($1::uuid[])
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		variant := &domain.Variant{}
		err := rows.Scan(
			&variant.ID,
			&variant.ProductID,
			&variant.Type,
			&variant.Name,
			&variant.Value,
			&variant.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		result[variant.ProductID] = append(result[variant.ProductID], variant)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return result, nil
}

func (r *variantRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM variants`); err != nil {
		return fmt.Errorf("failed to delete variants: %w", err)
	}
	return nil
}
