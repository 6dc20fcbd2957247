package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CatalogService defines the interface for product browsing
type CatalogService interface {
	// ListProducts returns every product newest first with grouped variants
	ListProducts(ctx context.Context) ([]*domain.ProductWithVariants, error)
	// GetProduct returns repository.ErrProductNotFound for unknown or malformed ids
	GetProduct(ctx context.Context, id string) (*domain.ProductWithVariants, error)
}

type catalogService struct {
	products repository.ProductRepository
	variants repository.VariantRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository, variants repository.VariantRepository) CatalogService {
	return &catalogService{
		products: products,
		variants: variants,
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.ProductWithVariants, error) {
	ctx, span := tracer.Start(ctx, "catalog.ListProducts")
	defer span.End()

	products, err := s.products.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	variants, err := s.variants.FindByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	result := make([]*domain.ProductWithVariants, len(products))
	for i, p := range products {
		result[i] = &domain.ProductWithVariants{
			Product:  p,
			Variants: domain.GroupVariants(variants[p.ID]),
		}
	}

	return result, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.ProductWithVariants, error) {
	ctx, span := tracer.Start(ctx, "catalog.GetProduct")
	defer span.End()

	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrProductNotFound
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	variants, err := s.variants.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	return &domain.ProductWithVariants{
		Product:  product,
		Variants: domain.GroupVariants(variants),
	}, nil
}
