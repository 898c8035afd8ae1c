package repository

import (
	"context"

	"pocket-pos/internal/domain"
	"pocket-pos/internal/storage"
)

// ProductRepository is the durable product collection. Every mutation reads the
// whole collection, changes it and writes it back; nothing is validated here.
type ProductRepository interface {
	LoadAll(ctx context.Context) ([]domain.Product, error)
	SaveAll(ctx context.Context, products []domain.Product) error
	Append(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Mutate(ctx context.Context, fn func([]domain.Product) ([]domain.Product, error)) error
}

type productRepository struct {
	products collection[domain.Product]
}

// NewProductRepository creates a product store kept under key in slot
func NewProductRepository(slot storage.Slot, key string) ProductRepository {
	return &productRepository{
		products: collection[domain.Product]{slot: slot, key: key},
	}
}

// LoadAll returns the stored collection in stored order, or an empty slice
func (r *productRepository) LoadAll(ctx context.Context) ([]domain.Product, error) {
	return r.products.load(ctx)
}

// SaveAll replaces the stored collection
func (r *productRepository) SaveAll(ctx context.Context, products []domain.Product) error {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	return r.products.save(ctx, products)
}

// Append adds product at the end of the collection
func (r *productRepository) Append(ctx context.Context, product domain.Product) error {
	return r.products.mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		for _, p := range products {
			if p.ID == product.ID {
				return nil, ErrProductExists
			}
		}
		return append(products, product), nil
	})
}

// Update replaces the product with the same id. When no product matches, nothing
// is written and ErrProductNotFound is returned.
func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	return r.products.mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		for i := range products {
			if products[i].ID == product.ID {
				products[i] = product
				return products, nil
			}
		}
		return nil, ErrProductNotFound
	})
}

// Remove drops the product with id. Removing an absent id writes nothing.
func (r *productRepository) Remove(ctx context.Context, id string) error {
	return r.products.mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		kept := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(products) {
			return nil, errUnchanged
		}
		return kept, nil
	})
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	products, err := r.products.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

// Mutate runs fn over the loaded collection and saves its result. An error from
// fn aborts the cycle before anything is written.
func (r *productRepository) Mutate(ctx context.Context, fn func([]domain.Product) ([]domain.Product, error)) error {
	return r.products.mutate(ctx, fn)
}
