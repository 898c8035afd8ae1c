package repository

import (
	"context"

	"pocket-pos/internal/domain"
	"pocket-pos/internal/storage"
)

// SaleRepository is the append-only ledger of sold baskets
type SaleRepository interface {
	Append(ctx context.Context, sale domain.Sale) error
	List(ctx context.Context) ([]domain.Sale, error)
}

type saleRepository struct {
	sales collection[domain.Sale]
}

func NewSaleRepository(slot storage.Slot, key string) SaleRepository {
	return &saleRepository{
		sales: collection[domain.Sale]{slot: slot, key: key},
	}
}

func (r *saleRepository) Append(ctx context.Context, sale domain.Sale) error {
	return r.sales.mutate(ctx, func(sales []domain.Sale) ([]domain.Sale, error) {
		return append(sales, sale), nil
	})
}

// List returns recorded sales, oldest first
func (r *saleRepository) List(ctx context.Context) ([]domain.Sale, error) {
	return r.sales.load(ctx)
}
