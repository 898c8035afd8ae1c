package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pocket-pos/internal/basket"
	"pocket-pos/internal/domain"
	"pocket-pos/internal/repository"

	"github.com/google/uuid"
)

// BasketView is a basket session as shown to the user
type BasketView struct {
	ID     string            `json:"id"`
	Lines  []domain.SaleLine `json:"lines"`
	Totals domain.Totals     `json:"totals"`
}

func newBasketView(id string, b basket.Basket) *BasketView {
	return &BasketView{ID: id, Lines: b.Lines(), Totals: basket.Totals(b)}
}

// SaleService defines basket sessions and checkout
type SaleService interface {
	OpenBasket() *BasketView
	Basket(id string) (*BasketView, error)
	AddToBasket(ctx context.Context, id, productID string) (*BasketView, error)
	RemoveFromBasket(id, productID string) (*BasketView, error)
	ClearBasket(id string) (*BasketView, error)
	AbandonBasket(id string) error
	Sell(ctx context.Context, id string) (*domain.Sale, error)
	Sales(ctx context.Context) ([]domain.Sale, error)
}

type saleService struct {
	products       repository.ProductRepository
	sales          repository.SaleRepository
	decrementStock bool
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// session is one open basket. Its lock is held while the basket is sold, so a
// checkout only makes that basket wait on storage.
type session struct {
	mu     sync.Mutex
	basket basket.Basket
	closed bool
	// pending is a sale whose stock is already taken but which the ledger has not
	// accepted yet; selling again records it instead of taking stock twice
	pending *domain.Sale
}

// NewSaleService creates a new instance of SaleService. When decrementStock is
// set, selling a basket takes its quantities out of the stored stock.
func NewSaleService(products repository.ProductRepository, sales repository.SaleRepository, decrementStock bool) SaleService {
	return &saleService{
		products:       products,
		sales:          sales,
		decrementStock: decrementStock,
		now:            time.Now,
		sessions:       make(map[string]*session),
	}
}

// OpenBasket starts an empty basket session
func (s *saleService) OpenBasket() *BasketView {
	id := uuid.NewString()
	b := basket.Clear()

	s.mu.Lock()
	s.sessions[id] = &session{basket: b}
	s.mu.Unlock()

	return newBasketView(id, b)
}

// lock returns the session locked; callers unlock it
func (s *saleService) lock(id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrBasketNotFound
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, ErrBasketNotFound
	}
	return sess, nil
}

func (s *saleService) Basket(id string) (*BasketView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	return newBasketView(id, sess.basket), nil
}

// AddToBasket adds one unit of the stored product at its current price
func (s *saleService) AddToBasket(ctx context.Context, id, productID string) (*BasketView, error) {
	if _, err := s.Basket(id); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add product to basket: %w", err)
	}

	return s.replace(id, func(b basket.Basket) basket.Basket {
		return basket.Add(b, *product)
	})
}

func (s *saleService) RemoveFromBasket(id, productID string) (*BasketView, error) {
	return s.replace(id, func(b basket.Basket) basket.Basket {
		return basket.Remove(b, productID)
	})
}

func (s *saleService) ClearBasket(id string) (*BasketView, error) {
	return s.replace(id, func(basket.Basket) basket.Basket {
		return basket.Clear()
	})
}

func (s *saleService) replace(id string, fn func(basket.Basket) basket.Basket) (*BasketView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.pending != nil {
		return nil, ErrSalePending
	}
	sess.basket = fn(sess.basket)
	return newBasketView(id, sess.basket), nil
}

// AbandonBasket ends the session without selling. Stock taken for a sale the
// ledger never accepted stays taken.
func (s *saleService) AbandonBasket(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrBasketNotFound
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	return nil
}

// Sell records the basket in the sales ledger and empties it; the session stays open.
// Stock is checked for every line before any of it is decremented. When the ledger
// rejects the sale the basket is frozen until a later Sell records it.
func (s *saleService) Sell(ctx context.Context, id string) (*domain.Sale, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.pending == nil {
		if sess.basket.IsEmpty() {
			return nil, ErrEmptyBasket
		}

		lines := sess.basket.Lines()
		if s.decrementStock {
			if err := s.products.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
				return takeStock(products, lines)
			}); err != nil {
				return nil, fmt.Errorf("failed to sell basket: %w", err)
			}
		}

		sess.pending = &domain.Sale{
			ID:     uuid.NewString(),
			Lines:  lines,
			Totals: basket.Totals(sess.basket),
			SoldAt: s.now().UTC(),
		}
	}

	sale := *sess.pending
	if err := s.sales.Append(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	sess.pending = nil
	sess.basket = basket.Finalize(sess.basket)
	return &sale, nil
}

func (s *saleService) Sales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// takeStock decrements every sold line, or fails without changing anything
func takeStock(products []domain.Product, lines []domain.SaleLine) ([]domain.Product, error) {
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	for _, line := range lines {
		i, ok := index[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", repository.ErrProductNotFound, line.Name)
		}
		if products[i].Quantity < line.Quantity {
			return nil, fmt.Errorf("%w: %s has %d, basket needs %d",
				ErrInsufficientStock, products[i].Name, products[i].Quantity, line.Quantity)
		}
	}

	for _, line := range lines {
		products[index[line.ProductID]].Quantity -= line.Quantity
	}
	return products, nil
}
