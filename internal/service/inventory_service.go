package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"pocket-pos/internal/domain"
	"pocket-pos/internal/repository"
	"pocket-pos/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ProductForm carries the raw text a user typed into the product form
type ProductForm struct {
	Name     string  `json:"name" validate:"required"`
	Price    string  `json:"price" validate:"required,numeric"`
	Quantity string  `json:"quantity" validate:"required,number"`
	Category string  `json:"category"`
	Details  string  `json:"details"`
	Image    *string `json:"image"`
}

func (f ProductForm) trimmed() ProductForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Price = strings.TrimSpace(f.Price)
	f.Quantity = strings.TrimSpace(f.Quantity)
	f.Category = strings.TrimSpace(f.Category)
	f.Details = strings.TrimSpace(f.Details)
	if f.Image != nil {
		image := strings.TrimSpace(*f.Image)
		f.Image = &image
	}
	return f
}

type productValues struct {
	price    decimal.Decimal
	quantity int
}

// parse validates the form and converts its numeric text
func (f ProductForm) parse() (productValues, error) {
	if err := validation.Struct(f); err != nil {
		return productValues{}, newValidationError(err)
	}
	// an empty image clears the picture, anything else must be a URI
	if f.Image != nil && *f.Image != "" {
		if err := validation.Var(*f.Image, "uri"); err != nil {
			return productValues{}, &ValidationError{Fields: []FieldError{{Field: "image", Message: "Invalid URI"}}}
		}
	}

	var fields []FieldError
	price, err := decimal.NewFromString(f.Price)
	switch {
	case err != nil:
		fields = append(fields, FieldError{Field: "price", Message: "Must be a number"})
	case price.IsNegative():
		fields = append(fields, FieldError{Field: "price", Message: "Value must be greater than or equal to 0"})
	}

	quantity, err := strconv.Atoi(f.Quantity)
	if err != nil || quantity < 0 {
		fields = append(fields, FieldError{Field: "quantity", Message: "Must be a whole number"})
	}

	if len(fields) > 0 {
		return productValues{}, &ValidationError{Fields: fields}
	}
	return productValues{price: price, quantity: quantity}, nil
}

// Dashboard summarizes the inventory and today's takings
type Dashboard struct {
	Products     int             `json:"products"`
	StockUnits   int             `json:"stockUnits"`
	SalesToday   int             `json:"salesToday"`
	RevenueToday decimal.Decimal `json:"revenueToday"`
}

// InventoryService defines the product management operations
type InventoryService interface {
	CreateProduct(ctx context.Context, form ProductForm) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, form ProductForm) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, query string) ([]domain.Product, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type inventoryService struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	now      func() time.Time
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(products repository.ProductRepository, sales repository.SaleRepository) InventoryService {
	return &inventoryService{
		products: products,
		sales:    sales,
		now:      time.Now,
	}
}

// CreateProduct validates the form and appends a new product with a fresh id
func (s *inventoryService) CreateProduct(ctx context.Context, form ProductForm) (*domain.Product, error) {
	form = form.trimmed()
	values, err := form.parse()
	if err != nil {
		return nil, err
	}

	product := domain.Product{
		ID:        uuid.NewString(),
		Name:      form.Name,
		Price:     values.price,
		Quantity:  values.quantity,
		Category:  form.Category,
		Details:   form.Details,
		CreatedAt: s.now().UTC(),
	}
	if form.Image != nil && *form.Image != "" {
		product.Image = form.Image
	}

	if err := s.products.Append(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// UpdateProduct applies the form to the stored product. The id and creation time
// never change; a nil image keeps the current one and an empty image clears it.
func (s *inventoryService) UpdateProduct(ctx context.Context, id string, form ProductForm) (*domain.Product, error) {
	form = form.trimmed()
	values, err := form.parse()
	if err != nil {
		return nil, err
	}

	var updated domain.Product
	err = s.products.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		i := slices.IndexFunc(products, func(p domain.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, repository.ErrProductNotFound
		}

		p := products[i]
		p.Name = form.Name
		p.Price = values.price
		p.Quantity = values.quantity
		p.Category = form.Category
		p.Details = form.Details
		if form.Image != nil {
			p.Image = nil
			if *form.Image != "" {
				p.Image = form.Image
			}
		}

		products[i] = p
		updated = p
		return products, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &updated, nil
}

// DeleteProduct removes the product; deleting an unknown id succeeds
func (s *inventoryService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts returns products sorted by name, ignoring case, keeping those
// whose name contains query. An empty query keeps everything.
func (s *inventoryService) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	// collators and casers keep internal buffers, so they are built per call
	collator := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return collator.CompareString(a.Name, b.Name)
	})

	query = strings.TrimSpace(query)
	if query == "" {
		return products, nil
	}

	fold := cases.Fold()
	needle := fold.String(query)
	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Name), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Dashboard counts products and stock, and sums sales recorded since midnight
func (s *inventoryService) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	dashboard := &Dashboard{Products: len(products), RevenueToday: decimal.Zero}
	for _, p := range products {
		dashboard.StockUnits += p.Quantity
	}

	now := s.now()
	year, month, day := now.Date()
	for _, sale := range sales {
		y, m, d := sale.SoldAt.In(now.Location()).Date()
		if y == year && m == month && d == day {
			dashboard.SalesToday++
			dashboard.RevenueToday = dashboard.RevenueToday.Add(sale.Totals.Cost)
		}
	}

	return dashboard, nil
}
