package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices and costs persist as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is one inventory record as persisted in the products slot.
// Category and Details are omitted from the record when blank.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category,omitempty"`
	Details   string          `json:"details,omitempty"`
	Image     *string         `json:"image"`
	CreatedAt time.Time       `json:"createdAt"`
}

// UnmarshalJSON accepts records written with a "description" key in place of "details".
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		Description string `json:"description,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product(raw.plain)
	if p.Details == "" {
		p.Details = raw.Description
	}
	return nil
}

// HasImage reports whether the product references an image
func (p Product) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}
