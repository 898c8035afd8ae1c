package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine aggregates repeated additions of one product to a basket.
// Cost accumulates the unit price on every add and is never recomputed.
type SaleLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
}

// Totals sums quantity and cost over basket lines
type Totals struct {
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// Sale is a finalized basket recorded in the sales ledger
type Sale struct {
	ID     string     `json:"id"`
	Lines  []SaleLine `json:"lines"`
	Totals Totals     `json:"totals"`
	SoldAt time.Time  `json:"soldAt"`
}
