// Package basket aggregates products picked during one checkout into sale lines.
//
// A Basket is a value: every operation returns a new Basket and leaves its
// input untouched, so one basket can be shared between views of a sale
// session without copying.
package basket

import (
	"pocket-pos/internal/domain"

	"github.com/shopspring/decimal"
)

// Basket holds at most one line per product id, in insertion order.
type Basket struct {
	lines []domain.SaleLine
}

// Clear returns an empty basket
func Clear() Basket {
	return Basket{}
}

// Add merges p into the line with the same product id, or appends a new line.
func Add(b Basket, p domain.Product) Basket {
	lines := b.Lines()

	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity++
			lines[i].Cost = lines[i].Cost.Add(p.Price)
			return Basket{lines: lines}
		}
	}

	lines = append(lines, domain.SaleLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		Cost:      p.Price,
	})
	return Basket{lines: lines}
}

// Remove drops the line for productID. Absent ids leave the basket as is.
func Remove(b Basket, productID string) Basket {
	lines := make([]domain.SaleLine, 0, len(b.lines))
	for _, line := range b.lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	return Basket{lines: lines}
}

// Totals sums quantity and cost over all lines
func Totals(b Basket) domain.Totals {
	totals := domain.Totals{Cost: decimal.Zero}
	for _, line := range b.lines {
		totals.Quantity += line.Quantity
		totals.Cost = totals.Cost.Add(line.Cost)
	}
	return totals
}

// Finalize marks the sale as done. It does not touch product stock.
func Finalize(Basket) Basket {
	return Clear()
}

// Lines returns a copy of the basket lines
func (b Basket) Lines() []domain.SaleLine {
	lines := make([]domain.SaleLine, len(b.lines))
	copy(lines, b.lines)
	return lines
}

// Line returns the line for productID, if present
func (b Basket) Line(productID string) (domain.SaleLine, bool) {
	for _, line := range b.lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return domain.SaleLine{}, false
}

func (b Basket) Len() int {
	return len(b.lines)
}

func (b Basket) IsEmpty() bool {
	return len(b.lines) == 0
}
