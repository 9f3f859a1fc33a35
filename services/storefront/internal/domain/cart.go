package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultStockCeiling applies when an add does not say how many units are in stock.
const DefaultStockCeiling = 99

// MaxStockCeiling caps any stated stock so quantities survive a round trip
// through the persisted form.
const MaxStockCeiling = math.MaxInt32

// CartLine is one product in the cart.
type CartLine struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stockCeiling"`
	Image        string          `json:"image,omitempty"`
}

// LineTotal is UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AddItemInput describes a product being added. A nil StockCeiling means
// unknown stock.
type AddItemInput struct {
	ProductID    string
	Name         string
	UnitPrice    decimal.Decimal
	Image        string
	StockCeiling *int
	Quantity     int
}

// Totals are derived from the lines on every read.
type Totals struct {
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Cart is an ordered collection of lines keyed by product id. The zero value
// is an empty cart. Every line satisfies 1 <= Quantity <= StockCeiling.
type Cart struct {
	lines []CartLine
}

// NewCart builds a cart by adding each input in order, so duplicates merge
// and malformed values are sanitized exactly as for AddItem.
func NewCart(inputs ...AddItemInput) *Cart {
	c := &Cart{}
	for _, in := range inputs {
		c.AddItem(in)
	}
	return c
}

// sanitizeLine normalizes an add request. ok is false when the input cannot
// produce a line at all.
func sanitizeLine(in AddItemInput) (AddItemInput, int, bool) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return in, 0, false
	}
	if in.UnitPrice.IsNegative() || !priceInRange(in.UnitPrice) {
		in.UnitPrice = decimal.Zero
	}
	ceiling := DefaultStockCeiling
	if in.StockCeiling != nil {
		ceiling = min(max(*in.StockCeiling, 0), MaxStockCeiling)
	}
	in.Quantity = min(max(in.Quantity, 1), max(ceiling, 1))
	return in, ceiling, true
}

// AddItem merges in into the cart. An existing line keeps its name, price and
// image, takes the new stock ceiling and grows by the requested quantity up
// to that ceiling. A ceiling of zero removes the line or skips the insert.
func (c *Cart) AddItem(in AddItemInput) {
	in, ceiling, ok := sanitizeLine(in)
	if !ok {
		return
	}

	if i := c.indexOf(in.ProductID); i >= 0 {
		line := &c.lines[i]
		line.StockCeiling = ceiling
		held := min(line.Quantity, ceiling)
		q := held + min(in.Quantity, ceiling-held)
		if q < 1 {
			c.removeAt(i)
			return
		}
		line.Quantity = q
		return
	}

	q := min(in.Quantity, ceiling)
	if q < 1 {
		return
	}
	c.lines = append(c.lines, CartLine{
		ProductID:    in.ProductID,
		Name:         in.Name,
		UnitPrice:    in.UnitPrice,
		Quantity:     q,
		StockCeiling: ceiling,
		Image:        in.Image,
	})
}

// RemoveItem drops the line for productID if present.
func (c *Cart) RemoveItem(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.removeAt(i)
	}
}

// UpdateQuantity sets the line's quantity, clamped to its stock ceiling.
// Quantities below 1 remove the line. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if quantity < 1 {
		c.removeAt(i)
		return
	}
	line := &c.lines[i]
	line.Quantity = min(quantity, max(line.StockCeiling, 1))
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsInCart reports whether productID has a line.
func (c *Cart) IsInCart(productID string) bool {
	return c.indexOf(productID) >= 0
}

// QuantityOf returns the line quantity, or 0 when absent.
func (c *Cart) QuantityOf(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Line returns a copy of the line for productID.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Totals folds over every line.
func (c *Cart) Totals() Totals {
	return computeTotals(c.lines)
}

// Snapshot returns an immutable copy of the current state.
func (c *Cart) Snapshot() CartSnapshot {
	lines := c.Lines()
	return CartSnapshot{Lines: lines, Totals: computeTotals(lines)}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
}

func computeTotals(lines []CartLine) Totals {
	t := Totals{TotalPrice: decimal.Zero}
	for _, l := range lines {
		t.TotalItems += l.Quantity
		t.TotalPrice = t.TotalPrice.Add(l.LineTotal())
	}
	return t
}

// CartSnapshot is a value copy of a cart. Later cart mutations never affect it.
type CartSnapshot struct {
	Lines  []CartLine `json:"items"`
	Totals Totals     `json:"totals"`
}

// IsEmpty reports whether the snapshot has no lines.
func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
