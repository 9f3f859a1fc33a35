package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func boat(id, unitPrice string, stock *int, qty int) AddItemInput {
	return AddItemInput{
		ProductID:    id,
		Name:         "RC boat " + id,
		UnitPrice:    price(unitPrice),
		StockCeiling: stock,
		Quantity:     qty,
	}
}

// ============================================================================
// AddItem
// ============================================================================

func TestAddItem_NewLine(t *testing.T) {
	c := NewCart()
	c.AddItem(boat("p1", "1500", intPtr(5), 1))

	require.True(t, c.IsInCart("p1"))
	assert.Equal(t, 1, c.QuantityOf("p1"))
	assert.Equal(t, 1, c.Totals().TotalItems)
	assert.True(t, c.Totals().TotalPrice.Equal(price("1500")))
}

func TestAddItem_MergeClampsAndKeepsFirstPrice(t *testing.T) {
	c := NewCart()
	c.AddItem(boat("p1", "1500", intPtr(5), 1))

	second := boat("p1", "2000", intPtr(5), 10)
	second.Name = "Renamed"
	c.AddItem(second)

	line, ok := c.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(price("1500")))
	assert.Equal(t, "RC boat p1", line.Name)
	assert.True(t, c.Totals().TotalPrice.Equal(price("7500")))
}

func TestAddItem_HugeQuantityMergeClampsToCeiling(t *testing.T) {
	c := NewCart(boat("p1", "1500", intPtr(5), 1))
	c.AddItem(boat("p1", "1500", intPtr(5), math.MaxInt))

	require.True(t, c.IsInCart("p1"))
	assert.Equal(t, 5, c.QuantityOf("p1"))

	c.AddItem(boat("p1", "1500", intPtr(math.MaxInt), math.MaxInt))
	require.True(t, c.IsInCart("p1"))
	assert.Equal(t, MaxStockCeiling, c.QuantityOf("p1"))

	c.AddItem(boat("p1", "1500", intPtr(math.MaxInt), math.MaxInt))
	line, _ := c.Line("p1")
	assert.Equal(t, MaxStockCeiling, line.Quantity)
	assert.Equal(t, MaxStockCeiling, line.StockCeiling)
}

func TestAddItem_HugeQuantityNewLineClampsToCeiling(t *testing.T) {
	c := NewCart(boat("p1", "1500", nil, math.MaxInt))
	assert.Equal(t, DefaultStockCeiling, c.QuantityOf("p1"))
}

func TestAddItem_OutOfRangePriceBecomesZero(t *testing.T) {
	c := NewCart(AddItemInput{ProductID: "p1", UnitPrice: decimal.New(1, 50000000), Quantity: 1})

	line, ok := c.Line("p1")
	require.True(t, ok)
	assert.True(t, line.UnitPrice.IsZero())
}

func TestAddItem_CeilingRefreshedOnMerge(t *testing.T) {
	c := NewCart()
	c.AddItem(boat("p1", "100", intPtr(10), 8))
	c.AddItem(boat("p1", "100", intPtr(3), 1))

	line, _ := c.Line("p1")
	assert.Equal(t, 3, line.StockCeiling)
	assert.Equal(t, 3, line.Quantity)
}

func TestAddItem_Sanitizing(t *testing.T) {
	tests := []struct {
		name        string
		input       AddItemInput
		wantInCart  bool
		wantQty     int
		wantPrice   string
		wantCeiling int
	}{
		{"blank product id", boat("  ", "10", nil, 1), false, 0, "", 0},
		{"missing ceiling defaults", boat("p1", "10", nil, 1), true, 1, "10", DefaultStockCeiling},
		{"zero quantity becomes one", boat("p1", "10", nil, 0), true, 1, "10", DefaultStockCeiling},
		{"negative quantity becomes one", boat("p1", "10", intPtr(4), -7), true, 1, "10", 4},
		{"negative price becomes zero", boat("p1", "-25", nil, 2), true, 2, "0", DefaultStockCeiling},
		{"quantity clamped to ceiling", boat("p1", "10", intPtr(2), 9), true, 2, "10", 2},
		{"zero ceiling not inserted", boat("p1", "10", intPtr(0), 1), false, 0, "", 0},
		{"negative ceiling not inserted", boat("p1", "10", intPtr(-3), 1), false, 0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart(tt.input)
			line, ok := c.Line(tt.input.ProductID)
			assert.Equal(t, tt.wantInCart, ok)
			if !tt.wantInCart {
				assert.True(t, c.IsEmpty())
				return
			}
			assert.Equal(t, tt.wantQty, line.Quantity)
			assert.True(t, line.UnitPrice.Equal(price(tt.wantPrice)), "price %s", line.UnitPrice)
			assert.Equal(t, tt.wantCeiling, line.StockCeiling)
		})
	}
}

func TestAddItem_ZeroCeilingDropsExistingLine(t *testing.T) {
	c := NewCart(boat("p1", "10", intPtr(5), 2), boat("p2", "20", nil, 1))
	c.AddItem(boat("p1", "10", intPtr(0), 1))

	assert.False(t, c.IsInCart("p1"))
	assert.True(t, c.IsInCart("p2"))
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	c := NewCart(boat("c", "1", nil, 1), boat("a", "1", nil, 1), boat("b", "1", nil, 1))
	c.AddItem(boat("a", "1", nil, 1))

	var ids []string
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

// ============================================================================
// RemoveItem / UpdateQuantity / Clear
// ============================================================================

func TestRemoveItem_Idempotent(t *testing.T) {
	c := NewCart(boat("p1", "500", nil, 2), boat("p2", "300", nil, 1))

	c.RemoveItem("p1")
	once := c.Snapshot()
	c.RemoveItem("p1")
	c.RemoveItem("missing")

	assert.Equal(t, once, c.Snapshot())
	assert.Equal(t, 1, c.Totals().TotalItems)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantIn  bool
		wantQty int
	}{
		{"within ceiling", 3, true, 3},
		{"above ceiling clamps", 50, true, 5},
		{"zero removes", 0, false, 0},
		{"negative removes", -2, false, 0},
		{"one", 1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart(boat("p1", "1500", intPtr(5), 2))
			c.UpdateQuantity("p1", tt.n)
			assert.Equal(t, tt.wantIn, c.IsInCart("p1"))
			assert.Equal(t, tt.wantQty, c.QuantityOf("p1"))
		})
	}
}

func TestUpdateQuantity_UnknownProductIsNoop(t *testing.T) {
	c := NewCart(boat("p1", "1500", intPtr(5), 2))
	before := c.Snapshot()

	c.UpdateQuantity("nope", 3)

	assert.Equal(t, before, c.Snapshot())
}

func TestClear(t *testing.T) {
	c := NewCart(boat("p1", "10", nil, 1), boat("p2", "10", nil, 1))
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Totals().TotalItems)
	assert.True(t, c.Totals().TotalPrice.IsZero())
}

// ============================================================================
// Walkthrough from the storefront: add, re-add over stock, set to zero
// ============================================================================

func TestCartWalkthrough(t *testing.T) {
	c := NewCart()

	c.AddItem(boat("p1", "1500", intPtr(5), 1))
	assert.True(t, c.Totals().TotalPrice.Equal(price("1500")))

	c.AddItem(boat("p1", "2000", intPtr(5), 10))
	assert.Equal(t, 5, c.QuantityOf("p1"))
	assert.True(t, c.Totals().TotalPrice.Equal(price("7500")))

	c.UpdateQuantity("p1", 0)
	assert.False(t, c.IsInCart("p1"))
	assert.True(t, c.IsEmpty())
}

// ============================================================================
// Snapshot isolation
// ============================================================================

func TestSnapshot_IsolatedFromLaterMutations(t *testing.T) {
	c := NewCart(boat("p1", "500", nil, 2))
	snap := c.Snapshot()

	c.AddItem(boat("p2", "300", nil, 1))
	c.UpdateQuantity("p1", 7)
	c.RemoveItem("p1")
	c.Clear()

	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, 2, snap.Totals.TotalItems)
	assert.True(t, snap.Totals.TotalPrice.Equal(price("1000")))
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := NewCart(boat("p1", "500", nil, 2))
	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 2, c.QuantityOf("p1"))
}

// ============================================================================
// Randomized invariants: quantity bounds and totals after any operation
// ============================================================================

func TestCartInvariants_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	c := NewCart()
	ids := []string{"p1", "p2", "p3", "p4"}

	for step := 0; step < 2000; step++ {
		id := ids[rng.IntN(len(ids))]
		switch rng.IntN(4) {
		case 0:
			var stock *int
			if rng.IntN(3) > 0 {
				stock = intPtr(rng.IntN(8) - 1)
			}
			c.AddItem(AddItemInput{
				ProductID:    id,
				UnitPrice:    decimal.NewFromInt(int64(rng.IntN(3000) - 100)),
				StockCeiling: stock,
				Quantity:     rng.IntN(12) - 2,
			})
		case 1:
			c.RemoveItem(id)
		case 2:
			c.UpdateQuantity(id, rng.IntN(12)-3)
		case 3:
			if rng.IntN(20) == 0 {
				c.Clear()
			}
		}

		wantItems := 0
		wantPrice := decimal.Zero
		seen := map[string]bool{}
		for _, l := range c.Lines() {
			require.False(t, seen[l.ProductID], "duplicate line %s at step %d", l.ProductID, step)
			seen[l.ProductID] = true
			require.GreaterOrEqual(t, l.Quantity, 1, fmt.Sprintf("step %d", step))
			require.LessOrEqual(t, l.Quantity, max(l.StockCeiling, 1), fmt.Sprintf("step %d", step))
			require.False(t, l.UnitPrice.IsNegative())
			wantItems += l.Quantity
			wantPrice = wantPrice.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		totals := c.Totals()
		require.Equal(t, wantItems, totals.TotalItems)
		require.True(t, wantPrice.Equal(totals.TotalPrice))
	}
}

func TestFirstPriceWins_AcrossManyAdds(t *testing.T) {
	c := NewCart(boat("p1", "999.50", nil, 1))
	for _, p := range []string{"1", "0", "5000", "-3"} {
		c.AddItem(boat("p1", p, nil, 1))
	}
	line, _ := c.Line("p1")
	assert.True(t, line.UnitPrice.Equal(price("999.50")))
	assert.Equal(t, 5, line.Quantity)
}
