package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// storedLine is the persisted form of a line. Money is a plain JSON number so
// the blob stays readable by other storefront clients.
type storedLine struct {
	ProductID    string      `json:"productId"`
	Name         string      `json:"name"`
	UnitPrice    json.Number `json:"unitPrice"`
	Quantity     int         `json:"quantity"`
	StockCeiling int         `json:"stockCeiling"`
	Image        string      `json:"image,omitempty"`
}

// EncodeLines serializes lines as a JSON array. An empty cart encodes as [].
func EncodeLines(lines []CartLine) ([]byte, error) {
	out := make([]storedLine, len(lines))
	for i, l := range lines {
		out[i] = storedLine{
			ProductID:    l.ProductID,
			Name:         l.Name,
			UnitPrice:    json.Number(l.UnitPrice.String()),
			Quantity:     l.Quantity,
			StockCeiling: l.StockCeiling,
			Image:        l.Image,
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode cart lines: %w", err)
	}
	return data, nil
}

// DecodeLines parses a persisted JSON array into add inputs. Entries without
// a string productId, with a non-numeric unitPrice or quantity, or with a
// quantity below 1 are dropped and counted. The survivors still need sanitizing, which NewCart does.
func DecodeLines(data []byte) (inputs []AddItemInput, dropped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode cart lines: %w", err)
	}

	for _, elem := range raw {
		dec := json.NewDecoder(bytes.NewReader(elem))
		dec.UseNumber()

		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			dropped++
			continue
		}
		in, ok := decodeEntry(entry)
		if !ok {
			dropped++
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, dropped, nil
}

func decodeEntry(entry map[string]any) (AddItemInput, bool) {
	productID, ok := entry["productId"].(string)
	if !ok {
		return AddItemInput{}, false
	}
	price, ok := entry["unitPrice"].(json.Number)
	if !ok {
		return AddItemInput{}, false
	}
	qty, ok := entry["quantity"].(json.Number)
	if !ok {
		return AddItemInput{}, false
	}

	quantity := numberToInt(qty)
	if quantity < 1 {
		return AddItemInput{}, false
	}

	in := AddItemInput{
		ProductID: productID,
		UnitPrice: CoercePrice(price),
		Quantity:  quantity,
	}
	if name, ok := entry["name"].(string); ok {
		in.Name = name
	}
	if image, ok := entry["image"].(string); ok {
		in.Image = image
	}
	if ceiling, ok := entry["stockCeiling"].(json.Number); ok {
		c := numberToInt(ceiling)
		in.StockCeiling = &c
	}
	return in, true
}

func numberToInt(n json.Number) int {
	if i, err := n.Int64(); err == nil {
		return clampInt(i)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return 0
	}
	// Out-of-range float to int conversion is implementation-defined.
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

func clampInt(i int64) int {
	switch {
	case i > math.MaxInt32:
		return math.MaxInt32
	case i < math.MinInt32:
		return math.MinInt32
	default:
		return int(i)
	}
}

// Unit prices outside these bounds are treated as malformed.
const (
	maxPriceExponent = 12
	minPriceExponent = -8
	maxPriceBits     = 96
)

// MaxUnitPrice is the largest unit price a cart line accepts.
var MaxUnitPrice = decimal.New(1, 12)

// priceInRange checks the exponent and coefficient size before comparing, so
// a value like 1e50000000 is rejected without ever being rescaled.
func priceInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxPriceExponent || exp < minPriceExponent {
		return false
	}
	if d.Coefficient().BitLen() > maxPriceBits {
		return false
	}
	return d.Cmp(MaxUnitPrice) <= 0
}

// CoercePrice turns a loosely typed price into a non-negative decimal.
// Anything unparseable, NaN, infinite, negative or out of range becomes zero.
func CoercePrice(v any) decimal.Decimal {
	var d decimal.Decimal
	switch p := v.(type) {
	case decimal.Decimal:
		d = p
	case json.Number:
		parsed, err := decimal.NewFromString(p.String())
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(p)
	case int:
		d = decimal.NewFromInt(int64(p))
	case int64:
		d = decimal.NewFromInt(p)
	default:
		return decimal.Zero
	}
	if d.IsNegative() || !priceInRange(d) {
		return decimal.Zero
	}
	return d
}
