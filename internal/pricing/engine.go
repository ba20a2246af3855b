package pricing

import "github.com/shopspring/decimal"

// Money is an exact decimal amount in major currency units.
type Money = decimal.Decimal

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Units int
	Total Money
}

// Compute sums unit price times quantity. Lines with a non-positive quantity
// or a negative price contribute nothing, so the total is never negative.
func Compute(items []Item) Summary {
	total := decimal.Zero
	units := 0
	for _, it := range items {
		if it.Qty <= 0 || it.UnitPrice.IsNegative() {
			continue
		}
		units += it.Qty
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return Summary{Units: units, Total: total}
}
