package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func init() {
	// prices are JSON numbers in API payloads, relay slots and events
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is a synthetic catalog entry. Items are immutable once generated.
type Item struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	SuggestedPrice decimal.Decimal `json:"suggestedPrice"`
	ActualPrice    decimal.Decimal `json:"actualPrice"`
	Discount       int             `json:"discount"`
}

// NewItem builds an item and derives its discount from the two prices
func NewItem(id int, name, description string, suggested, actual decimal.Decimal) Item {
	return Item{
		ID:             id,
		Name:           name,
		Description:    description,
		SuggestedPrice: suggested,
		ActualPrice:    actual,
		Discount:       DiscountPercent(suggested, actual),
	}
}

// DiscountPercent returns round(100 * (1 - actual/suggested)).
// A zero suggested price yields no discount.
func DiscountPercent(suggested, actual decimal.Decimal) int {
	if suggested.IsZero() {
		return 0
	}
	ratio := actual.Div(suggested)
	return int(hundred.Mul(decimal.NewFromInt(1).Sub(ratio)).Round(0).IntPart())
}

// DiscountLabel is the badge shown on the catalog card
func (i Item) DiscountLabel() string {
	if i.Discount > 0 {
		return strconv.Itoa(i.Discount) + "% OFF"
	}
	return "No discount"
}
