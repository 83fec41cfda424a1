package catalog

import (
	"errors"
	"slices"
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects one of the four catalog orderings
type SortKey string

const (
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"

	DefaultSort = SortNameAsc
)

// ErrInvalidSortKey is returned for a sort key outside the four orderings
var ErrInvalidSortKey = errors.New("invalid sort key")

// SortKeys lists the orderings in display order
var SortKeys = []SortKey{SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc}

// ParseSortKey validates a raw sort key. An empty key selects the default.
func ParseSortKey(raw string) (SortKey, error) {
	if raw == "" {
		return DefaultSort, nil
	}
	key := SortKey(raw)
	if !slices.Contains(SortKeys, key) {
		return "", ErrInvalidSortKey
	}
	return key, nil
}

// Label is the human readable name of the ordering
func (k SortKey) Label() string {
	switch k {
	case SortNameAsc:
		return "Name (A-Z)"
	case SortNameDesc:
		return "Name (Z-A)"
	case SortPriceAsc:
		return "Price (Low to High)"
	case SortPriceDesc:
		return "Price (High to Low)"
	default:
		return string(k)
	}
}

// Filter keeps items whose name contains text, ignoring case.
// The input slice is never modified.
func Filter(items []models.Item, text string) []models.Item {
	needle := strings.ToLower(text)
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Sort orders items in place with a stable sort
func Sort(items []models.Item, key SortKey) {
	switch key {
	case SortNameAsc, SortNameDesc:
		// collators keep internal buffers and are not safe for concurrent use
		c := collate.New(language.English)
		slices.SortStableFunc(items, func(a, b models.Item) int {
			if key == SortNameDesc {
				return c.CompareString(b.Name, a.Name)
			}
			return c.CompareString(a.Name, b.Name)
		})
	case SortPriceAsc:
		slices.SortStableFunc(items, func(a, b models.Item) int {
			return a.ActualPrice.Cmp(b.ActualPrice)
		})
	case SortPriceDesc:
		slices.SortStableFunc(items, func(a, b models.Item) int {
			return b.ActualPrice.Cmp(a.ActualPrice)
		})
	}
}

// Query filters then sorts, returning a new slice
func Query(items []models.Item, filter string, key SortKey) []models.Item {
	out := Filter(items, filter)
	Sort(out, key)
	return out
}
