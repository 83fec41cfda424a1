// Package catalog generates the synthetic storefront catalog and answers
// filter/sort queries over it.
package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const (
	// DefaultSize is the number of items in a generated catalog
	DefaultSize = 20

	minSuggestedPrice = 50
	suggestedSpread   = 100
	minPriceRatio     = 0.7
	priceRatioSpread  = 0.3
)

// Generator produces fixed-size catalogs of synthetic items
type Generator struct {
	size  int
	words []string

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Generator
type Option func(*Generator)

// WithSize overrides the catalog size
func WithSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.size = n
		}
	}
}

// WithWords overrides the word pool names are drawn from
func WithWords(words []string) Option {
	return func(g *Generator) {
		if len(words) > 0 {
			g.words = words
		}
	}
}

// WithRand sets the random source, mostly for deterministic tests
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// NewGenerator creates a generator with the default word pool and size
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		size:  DefaultSize,
		words: DefaultWords,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh catalog with ids 1..size
func (g *Generator) Generate() []models.Item {
	g.mu.Lock()
	defer g.mu.Unlock()

	items := make([]models.Item, 0, g.size)
	for i := 0; i < g.size; i++ {
		suggested := minSuggestedPrice + g.rng.IntN(suggestedSpread)
		ratio := minPriceRatio + g.rng.Float64()*priceRatioSpread
		actual := int64(math.Floor(float64(suggested) * ratio))

		word := g.words[g.rng.IntN(len(g.words))]
		items = append(items, models.NewItem(
			i+1,
			fmt.Sprintf("%s Item", word),
			fmt.Sprintf("High-quality %s item for your needs", strings.ToLower(word)),
			decimal.NewFromInt(int64(suggested)),
			decimal.NewFromInt(actual),
		))
	}
	return items
}
