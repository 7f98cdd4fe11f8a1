// Package search merges single-field product lookups into one result set
// that honours every supplied criterion.
package search

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// Filters are the single-field lookups the engine combines
type Filters interface {
	FindByCategory(ctx context.Context, category string, page *domain.Page) (domain.Products, error)
	FindByName(ctx context.Context, name string, page *domain.Page) (domain.Products, error)
	FindByAttribute(ctx context.Context, attr map[string]string, page *domain.Page) (domain.Products, error)
}

// Engine runs search criteria against the product collection
type Engine struct {
	filters Filters
	logger  hclog.Logger
}

func NewEngine(filters Filters, logger hclog.Logger) *Engine {
	return &Engine{filters: filters, logger: logger}
}

// Search gathers candidates from one lookup per supplied criterion, refines
// them against the full criteria and drops duplicate ids. Criteria with no
// field set yield an empty result.
func (e *Engine) Search(ctx context.Context, c domain.SearchCriteria, page *domain.Page) (domain.Products, error) {
	candidates := domain.Products{}

	for _, category := range c.Categories {
		found, err := e.filters.FindByCategory(ctx, category, page)
		if err != nil {
			return nil, fmt.Errorf("filter by category %q: %w", category, err)
		}
		candidates = append(candidates, found...)
	}

	if c.Name != nil {
		found, err := e.filters.FindByName(ctx, *c.Name, page)
		if err != nil {
			return nil, fmt.Errorf("filter by name %q: %w", *c.Name, err)
		}
		candidates = append(candidates, found...)
	}

	if len(c.Attributes) > 0 {
		// only the first map drives the lookup, the full list refines it
		found, err := e.filters.FindByAttribute(ctx, c.Attributes[0], page)
		if err != nil {
			return nil, fmt.Errorf("filter by attribute: %w", err)
		}
		candidates = append(candidates, found...)
		candidates = keep(candidates, func(p *domain.Product) bool {
			return Matches(p.Attributes, c.Attributes)
		})
	}

	gathered := len(candidates)
	candidates = keep(candidates, func(p *domain.Product) bool {
		return SatisfiesAll(p, c)
	})

	result := Dedupe(candidates)
	e.logger.Debug("Search completed",
		"candidates", gathered,
		"matched", len(candidates),
		"unique", len(result))

	return result, nil
}

// Dedupe drops products whose id was already seen, keeping the first
// occurrence
func Dedupe(products domain.Products) domain.Products {
	seen := make(map[string]struct{}, len(products))
	unique := make(domain.Products, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

// keep returns a new slice holding the products for which pred is true
func keep(products domain.Products, pred func(*domain.Product) bool) domain.Products {
	kept := make(domain.Products, 0, len(products))
	for _, p := range products {
		if pred(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
