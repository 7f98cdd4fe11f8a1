package search

import (
	"maps"
	"slices"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// Matches reports whether every map in required is an element of candidate.
// Elements are compared as whole maps, so {"color":"red"} does not match a
// candidate element {"color":"red","size":"M"}.
func Matches(candidate, required []map[string]string) bool {
	for _, want := range required {
		if !slices.ContainsFunc(candidate, func(have map[string]string) bool {
			return maps.Equal(have, want)
		}) {
			return false
		}
	}
	return true
}

// SatisfiesAll reports whether p meets every criterion that is set.
// Categories use all-of semantics.
func SatisfiesAll(p *domain.Product, c domain.SearchCriteria) bool {
	if c.Name != nil && p.Name != *c.Name {
		return false
	}

	if c.Attributes != nil && !Matches(p.Attributes, c.Attributes) {
		return false
	}

	for _, category := range c.Categories {
		if !slices.Contains(p.Categories, category) {
			return false
		}
	}

	return true
}
