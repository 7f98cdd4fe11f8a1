package search

import (
	"testing"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestMatches(t *testing.T) {
	testCases := []struct {
		name      string
		candidate []map[string]string
		required  []map[string]string
		want      bool
	}{
		{"Exact element", []map[string]string{{"color": "red"}}, []map[string]string{{"color": "red"}}, true},
		{"Combined map is not a match", []map[string]string{{"color": "red", "size": "M"}}, []map[string]string{{"color": "red"}}, false},
		{"All required present", []map[string]string{{"color": "red"}, {"size": "M"}}, []map[string]string{{"size": "M"}, {"color": "red"}}, true},
		{"One required missing", []map[string]string{{"color": "red"}}, []map[string]string{{"color": "red"}, {"size": "M"}}, false},
		{"Different value", []map[string]string{{"color": "blue"}}, []map[string]string{{"color": "red"}}, false},
		{"Nothing required", []map[string]string{{"color": "red"}}, nil, true},
		{"No candidate attributes", nil, []map[string]string{{"color": "red"}}, false},
		{"Multi-key element key order", []map[string]string{{"size": "M", "color": "red"}}, []map[string]string{{"color": "red", "size": "M"}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.candidate, tc.required))
		})
	}
}

func TestSatisfiesAll(t *testing.T) {
	p := &domain.Product{
		ID:         "p1",
		Name:       "Widget",
		Categories: []string{"tools", "garden"},
		Attributes: []map[string]string{{"color": "red"}},
	}

	testCases := []struct {
		name     string
		criteria domain.SearchCriteria
		want     bool
	}{
		{"Empty criteria is vacuously true", domain.SearchCriteria{}, true},
		{"Name equal", domain.SearchCriteria{Name: strp("Widget")}, true},
		{"Name is case sensitive", domain.SearchCriteria{Name: strp("widget")}, false},
		{"All categories present", domain.SearchCriteria{Categories: []string{"garden", "tools"}}, true},
		{"One category missing", domain.SearchCriteria{Categories: []string{"tools", "electronics"}}, false},
		{"Missing category listed first", domain.SearchCriteria{Categories: []string{"electronics", "tools"}}, false},
		{"Attributes contained", domain.SearchCriteria{Attributes: []map[string]string{{"color": "red"}}}, true},
		{"Attributes not contained", domain.SearchCriteria{Attributes: []map[string]string{{"color": "blue"}}}, false},
		{"Every field must hold", domain.SearchCriteria{
			Name:       strp("Widget"),
			Categories: []string{"tools"},
			Attributes: []map[string]string{{"color": "blue"}},
		}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SatisfiesAll(p, tc.criteria))
		})
	}
}
