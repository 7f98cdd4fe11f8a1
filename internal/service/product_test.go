package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string      { return &s }
func floatp(f float64) *float64 { return &f }

func widget() *domain.Product {
	return &domain.Product{
		ID:           "p1",
		Name:         "Widget",
		Description:  "A widget",
		Price:        9.99,
		Categories:   []string{"tools"},
		Attributes:   []map[string]string{{"color": "red"}},
		Availability: domain.Availability{InStock: true, Quantity: 10},
		Ratings:      []domain.Rating{{UserID: "u1", Rating: 3}},
	}
}

func newTestService(seed ...*domain.Product) (ProductService, repository.ProductRepository, *events.EventBus[any]) {
	repo := repository.NewMemoryProductRepository(seed...)
	bus := events.NewEventBus[any]()
	svc := NewProductService(repo, bus, domain.NewValidation(), hclog.NewNullLogger())
	return svc, repo, bus
}

func TestGetProduct(t *testing.T) {
	svc, _, _ := newTestService(widget())

	p, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)

	p, err = svc.GetProduct(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSearchProductsScenario(t *testing.T) {
	svc, _, _ := newTestService(widget())
	ctx := context.Background()

	got, err := svc.SearchProducts(ctx, domain.SearchCriteria{Name: strp("Widget")}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	got, err = svc.SearchProducts(ctx, domain.SearchCriteria{Categories: []string{"tools", "electronics"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.SearchProducts(ctx, domain.SearchCriteria{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchProductsPagedByAttribute(t *testing.T) {
	svc, _, _ := newTestService(
		&domain.Product{ID: "a", Name: "Shirt", Attributes: []map[string]string{{"color": "red", "size": "M"}}},
		&domain.Product{ID: "b", Name: "Scarf", Attributes: []map[string]string{{"color": "red"}}},
	)

	got, err := svc.SearchProducts(context.Background(),
		domain.SearchCriteria{Attributes: []map[string]string{{"color": "red"}}},
		&domain.Page{Number: 0, Size: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestAddProduct(t *testing.T) {
	svc, repo, bus := newTestService()
	sub := bus.Subscribe()
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, &domain.Product{Name: "Gadget", Price: 5})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID, "an id should be generated")

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", stored.Name)
	assert.Equal(t, events.ProductAdded{ProductID: p.ID}, <-sub)

	_, err = svc.AddProduct(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrMissingProduct)

	_, err = svc.AddProduct(ctx, &domain.Product{Price: -1})
	var ve domain.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve, 2)
}

func TestUpdateProduct(t *testing.T) {
	testCases := []struct {
		name  string
		patch domain.ProductPatch
		check func(t *testing.T, p *domain.Product)
	}{
		{
			name:  "Name only",
			patch: domain.ProductPatch{Name: strp("Sprocket")},
			check: func(t *testing.T, p *domain.Product) {
				assert.Equal(t, "Sprocket", p.Name)
				assert.Equal(t, 9.99, p.Price)
				assert.Equal(t, []string{"tools"}, p.Categories)
			},
		},
		{
			name:  "Non-positive price is ignored",
			patch: domain.ProductPatch{Price: floatp(0), Description: strp("Updated")},
			check: func(t *testing.T, p *domain.Product) {
				assert.Equal(t, 9.99, p.Price)
				assert.Equal(t, "Updated", p.Description)
			},
		},
		{
			name:  "Positive price is applied",
			patch: domain.ProductPatch{Price: floatp(12.5)},
			check: func(t *testing.T, p *domain.Product) {
				assert.Equal(t, 12.5, p.Price)
			},
		},
		{
			name:  "Quantity requires in stock",
			patch: domain.ProductPatch{Availability: &domain.Availability{InStock: false, Quantity: 3}},
			check: func(t *testing.T, p *domain.Product) {
				assert.Equal(t, 10, p.Availability.Quantity)
			},
		},
		{
			name:  "Quantity applied when in stock",
			patch: domain.ProductPatch{Availability: &domain.Availability{InStock: true, Quantity: 0}},
			check: func(t *testing.T, p *domain.Product) {
				assert.Equal(t, 0, p.Availability.Quantity)
			},
		},
		{
			name: "Lists replaced",
			patch: domain.ProductPatch{
				Categories: []string{"garden"},
				Attributes: []map[string]string{{"size": "L"}},
				Ratings:    []domain.Rating{},
			},
			check: func(t *testing.T, p *domain.Product) {
				assert.Equal(t, []string{"garden"}, p.Categories)
				assert.Equal(t, []map[string]string{{"size": "L"}}, p.Attributes)
				assert.Empty(t, p.Ratings)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestService(widget())
			ctx := context.Background()

			msg, err := svc.UpdateProduct(ctx, "p1", tc.patch)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(msg, "Updated Product: matched=1"), msg)

			p, err := repo.FindByID(ctx, "p1")
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestUpdateProductNegativeQuantity(t *testing.T) {
	svc, repo, _ := newTestService(widget())
	ctx := context.Background()

	_, err := svc.UpdateProduct(ctx, "p1", domain.ProductPatch{
		Name:         strp("Sprocket"),
		Price:        floatp(20),
		Availability: &domain.Availability{InStock: true, Quantity: -1},
		Description:  strp("Changed"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, "Invalid value: -1", err.Error())

	p, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, widget(), p, "no field should change")
}

func TestUpdateProductMissing(t *testing.T) {
	svc, _, bus := newTestService()
	sub := bus.Subscribe()

	msg, err := svc.UpdateProduct(context.Background(), "missing", domain.ProductPatch{Name: strp("x")})
	require.NoError(t, err)
	assert.Equal(t, "Updated Product: matched=0 modified=0", msg)
	assert.Len(t, sub, 0)
}

func TestDeleteProduct(t *testing.T) {
	svc, repo, bus := newTestService(widget())
	sub := bus.Subscribe()
	ctx := context.Background()

	deleted, err := svc.DeleteProduct(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, events.ProductDeleted{ProductID: "p1"}, <-sub)

	_, err = repo.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAddRating(t *testing.T) {
	svc, _, _ := newTestService(widget())
	ctx := context.Background()

	p, err := svc.AddRating(ctx, "p1", domain.Rating{UserID: "u2", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	require.Len(t, p.Ratings, 2)
	assert.Equal(t, domain.Rating{UserID: "u2", Rating: 5, Comment: "great"}, p.Ratings[1])

	// the same submitter may rate twice
	p, err = svc.AddRating(ctx, "p1", domain.Rating{UserID: "u2", Rating: 1})
	require.NoError(t, err)
	assert.Len(t, p.Ratings, 3)

	p, err = svc.AddRating(ctx, "missing", domain.Rating{UserID: "u2", Rating: 1})
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = svc.AddRating(ctx, "p1", domain.Rating{Rating: 1})
	var ve domain.ValidationErrors
	assert.True(t, errors.As(err, &ve))
}

func TestUpdateRating(t *testing.T) {
	svc, _, bus := newTestService(widget())
	sub := bus.Subscribe()
	ctx := context.Background()

	p, err := svc.UpdateRating(ctx, "p1", "u1", 5)
	require.NoError(t, err)
	require.Len(t, p.Ratings, 1)
	assert.Equal(t, 5, p.Ratings[0].Rating)
	assert.Equal(t, events.RatingUpdated{ProductID: "p1", UserID: "u1", Rating: 5}, <-sub)

	p, err = svc.UpdateRating(ctx, "p1", "nobody", 1)
	require.NoError(t, err)
	require.Len(t, p.Ratings, 1)
	assert.Equal(t, 5, p.Ratings[0].Rating, "ratings should be unchanged")
	assert.Len(t, sub, 0)

	p, err = svc.UpdateRating(ctx, "missing", "u1", 1)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestImportProducts(t *testing.T) {
	svc, repo, bus := newTestService(widget())
	sub := bus.Subscribe()
	ctx := context.Background()

	payload := `[
		{"id": "p1", "name": "Widget v2", "price": 11},
		{"name": "Gadget", "categories": ["electronics"]}
	]`

	n, err := svc.ImportProducts(ctx, strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, events.ProductsImported{Count: 2}, <-sub)

	all, err := repo.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Widget v2", all[0].Name)
	assert.NotEmpty(t, all[1].ID)
}

func TestImportProductsErrors(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		check   func(t *testing.T, err error)
	}{
		{"Empty payload", "  \n", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrEmptyImport)
		}},
		{"Not JSON", "{oops", func(t *testing.T, err error) {
			assert.Contains(t, err.Error(), "unable to decode products")
		}},
		{"Invalid product", `[{"name": ""}]`, func(t *testing.T, err error) {
			var ve domain.ValidationErrors
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "[0].Product.Name", ve[0].Field)
		}},
		{"Null entry", `[null]`, func(t *testing.T, err error) {
			var ve domain.ValidationErrors
			assert.True(t, errors.As(err, &ve))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestService()

			n, err := svc.ImportProducts(context.Background(), strings.NewReader(tc.payload))
			require.Error(t, err)
			assert.Zero(t, n)
			tc.check(t, err)

			all, err := repo.FindAll(context.Background(), nil)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}
