package repository

import (
	"context"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// ProductRepository is the storage gateway for product documents.
// Lookups that find nothing return an empty slice, FindByID returns
// domain.ErrProductNotFound.
type ProductRepository interface {
	FindAll(ctx context.Context, page *domain.Page) (domain.Products, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByName(ctx context.Context, name string, page *domain.Page) (domain.Products, error)
	FindByCategory(ctx context.Context, category string, page *domain.Page) (domain.Products, error)
	FindByAttribute(ctx context.Context, attr map[string]string, page *domain.Page) (domain.Products, error)

	// Save inserts the product or replaces the stored document with the same id
	Save(ctx context.Context, product *domain.Product) error
	SaveAll(ctx context.Context, products domain.Products) error

	// Update applies the set fields of u to the stored document
	Update(ctx context.Context, id string, u domain.ProductUpdate) (domain.UpdateResult, error)

	// PushRating appends a rating atomically and returns the document after
	// the update
	PushRating(ctx context.Context, id string, rating domain.Rating) (*domain.Product, error)

	DeleteByID(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}
