package repository

import (
	"context"
	"maps"
	"sync"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type memoryProductRepository struct {
	products domain.Products
	mutex    sync.RWMutex
}

// NewMemoryProductRepository returns a repository that keeps products in
// insertion order in process memory
func NewMemoryProductRepository(seed ...*domain.Product) ProductRepository {
	r := &memoryProductRepository{}
	for _, p := range seed {
		r.products = append(r.products, p.Clone())
	}
	return r
}

func (r *memoryProductRepository) FindAll(ctx context.Context, page *domain.Page) (domain.Products, error) {
	return r.find(func(*domain.Product) bool { return true }, page), nil
}

func (r *memoryProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	i := r.indexOf(id)
	if i == -1 {
		return nil, domain.ErrProductNotFound
	}
	return r.products[i].Clone(), nil
}

func (r *memoryProductRepository) FindByName(ctx context.Context, name string, page *domain.Page) (domain.Products, error) {
	return r.find(func(p *domain.Product) bool { return p.Name == name }, page), nil
}

func (r *memoryProductRepository) FindByCategory(ctx context.Context, category string, page *domain.Page) (domain.Products, error) {
	return r.find(func(p *domain.Product) bool {
		for _, c := range p.Categories {
			if c == category {
				return true
			}
		}
		return false
	}, page), nil
}

// FindByAttribute matches products with an attribute element equal to attr
func (r *memoryProductRepository) FindByAttribute(ctx context.Context, attr map[string]string, page *domain.Page) (domain.Products, error) {
	return r.find(func(p *domain.Product) bool {
		for _, have := range p.Attributes {
			if maps.Equal(have, attr) {
				return true
			}
		}
		return false
	}, page), nil
}

func (r *memoryProductRepository) Save(ctx context.Context, product *domain.Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.upsert(product)
	return nil
}

func (r *memoryProductRepository) SaveAll(ctx context.Context, products domain.Products) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, p := range products {
		r.upsert(p)
	}
	return nil
}

func (r *memoryProductRepository) Update(ctx context.Context, id string, u domain.ProductUpdate) (domain.UpdateResult, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOf(id)
	if i == -1 {
		return domain.UpdateResult{}, nil
	}

	before := r.products[i]
	after := before.Clone()
	if u.Name != nil {
		after.Name = *u.Name
	}
	if u.Price != nil {
		after.Price = *u.Price
	}
	if u.Quantity != nil {
		after.Availability.Quantity = *u.Quantity
	}
	if u.Categories != nil {
		after.Categories = append([]string{}, u.Categories...)
	}
	if u.Description != nil {
		after.Description = *u.Description
	}
	if u.Attributes != nil {
		after.Attributes = (&domain.Product{Attributes: u.Attributes}).Clone().Attributes
	}
	if u.Ratings != nil {
		after.Ratings = append([]domain.Rating{}, u.Ratings...)
	}

	r.products[i] = after
	result := domain.UpdateResult{MatchedCount: 1}
	if !u.IsEmpty() {
		result.ModifiedCount = 1
	}
	return result, nil
}

func (r *memoryProductRepository) PushRating(ctx context.Context, id string, rating domain.Rating) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOf(id)
	if i == -1 {
		return nil, domain.ErrProductNotFound
	}

	r.products[i].Ratings = append(r.products[i].Ratings, rating)
	return r.products[i].Clone(), nil
}

func (r *memoryProductRepository) DeleteByID(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOf(id)
	if i == -1 {
		return nil
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *memoryProductRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// find returns copies of the matching products within the page window
func (r *memoryProductRepository) find(match func(*domain.Product) bool, page *domain.Page) domain.Products {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	found := domain.Products{}
	for _, p := range r.products {
		if match(p) {
			found = append(found, p.Clone())
		}
	}

	if page == nil {
		return found
	}
	start := page.Offset()
	if start >= len(found) {
		return domain.Products{}
	}
	end := start + page.Size
	if end > len(found) {
		end = len(found)
	}
	return found[start:end]
}

func (r *memoryProductRepository) upsert(product *domain.Product) {
	stored := product.Clone()
	if i := r.indexOf(product.ID); i != -1 {
		r.products[i] = stored
		return
	}
	r.products = append(r.products, stored)
}

// indexOf returns -1 when no product has the id
func (r *memoryProductRepository) indexOf(id string) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
