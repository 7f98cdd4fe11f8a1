package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/kahvecikaan/product-catalog/internal/search"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, page *domain.Page) (domain.Products, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, criteria domain.SearchCriteria, page *domain.Page) (domain.Products, error)
	AddProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (string, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	AddRating(ctx context.Context, productID string, rating domain.Rating) (*domain.Product, error)
	UpdateRating(ctx context.Context, productID, userID string, newRating int) (*domain.Product, error)
	ImportProducts(ctx context.Context, r io.Reader) (int, error)
}

type productService struct {
	repo      repository.ProductRepository
	engine    *search.Engine
	eventBus  *events.EventBus[any]
	validator *domain.Validation
	logger    hclog.Logger
}

func NewProductService(
	repo repository.ProductRepository,
	eventBus *events.EventBus[any],
	validator *domain.Validation,
	logger hclog.Logger) ProductService {
	return &productService{
		repo:      repo,
		engine:    search.NewEngine(repo, logger.Named("search")),
		eventBus:  eventBus,
		validator: validator,
		logger:    logger,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, page *domain.Page) (domain.Products, error) {
	s.logger.Debug("Getting all products", "paged", page != nil)

	products, err := s.repo.FindAll(ctx, page)
	if err != nil {
		s.logger.Error("Unable to get products", "error", err)
		return nil, err
	}
	return products, nil
}

// GetProduct returns nil without error when the product does not exist
func (s *productService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.logger.Debug("Getting product by ID", "id", id)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, nil
		}
		s.logger.Error("Unable to get the product by ID", "id", id, "error", err)
		return nil, err
	}
	return product, nil
}

func (s *productService) SearchProducts(ctx context.Context, criteria domain.SearchCriteria, page *domain.Page) (domain.Products, error) {
	s.logger.Debug("Searching products",
		"by_name", criteria.Name != nil,
		"categories", criteria.Categories,
		"attributes", len(criteria.Attributes))

	products, err := s.engine.Search(ctx, criteria, page)
	if err != nil {
		s.logger.Error("Unable to search products", "error", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) AddProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, domain.ErrMissingProduct
	}
	s.logger.Debug("Adding new product", "name", product.Name)

	if errs := s.validator.Validate(product); len(errs) > 0 {
		return nil, errs
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Unable to add product", "name", product.Name, "error", err)
		return nil, err
	}

	s.eventBus.Publish(events.ProductAdded{ProductID: product.ID})
	return product, nil
}

// UpdateProduct applies the supplied fields of patch in a fixed order. A
// negative quantity on an in-stock product aborts the whole update.
func (s *productService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (string, error) {
	s.logger.Debug("Updating product", "id", id)

	var u domain.ProductUpdate

	if patch.Name != nil {
		u.Name = patch.Name
	}

	if patch.Price != nil && *patch.Price > 0 {
		u.Price = patch.Price
	}

	if a := patch.Availability; a != nil && a.InStock {
		if a.Quantity < 0 {
			s.logger.Debug("Rejecting negative quantity", "id", id, "quantity", a.Quantity)
			return "", domain.QuantityError{Quantity: a.Quantity}
		}
		qty := a.Quantity
		u.Quantity = &qty
	}

	if patch.Categories != nil {
		u.Categories = patch.Categories
	}

	if patch.Description != nil {
		u.Description = patch.Description
	}

	if patch.Attributes != nil {
		u.Attributes = patch.Attributes
	}

	if patch.Ratings != nil {
		u.Ratings = patch.Ratings
	}

	result, err := s.repo.Update(ctx, id, u)
	if err != nil {
		s.logger.Error("Unable to update product", "id", id, "error", err)
		return "", err
	}

	if result.MatchedCount > 0 {
		s.eventBus.Publish(events.ProductUpdated{ProductID: id})
	}

	return fmt.Sprintf("Updated Product: matched=%d modified=%d",
		result.MatchedCount, result.ModifiedCount), nil
}

// DeleteProduct reports whether the product is absent after the delete
func (s *productService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.logger.Debug("Deleting product", "id", id)

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.logger.Error("Unable to delete product", "id", id, "error", err)
		return false, err
	}

	_, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		s.eventBus.Publish(events.ProductDeleted{ProductID: id})
		return true, nil
	case err != nil:
		s.logger.Error("Unable to verify product deletion", "id", id, "error", err)
		return false, err
	default:
		s.logger.Warn("Product still present after delete", "id", id)
		return false, nil
	}
}

// AddRating appends rating without checking for an existing entry by the
// same user. It returns nil when the product does not exist.
func (s *productService) AddRating(ctx context.Context, productID string, rating domain.Rating) (*domain.Product, error) {
	s.logger.Debug("Adding rating", "id", productID, "user_id", rating.UserID)

	if errs := s.validator.Validate(&rating); len(errs) > 0 {
		return nil, errs
	}

	product, err := s.repo.PushRating(ctx, productID, rating)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Debug("No product to rate", "id", productID)
			return nil, nil
		}
		s.logger.Error("Unable to add rating", "id", productID, "error", err)
		return nil, err
	}

	s.eventBus.Publish(events.RatingAdded{
		ProductID: productID,
		UserID:    rating.UserID,
		Rating:    rating.Rating,
	})
	return product, nil
}

// UpdateRating changes the score of the first rating by userID. The read and
// the write are separate round trips, so concurrent writers on the same
// product can lose updates. A missing product yields nil, a missing rating
// leaves the product unchanged.
func (s *productService) UpdateRating(ctx context.Context, productID, userID string, newRating int) (*domain.Product, error) {
	s.logger.Debug("Updating rating", "id", productID, "user_id", userID, "rating", newRating)

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Debug("No product with given id", "id", productID)
			return nil, nil
		}
		s.logger.Error("Unable to get product for rating update", "id", productID, "error", err)
		return nil, err
	}

	updated := false
	for i := range product.Ratings {
		if product.Ratings[i].UserID == userID {
			product.Ratings[i].Rating = newRating
			updated = true
			break
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Unable to save rating update", "id", productID, "error", err)
		return nil, err
	}

	if updated {
		s.eventBus.Publish(events.RatingUpdated{
			ProductID: productID,
			UserID:    userID,
			Rating:    newRating,
		})
	}

	return s.GetProduct(ctx, productID)
}

// ImportProducts reads a JSON array of products from r and stores them all.
// The whole payload is held in memory.
func (s *productService) ImportProducts(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("unable to read import payload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return 0, domain.ErrEmptyImport
	}

	var products domain.Products
	if err := json.Unmarshal(data, &products); err != nil {
		return 0, fmt.Errorf("unable to decode products: %w", err)
	}

	var errs domain.ValidationErrors
	for i, p := range products {
		if p == nil {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("[%d]", i),
				Message: "product is null",
			})
			continue
		}
		for _, ve := range s.validator.Validate(p) {
			ve.Field = fmt.Sprintf("[%d].%s", i, ve.Field)
			errs = append(errs, ve)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	}
	if len(errs) > 0 {
		return 0, errs
	}

	s.logger.Debug("Importing products", "count", len(products))
	if err := s.repo.SaveAll(ctx, products); err != nil {
		s.logger.Error("Unable to import products", "count", len(products), "error", err)
		return 0, err
	}

	s.eventBus.Publish(events.ProductsImported{Count: len(products)})
	return len(products), nil
}
