// Package classification of Product Catalog API
//
// # Documentation for Product Catalog API
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import "github.com/kahvecikaan/product-catalog/internal/domain"

// NOTE: the wrapper types are for documentation only

// Generic error message returned as a string
// swagger:response errorResponse
type errorResponseWrapper struct {
	// Description of the error
	// in: body
	Body string
}

// Validation errors defined as an array of strings
// swagger:response validationErrorResponse
type validationErrorResponseWrapper struct {
	// Collection of the errors
	// in: body
	Body ValidationError
}

// A list of products
// swagger:response productsResponse
type productsResponseWrapper struct {
	// in: body
	Body []domain.Product
}

// Data structure representing a single product
// swagger:response productResponse
type productResponseWrapper struct {
	// A single product, or null
	// in: body
	Body domain.Product
}

// Summary of a partial update
// swagger:response updateResponse
type updateResponseWrapper struct {
	// in: body
	Body string
}

// A status message
// swagger:response messageResponse
type messageResponseWrapper struct {
	// in: body
	Body Message
}

// swagger:parameters getProduct deleteProduct updateProduct addRating updateRating
type productIDParamsWrapper struct {
	// The ID of the product
	// in: path
	// required: true
	ID string `json:"productId"`
}

// swagger:parameters updateRating
type userIDParamsWrapper struct {
	// The submitter of the rating
	// in: path
	// required: true
	UserID string `json:"userId"`

	// The new score
	// in: query
	// required: true
	NewRating int `json:"newRating"`
}

// swagger:parameters listProducts searchProducts
type pageParamsWrapper struct {
	// Zero-based page number, applied together with pageSize
	// in: query
	PageNumber int `json:"pageNumber"`

	// Page size, applied together with pageNumber
	// in: query
	PageSize int `json:"pageSize"`
}

// swagger:parameters addProduct
type productBodyParamsWrapper struct {
	// in: body
	// required: true
	Body domain.Product
}

// swagger:parameters updateProduct
type productPatchParamsWrapper struct {
	// Fields to change, absent fields are left untouched
	// in: body
	// required: true
	Body domain.ProductPatch
}

// swagger:parameters addRating
type ratingBodyParamsWrapper struct {
	// in: body
	// required: true
	Body domain.Rating
}

// Message is a JSON status message
//
// swagger:model
type Message struct {
	// required: true
	Message string `json:"message"`
}

// ValidationError defines the structure for API validation error responses
//
// swagger:model
type ValidationError struct {
	// The validation errors
	//
	// required: true
	Messages []string `json:"messages"`
}
