package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/service"
)

// DefaultMaxImportBytes bounds the size of an uploaded import file
const DefaultMaxImportBytes int64 = 10 << 20

// multipart parts above this size are spooled to disk
const multipartMemory = 128 * 1024

type ProductHandler struct {
	productService service.ProductService
	logger         hclog.Logger
	maxImportBytes int64
}

func NewProductHandler(ps service.ProductService, log hclog.Logger, maxImportBytes int64) *ProductHandler {
	if maxImportBytes <= 0 {
		maxImportBytes = DefaultMaxImportBytes
	}
	return &ProductHandler{
		productService: ps,
		logger:         log,
		maxImportBytes: maxImportBytes,
	}
}

// GetAllProducts handles GET /products/all-products
//
// swagger:route GET /products/all-products products listProducts
//
// Returns every product, optionally one page at a time.
//
// Responses:
//
//	200: productsResponse
//	400: errorResponse
//	500: errorResponse
func (h *ProductHandler) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	products, err := h.productService.GetAllProducts(r.Context(), page)
	if err != nil {
		h.logger.Error("Error getting products", "error", err)
		http.Error(w, "Error getting products", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/find-product/{productId}
//
// swagger:route GET /products/find-product/{productId} products getProduct
//
// Returns a product by ID, or null when it does not exist.
//
// Responses:
//
//	200: productResponse
//	500: errorResponse
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["productId"]

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("Error getting product", "id", id, "error", err)
		http.Error(w, "Error getting product", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// SearchProducts handles GET /products/search
//
// swagger:route GET /products/search products searchProducts
//
// Returns the products matching the search criteria in the request body.
//
// Responses:
//
//	200: productsResponse
//	400: errorResponse
//	500: errorResponse
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var criteria domain.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		h.logger.Debug("Error decoding search criteria", "error", err)
		http.Error(w, "Invalid search criteria", http.StatusBadRequest)
		return
	}

	products, err := h.productService.SearchProducts(r.Context(), criteria, page)
	if err != nil {
		h.logger.Error("Error searching products", "error", err)
		http.Error(w, "Error searching products", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// AddProduct handles POST /products/add-product
//
// swagger:route POST /products/add-product products addProduct
//
// Adds a new product.
//
// Responses:
//
//	201: productResponse
//	400: validationErrorResponse
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	// Retrieve the validated product from the context
	product, ok := r.Context().Value(ContextKeyProduct).(*domain.Product)
	if !ok {
		http.Error(w, "Invalid product data", http.StatusBadRequest)
		return
	}

	stored, err := h.productService.AddProduct(r.Context(), product)
	if err != nil {
		var ve domain.ValidationErrors
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, ValidationError{Messages: ve.Messages()})
			return
		}
		h.logger.Error("Error adding product", "error", err)
		http.Error(w, "Error adding product", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusCreated, stored)
}

// UpdateProduct handles PUT /products/update-product/{productId}
//
// swagger:route PUT /products/update-product/{productId} products updateProduct
//
// Applies the supplied fields to an existing product.
//
// Responses:
//
//	202: updateResponse
//	400: errorResponse
//	500: errorResponse
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["productId"]

	var patch domain.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Debug("Error decoding product patch", "id", id, "error", err)
		http.Error(w, "Invalid product data", http.StatusBadRequest)
		return
	}

	summary, err := h.productService.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuantity) {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Error updating product", "id", id, "error", err)
		http.Error(w, "Error updating product", http.StatusInternalServerError)
		return
	}

	writeText(w, http.StatusAccepted, summary)
}

// DeleteProduct handles DELETE /products/delete-product/{productId}
//
// swagger:route DELETE /products/delete-product/{productId} products deleteProduct
//
// Deletes a product. The message reports whether the product is gone.
//
// Responses:
//
//	202: messageResponse
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["productId"]

	deleted, err := h.productService.DeleteProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("Error deleting product", "id", id, "error", err)
	}

	msg := Message{Message: "Product deleted successfully"}
	if !deleted {
		msg.Message = "Product could not be deleted"
	}
	h.writeJSON(w, http.StatusAccepted, msg)
}

// AddRatings handles POST /products/{productId}/add-ratings
//
// swagger:route POST /products/{productId}/add-ratings ratings addRating
//
// Appends a rating to a product. Returns null when the product does not
// exist.
//
// Responses:
//
//	200: productResponse
//	400: validationErrorResponse
//	500: errorResponse
func (h *ProductHandler) AddRatings(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["productId"]

	var rating domain.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		h.logger.Debug("Error decoding rating", "id", id, "error", err)
		http.Error(w, "Invalid rating data", http.StatusBadRequest)
		return
	}

	product, err := h.productService.AddRating(r.Context(), id, rating)
	if err != nil {
		var ve domain.ValidationErrors
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, ValidationError{Messages: ve.Messages()})
			return
		}
		h.logger.Error("Error adding rating", "id", id, "error", err)
		http.Error(w, "Error adding rating", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// UpdateRates handles PUT /products/{productId}/{userId}/update-rates
//
// swagger:route PUT /products/{productId}/{userId}/update-rates ratings updateRating
//
// Changes the score of the rating submitted by userId.
//
// Responses:
//
//	200: productResponse
//	400: errorResponse
//	500: errorResponse
func (h *ProductHandler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, userID := vars["productId"], vars["userId"]

	newRating, err := strconv.Atoi(r.URL.Query().Get("newRating"))
	if err != nil {
		http.Error(w, "Invalid newRating", http.StatusBadRequest)
		return
	}

	product, err := h.productService.UpdateRating(r.Context(), id, userID, newRating)
	if err != nil {
		h.logger.Error("Error updating rating", "id", id, "user_id", userID, "error", err)
		http.Error(w, "Error updating rating", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// ImportJSON handles POST /products/import-json
//
// swagger:route POST /products/import-json products importProducts
//
// Imports every product of an uploaded JSON array.
//
// Consumes:
// - multipart/form-data
//
// Responses:
//
//	200: messageResponse
//	400: errorResponse
//	413: errorResponse
//	500: errorResponse
func (h *ProductHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxImportBytes {
		http.Error(w, "Import file too large", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			http.Error(w, "Import file too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Debug("Unable to parse multipart form", "error", err)
		writeText(w, http.StatusBadRequest, "Please upload a file.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil || header.Size == 0 {
		if file != nil {
			file.Close()
		}
		writeText(w, http.StatusBadRequest, "Please upload a file.")
		return
	}
	defer file.Close()

	h.logger.Info("Importing products", "filename", header.Filename, "size", header.Size)

	n, err := h.productService.ImportProducts(r.Context(), file)
	if err != nil {
		var ve domain.ValidationErrors
		switch {
		case errors.Is(err, domain.ErrEmptyImport):
			writeText(w, http.StatusBadRequest, "Please upload a file.")
		case errors.As(err, &ve):
			h.writeJSON(w, http.StatusBadRequest, ValidationError{Messages: ve.Messages()})
		default:
			h.logger.Error("Error importing products", "filename", header.Filename, "error", err)
			writeText(w, http.StatusInternalServerError, fmt.Sprintf("Error importing data: %s", err))
		}
		return
	}

	h.logger.Info("Imported products", "count", n)
	writeText(w, http.StatusOK, "Data imported Successfully.")
}

// Hello handles GET /products/hello
func (h *ProductHandler) Hello(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "hello world!!!")
}

func (h *ProductHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Unable to encode response", "error", err)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// pageFromQuery reads the optional pageNumber and pageSize parameters.
// The window is only applied when both are present.
func pageFromQuery(r *http.Request) (*domain.Page, error) {
	q := r.URL.Query()
	number, err := optionalInt(q.Get("pageNumber"))
	if err != nil {
		return nil, fmt.Errorf("invalid pageNumber: %w", err)
	}
	size, err := optionalInt(q.Get("pageSize"))
	if err != nil {
		return nil, fmt.Errorf("invalid pageSize: %w", err)
	}
	return domain.NewPage(number, size)
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
