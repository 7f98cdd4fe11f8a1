package domain

import (
	"errors"
	"fmt"
)

// Domain-level errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrMissingProduct  = errors.New("missing product")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPage     = errors.New("invalid page window")
	ErrEmptyImport     = errors.New("empty import payload")
)

// QuantityError reports a negative stock quantity on an in-stock product
type QuantityError struct {
	Quantity int
}

func (e QuantityError) Error() string {
	return fmt.Sprintf("Invalid value: %d", e.Quantity)
}

// Is lets errors.Is match QuantityError against ErrInvalidQuantity
func (e QuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}
