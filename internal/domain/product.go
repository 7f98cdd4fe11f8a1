package domain

import "math"

// Product represents a catalog item
//
// swagger:model
type Product struct {
	// The ID of the product
	//
	// required: true
	// example: 6f1c2a4e-0d7b-4a8e-9c55-3d9a1b7e2f10
	ID string `json:"id" bson:"_id"`

	// The name of the product
	//
	// required: true
	// example: Widget
	Name string `json:"name" bson:"name" validate:"required"`

	// The description of the product
	//
	// required: false
	Description string `json:"description" bson:"description"`

	// The price of the product
	//
	// required: false
	// min: 0
	// example: 9.99
	Price float64 `json:"price" bson:"price" validate:"gte=0"`

	// Category labels, in order
	Categories []string `json:"categories" bson:"categories" validate:"dive,required"`

	// Attribute maps, each a bag of key/value pairs
	Attributes []map[string]string `json:"attributes" bson:"attributes" validate:"attributes"`

	Availability Availability `json:"availability" bson:"availability"`

	Ratings []Rating `json:"ratings" bson:"ratings" validate:"dive"`
}

// Availability is the stock record of a product
type Availability struct {
	InStock  bool `json:"inStock" bson:"inStock"`
	Quantity int  `json:"quantity" bson:"quantity" validate:"gte=0"`
}

// Rating is a single score submitted for a product
//
// swagger:model
type Rating struct {
	// The submitter of the rating
	//
	// required: true
	UserID string `json:"userId" bson:"userId" validate:"required"`

	// The score
	//
	// required: true
	Rating int `json:"rating" bson:"rating"`

	Comment string `json:"comment,omitempty" bson:"comment,omitempty"`
}

// Products is a collection of Product
type Products []*Product

// Clone returns a deep copy of the product
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}

	c := *p
	if p.Categories != nil {
		c.Categories = append([]string{}, p.Categories...)
	}
	if p.Attributes != nil {
		c.Attributes = make([]map[string]string, len(p.Attributes))
		for i, attr := range p.Attributes {
			c.Attributes[i] = cloneMap(attr)
		}
	}
	if p.Ratings != nil {
		c.Ratings = append([]Rating{}, p.Ratings...)
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// ProductPatch carries the fields of a partial update. A nil field was not
// supplied by the caller and is left untouched.
type ProductPatch struct {
	Name         *string             `json:"name"`
	Description  *string             `json:"description"`
	Price        *float64            `json:"price"`
	Categories   []string            `json:"categories"`
	Attributes   []map[string]string `json:"attributes"`
	Availability *Availability       `json:"availability"`
	Ratings      []Rating            `json:"ratings"`
}

// ProductUpdate is the set of fields a partial update writes to storage
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Quantity    *int
	Categories  []string
	Description *string
	Attributes  []map[string]string
	Ratings     []Rating
}

// IsEmpty reports whether the update would change nothing
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.Quantity == nil &&
		u.Categories == nil && u.Description == nil &&
		u.Attributes == nil && u.Ratings == nil
}

// UpdateResult reports how many documents an update touched
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// SearchCriteria is a partially specified product query. Absent fields
// impose no constraint.
//
// swagger:model
type SearchCriteria struct {
	Name       *string             `json:"name"`
	Categories []string            `json:"categories"`
	Attributes []map[string]string `json:"attributes"`
}

// IsEmpty reports whether no criterion was supplied
func (c SearchCriteria) IsEmpty() bool {
	return c.Name == nil && len(c.Categories) == 0 && len(c.Attributes) == 0
}

// Page is an optional pagination window. A nil *Page means unpaged.
type Page struct {
	Number int
	Size   int
}

// NewPage builds a window from optional query values. It returns nil when
// either value is absent. The offset of a valid window fits in an int.
func NewPage(number, size *int) (*Page, error) {
	if number == nil || size == nil {
		return nil, nil
	}
	if *number < 0 || *size < 1 || *number > math.MaxInt / *size {
		return nil, ErrInvalidPage
	}
	return &Page{Number: *number, Size: *size}, nil
}

// Offset is the number of items skipped before the window starts
func (p *Page) Offset() int {
	return p.Number * p.Size
}
