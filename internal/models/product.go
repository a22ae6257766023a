package models

// Product is a catalog item that always belongs to exactly one category.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"nombre"`
	Price      float64   `json:"precio"`
	Quantity   int       `json:"cantidad"`
	CategoryID int64     `json:"categoria_id"`
	Category   *Category `json:"categoria,omitempty"`
}

// ProductInput holds the data for creating a product.
type ProductInput struct {
	Name       string
	Price      float64
	Quantity   int
	CategoryID int64
}

// ProductPatch carries the fields of a partial product update. A nil field
// was not supplied and is left untouched.
type ProductPatch struct {
	Name       *string  `json:"nombre"`
	Price      *float64 `json:"precio"`
	Quantity   *int     `json:"cantidad"`
	CategoryID *int64   `json:"categoria_id"`
}

// IsEmpty reports whether no field was supplied.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Quantity == nil && p.CategoryID == nil
}
