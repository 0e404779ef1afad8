package usecase

import (
	"fmt"

	"github.com/listingmatch/backend/internal/domain"
)

// Catalog owns the product collection. Products are addressed by their slot
// handle, so indexes built over the catalog stay valid while listings are attached.
type Catalog struct {
	products []domain.Product
}

// NewCatalog takes ownership of products.
func NewCatalog(products []domain.Product) *Catalog {
	return &Catalog{products: products}
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Get returns the product stored at id.
func (c *Catalog) Get(id domain.ProductID) (domain.Product, bool) {
	if !c.valid(id) {
		return domain.Product{}, false
	}
	return c.products[id], true
}

// Name returns the product name stored at id, or "" for an unknown handle.
func (c *Catalog) Name(id domain.ProductID) string {
	if !c.valid(id) {
		return ""
	}
	return c.products[id].ProductName
}

// Attach appends a matched listing to the product at id.
func (c *Catalog) Attach(id domain.ProductID, listing domain.Listing) error {
	if !c.valid(id) {
		return fmt.Errorf("attach listing: unknown product id %d", id)
	}
	c.products[id].Listings = append(c.products[id].Listings, listing)
	return nil
}

// Products exposes the owned collection in catalog order. Callers must not
// change identity fields while an index built from it is in use.
func (c *Catalog) Products() []domain.Product {
	return c.products
}

// BuildIndex builds an inverted index over the current catalog.
func (c *Catalog) BuildIndex() *InvertedIndex {
	return BuildIndex(c.products)
}

func (c *Catalog) valid(id domain.ProductID) bool {
	return id >= 0 && int(id) < len(c.products)
}
