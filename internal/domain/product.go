package domain

import "errors"

// Product is a canonical catalog entry. Identity fields are read-only once the
// product is loaded; only Listings grows while matching.
type Product struct {
	ProductName   string    `json:"product_name"`
	Manufacturer  string    `json:"manufacturer"`
	Model         string    `json:"model"`
	Family        string    `json:"family"`
	AnnouncedDate string    `json:"announced-date"`
	Listings      []Listing `json:"listings,omitempty"`
}

// Validate rejects products that carry no name.
func (p Product) Validate() error {
	if p.ProductName == "" {
		return errors.New("product_name is required")
	}
	return nil
}

// Listing is a free-text offer for some product, e.g. a shop entry.
// Price is kept as the decimal string it arrived as.
type Listing struct {
	Title        string `json:"title"`
	Manufacturer string `json:"manufacturer"`
	Currency     string `json:"currency"`
	Price        string `json:"price"`
}

// Validate rejects listings without a title.
func (l Listing) Validate() error {
	if l.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

// ProductID is a stable slot handle into the product catalog.
type ProductID int

// ProductResult is the output record for one product.
type ProductResult struct {
	ProductName string    `json:"product_name"`
	Listings    []Listing `json:"listings"`
}

// ProductTitles is the compact output record carrying listing titles only.
type ProductTitles struct {
	ProductName string   `json:"product_name"`
	Listings    []string `json:"listings"`
}

// NewProductResult builds the output record for p.
func NewProductResult(p Product) ProductResult {
	listings := p.Listings
	if listings == nil {
		listings = []Listing{}
	}
	return ProductResult{ProductName: p.ProductName, Listings: listings}
}

// NewProductTitles builds the compact output record for p.
func NewProductTitles(p Product) ProductTitles {
	titles := make([]string, 0, len(p.Listings))
	for _, l := range p.Listings {
		titles = append(titles, l.Title)
	}
	return ProductTitles{ProductName: p.ProductName, Listings: titles}
}
