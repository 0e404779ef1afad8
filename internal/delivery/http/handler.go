package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/listingmatch/backend/internal/domain"
	"github.com/listingmatch/backend/internal/usecase"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// LookupService is the read-only resolution API the handlers depend on.
type LookupService interface {
	Resolve(ctx context.Context, listing domain.Listing) (*usecase.ResolvedListing, error)
	ProductsForKeyword(keyword string) ([]string, error)
	Stats() usecase.IndexStats
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lookup LookupService
}

// NewHandler creates a new HTTP handler
func NewHandler(lookup LookupService) *Handler {
	return &Handler{lookup: lookup}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "listingmatch",
		"version": Version,
	})
}

// ResolveListing resolves a posted listing against the product index
func (h *Handler) ResolveListing(c *gin.Context) {
	var listing domain.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing: " + err.Error()})
		return
	}

	resolved, err := h.lookup.Resolve(c.Request.Context(), listing)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "listing title is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resolved)
}

// KeywordProducts lists the products indexed under a keyword
func (h *Handler) KeywordProducts(c *gin.Context) {
	keyword := c.Param("keyword")

	names, err := h.lookup.ProductsForKeyword(keyword)
	if err != nil {
		if errors.Is(err, domain.ErrKeywordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no product carries keyword " + keyword})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyword":  keyword,
		"products": names,
	})
}

// Stats reports the size of the served index
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.lookup.Stats())
}
