package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// ProductHandler serves catalog endpoints.
type ProductHandler struct {
	facade CatalogFacade
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(facade CatalogFacade) *ProductHandler {
	return &ProductHandler{facade: facade}
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	products, cached, err := h.facade.Products(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductsResponse{Success: true, Data: products, Cached: cached, Count: len(products)})
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	product, cached, err := h.facade.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductResponse{Success: true, Data: product, Cached: cached})
}

// Category handles GET /api/products/category/:category.
func (h *ProductHandler) Category(c *gin.Context) {
	category := c.Param("category")
	products, err := h.facade.ProductsByCategory(c.Request.Context(), category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductsResponse{Success: true, Data: products, Count: len(products), Category: category})
}

// Search handles GET /api/products/search.
func (h *ProductHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	products, err := h.facade.SearchProducts(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductsResponse{Success: true, Data: products, Count: len(products), Query: query})
}

// Invalidate handles POST /api/products/cache/invalidate.
func (h *ProductHandler) Invalidate(c *gin.Context) {
	if err := h.facade.InvalidateProducts(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "Product cache cleared"})
}
