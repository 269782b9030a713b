package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CartHandler manages session cart endpoints.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.facade.Cart(c.Request.Context(), SessionID(c))
	h.respond(c, http.StatusOK, cart, err)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cart, err := h.facade.AddCartItem(c.Request.Context(), SessionID(c), req.Input())
	h.respond(c, http.StatusOK, cart, err)
}

// UpdateItem handles PUT /api/cart/items/:productId.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	key := model.LineKey{ProductID: c.Param("productId"), VariantID: req.VariantID.String()}
	cart, err := h.facade.UpdateCartItem(c.Request.Context(), SessionID(c), key, *req.Quantity)
	h.respond(c, http.StatusOK, cart, err)
}

// RemoveItem handles DELETE /api/cart/items/:productId.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	key := model.LineKey{ProductID: c.Param("productId"), VariantID: c.Query("variantId")}
	cart, err := h.facade.RemoveCartItem(c.Request.Context(), SessionID(c), key)
	h.respond(c, http.StatusOK, cart, err)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.facade.ClearCart(c.Request.Context(), SessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header(SessionHeader, cart.ID)
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: dto.NewCartResponse(cart), Message: "Cart cleared"})
}

// Sync handles POST /api/cart/sync.
func (h *CartHandler) Sync(c *gin.Context) {
	var req dto.SyncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cart, err := h.facade.SyncCart(c.Request.Context(), SessionID(c), req.Inputs())
	h.respond(c, http.StatusOK, cart, err)
}

// Merge handles POST /api/cart/merge.
func (h *CartHandler) Merge(c *gin.Context) {
	var req dto.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cart, err := h.facade.MergeCart(c.Request.Context(), SessionID(c), req.Email)
	h.respond(c, http.StatusOK, cart, err)
}

func (h *CartHandler) respond(c *gin.Context, status int, cart *model.CartSession, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header(SessionHeader, cart.ID)
	c.JSON(status, dto.Envelope{Success: true, Data: dto.NewCartResponse(cart)})
}
