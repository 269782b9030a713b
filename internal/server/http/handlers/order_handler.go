package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Submit handles POST /api/orders.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.facade.SubmitOrder(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSubmitOrderResponse(res))
}

// Get handles GET /api/orders/:orderId.
func (h *OrderHandler) Get(c *gin.Context) {
	res, err := h.facade.LookupOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderLookupResponse(res))
}

// ByCustomer handles GET /api/orders/customer/:email.
func (h *OrderHandler) ByCustomer(c *gin.Context) {
	page, limit := pageParams(c)
	list, err := h.facade.CustomerOrders(c.Request.Context(), c.Param("email"), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListEnvelope{Success: true, Data: dto.NewOrders(list.Orders), Pagination: dto.NewPagination(list.Page)})
}

// List handles GET /api/admin/orders.
func (h *OrderHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	filter := model.OrderFilter{Status: model.OrderStatus(c.Query("status")), Page: page, Limit: limit}
	list, err := h.facade.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListEnvelope{Success: true, Data: dto.NewOrders(list.Orders), Pagination: dto.NewPagination(list.Page)})
}

// Shipping handles POST /api/orders/shipping/calculate.
func (h *OrderHandler) Shipping(c *gin.Context) {
	var req dto.ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	quote, err := h.facade.QuoteShipping(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: quote})
}

// Production handles POST /api/orders/:orderId/production.
func (h *OrderHandler) Production(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid order id")
		return
	}
	order, err := h.facade.RetryProduction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: dto.NewOrder(*order), Message: "Order sent to production"})
}
