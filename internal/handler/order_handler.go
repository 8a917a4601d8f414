package handler

import (
	"net/http"
	"time"

	"jewelry-backend/internal/middleware"
	"jewelry-backend/internal/repository"
	"jewelry-backend/internal/service"
	"jewelry-backend/pkg/pagination"
	"jewelry-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService   service.OrderService
	invoiceService service.InvoiceService
}

func NewOrderHandler(orderService service.OrderService, invoiceService service.InvoiceService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		invoiceService: invoiceService,
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.POST("", middleware.RequireRole("admin", "manager", "staff"), h.CreateOrder)
		orders.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListOrders)
		orders.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetOrder)
		orders.PUT("/:id", middleware.RequireRole("admin", "manager", "staff"), h.UpdateOrder)
		orders.PUT("/:id/status", middleware.RequireRole("admin", "manager", "staff"), h.UpdateStatus)
		orders.PUT("/:id/cancel", middleware.RequireRole("admin", "manager"), h.CancelOrder)
		orders.GET("/:id/history", middleware.RequireRole("admin", "manager", "staff"), h.GetHistory)
		orders.GET("/:id/invoice", middleware.RequireRole("admin", "manager", "staff"), h.GetInvoice)
	}

	// Order statistics live under a separate route group
	stats := router.Group("/api/statistics")
	{
		stats.GET("/orders", middleware.RequireRole("admin", "manager"), h.GetStats)
	}
}

// StatusUpdateRequest carries a requested status transition
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CancelRequest carries the cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateOrder creates a new order
// @Summary      Create order
// @Description  Creates a new order with line items; prices are snapshotted from the catalog
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders returns a paginated list of orders
// @Summary      List orders
// @Description  Retrieves a paginated list of orders, optionally filtered by status and type
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (pending, confirmed, in_progress, completed, cancelled)"
// @Param        type    query     string  false  "Filter by order type (SALE, REPAIR, CUSTOM)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.OrderListFilter{
		Status:    c.Query("status"),
		OrderType: c.Query("type"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// GetOrder returns a single order with full details
// @Summary      Get order
// @Description  Retrieves an order with items, customer and staff
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrder updates an order's editable fields
// @Summary      Update order
// @Description  Updates special instructions and estimated completion while the order is pending or confirmed
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      service.UpdateOrderRequest  true  "Update Order Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateStatus transitions an order along the status graph
// @Summary      Update order status
// @Description  Moves an order to the requested status if the transition is legal
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Order ID"
// @Param        payload  body      StatusUpdateRequest  true  "Status Update Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CancelOrder cancels a pending or confirmed order
// @Summary      Cancel order
// @Description  Cancels an order that has not entered production and restores reserved stock
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Order ID"
// @Param        payload  body      CancelRequest  true  "Cancel Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id}/cancel [put]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), currentUserID(c), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// GetHistory returns the order's status transition audit trail
// @Summary      Get order history
// @Description  Retrieves all status transitions for an order in chronological order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=[]model.StatusHistory}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/history [get]
func (h *OrderHandler) GetHistory(c *gin.Context) {
	entries, err := h.orderService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetInvoice renders the order's tax invoice as a PDF
// @Summary      Get order invoice
// @Description  Renders a GST tax invoice PDF for the order
// @Tags         orders
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path      string  true  "Order ID"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id}/invoice [get]
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	pdf, invoiceNumber, err := h.invoiceService.RenderOrderInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+invoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetStats returns aggregate order statistics
// @Summary      Order statistics
// @Description  Retrieves per-status counts, revenue and average order value for an optional date range
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "Range start (RFC3339)"
// @Param        end_date    query     string  false  "Range end (RFC3339)"
// @Success      200         {object}  response.Response{data=service.OrderStats}
// @Failure      400         {object}  response.Response
// @Router       /api/statistics/orders [get]
func (h *OrderHandler) GetStats(c *gin.Context) {
	var start, end *time.Time
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date, expected RFC3339"))
			return
		}
		start = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date, expected RFC3339"))
			return
		}
		end = &parsed
	}

	stats, err := h.orderService.GetStats(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
