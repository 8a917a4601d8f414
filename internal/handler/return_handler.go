package handler

import (
	"net/http"

	"jewelry-backend/internal/middleware"
	"jewelry-backend/internal/repository"
	"jewelry-backend/internal/service"
	"jewelry-backend/pkg/pagination"
	"jewelry-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReturnHandler struct {
	returnService service.ReturnService
}

func NewReturnHandler(returnService service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

func (h *ReturnHandler) RegisterRoutes(router *gin.RouterGroup) {
	returns := router.Group("/api/returns")
	{
		returns.POST("", middleware.RequireRole("admin", "manager", "staff"), h.CreateReturn)
		returns.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListReturns)
		returns.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetReturn)
		returns.PUT("/:id/approve", middleware.RequireRole("admin", "manager"), h.ApproveReturn)
		returns.PUT("/:id/reject", middleware.RequireRole("admin", "manager"), h.RejectReturn)
		returns.PUT("/:id/process", middleware.RequireRole("admin", "manager"), h.ProcessReturn)
		returns.PUT("/:id/status", middleware.RequireRole("admin", "manager", "staff"), h.UpdateStatus)
		returns.GET("/:id/history", middleware.RequireRole("admin", "manager", "staff"), h.GetHistory)
	}
}

// RejectReturnRequest carries the mandatory rejection reason
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// NotesRequest carries optional free-text notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// CreateReturn creates a return or exchange request
// @Summary      Create return
// @Description  Creates a return or exchange request against a completed order within the return window
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateReturnRequest  true  "Create Return Payload"
// @Success      201      {object}  response.Response{data=model.ReturnRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/returns [post]
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	var req service.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ret, err := h.returnService.CreateReturn(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ret))
}

// ListReturns returns a paginated list of return requests
// @Summary      List returns
// @Description  Retrieves a paginated list of return requests, optionally filtered by status and type
// @Tags         returns
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Param        type    query     string  false  "Filter by return type (RETURN, EXCHANGE)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/returns [get]
func (h *ReturnHandler) ListReturns(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.ReturnListFilter{
		Status:     c.Query("status"),
		ReturnType: c.Query("type"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	returns, total, err := h.returnService.ListReturns(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"returns": returns,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetReturn returns a single return request
// @Summary      Get return
// @Description  Retrieves a return request with items, exchange items and order
// @Tags         returns
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Return ID"
// @Success      200  {object}  response.Response{data=model.ReturnRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	ret, err := h.returnService.GetReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

// ApproveReturn approves a requested return
// @Summary      Approve return
// @Description  Approves a return request awaiting review
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string        true   "Return ID"
// @Param        payload  body      NotesRequest  false  "Approval Notes"
// @Success      200      {object}  response.Response{data=model.ReturnRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/returns/{id}/approve [put]
func (h *ReturnHandler) ApproveReturn(c *gin.Context) {
	var req NotesRequest
	_ = c.ShouldBindJSON(&req)

	ret, err := h.returnService.ApproveReturn(c.Request.Context(), currentUserID(c), c.Param("id"), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

// RejectReturn rejects a requested return
// @Summary      Reject return
// @Description  Rejects a return request with a mandatory reason; a rejected return may be re-requested
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Return ID"
// @Param        payload  body      RejectReturnRequest  true  "Rejection Payload"
// @Success      200      {object}  response.Response{data=model.ReturnRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/returns/{id}/reject [put]
func (h *ReturnHandler) RejectReturn(c *gin.Context) {
	var req RejectReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ret, err := h.returnService.RejectReturn(c.Request.Context(), currentUserID(c), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

// ProcessReturnRequest optionally overrides the refund method chosen at intake
type ProcessReturnRequest struct {
	RefundMethod string `json:"refund_method"`
}

// ProcessReturn executes the refund and stock movements for an approved return
// @Summary      Process return
// @Description  Executes the refund, marks the return processed and restores stock
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true   "Return ID"
// @Param        payload  body      ProcessReturnRequest  false  "Process Payload"
// @Success      200      {object}  response.Response{data=model.ReturnRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/returns/{id}/process [put]
func (h *ReturnHandler) ProcessReturn(c *gin.Context) {
	var req ProcessReturnRequest
	_ = c.ShouldBindJSON(&req)

	ret, err := h.returnService.ProcessReturn(c.Request.Context(), currentUserID(c), c.Param("id"), req.RefundMethod)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

// UpdateStatus transitions a return along the status graph
// @Summary      Update return status
// @Description  Moves a return to the requested status if the transition is legal; processing has its own endpoint
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Return ID"
// @Param        payload  body      StatusUpdateRequest  true  "Status Update Payload"
// @Success      200      {object}  response.Response{data=model.ReturnRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/returns/{id}/status [put]
func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ret, err := h.returnService.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

// GetHistory returns the return's status transition audit trail
// @Summary      Get return history
// @Description  Retrieves all status transitions for a return in chronological order
// @Tags         returns
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Return ID"
// @Success      200  {object}  response.Response{data=[]model.StatusHistory}
// @Failure      404  {object}  response.Response
// @Router       /api/returns/{id}/history [get]
func (h *ReturnHandler) GetHistory(c *gin.Context) {
	entries, err := h.returnService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
