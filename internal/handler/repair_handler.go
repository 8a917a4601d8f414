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

type RepairHandler struct {
	repairService service.RepairService
}

func NewRepairHandler(repairService service.RepairService) *RepairHandler {
	return &RepairHandler{repairService: repairService}
}

func (h *RepairHandler) RegisterRoutes(router *gin.RouterGroup) {
	repairs := router.Group("/api/repairs")
	{
		repairs.POST("", middleware.RequireRole("admin", "manager", "staff"), h.CreateRepair)
		repairs.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListRepairs)
		repairs.GET("/queue", middleware.RequireRole("admin", "manager", "staff"), h.GetQueue)
		repairs.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetRepair)
		repairs.PUT("/:id", middleware.RequireRole("admin", "manager", "staff"), h.UpdateRepair)
		repairs.PUT("/:id/status", middleware.RequireRole("admin", "manager", "staff"), h.UpdateStatus)
		repairs.POST("/:id/photos", middleware.RequireRole("admin", "manager", "staff"), h.UploadPhotos)
		repairs.GET("/:id/history", middleware.RequireRole("admin", "manager", "staff"), h.GetHistory)
	}
}

// CreateRepair creates a new repair ticket
// @Summary      Create repair
// @Description  Creates a repair ticket attached to an existing order
// @Tags         repairs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRepairRequest  true  "Create Repair Payload"
// @Success      201      {object}  response.Response{data=model.RepairRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/repairs [post]
func (h *RepairHandler) CreateRepair(c *gin.Context) {
	var req service.CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	repair, err := h.repairService.CreateRepair(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, repair))
}

// ListRepairs returns a paginated list of repair tickets
// @Summary      List repairs
// @Description  Retrieves a paginated list of repairs, optionally filtered by status and technician
// @Tags         repairs
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "Filter by status"
// @Param        technician_id  query     string  false  "Filter by assigned technician"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Failure      500            {object}  response.Response
// @Router       /api/repairs [get]
func (h *RepairHandler) ListRepairs(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.RepairListFilter{
		Status:       c.Query("status"),
		TechnicianID: c.Query("technician_id"),
		Page:         params.Page,
		Limit:        params.Limit,
	}

	repairs, total, err := h.repairService.ListRepairs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"repairs": repairs,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetQueue returns the open repair work queue
// @Summary      Repair queue
// @Description  Retrieves open repairs ordered by estimated completion then intake time
// @Tags         repairs
// @Security     BearerAuth
// @Produce      json
// @Param        technician_id  query     string  false  "Filter by assigned technician"
// @Success      200            {object}  response.Response{data=[]model.RepairRequest}
// @Failure      400            {object}  response.Response
// @Router       /api/repairs/queue [get]
func (h *RepairHandler) GetQueue(c *gin.Context) {
	repairs, err := h.repairService.GetQueue(c.Request.Context(), c.Query("technician_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, repairs))
}

// GetRepair returns a single repair ticket
// @Summary      Get repair
// @Description  Retrieves a repair ticket with order and technician
// @Tags         repairs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Repair ID"
// @Success      200  {object}  response.Response{data=model.RepairRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/repairs/{id} [get]
func (h *RepairHandler) GetRepair(c *gin.Context) {
	repair, err := h.repairService.GetRepair(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, repair))
}

// UpdateRepair updates a repair ticket's editable fields
// @Summary      Update repair
// @Description  Updates assessment, costs, schedule, technician and customer approval
// @Tags         repairs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Repair ID"
// @Param        payload  body      service.UpdateRepairRequest  true  "Update Repair Payload"
// @Success      200      {object}  response.Response{data=model.RepairRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/repairs/{id} [put]
func (h *RepairHandler) UpdateRepair(c *gin.Context) {
	var req service.UpdateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	repair, err := h.repairService.UpdateRepair(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, repair))
}

// UpdateStatus transitions a repair along the status graph
// @Summary      Update repair status
// @Description  Moves a repair to the requested status if the transition is legal
// @Tags         repairs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Repair ID"
// @Param        payload  body      StatusUpdateRequest  true  "Status Update Payload"
// @Success      200      {object}  response.Response{data=model.RepairRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/repairs/{id}/status [put]
func (h *RepairHandler) UpdateStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	repair, err := h.repairService.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, repair))
}

// UploadPhotos replaces a repair's before or after photo set
// @Summary      Upload repair photos
// @Description  Replaces the before or after photo set with the supplied URLs
// @Tags         repairs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Repair ID"
// @Param        payload  body      service.UploadPhotosRequest  true  "Upload Photos Payload"
// @Success      200      {object}  response.Response{data=model.RepairRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/repairs/{id}/photos [post]
func (h *RepairHandler) UploadPhotos(c *gin.Context) {
	var req service.UploadPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	repair, err := h.repairService.UploadPhotos(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, repair))
}

// GetHistory returns the repair's status transition audit trail
// @Summary      Get repair history
// @Description  Retrieves all status transitions for a repair in chronological order
// @Tags         repairs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Repair ID"
// @Success      200  {object}  response.Response{data=[]model.StatusHistory}
// @Failure      404  {object}  response.Response
// @Router       /api/repairs/{id}/history [get]
func (h *RepairHandler) GetHistory(c *gin.Context) {
	entries, err := h.repairService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
