package handler

import (
	"net/http"

	"jewelry-backend/internal/middleware"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/service"
	"jewelry-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	{
		notifications.POST("/send", middleware.RequireRole("admin", "manager", "staff"), h.Send)
	}

	// Per-entity dispatch history rides on the entity route groups.
	router.GET("/api/orders/:id/notifications", middleware.RequireRole("admin", "manager", "staff"), h.entityHistory(model.EntityOrder))
	router.GET("/api/repairs/:id/notifications", middleware.RequireRole("admin", "manager", "staff"), h.entityHistory(model.EntityRepair))
	router.GET("/api/returns/:id/notifications", middleware.RequireRole("admin", "manager", "staff"), h.entityHistory(model.EntityReturn))
}

// Send dispatches a notification to a customer
// @Summary      Send notification
// @Description  Renders the template for the given type and dispatches it on the requested or default channels
// @Tags         notifications
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SendNotificationRequest  true  "Send Notification Payload"
// @Success      200      {object}  response.Response{data=model.Notification}
// @Failure      400      {object}  response.Response
// @Router       /api/notifications/send [post]
func (h *NotificationHandler) Send(c *gin.Context) {
	var req service.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	notification, err := h.notificationService.Send(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, notification))
}

// entityHistory lists dispatch records for a single entity, newest first.
func (h *NotificationHandler) entityHistory(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entityID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid entity id"))
			return
		}

		notifications, histErr := h.notificationService.History(c.Request.Context(), entityType, entityID)
		if histErr != nil {
			writeError(c, histErr)
			return
		}

		c.JSON(http.StatusOK, response.Success(http.StatusOK, notifications))
	}
}
