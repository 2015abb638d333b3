package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/service/notification"
)

type Handler struct {
	service notification.Service
}

func NewHandler(service notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	patientID, ok := middleware.PatientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing patient identity"})
		return
	}

	notifications, err := h.service.List(c.Request.Context(), patientID)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": notifications})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	patientID, ok := middleware.PatientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing patient identity"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid notification ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, patientID); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
