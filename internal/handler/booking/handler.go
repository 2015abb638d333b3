package booking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
		bookings.POST("/:id/accept", h.AcceptBooking)
		bookings.POST("/:id/reject", h.RejectBooking)
		bookings.POST("/reconcile", h.ReconcileBookings)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	patientID, ok := middleware.PatientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing patient identity"})
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	req.PatientID = patientID

	booking, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": booking})
}

// ListBookings serves both dashboards: the acting patient gets their own
// bookings (which also marks rendered rejections as seen), the acting
// doctor gets the bookings addressed to them.
func (h *Handler) ListBookings(c *gin.Context) {
	if patientID, ok := middleware.PatientID(c); ok {
		bookings, err := h.service.ListForPatient(c.Request.Context(), patientID)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": bookings})
		return
	}

	if doctorID, ok := middleware.DoctorID(c); ok {
		status := model.BookingStatus(c.Query("status"))
		bookings, err := h.service.ListForDoctor(c.Request.Context(), doctorID, status)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": bookings})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing actor identity"})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	booking, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	patientID, ok := middleware.PatientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing patient identity"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, patientID); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) AcceptBooking(c *gin.Context) {
	h.transition(c, h.service.Accept)
}

func (h *Handler) RejectBooking(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// ReconcileBookings is phase two of the patient view's mark-then-
// reconcile cycle: rejections already rendered by this session are
// removed from the store.
func (h *Handler) ReconcileBookings(c *gin.Context) {
	patientID, ok := middleware.PatientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing patient identity"})
		return
	}

	if err := h.service.ReconcileSeen(c.Request.Context(), patientID); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id, actingDoctorID uuid.UUID) error) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing doctor identity"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	if err := fn(c.Request.Context(), id, doctorID); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
