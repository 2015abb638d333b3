package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Actor identity arrives from the upstream auth gateway as headers;
// authentication itself happens there, not in this service.
const (
	HeaderXPatientID = "X-Patient-ID"
	HeaderXDoctorID  = "X-Doctor-ID"
	ContextPatientID = "patient_id"
	ContextDoctorID  = "doctor_id"
)

// ActorContext parses the actor headers into the request context. Routes
// decide which actor they require.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(HeaderXPatientID); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(ContextPatientID, id)
			}
		}
		if raw := c.GetHeader(HeaderXDoctorID); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(ContextDoctorID, id)
			}
		}
		c.Next()
	}
}

// PatientID returns the acting patient from the context.
func PatientID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextPatientID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// DoctorID returns the acting doctor from the context.
func DoctorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextDoctorID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
