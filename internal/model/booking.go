package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
)

// Active reports whether the status counts toward the doctor's busy set.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusAccepted
}

// Booking is one appointment request. Status starts at pending and is
// transitioned at most once by the owning doctor; rejected records are
// transient and removed once the patient has observed them.
type Booking struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	PatientID       uuid.UUID     `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID     `db:"doctor_id" json:"doctor_id"`
	AppointmentTime time.Time     `db:"appointment_time" json:"appointment_time"`
	Status          BookingStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

type CreateBookingRequest struct {
	// PatientID is filled from the authenticated actor, not the body.
	PatientID       uuid.UUID `json:"-"`
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentTime time.Time `json:"appointment_time" binding:"required"`
}

type BookingFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    BookingStatus
}
