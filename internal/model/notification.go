package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a one-way message to a patient. Records are never
// mutated; the patient deletes them explicitly. Lifetime is independent
// of the booking that produced the message.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationEvent is the broker payload for in-app delivery.
type NotificationEvent struct {
	ID             uuid.UUID `json:"id"`
	NotificationID uuid.UUID `json:"notification_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}
