package model

import (
	"github.com/google/uuid"
)

// Patient and Doctor are read-only views over the identity collections
// owned by the authentication collaborator.

type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
}

type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Specialty string    `db:"specialty" json:"specialty"`
}

// DisplayName is how the doctor appears in notification messages.
func (d *Doctor) DisplayName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}

type DoctorStatus string

const (
	DoctorStatusAvailable DoctorStatus = "available"
	DoctorStatusBusy      DoctorStatus = "busy"
)

// DoctorWithStatus joins a doctor with the availability derived from the
// outstanding booking set. Never persisted.
type DoctorWithStatus struct {
	Doctor
	Status DoctorStatus `json:"status"`
}
