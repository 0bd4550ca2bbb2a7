package repository

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is the persistence model for a visit appointment.
type Appointment struct {
	ID             uuid.UUID
	AnimalID       uuid.UUID
	RequestID      *uuid.UUID
	RequesterName  string
	RequesterEmail string
	RequesterPhone *string
	VisitDate      time.Time
	SlotTime       string
	Status         string
	Attendance     *string
	Interaction    *string
	Notes          *string
	EvaluatedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateAppointmentParams holds the fields for booking a visit.
type CreateAppointmentParams struct {
	AnimalID       uuid.UUID
	RequestID      *uuid.UUID
	RequesterName  string
	RequesterEmail string
	RequesterPhone *string
	VisitDate      time.Time
	SlotTime       string
	Notes          *string
}

// ListAppointmentsParams filters and paginates the appointment listing.
type ListAppointmentsParams struct {
	Status    *string
	VisitDate *time.Time
	AnimalID  *uuid.UUID
	Limit     int
	Offset    int
}

// RequestRef is the slice of an adoption request the appointment flow
// needs: enough to link lifecycles and address notifications.
type RequestRef struct {
	ID             uuid.UUID
	Status         string
	RequesterName  string
	RequesterEmail string
	AnimalID       uuid.UUID
	AnimalName     string
}

// ApplyEvaluationParams carries every write the evaluation transaction
// performs. The repository applies them atomically.
type ApplyEvaluationParams struct {
	AppointmentID     uuid.UUID
	Attendance        string
	Interaction       string
	AppointmentStatus string
	Notes             *string
	EvaluatedAt       time.Time

	// RequestID is nil when the appointment has no linked request; the
	// request and animal transitions are skipped in that case.
	RequestID     *uuid.UUID
	RequestStatus string

	AnimalID    uuid.UUID
	FreesAnimal bool
}
