package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateAppointmentRequest books a visit slot for a requester and animal.
// RequestID is optional: walk-in visits may book before filing a request.
type CreateAppointmentRequest struct {
	AnimalID       uuid.UUID  `json:"animalId" validate:"required"`
	RequestID      *uuid.UUID `json:"requestId,omitempty"`
	RequesterName  string     `json:"requesterName" validate:"required,min=2,max=160"`
	RequesterEmail string     `json:"requesterEmail" validate:"required,email"`
	RequesterPhone string     `json:"requesterPhone,omitempty" validate:"max=32"`
	VisitDate      string     `json:"visitDate" validate:"required"` // YYYY-MM-DD
	SlotTime       string     `json:"slotTime" validate:"required"`  // HH:MM, 30 minute grid
	Notes          string     `json:"notes,omitempty" validate:"max=2000"`
}

// RescheduleAppointmentRequest moves a scheduled visit to a new slot.
type RescheduleAppointmentRequest struct {
	VisitDate string `json:"visitDate" validate:"required"`
	SlotTime  string `json:"slotTime" validate:"required"`
}

// EvaluateAppointmentRequest records the outcome of a visit.
type EvaluateAppointmentRequest struct {
	Attendance  string `json:"attendance" validate:"required,oneof=attended no_show_or_unfit"`
	Interaction string `json:"interaction,omitempty" validate:"omitempty,oneof=good_approved unfit"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

// ListAppointmentsRequest filters the appointment listing.
type ListAppointmentsRequest struct {
	Status    string `form:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	VisitDate string `form:"visitDate"`
	AnimalID  string `form:"animalId" validate:"omitempty,uuid"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// AppointmentResponse is the response body for a visit appointment.
type AppointmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	AnimalID       uuid.UUID  `json:"animalId"`
	AnimalName     string     `json:"animalName,omitempty"`
	RequestID      *uuid.UUID `json:"requestId,omitempty"`
	RequesterName  string     `json:"requesterName"`
	RequesterEmail string     `json:"requesterEmail"`
	RequesterPhone *string    `json:"requesterPhone,omitempty"`
	VisitDate      string     `json:"visitDate"`
	SlotTime       string     `json:"slotTime"`
	Status         string     `json:"status"`
	Attendance     *string    `json:"attendance,omitempty"`
	Interaction    *string    `json:"interaction,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	EvaluatedAt    *time.Time `json:"evaluatedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// AppointmentListResponse is the paginated appointment listing.
type AppointmentListResponse struct {
	Items      []AppointmentResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// EvaluationResponse reports the lifecycle effects of an evaluation.
type EvaluationResponse struct {
	Appointment     AppointmentResponse `json:"appointment"`
	RequestStatus   *string             `json:"requestStatus,omitempty"`
	RequestAdvanced bool                `json:"requestAdvanced"`
	AnimalFreed     bool                `json:"animalFreed"`
}

// DaySlotsResponse lists slot availability for a visit date.
type DaySlotsResponse struct {
	VisitDate string    `json:"visitDate"`
	Slots     []DaySlot `json:"slots"`
}

// DaySlot is a single bookable slot on the half hour grid.
type DaySlot struct {
	SlotTime string `json:"slotTime"`
	Taken    bool   `json:"taken"`
}
