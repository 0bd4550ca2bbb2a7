// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"patitas_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus is re-exported so composition roots only import this package.
var NewInMemoryBus = events.NewInMemoryBus

// =============================================================================
// Adoption Domain Events
// =============================================================================

// AdoptionRequestCreated is published when a requester opens a new
// adoption request for an animal.
type AdoptionRequestCreated struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	RequestNumber  string    `json:"requestNumber"`
	AnimalID       uuid.UUID `json:"animalId"`
	AnimalName     string    `json:"animalName"`
	RequesterName  string    `json:"requesterName"`
	RequesterEmail string    `json:"requesterEmail"`
}

func (e AdoptionRequestCreated) EventName() string { return "adoptions.request.created" }

// AdoptionApproved is published after a review decision finalizes an
// adoption. The animal is already marked adopted when this fires.
type AdoptionApproved struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	RequestNumber  string    `json:"requestNumber"`
	AnimalID       uuid.UUID `json:"animalId"`
	AnimalName     string    `json:"animalName"`
	RequesterName  string    `json:"requesterName"`
	RequesterEmail string    `json:"requesterEmail"`
	ContractRef    string    `json:"contractRef,omitempty"`
}

func (e AdoptionApproved) EventName() string { return "adoptions.request.approved" }

// AdoptionRejected is published after a review decision rejects an
// adoption. The animal is back to available when this fires.
type AdoptionRejected struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	RequestNumber  string    `json:"requestNumber"`
	AnimalID       uuid.UUID `json:"animalId"`
	AnimalName     string    `json:"animalName"`
	RequesterName  string    `json:"requesterName"`
	RequesterEmail string    `json:"requesterEmail"`
	Reason         string    `json:"reason,omitempty"`
}

func (e AdoptionRejected) EventName() string { return "adoptions.request.rejected" }

// =============================================================================
// Appointment Domain Events
// =============================================================================

// AppointmentScheduled is published when a visit slot is booked.
type AppointmentScheduled struct {
	BaseEvent
	AppointmentID  uuid.UUID  `json:"appointmentId"`
	RequestID      *uuid.UUID `json:"requestId,omitempty"`
	AnimalID       uuid.UUID  `json:"animalId"`
	AnimalName     string     `json:"animalName"`
	RequesterName  string     `json:"requesterName"`
	RequesterEmail string     `json:"requesterEmail"`
	VisitDate      string     `json:"visitDate"`
	SlotTime       string     `json:"slotTime"`
}

func (e AppointmentScheduled) EventName() string { return "appointments.scheduled" }

// AppointmentRescheduled is published when a booked visit moves to a new slot.
type AppointmentRescheduled struct {
	BaseEvent
	AppointmentID  uuid.UUID  `json:"appointmentId"`
	RequestID      *uuid.UUID `json:"requestId,omitempty"`
	AnimalID       uuid.UUID  `json:"animalId"`
	AnimalName     string     `json:"animalName"`
	RequesterName  string     `json:"requesterName"`
	RequesterEmail string     `json:"requesterEmail"`
	VisitDate      string     `json:"visitDate"`
	SlotTime       string     `json:"slotTime"`
}

func (e AppointmentRescheduled) EventName() string { return "appointments.rescheduled" }

// AppointmentEvaluated is published after staff records the outcome of a
// visit. RequestAdvanced is true when the linked request moved to in_review.
type AppointmentEvaluated struct {
	BaseEvent
	AppointmentID   uuid.UUID  `json:"appointmentId"`
	RequestID       *uuid.UUID `json:"requestId,omitempty"`
	AnimalID        uuid.UUID  `json:"animalId"`
	AnimalName      string     `json:"animalName"`
	RequesterName   string     `json:"requesterName"`
	RequesterEmail  string     `json:"requesterEmail"`
	Attendance      string     `json:"attendance"`
	Interaction     string     `json:"interaction"`
	RequestAdvanced bool       `json:"requestAdvanced"`
	AnimalFreed     bool       `json:"animalFreed"`
}

func (e AppointmentEvaluated) EventName() string { return "appointments.evaluated" }
