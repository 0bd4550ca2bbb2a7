package repository

import (
	"time"

	"github.com/google/uuid"
)

// AdoptionRequest is the persistence model for an adoption request.
type AdoptionRequest struct {
	ID             uuid.UUID
	RequestNumber  string
	AnimalID       uuid.UUID
	AnimalName     string
	RequesterName  string
	RequesterEmail string
	RequesterPhone *string
	Message        *string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateRequestParams holds the fields for filing a request.
type CreateRequestParams struct {
	RequestNumber  string
	AnimalID       uuid.UUID
	RequesterName  string
	RequesterEmail string
	RequesterPhone *string
	Message        *string
}

// ListRequestsParams filters and paginates the request listing.
type ListRequestsParams struct {
	Status   *string
	AnimalID *uuid.UUID
	Limit    int
	Offset   int
}

// DecideParams carries a terminal review decision.
type DecideParams struct {
	RequestID   uuid.UUID
	Decision    string
	ContractRef *string
	Reason      *string
	DecidedBy   uuid.UUID
	DecidedAt   time.Time
}

// DecideResult reports what the decision transaction changed.
type DecideResult struct {
	Request             AdoptionRequest
	AlreadyDecided      bool
	AppointmentArchived bool
	CancelledUpcoming   int
}
