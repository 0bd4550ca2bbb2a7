package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequestRequest files a new adoption request for an animal.
type CreateRequestRequest struct {
	AnimalID       uuid.UUID `json:"animalId" validate:"required"`
	RequesterName  string    `json:"requesterName" validate:"required,min=2,max=160"`
	RequesterEmail string    `json:"requesterEmail" validate:"required,email"`
	RequesterPhone string    `json:"requesterPhone,omitempty" validate:"max=32"`
	Message        string    `json:"message,omitempty" validate:"max=4000"`
}

// DecideRequest records the terminal review decision for a request.
type DecideRequest struct {
	Decision    string `json:"decision" validate:"required,oneof=approved rejected"`
	ContractRef string `json:"contractRef,omitempty" validate:"max=160"`
	Reason      string `json:"reason,omitempty" validate:"max=2000"`
}

// ListRequestsRequest filters the request listing.
type ListRequestsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=pending in_review approved rejected"`
	AnimalID string `form:"animalId" validate:"omitempty,uuid"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// RequestResponse is the response body for an adoption request.
type RequestResponse struct {
	ID             uuid.UUID `json:"id"`
	RequestNumber  string    `json:"requestNumber"`
	AnimalID       uuid.UUID `json:"animalId"`
	AnimalName     string    `json:"animalName,omitempty"`
	RequesterName  string    `json:"requesterName"`
	RequesterEmail string    `json:"requesterEmail"`
	RequesterPhone *string   `json:"requesterPhone,omitempty"`
	Message        *string   `json:"message,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RequestListResponse is the paginated request listing.
type RequestListResponse struct {
	Items      []RequestResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// DecisionResponse reports the effects of a review decision.
type DecisionResponse struct {
	Request             RequestResponse `json:"request"`
	Decision            string          `json:"decision"`
	AlreadyDecided      bool            `json:"alreadyDecided"`
	AppointmentArchived bool            `json:"appointmentArchived"`
	CancelledUpcoming   int             `json:"cancelledUpcoming"`
}
