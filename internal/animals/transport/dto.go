package transport

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityState describes where an animal sits in the adoption lifecycle.
type AvailabilityState string

const (
	// AvailabilityAvailable means the animal can receive new adoption requests.
	AvailabilityAvailable AvailabilityState = "available"
	// AvailabilityInReview means a request for the animal passed its visit
	// evaluation and awaits the terminal review decision.
	AvailabilityInReview AvailabilityState = "in_review"
	// AvailabilityAdopted is terminal; set only by an approved adoption.
	AvailabilityAdopted AvailabilityState = "adopted"
)

// CreateAnimalRequest is the request body for registering an animal.
type CreateAnimalRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Species     string  `json:"species" validate:"required,oneof=dog cat rabbit bird other"`
	Breed       string  `json:"breed,omitempty" validate:"max=120"`
	Sex         string  `json:"sex,omitempty" validate:"omitempty,oneof=male female unknown"`
	BirthDate   *string `json:"birthDate,omitempty"` // ISO date
	Description string  `json:"description,omitempty" validate:"max=4000"`
}

// UpdateAnimalRequest is the request body for updating an animal's
// descriptive fields. Availability is owned by the adoption lifecycle and
// cannot be patched here.
type UpdateAnimalRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Breed       *string `json:"breed,omitempty" validate:"omitempty,max=120"`
	Sex         *string `json:"sex,omitempty" validate:"omitempty,oneof=male female unknown"`
	BirthDate   *string `json:"birthDate,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4000"`
}

// ListAnimalsRequest is the query parameters for listing animals.
type ListAnimalsRequest struct {
	Availability *AvailabilityState `form:"availability" validate:"omitempty,oneof=available in_review adopted"`
	Species      string             `form:"species"`
	Page         int                `form:"page"`
	PageSize     int                `form:"pageSize"`
}

// AnimalResponse is the response body for an animal.
type AnimalResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Species         string            `json:"species"`
	Breed           *string           `json:"breed,omitempty"`
	Sex             *string           `json:"sex,omitempty"`
	BirthDate       *string           `json:"birthDate,omitempty"`
	Description     *string           `json:"description,omitempty"`
	Availability    AvailabilityState `json:"availability"`
	OpenForAdoption bool              `json:"openForAdoption"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// AnimalListResponse is the paginated response for listing animals.
type AnimalListResponse struct {
	Items      []AnimalResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}
