package repository

import (
	"time"

	"github.com/google/uuid"
)

// Animal is the persistence model for a shelter animal.
type Animal struct {
	ID           uuid.UUID
	Name         string
	Species      string
	Breed        *string
	Sex          *string
	BirthDate    *time.Time
	Description  *string
	Availability string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAnimalParams holds the fields for registering an animal.
type CreateAnimalParams struct {
	Name        string
	Species     string
	Breed       *string
	Sex         *string
	BirthDate   *time.Time
	Description *string
}

// UpdateAnimalParams holds the patchable descriptive fields. Nil means
// leave unchanged.
type UpdateAnimalParams struct {
	Name        *string
	Breed       *string
	Sex         *string
	BirthDate   *time.Time
	Description *string
}

// ListAnimalsParams filters and paginates the animal listing.
type ListAnimalsParams struct {
	Availability *string
	Species      *string
	Limit        int
	Offset       int
}
