// Package service implements animal catalog business logic.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patitas_backend/internal/animals/repository"
	"patitas_backend/internal/animals/transport"
	"patitas_backend/platform/apperr"
	"patitas_backend/platform/logger"
	"patitas_backend/platform/sanitize"
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	Create(ctx context.Context, params repository.CreateAnimalParams) (repository.Animal, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Animal, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateAnimalParams) (repository.Animal, error)
	List(ctx context.Context, params repository.ListAnimalsParams) ([]repository.Animal, int, error)
	HasOpenRequests(ctx context.Context, animalID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates animal catalog operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// New creates a Service.
func New(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

const dateLayout = "2006-01-02"

// Create registers a new animal, available for adoption from the start.
func (s *Service) Create(ctx context.Context, req transport.CreateAnimalRequest) (transport.AnimalResponse, error) {
	birthDate, err := parseDatePtr(req.BirthDate)
	if err != nil {
		return transport.AnimalResponse{}, err
	}

	params := repository.CreateAnimalParams{
		Name:        sanitize.Text(req.Name),
		Species:     req.Species,
		Breed:       optionalText(req.Breed),
		Sex:         optionalText(req.Sex),
		BirthDate:   birthDate,
		Description: optionalText(req.Description),
	}

	animal, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.AnimalResponse{}, err
	}

	s.log.Info("animal registered", "animal_id", animal.ID, "name", animal.Name, "species", animal.Species)
	return toResponse(animal), nil
}

// GetByID returns a single animal.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.AnimalResponse, error) {
	animal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AnimalResponse{}, err
	}
	return toResponse(animal), nil
}

// Update patches an animal's descriptive fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAnimalRequest) (transport.AnimalResponse, error) {
	birthDate, err := parseDatePtr(req.BirthDate)
	if err != nil {
		return transport.AnimalResponse{}, err
	}

	params := repository.UpdateAnimalParams{
		Name:        sanitize.TextPtr(req.Name),
		Breed:       sanitize.TextPtr(req.Breed),
		Sex:         req.Sex,
		BirthDate:   birthDate,
		Description: sanitize.TextPtr(req.Description),
	}

	animal, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.AnimalResponse{}, err
	}
	return toResponse(animal), nil
}

// List returns a paginated animal listing.
func (s *Service) List(ctx context.Context, req transport.ListAnimalsRequest) (transport.AnimalListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := repository.ListAnimalsParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.Availability != nil {
		availability := string(*req.Availability)
		params.Availability = &availability
	}
	if req.Species != "" {
		species := req.Species
		params.Species = &species
	}

	animals, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.AnimalListResponse{}, err
	}

	items := make([]transport.AnimalResponse, 0, len(animals))
	for _, a := range animals {
		items = append(items, toResponse(a))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.AnimalListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Delete removes an animal. Animals with pending or in-review adoption
// requests cannot be removed, nor can adopted animals whose record must
// remain traceable.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	animal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if animal.Availability == string(transport.AvailabilityAdopted) {
		return apperr.Conflict("adopted animals cannot be deleted")
	}

	hasOpen, err := s.repo.HasOpenRequests(ctx, id)
	if err != nil {
		return err
	}
	if hasOpen {
		return apperr.Conflict("animal has open adoption requests")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("animal deleted", "animal_id", id)
	return nil
}

func toResponse(a repository.Animal) transport.AnimalResponse {
	resp := transport.AnimalResponse{
		ID:              a.ID,
		Name:            a.Name,
		Species:         a.Species,
		Breed:           a.Breed,
		Sex:             a.Sex,
		Description:     a.Description,
		Availability:    transport.AvailabilityState(a.Availability),
		OpenForAdoption: a.Availability == string(transport.AvailabilityAvailable),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.BirthDate != nil {
		formatted := a.BirthDate.Format(dateLayout)
		resp.BirthDate = &formatted
	}
	return resp
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, apperr.BadRequest("birthDate must be formatted as YYYY-MM-DD")
	}
	return &parsed, nil
}

func optionalText(value string) *string {
	cleaned := sanitize.Text(value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
