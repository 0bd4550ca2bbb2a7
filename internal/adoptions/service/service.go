// Package service implements adoption request business logic.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patitas_backend/internal/adoptions/repository"
	"patitas_backend/internal/adoptions/transport"
	"patitas_backend/internal/events"
	"patitas_backend/platform/apperr"
	"patitas_backend/platform/logger"
	"patitas_backend/platform/phone"
	"patitas_backend/platform/sanitize"
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	NextRequestNumber(ctx context.Context, year int) (string, error)
	GetAnimalAvailability(ctx context.Context, animalID uuid.UUID) (string, error)
	CreateRequest(ctx context.Context, params repository.CreateRequestParams) (repository.AdoptionRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.AdoptionRequest, error)
	List(ctx context.Context, params repository.ListRequestsParams) ([]repository.AdoptionRequest, int, error)
	Decide(ctx context.Context, params repository.DecideParams) (repository.DecideResult, error)
}

// Clock abstracts wall time for decision timestamps and request numbering.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Service orchestrates the adoption request lifecycle.
type Service struct {
	repo  Repository
	bus   events.Bus
	clock Clock
	log   *logger.Logger
}

// New creates a Service.
func New(repo Repository, bus events.Bus, clock Clock, log *logger.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, bus: bus, clock: clock, log: log}
}

// CreateRequest files a new adoption request. The animal must be open
// for adoption and the requester must not already have an open request
// for it; the second rule is enforced by the store's unique constraint.
func (s *Service) CreateRequest(ctx context.Context, req transport.CreateRequestRequest) (transport.RequestResponse, error) {
	availability, err := s.repo.GetAnimalAvailability(ctx, req.AnimalID)
	if err != nil {
		return transport.RequestResponse{}, err
	}
	if availability != "available" {
		return transport.RequestResponse{}, apperr.Conflict("animal is not open for adoption")
	}

	requestNumber, err := s.repo.NextRequestNumber(ctx, s.clock.Now().Year())
	if err != nil {
		return transport.RequestResponse{}, err
	}

	params := repository.CreateRequestParams{
		RequestNumber:  requestNumber,
		AnimalID:       req.AnimalID,
		RequesterName:  sanitize.Text(req.RequesterName),
		RequesterEmail: sanitize.Text(req.RequesterEmail),
		Message:        optionalText(req.Message),
	}
	if req.RequesterPhone != "" {
		normalized := phone.NormalizeE164(req.RequesterPhone)
		params.RequesterPhone = &normalized
	}

	request, err := s.repo.CreateRequest(ctx, params)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	s.bus.Publish(ctx, events.AdoptionRequestCreated{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      request.ID,
		RequestNumber:  request.RequestNumber,
		AnimalID:       request.AnimalID,
		AnimalName:     request.AnimalName,
		RequesterName:  request.RequesterName,
		RequesterEmail: request.RequesterEmail,
	})

	return toResponse(request), nil
}

// GetByID returns a single adoption request.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.RequestResponse, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.RequestResponse{}, err
	}
	return toResponse(request), nil
}

// List returns a paginated request listing.
func (s *Service) List(ctx context.Context, req transport.ListRequestsRequest) (transport.RequestListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := repository.ListRequestsParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := req.Status
		params.Status = &status
	}
	if req.AnimalID != "" {
		animalID, err := uuid.Parse(req.AnimalID)
		if err != nil {
			return transport.RequestListResponse{}, apperr.BadRequest("invalid animal id")
		}
		params.AnimalID = &animalID
	}

	requests, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.RequestListResponse{}, err
	}

	items := make([]transport.RequestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, toResponse(r))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.RequestListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Decide records the terminal review decision. Repeating an identical
// decision is idempotent; a contradictory one conflicts. An approval
// without a stored completed visit proceeds with a warning rather than
// blocking the adoption.
func (s *Service) Decide(ctx context.Context, requestID uuid.UUID, decidedBy uuid.UUID, req transport.DecideRequest) (transport.DecisionResponse, error) {
	params := repository.DecideParams{
		RequestID:   requestID,
		Decision:    req.Decision,
		ContractRef: optionalText(req.ContractRef),
		Reason:      optionalText(req.Reason),
		DecidedBy:   decidedBy,
		DecidedAt:   s.clock.Now(),
	}

	result, err := s.repo.Decide(ctx, params)
	if err != nil {
		return transport.DecisionResponse{}, err
	}

	s.log.AdoptionDecision(result.Request.RequestNumber, req.Decision)

	if !result.AlreadyDecided {
		if req.Decision == "approved" && !result.AppointmentArchived {
			s.log.Warn("adoption approved without a stored completed visit",
				"request_number", result.Request.RequestNumber)
		}
		s.publishDecision(ctx, result.Request, req)
	}

	return transport.DecisionResponse{
		Request:             toResponse(result.Request),
		Decision:            req.Decision,
		AlreadyDecided:      result.AlreadyDecided,
		AppointmentArchived: result.AppointmentArchived,
		CancelledUpcoming:   result.CancelledUpcoming,
	}, nil
}

func (s *Service) publishDecision(ctx context.Context, request repository.AdoptionRequest, req transport.DecideRequest) {
	if req.Decision == "approved" {
		s.bus.Publish(ctx, events.AdoptionApproved{
			BaseEvent:      events.NewBaseEvent(),
			RequestID:      request.ID,
			RequestNumber:  request.RequestNumber,
			AnimalID:       request.AnimalID,
			AnimalName:     request.AnimalName,
			RequesterName:  request.RequesterName,
			RequesterEmail: request.RequesterEmail,
			ContractRef:    req.ContractRef,
		})
		return
	}
	s.bus.Publish(ctx, events.AdoptionRejected{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      request.ID,
		RequestNumber:  request.RequestNumber,
		AnimalID:       request.AnimalID,
		AnimalName:     request.AnimalName,
		RequesterName:  request.RequesterName,
		RequesterEmail: request.RequesterEmail,
		Reason:         req.Reason,
	})
}

func toResponse(r repository.AdoptionRequest) transport.RequestResponse {
	return transport.RequestResponse{
		ID:             r.ID,
		RequestNumber:  r.RequestNumber,
		AnimalID:       r.AnimalID,
		AnimalName:     r.AnimalName,
		RequesterName:  r.RequesterName,
		RequesterEmail: r.RequesterEmail,
		RequesterPhone: r.RequesterPhone,
		Message:        r.Message,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func optionalText(value string) *string {
	cleaned := sanitize.Text(value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
