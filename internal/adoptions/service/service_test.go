package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"patitas_backend/internal/adoptions/repository"
	"patitas_backend/internal/adoptions/transport"
	"patitas_backend/internal/events"
	"patitas_backend/platform/apperr"
	"patitas_backend/platform/logger"
)

var testNow = time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeRepo struct {
	requests     map[uuid.UUID]repository.AdoptionRequest
	availability map[uuid.UUID]string
	openPairs    map[string]bool
	completed    map[uuid.UUID]bool // request id -> live completed visit
	archived     map[uuid.UUID]bool
	scheduled    map[uuid.UUID]int
	walkIns      map[string]int // "animal|email" -> scheduled unlinked visits
	counter      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		requests:     map[uuid.UUID]repository.AdoptionRequest{},
		availability: map[uuid.UUID]string{},
		openPairs:    map[string]bool{},
		completed:    map[uuid.UUID]bool{},
		archived:     map[uuid.UUID]bool{},
		scheduled:    map[uuid.UUID]int{},
		walkIns:      map[string]int{},
	}
}

func (r *fakeRepo) NextRequestNumber(_ context.Context, year int) (string, error) {
	r.counter++
	return fmt.Sprintf("ADR-%d-%04d", year, r.counter), nil
}

func (r *fakeRepo) GetAnimalAvailability(_ context.Context, animalID uuid.UUID) (string, error) {
	availability, ok := r.availability[animalID]
	if !ok {
		return "", apperr.NotFound("animal not found")
	}
	return availability, nil
}

func (r *fakeRepo) CreateRequest(_ context.Context, params repository.CreateRequestParams) (repository.AdoptionRequest, error) {
	key := params.AnimalID.String() + "|" + params.RequesterEmail
	if r.openPairs[key] {
		return repository.AdoptionRequest{}, apperr.Conflict("requester already has an open request for this animal")
	}
	r.openPairs[key] = true

	request := repository.AdoptionRequest{
		ID:             uuid.New(),
		RequestNumber:  params.RequestNumber,
		AnimalID:       params.AnimalID,
		RequesterName:  params.RequesterName,
		RequesterEmail: params.RequesterEmail,
		RequesterPhone: params.RequesterPhone,
		Message:        params.Message,
		Status:         "pending",
	}
	r.requests[request.ID] = request
	return request, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.AdoptionRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return repository.AdoptionRequest{}, apperr.NotFound("adoption request not found")
	}
	return request, nil
}

func (r *fakeRepo) List(context.Context, repository.ListRequestsParams) ([]repository.AdoptionRequest, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) Decide(_ context.Context, params repository.DecideParams) (repository.DecideResult, error) {
	request, ok := r.requests[params.RequestID]
	if !ok {
		return repository.DecideResult{}, apperr.NotFound("adoption request not found")
	}

	switch request.Status {
	case "approved", "rejected":
		if request.Status == params.Decision {
			return repository.DecideResult{Request: request, AlreadyDecided: true}, nil
		}
		return repository.DecideResult{}, apperr.Conflict("adoption request already decided")
	case "in_review":
	default:
		return repository.DecideResult{}, apperr.Conflict("adoption request has not passed its visit review")
	}

	pairKey := request.AnimalID.String() + "|" + request.RequesterEmail
	result := repository.DecideResult{CancelledUpcoming: r.scheduled[request.ID] + r.walkIns[pairKey]}
	r.scheduled[request.ID] = 0
	r.walkIns[pairKey] = 0

	if params.Decision == "approved" {
		if r.availability[request.AnimalID] == "adopted" {
			return repository.DecideResult{}, apperr.Conflict("animal already adopted through another request")
		}
		r.availability[request.AnimalID] = "adopted"
		if r.completed[request.ID] {
			// The visit moves out of the live table into the archive.
			r.archived[request.ID] = true
			delete(r.completed, request.ID)
			result.AppointmentArchived = true
		}
	} else {
		if r.availability[request.AnimalID] != "adopted" {
			r.availability[request.AnimalID] = "available"
		}
	}

	request.Status = params.Decision
	r.requests[request.ID] = request
	result.Request = request
	return result, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func newTestService(repo *fakeRepo, bus *recordingBus) *Service {
	return New(repo, bus, fakeClock{now: testNow}, logger.New("test"))
}

func seedInReview(repo *fakeRepo) repository.AdoptionRequest {
	animalID := uuid.New()
	repo.availability[animalID] = "in_review"
	request := repository.AdoptionRequest{
		ID:             uuid.New(),
		RequestNumber:  "ADR-2026-0001",
		AnimalID:       animalID,
		AnimalName:     "Luna",
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		Status:         "in_review",
	}
	repo.requests[request.ID] = request
	return request
}

func TestCreateRequestGeneratesNumberAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, bus)

	animalID := uuid.New()
	repo.availability[animalID] = "available"

	resp, err := svc.CreateRequest(context.Background(), transport.CreateRequestRequest{
		AnimalID:       animalID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		RequesterPhone: "55 1234 5678",
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	if resp.RequestNumber != "ADR-2026-0001" {
		t.Errorf("request number = %s, want ADR-2026-0001", resp.RequestNumber)
	}
	if resp.Status != "pending" {
		t.Errorf("status = %s, want pending", resp.Status)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(events.AdoptionRequestCreated); !ok {
		t.Errorf("published %T, want AdoptionRequestCreated", bus.published[0])
	}
}

func TestCreateRequestRejectsUnavailableAnimal(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{})

	animalID := uuid.New()
	repo.availability[animalID] = "adopted"

	_, err := svc.CreateRequest(context.Background(), transport.CreateRequestRequest{
		AnimalID:       animalID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestCreateRequestRejectsDuplicateOpenRequest(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{})

	animalID := uuid.New()
	repo.availability[animalID] = "available"

	req := transport.CreateRequestRequest{
		AnimalID:       animalID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
	}
	if _, err := svc.CreateRequest(context.Background(), req); err != nil {
		t.Fatalf("first CreateRequest() error = %v", err)
	}
	_, err := svc.CreateRequest(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("duplicate kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestDecideApprovalAdoptsAnimalAndArchivesVisit(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, bus)

	request := seedInReview(repo)
	repo.completed[request.ID] = true
	repo.scheduled[request.ID] = 1

	resp, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision:    "approved",
		ContractRef: "CONTRATO-042",
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if resp.Request.Status != "approved" {
		t.Errorf("status = %s, want approved", resp.Request.Status)
	}
	if repo.availability[request.AnimalID] != "adopted" {
		t.Errorf("animal availability = %s, want adopted", repo.availability[request.AnimalID])
	}
	if !resp.AppointmentArchived {
		t.Error("approval with a completed visit must archive it")
	}
	if !repo.archived[request.ID] {
		t.Error("archive must hold the approved visit")
	}
	if repo.completed[request.ID] {
		t.Error("archived visit must leave the live table")
	}
	if resp.CancelledUpcoming != 1 {
		t.Errorf("cancelled upcoming = %d, want 1", resp.CancelledUpcoming)
	}
	approved, ok := bus.published[0].(events.AdoptionApproved)
	if !ok {
		t.Fatalf("published %T, want AdoptionApproved", bus.published[0])
	}
	if approved.ContractRef != "CONTRATO-042" {
		t.Errorf("contract ref = %s, want CONTRATO-042", approved.ContractRef)
	}
}

func TestDecideApprovalWithoutVisitStillApproves(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{})

	request := seedInReview(repo)

	resp, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "approved",
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if resp.AppointmentArchived {
		t.Error("nothing to archive for a request without a completed visit")
	}
	if resp.Request.Status != "approved" {
		t.Errorf("status = %s, want approved", resp.Request.Status)
	}
}

func TestDecideRejectionReleasesAnimal(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, bus)

	request := seedInReview(repo)

	resp, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "rejected",
		Reason:   "home check failed",
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if resp.Request.Status != "rejected" {
		t.Errorf("status = %s, want rejected", resp.Request.Status)
	}
	if repo.availability[request.AnimalID] != "available" {
		t.Errorf("animal availability = %s, want available", repo.availability[request.AnimalID])
	}
	rejected, ok := bus.published[0].(events.AdoptionRejected)
	if !ok {
		t.Fatalf("published %T, want AdoptionRejected", bus.published[0])
	}
	if rejected.Reason != "home check failed" {
		t.Errorf("reason = %s, want home check failed", rejected.Reason)
	}
}

func TestDecideRejectionCancelsWalkInBookings(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{})

	request := seedInReview(repo)
	// Booked before the request was filed, so it carries no request link.
	pairKey := request.AnimalID.String() + "|" + request.RequesterEmail
	repo.walkIns[pairKey] = 1
	repo.scheduled[request.ID] = 1

	resp, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "rejected",
		Reason:   "home check failed",
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if resp.CancelledUpcoming != 2 {
		t.Errorf("cancelled upcoming = %d, want 2 (linked and walk-in)", resp.CancelledUpcoming)
	}
	if repo.walkIns[pairKey] != 0 {
		t.Error("walk-in booking must not survive the decision")
	}
}

func TestDecideIsIdempotentForSameDecision(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, bus)

	request := seedInReview(repo)

	if _, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "approved",
	}); err != nil {
		t.Fatalf("first Decide() error = %v", err)
	}

	resp, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "approved",
	})
	if err != nil {
		t.Fatalf("repeated Decide() error = %v", err)
	}
	if !resp.AlreadyDecided {
		t.Error("repeating the same decision must report AlreadyDecided")
	}
	if len(bus.published) != 1 {
		t.Errorf("published %d events, want 1 (no event on the repeat)", len(bus.published))
	}
}

func TestDecideConflictsOnContradictoryDecision(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{})

	request := seedInReview(repo)

	if _, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "approved",
	}); err != nil {
		t.Fatalf("first Decide() error = %v", err)
	}

	_, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "rejected",
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("contradictory decision kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestDecideRequiresInReviewStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{})

	animalID := uuid.New()
	repo.availability[animalID] = "available"
	request := repository.AdoptionRequest{
		ID:       uuid.New(),
		AnimalID: animalID,
		Status:   "pending",
	}
	repo.requests[request.ID] = request

	_, err := svc.Decide(context.Background(), request.ID, uuid.New(), transport.DecideRequest{
		Decision: "approved",
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("pending decision kind = %v, want conflict", apperr.GetKind(err))
	}
}
