package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"patitas_backend/internal/appointments/repository"
	"patitas_backend/internal/appointments/transport"
	"patitas_backend/internal/events"
	"patitas_backend/platform/apperr"
	"patitas_backend/platform/logger"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeRepo struct {
	appointments map[uuid.UUID]repository.Appointment
	openRequests map[string]repository.RequestRef
	requestRefs  map[uuid.UUID]repository.RequestRef
	animalNames  map[uuid.UUID]string
	takenSlots   map[string]bool

	applied    []repository.ApplyEvaluationParams
	created    []repository.CreateAppointmentParams
	slotMoves  int
	slotFailed bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		appointments: map[uuid.UUID]repository.Appointment{},
		openRequests: map[string]repository.RequestRef{},
		requestRefs:  map[uuid.UUID]repository.RequestRef{},
		animalNames:  map[uuid.UUID]string{},
		takenSlots:   map[string]bool{},
	}
}

func (r *fakeRepo) Create(_ context.Context, params repository.CreateAppointmentParams) (repository.Appointment, error) {
	key := params.VisitDate.Format("2006-01-02") + " " + params.SlotTime
	if r.takenSlots[key] {
		return repository.Appointment{}, apperr.Conflict("slot already booked")
	}
	r.takenSlots[key] = true
	r.created = append(r.created, params)

	appointment := repository.Appointment{
		ID:             uuid.New(),
		AnimalID:       params.AnimalID,
		RequestID:      params.RequestID,
		RequesterName:  params.RequesterName,
		RequesterEmail: params.RequesterEmail,
		RequesterPhone: params.RequesterPhone,
		VisitDate:      params.VisitDate,
		SlotTime:       params.SlotTime,
		Status:         "scheduled",
	}
	r.appointments[appointment.ID] = appointment
	return appointment, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return repository.Appointment{}, apperr.NotFound("appointment not found")
	}
	return appointment, nil
}

func (r *fakeRepo) UpdateSlot(_ context.Context, id uuid.UUID, visitDate time.Time, slotTime string) (repository.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok || appointment.Status != "scheduled" {
		return repository.Appointment{}, apperr.NotFound("no scheduled appointment to reschedule")
	}
	key := visitDate.Format("2006-01-02") + " " + slotTime
	if r.takenSlots[key] {
		r.slotFailed = true
		return repository.Appointment{}, apperr.Conflict("slot already booked")
	}
	r.takenSlots[key] = true
	appointment.VisitDate = visitDate
	appointment.SlotTime = slotTime
	r.appointments[id] = appointment
	r.slotMoves++
	return appointment, nil
}

func (r *fakeRepo) List(context.Context, repository.ListAppointmentsParams) ([]repository.Appointment, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) TakenSlots(context.Context, time.Time) ([]string, error) {
	return nil, nil
}

func (r *fakeRepo) GetRequestRef(_ context.Context, requestID uuid.UUID) (repository.RequestRef, error) {
	ref, ok := r.requestRefs[requestID]
	if !ok {
		return repository.RequestRef{}, apperr.NotFound("adoption request not found")
	}
	return ref, nil
}

func (r *fakeRepo) FindOpenRequest(_ context.Context, requesterEmail string, animalID uuid.UUID) (repository.RequestRef, error) {
	ref, ok := r.openRequests[requesterEmail+"|"+animalID.String()]
	if !ok {
		return repository.RequestRef{}, apperr.NotFound("no open adoption request for requester and animal")
	}
	return ref, nil
}

func (r *fakeRepo) GetAnimalName(_ context.Context, animalID uuid.UUID) (string, error) {
	name, ok := r.animalNames[animalID]
	if !ok {
		return "", apperr.NotFound("animal not found")
	}
	return name, nil
}

func (r *fakeRepo) ApplyEvaluation(_ context.Context, params repository.ApplyEvaluationParams) (repository.Appointment, error) {
	appointment, ok := r.appointments[params.AppointmentID]
	if !ok {
		return repository.Appointment{}, apperr.NotFound("appointment not found")
	}
	if appointment.Status != "scheduled" {
		return repository.Appointment{}, apperr.Conflict("appointment already evaluated")
	}
	r.applied = append(r.applied, params)
	appointment.Status = params.AppointmentStatus
	appointment.Attendance = &params.Attendance
	appointment.Interaction = &params.Interaction
	appointment.EvaluatedAt = &params.EvaluatedAt
	r.appointments[params.AppointmentID] = appointment
	return appointment, nil
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

type recordingReminders struct {
	scheduled []time.Time
}

func (r *recordingReminders) ScheduleAppointmentReminder(_ context.Context, _ uuid.UUID, _, _ string, remindAt time.Time) error {
	r.scheduled = append(r.scheduled, remindAt)
	return nil
}

func newTestService(repo *fakeRepo, bus *recordingBus, reminders *recordingReminders) *Service {
	return New(repo, bus, reminders, fakeClock{now: testNow}, 24*time.Hour, logger.New("test"))
}

func TestCreateBooksSlotAndLinksOpenRequest(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	reminders := &recordingReminders{}
	svc := newTestService(repo, bus, reminders)

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	requestID := uuid.New()
	repo.openRequests["ana@example.com|"+animalID.String()] = repository.RequestRef{
		ID: requestID, Status: "pending", AnimalID: animalID, AnimalName: "Luna",
	}

	resp, err := svc.Create(context.Background(), transport.CreateAppointmentRequest{
		AnimalID:       animalID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		VisitDate:      "2026-03-12",
		SlotTime:       "10:00",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.RequestID == nil || *resp.RequestID != requestID {
		t.Errorf("appointment not linked to open request")
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(events.AppointmentScheduled); !ok {
		t.Errorf("published %T, want AppointmentScheduled", bus.published[0])
	}
	if len(reminders.scheduled) != 1 {
		t.Fatalf("scheduled %d reminders, want 1", len(reminders.scheduled))
	}
	wantRemind := time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC)
	if !reminders.scheduled[0].Equal(wantRemind) {
		t.Errorf("reminder at %v, want %v", reminders.scheduled[0], wantRemind)
	}
}

func TestCreateSecondBookingForSameSlotConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{}, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"

	req := transport.CreateAppointmentRequest{
		AnimalID:       animalID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		VisitDate:      "2026-03-12",
		SlotTime:       "10:00",
	}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	req.RequesterEmail = "luis@example.com"
	req.RequesterName = "Luis Mora"
	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("second booking kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestCreateRejectsDecidedRequestLink(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{}, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	requestID := uuid.New()
	repo.requestRefs[requestID] = repository.RequestRef{
		ID: requestID, Status: "rejected", AnimalID: animalID,
	}

	_, err := svc.Create(context.Background(), transport.CreateAppointmentRequest{
		AnimalID:       animalID,
		RequestID:      &requestID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		VisitDate:      "2026-03-12",
		SlotTime:       "10:00",
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestEvaluateApprovedVisitAdvancesRequest(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, bus, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	requestID := uuid.New()
	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:             appointmentID,
		AnimalID:       animalID,
		RequestID:      &requestID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		VisitDate:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		SlotTime:       "10:00",
		Status:         "scheduled",
	}

	resp, err := svc.Evaluate(context.Background(), appointmentID, transport.EvaluateAppointmentRequest{
		Attendance:  "attended",
		Interaction: "good_approved",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.Appointment.Status != "completed" {
		t.Errorf("appointment status = %s, want completed", resp.Appointment.Status)
	}
	if resp.RequestStatus == nil || *resp.RequestStatus != "in_review" {
		t.Errorf("request status = %v, want in_review", resp.RequestStatus)
	}
	if !resp.RequestAdvanced || resp.AnimalFreed {
		t.Errorf("advanced = %v freed = %v, want true false", resp.RequestAdvanced, resp.AnimalFreed)
	}

	if len(repo.applied) != 1 {
		t.Fatalf("applied %d evaluations, want 1", len(repo.applied))
	}
	applied := repo.applied[0]
	if applied.RequestID == nil || *applied.RequestID != requestID {
		t.Errorf("evaluation did not carry the linked request")
	}
	if applied.FreesAnimal {
		t.Errorf("approved visit must not free the animal")
	}
}

func TestEvaluateUnfitVisitRejectsAndFrees(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, bus, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	requestID := uuid.New()
	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:             appointmentID,
		AnimalID:       animalID,
		RequestID:      &requestID,
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		VisitDate:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		SlotTime:       "10:00",
		Status:         "scheduled",
	}

	resp, err := svc.Evaluate(context.Background(), appointmentID, transport.EvaluateAppointmentRequest{
		Attendance:  "attended",
		Interaction: "unfit",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.Appointment.Status != "cancelled" {
		t.Errorf("appointment status = %s, want cancelled", resp.Appointment.Status)
	}
	if resp.RequestStatus == nil || *resp.RequestStatus != "rejected" {
		t.Errorf("request status = %v, want rejected", resp.RequestStatus)
	}
	if !resp.AnimalFreed {
		t.Error("unfit visit must free the animal")
	}

	evaluated, ok := bus.published[len(bus.published)-1].(events.AppointmentEvaluated)
	if !ok {
		t.Fatalf("last event %T, want AppointmentEvaluated", bus.published[len(bus.published)-1])
	}
	if !evaluated.AnimalFreed || evaluated.RequestAdvanced {
		t.Errorf("event freed = %v advanced = %v, want true false", evaluated.AnimalFreed, evaluated.RequestAdvanced)
	}
}

func TestEvaluateNoShowKeepsRequestPending(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{}, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	requestID := uuid.New()
	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:             appointmentID,
		AnimalID:       animalID,
		RequestID:      &requestID,
		RequesterEmail: "ana@example.com",
		VisitDate:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		SlotTime:       "10:00",
		Status:         "scheduled",
	}

	resp, err := svc.Evaluate(context.Background(), appointmentID, transport.EvaluateAppointmentRequest{
		Attendance: "no_show_or_unfit",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.Appointment.Status != "cancelled" {
		t.Errorf("appointment status = %s, want cancelled", resp.Appointment.Status)
	}
	if resp.RequestStatus == nil || *resp.RequestStatus != "pending" {
		t.Errorf("request status = %v, want pending", resp.RequestStatus)
	}
	if resp.AnimalFreed || resp.RequestAdvanced {
		t.Errorf("no show must neither free the animal nor advance the request")
	}
	if applied := repo.applied[0]; applied.Interaction != "unfit" {
		t.Errorf("effective interaction = %s, want unfit", applied.Interaction)
	}
}

func TestEvaluateTwiceConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{}, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:             appointmentID,
		AnimalID:       animalID,
		RequesterEmail: "ana@example.com",
		Status:         "scheduled",
	}

	if _, err := svc.Evaluate(context.Background(), appointmentID, transport.EvaluateAppointmentRequest{
		Attendance: "no_show_or_unfit",
	}); err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}

	_, err := svc.Evaluate(context.Background(), appointmentID, transport.EvaluateAppointmentRequest{
		Attendance:  "attended",
		Interaction: "good_approved",
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("second evaluation kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestEvaluateWithoutLinkedRequestStillCompletes(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{}, &recordingReminders{})

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:             appointmentID,
		AnimalID:       animalID,
		RequesterEmail: "walkin@example.com",
		Status:         "scheduled",
	}

	resp, err := svc.Evaluate(context.Background(), appointmentID, transport.EvaluateAppointmentRequest{
		Attendance:  "attended",
		Interaction: "good_approved",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.RequestStatus != nil {
		t.Errorf("request status = %v, want nil for unlinked visit", *resp.RequestStatus)
	}
	if repo.applied[0].RequestID != nil {
		t.Error("unlinked evaluation must not carry a request id")
	}
}

func TestRescheduleMovesSlotAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	reminders := &recordingReminders{}
	svc := newTestService(repo, bus, reminders)

	animalID := uuid.New()
	repo.animalNames[animalID] = "Luna"
	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:             appointmentID,
		AnimalID:       animalID,
		RequesterEmail: "ana@example.com",
		VisitDate:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		SlotTime:       "10:00",
		Status:         "scheduled",
	}

	resp, err := svc.Reschedule(context.Background(), appointmentID, transport.RescheduleAppointmentRequest{
		VisitDate: "2026-03-14",
		SlotTime:  "11:30",
	})
	if err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}
	if resp.VisitDate != "2026-03-14" || resp.SlotTime != "11:30" {
		t.Errorf("slot = %s %s, want 2026-03-14 11:30", resp.VisitDate, resp.SlotTime)
	}
	if _, ok := bus.published[0].(events.AppointmentRescheduled); !ok {
		t.Errorf("published %T, want AppointmentRescheduled", bus.published[0])
	}
	if len(reminders.scheduled) != 1 {
		t.Errorf("scheduled %d reminders, want 1", len(reminders.scheduled))
	}
}

func TestRescheduleEvaluatedAppointmentConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingBus{}, &recordingReminders{})

	appointmentID := uuid.New()
	repo.appointments[appointmentID] = repository.Appointment{
		ID:        appointmentID,
		AnimalID:  uuid.New(),
		VisitDate: time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		SlotTime:  "10:00",
		Status:    "completed",
	}

	_, err := svc.Reschedule(context.Background(), appointmentID, transport.RescheduleAppointmentRequest{
		VisitDate: "2026-03-14",
		SlotTime:  "11:30",
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("Reschedule() error = %v, want conflict", err)
	}
}
