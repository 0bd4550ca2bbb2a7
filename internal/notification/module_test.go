package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"patitas_backend/internal/events"
	"patitas_backend/internal/notification/outbox"
	"patitas_backend/platform/logger"
)

type fakeStore struct {
	records    map[uuid.UUID]*outbox.Record
	inserted   []outbox.InsertParams
	processing int
	succeeded  int
	released   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[uuid.UUID]*outbox.Record{}}
}

func (s *fakeStore) Insert(_ context.Context, p outbox.InsertParams) (uuid.UUID, error) {
	s.inserted = append(s.inserted, p)
	id := uuid.New()
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, err
	}
	s.records[id] = &outbox.Record{ID: id, Kind: p.Kind, Template: p.Template, Payload: payload, Status: outbox.StatusPending}
	return id, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (outbox.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return outbox.Record{}, errors.New("not found")
	}
	return *rec, nil
}

func (s *fakeStore) MarkProcessing(_ context.Context, id uuid.UUID) error {
	s.processing++
	s.records[id].Status = outbox.StatusProcessing
	return nil
}

func (s *fakeStore) MarkSucceeded(_ context.Context, id uuid.UUID) error {
	s.succeeded++
	s.records[id].Status = outbox.StatusSucceeded
	return nil
}

func (s *fakeStore) MarkPending(_ context.Context, id uuid.UUID, _ *string) error {
	s.released++
	s.records[id].Status = outbox.StatusPending
	return nil
}

type sentMail struct {
	template string
	to       string
	hasCode  bool
}

type fakeSender struct {
	sent []sentMail
	fail bool
}

func (f *fakeSender) record(template, to string, hasCode bool) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sentMail{template: template, to: to, hasCode: hasCode})
	return nil
}

func (f *fakeSender) SendRequestReceivedEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("request_received", to, false)
}

func (f *fakeSender) SendAppointmentConfirmedEmail(_ context.Context, to, _, _, _, _ string, code []byte) error {
	return f.record("appointment_confirmed", to, len(code) > 0)
}

func (f *fakeSender) SendAppointmentRescheduledEmail(_ context.Context, to, _, _, _, _ string) error {
	return f.record("appointment_rescheduled", to, false)
}

func (f *fakeSender) SendAppointmentReminderEmail(_ context.Context, to, _, _, _, _ string) error {
	return f.record("appointment_reminder", to, false)
}

func (f *fakeSender) SendEvaluationResultEmail(_ context.Context, to, _, _ string, _ bool) error {
	return f.record("evaluation_result", to, false)
}

func (f *fakeSender) SendAdoptionApprovedEmail(_ context.Context, to, _, _, _, _ string) error {
	return f.record("adoption_approved", to, false)
}

func (f *fakeSender) SendAdoptionRejectedEmail(_ context.Context, to, _, _, _, _ string) error {
	return f.record("adoption_rejected", to, false)
}

type fakeNotifConfig struct{}

func (fakeNotifConfig) GetAppBaseURL() string  { return "https://portal.refugiopatitas.mx" }
func (fakeNotifConfig) GetShelterName() string { return "Refugio Patitas" }

func newTestModule(store *fakeStore, sender *fakeSender) *Module {
	return &Module{
		store:          store,
		sender:         sender,
		cfg:            fakeNotifConfig{},
		log:            logger.New("test"),
		inlineDispatch: true,
	}
}

func TestHandleScheduledEventSendsConfirmationWithCheckInCode(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{}
	m := newTestModule(store, sender)

	err := m.Handle(context.Background(), events.AppointmentScheduled{
		BaseEvent:      events.NewBaseEvent(),
		AppointmentID:  uuid.New(),
		AnimalID:       uuid.New(),
		AnimalName:     "Luna",
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		VisitDate:      "2026-03-12",
		SlotTime:       "10:00",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d outbox rows, want 1", len(store.inserted))
	}
	if store.inserted[0].Template != "appointment_confirmed" {
		t.Errorf("template = %s, want appointment_confirmed", store.inserted[0].Template)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sender.sent))
	}
	if !sender.sent[0].hasCode {
		t.Error("confirmation mail should carry a check-in code attachment")
	}
	if store.succeeded != 1 {
		t.Errorf("succeeded marks = %d, want 1", store.succeeded)
	}
}

func TestHandleSkipsEventsWithoutRecipient(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{}
	m := newTestModule(store, sender)

	err := m.Handle(context.Background(), events.AppointmentEvaluated{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: uuid.New(),
		AnimalID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.inserted) != 0 {
		t.Errorf("inserted %d outbox rows, want 0", len(store.inserted))
	}
}

func TestDispatchFailureReleasesRowForRetry(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{fail: true}
	m := newTestModule(store, sender)

	err := m.Handle(context.Background(), events.AdoptionApproved{
		BaseEvent:      events.NewBaseEvent(),
		RequestNumber:  "ADR-2026-0001",
		AnimalName:     "Luna",
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
	})
	if err == nil {
		t.Fatal("Handle() expected dispatch error")
	}
	if store.released != 1 {
		t.Errorf("released marks = %d, want 1", store.released)
	}
	for _, rec := range store.records {
		if rec.Status != outbox.StatusPending {
			t.Errorf("record status = %s, want pending for retry", rec.Status)
		}
	}
}

func TestDispatchIsIdempotentForSucceededRows(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{}
	m := newTestModule(store, sender)

	if err := m.Handle(context.Background(), events.AdoptionRejected{
		BaseEvent:      events.NewBaseEvent(),
		RequestNumber:  "ADR-2026-0002",
		AnimalName:     "Luna",
		RequesterName:  "Ana Torres",
		RequesterEmail: "ana@example.com",
		Reason:         "home check failed",
	}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var id uuid.UUID
	for recID := range store.records {
		id = recID
	}
	if err := m.Dispatch(context.Background(), id); err != nil {
		t.Fatalf("repeat Dispatch() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent %d mails, want 1 (no resend for succeeded rows)", len(sender.sent))
	}
}
