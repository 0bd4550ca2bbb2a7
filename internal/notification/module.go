// Package notification turns domain events into outgoing mail. It
// subscribes to the event bus and inverts the dependency: domain modules
// never talk to templates or SMTP themselves. Every notification is
// persisted to the outbox first, so a crash between the triggering
// operation and the send cannot lose it.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patitas_backend/internal/email"
	"patitas_backend/internal/events"
	"patitas_backend/internal/notification/outbox"
	"patitas_backend/platform/config"
	"patitas_backend/platform/logger"
)

const kindEmail = "email"

const (
	templateRequestReceived        = "request_received"
	templateAppointmentConfirmed   = "appointment_confirmed"
	templateAppointmentRescheduled = "appointment_rescheduled"
	templateAppointmentReminder    = "appointment_reminder"
	templateEvaluationResult       = "evaluation_result"
	templateAdoptionApproved       = "adoption_approved"
	templateAdoptionRejected       = "adoption_rejected"
)

// emailPayload is the outbox payload shared by every email template.
// Templates read the fields they need.
type emailPayload struct {
	AppointmentID  *uuid.UUID `json:"appointmentId,omitempty"`
	RequestNumber  string     `json:"requestNumber,omitempty"`
	AnimalName     string     `json:"animalName,omitempty"`
	RequesterName  string     `json:"requesterName,omitempty"`
	RequesterEmail string     `json:"requesterEmail"`
	VisitDate      string     `json:"visitDate,omitempty"`
	SlotTime       string     `json:"slotTime,omitempty"`
	Advanced       bool       `json:"advanced,omitempty"`
	ContractRef    string     `json:"contractRef,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// OutboxStore is the slice of the outbox repository the module uses.
type OutboxStore interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (outbox.Record, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error
}

// Module handles all notification-related event subscriptions.
type Module struct {
	pool   *pgxpool.Pool
	store  OutboxStore
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger

	// inlineDispatch sends immediately after insert. Used when no task
	// queue is configured; otherwise the scheduler's dispatcher claims
	// pending rows.
	inlineDispatch bool
}

// NewModule creates the notification module.
func NewModule(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger, inlineDispatch bool) *Module {
	return &Module{
		pool:           pool,
		store:          outbox.New(pool),
		sender:         sender,
		cfg:            cfg,
		log:            log,
		inlineDispatch: inlineDispatch,
	}
}

// RegisterHandlers subscribes the module to the domain events it mails on.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.AdoptionRequestCreated{}.EventName(), m)
	bus.Subscribe(events.AppointmentScheduled{}.EventName(), m)
	bus.Subscribe(events.AppointmentRescheduled{}.EventName(), m)
	bus.Subscribe(events.AppointmentEvaluated{}.EventName(), m)
	bus.Subscribe(events.AdoptionApproved{}.EventName(), m)
	bus.Subscribe(events.AdoptionRejected{}.EventName(), m)
}

// Handle routes events to outbox inserts.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AdoptionRequestCreated:
		return m.enqueue(ctx, templateRequestReceived, emailPayload{
			RequestNumber:  e.RequestNumber,
			AnimalName:     e.AnimalName,
			RequesterName:  e.RequesterName,
			RequesterEmail: e.RequesterEmail,
		})
	case events.AppointmentScheduled:
		return m.enqueue(ctx, templateAppointmentConfirmed, emailPayload{
			AppointmentID:  &e.AppointmentID,
			AnimalName:     e.AnimalName,
			RequesterName:  e.RequesterName,
			RequesterEmail: e.RequesterEmail,
			VisitDate:      e.VisitDate,
			SlotTime:       e.SlotTime,
		})
	case events.AppointmentRescheduled:
		return m.enqueue(ctx, templateAppointmentRescheduled, emailPayload{
			AppointmentID:  &e.AppointmentID,
			AnimalName:     e.AnimalName,
			RequesterName:  e.RequesterName,
			RequesterEmail: e.RequesterEmail,
			VisitDate:      e.VisitDate,
			SlotTime:       e.SlotTime,
		})
	case events.AppointmentEvaluated:
		return m.enqueue(ctx, templateEvaluationResult, emailPayload{
			AppointmentID:  &e.AppointmentID,
			AnimalName:     e.AnimalName,
			RequesterName:  e.RequesterName,
			RequesterEmail: e.RequesterEmail,
			Advanced:       e.RequestAdvanced,
		})
	case events.AdoptionApproved:
		return m.enqueue(ctx, templateAdoptionApproved, emailPayload{
			RequestNumber:  e.RequestNumber,
			AnimalName:     e.AnimalName,
			RequesterName:  e.RequesterName,
			RequesterEmail: e.RequesterEmail,
			ContractRef:    e.ContractRef,
		})
	case events.AdoptionRejected:
		return m.enqueue(ctx, templateAdoptionRejected, emailPayload{
			RequestNumber:  e.RequestNumber,
			AnimalName:     e.AnimalName,
			RequesterName:  e.RequesterName,
			RequesterEmail: e.RequesterEmail,
			Reason:         e.Reason,
		})
	default:
		return nil
	}
}

func (m *Module) enqueue(ctx context.Context, template string, payload emailPayload) error {
	if payload.RequesterEmail == "" {
		// Walk-in bookings without a filed request have no recipient.
		m.log.Warn("skipping notification without recipient", "template", template)
		return nil
	}

	id, err := m.store.Insert(ctx, outbox.InsertParams{
		Kind:     kindEmail,
		Template: template,
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("insert outbox %s: %w", template, err)
	}

	if m.inlineDispatch {
		return m.Dispatch(ctx, id)
	}
	return nil
}

// Dispatch renders and sends a persisted outbox row. A failed send puts
// the row back to pending so the dispatcher retries it.
func (m *Module) Dispatch(ctx context.Context, outboxID uuid.UUID) error {
	rec, err := m.store.GetByID(ctx, outboxID)
	if err != nil {
		return fmt.Errorf("load outbox %s: %w", outboxID, err)
	}
	if rec.Status == outbox.StatusSucceeded {
		return nil
	}

	if err := m.store.MarkProcessing(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark outbox processing: %w", err)
	}

	var payload emailPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		msg := err.Error()
		_ = m.store.MarkPending(ctx, rec.ID, &msg)
		return fmt.Errorf("decode outbox payload: %w", err)
	}

	if err := m.send(ctx, rec.Template, payload); err != nil {
		msg := err.Error()
		if markErr := m.store.MarkPending(ctx, rec.ID, &msg); markErr != nil {
			m.log.Error("failed to release outbox row", "outbox_id", rec.ID, "error", markErr)
		}
		return err
	}

	return m.store.MarkSucceeded(ctx, rec.ID)
}

func (m *Module) send(ctx context.Context, template string, p emailPayload) error {
	switch template {
	case templateRequestReceived:
		return m.sender.SendRequestReceivedEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.RequestNumber)
	case templateAppointmentConfirmed:
		var checkInCode []byte
		if p.AppointmentID != nil {
			code, err := email.CheckInCode(m.cfg.GetAppBaseURL(), *p.AppointmentID)
			if err != nil {
				m.log.Error("failed to render check-in code", "appointment_id", p.AppointmentID, "error", err)
			} else {
				checkInCode = code
			}
		}
		return m.sender.SendAppointmentConfirmedEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.VisitDate, p.SlotTime, checkInCode)
	case templateAppointmentRescheduled:
		return m.sender.SendAppointmentRescheduledEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.VisitDate, p.SlotTime)
	case templateAppointmentReminder:
		return m.sender.SendAppointmentReminderEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.VisitDate, p.SlotTime)
	case templateEvaluationResult:
		return m.sender.SendEvaluationResultEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.Advanced)
	case templateAdoptionApproved:
		return m.sender.SendAdoptionApprovedEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.RequestNumber, p.ContractRef)
	case templateAdoptionRejected:
		return m.sender.SendAdoptionRejectedEmail(ctx, p.RequesterEmail, p.RequesterName, p.AnimalName, p.RequestNumber, p.Reason)
	default:
		return fmt.Errorf("unknown outbox template %q", template)
	}
}

// SendAppointmentReminder mails the reminder for a still-scheduled visit.
// Called by the task queue worker when the reminder task fires. The
// expected slot guards against reminders enqueued before a reschedule.
func (m *Module) SendAppointmentReminder(ctx context.Context, appointmentID uuid.UUID, expectVisitDate, expectSlotTime string) error {
	var (
		requesterName  string
		requesterEmail string
		animalName     string
		visitDate      time.Time
		slotTime       string
		status         string
	)
	err := m.pool.QueryRow(ctx, `
        SELECT a.requester_name, a.requester_email, an.name, a.visit_date, a.slot_time, a.status
        FROM appointments a
        JOIN animals an ON an.id = a.animal_id
        WHERE a.id = $1`, appointmentID,
	).Scan(&requesterName, &requesterEmail, &animalName, &visitDate, &slotTime, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			m.log.Warn("reminder for missing appointment", "appointment_id", appointmentID)
			return nil
		}
		return fmt.Errorf("load reminder appointment: %w", err)
	}

	if status != "scheduled" {
		return nil
	}
	date := visitDate.Format("2006-01-02")
	if expectVisitDate != "" && (date != expectVisitDate || slotTime != expectSlotTime) {
		// The visit moved after this reminder was enqueued; the
		// reschedule enqueued a fresh one.
		return nil
	}

	return m.sender.SendAppointmentReminderEmail(ctx, requesterEmail, requesterName, animalName, date, slotTime)
}

var _ events.Handler = (*Module)(nil)
