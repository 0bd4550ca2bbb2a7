// Package service implements visit appointment business logic.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patitas_backend/internal/appointments/domain"
	"patitas_backend/internal/appointments/repository"
	"patitas_backend/internal/appointments/transport"
	"patitas_backend/internal/events"
	"patitas_backend/platform/apperr"
	"patitas_backend/platform/logger"
	"patitas_backend/platform/phone"
	"patitas_backend/platform/sanitize"
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	Create(ctx context.Context, params repository.CreateAppointmentParams) (repository.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Appointment, error)
	UpdateSlot(ctx context.Context, id uuid.UUID, visitDate time.Time, slotTime string) (repository.Appointment, error)
	List(ctx context.Context, params repository.ListAppointmentsParams) ([]repository.Appointment, int, error)
	TakenSlots(ctx context.Context, visitDate time.Time) ([]string, error)
	GetRequestRef(ctx context.Context, requestID uuid.UUID) (repository.RequestRef, error)
	FindOpenRequest(ctx context.Context, requesterEmail string, animalID uuid.UUID) (repository.RequestRef, error)
	GetAnimalName(ctx context.Context, animalID uuid.UUID) (string, error)
	ApplyEvaluation(ctx context.Context, params repository.ApplyEvaluationParams) (repository.Appointment, error)
}

// ReminderScheduler enqueues a visit reminder for future delivery.
// Implemented by the asynq scheduler client; nil-safe via NoopReminder.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(ctx context.Context, appointmentID uuid.UUID, visitDate, slotTime string, remindAt time.Time) error
}

// NoopReminder drops reminders. Used when no task queue is configured.
type NoopReminder struct{}

func (NoopReminder) ScheduleAppointmentReminder(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

// Service orchestrates the visit appointment lifecycle.
type Service struct {
	repo         Repository
	bus          events.Bus
	reminders    ReminderScheduler
	clock        Clock
	reminderLead time.Duration
	log          *logger.Logger
}

// New creates a Service.
func New(repo Repository, bus events.Bus, reminders ReminderScheduler, clock Clock, reminderLead time.Duration, log *logger.Logger) *Service {
	if reminders == nil {
		reminders = NoopReminder{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{
		repo:         repo,
		bus:          bus,
		reminders:    reminders,
		clock:        clock,
		reminderLead: reminderLead,
		log:          log,
	}
}

// Create books a visit slot. The slot must sit on the half hour grid
// inside opening hours, on a future date at most one month out. Slot
// ownership is decided by the store's unique constraint, not by a
// read-then-write check.
func (s *Service) Create(ctx context.Context, req transport.CreateAppointmentRequest) (transport.AppointmentResponse, error) {
	slotStart, err := parseSlot(s.clock.Now(), req.VisitDate, req.SlotTime)
	if err != nil {
		return transport.AppointmentResponse{}, err
	}

	animalName, err := s.repo.GetAnimalName(ctx, req.AnimalID)
	if err != nil {
		return transport.AppointmentResponse{}, err
	}

	requestID, err := s.resolveRequestLink(ctx, req)
	if err != nil {
		return transport.AppointmentResponse{}, err
	}

	params := repository.CreateAppointmentParams{
		AnimalID:       req.AnimalID,
		RequestID:      requestID,
		RequesterName:  sanitize.Text(req.RequesterName),
		RequesterEmail: sanitize.Text(req.RequesterEmail),
		VisitDate:      dayOf(slotStart),
		SlotTime:       req.SlotTime,
		Notes:          optionalText(req.Notes),
	}
	if req.RequesterPhone != "" {
		normalized := phone.NormalizeE164(req.RequesterPhone)
		params.RequesterPhone = &normalized
	}

	appointment, err := s.repo.Create(ctx, params)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindConflict {
			s.log.SlotConflict(req.VisitDate, req.SlotTime)
		}
		return transport.AppointmentResponse{}, err
	}

	s.publishScheduled(ctx, appointment, animalName, false)
	s.scheduleReminder(ctx, appointment.ID, slotStart)

	return toResponse(appointment, animalName), nil
}

// Reschedule moves a scheduled visit to a new slot under the same
// validation and race rules as booking.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req transport.RescheduleAppointmentRequest) (transport.AppointmentResponse, error) {
	slotStart, err := parseSlot(s.clock.Now(), req.VisitDate, req.SlotTime)
	if err != nil {
		return transport.AppointmentResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AppointmentResponse{}, err
	}
	if current.Status != string(domain.AppointmentScheduled) {
		return transport.AppointmentResponse{}, apperr.Conflict("only scheduled appointments can be moved")
	}

	appointment, err := s.repo.UpdateSlot(ctx, id, dayOf(slotStart), req.SlotTime)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindConflict {
			s.log.SlotConflict(req.VisitDate, req.SlotTime)
		}
		return transport.AppointmentResponse{}, err
	}

	animalName, err := s.repo.GetAnimalName(ctx, appointment.AnimalID)
	if err != nil {
		animalName = ""
	}

	s.publishScheduled(ctx, appointment, animalName, true)
	s.scheduleReminder(ctx, appointment.ID, slotStart)

	return toResponse(appointment, animalName), nil
}

// Evaluate records the outcome of a visit. The appointment's terminal
// state, the linked request's transition, and the animal's availability
// change together in one transaction.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID, req transport.EvaluateAppointmentRequest) (transport.EvaluationResponse, error) {
	outcome, err := domain.ResolveEvaluation(domain.Attendance(req.Attendance), domain.Interaction(req.Interaction))
	if err != nil {
		return transport.EvaluationResponse{}, err
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EvaluationResponse{}, err
	}
	if appointment.Status != string(domain.AppointmentScheduled) {
		return transport.EvaluationResponse{}, apperr.Conflict("appointment already evaluated")
	}

	requestID := appointment.RequestID
	if requestID == nil {
		ref, err := s.repo.FindOpenRequest(ctx, appointment.RequesterEmail, appointment.AnimalID)
		switch {
		case err == nil:
			requestID = &ref.ID
		case apperr.GetKind(err) == apperr.KindNotFound:
			// A visit can be evaluated without a filed request; only the
			// appointment itself transitions then.
			s.log.Warn("evaluating appointment without linked request",
				"appointment_id", appointment.ID, "requester_email", appointment.RequesterEmail)
		default:
			return transport.EvaluationResponse{}, err
		}
	}

	params := repository.ApplyEvaluationParams{
		AppointmentID:     appointment.ID,
		Attendance:        req.Attendance,
		Interaction:       string(outcome.Interaction),
		AppointmentStatus: string(outcome.AppointmentStatus),
		Notes:             optionalText(req.Notes),
		EvaluatedAt:       s.clock.Now(),
		RequestID:         requestID,
		RequestStatus:     string(outcome.RequestStatus),
		AnimalID:          appointment.AnimalID,
		FreesAnimal:       outcome.FreesAnimal,
	}

	evaluated, err := s.repo.ApplyEvaluation(ctx, params)
	if err != nil {
		return transport.EvaluationResponse{}, err
	}

	animalName, err := s.repo.GetAnimalName(ctx, evaluated.AnimalID)
	if err != nil {
		animalName = ""
	}

	s.bus.Publish(ctx, events.AppointmentEvaluated{
		BaseEvent:       events.NewBaseEvent(),
		AppointmentID:   evaluated.ID,
		RequestID:       requestID,
		AnimalID:        evaluated.AnimalID,
		AnimalName:      animalName,
		RequesterName:   evaluated.RequesterName,
		RequesterEmail:  evaluated.RequesterEmail,
		Attendance:      req.Attendance,
		Interaction:     string(outcome.Interaction),
		RequestAdvanced: outcome.RequestAdvanced(),
		AnimalFreed:     outcome.FreesAnimal,
	})

	resp := transport.EvaluationResponse{
		Appointment:     toResponse(evaluated, animalName),
		RequestAdvanced: outcome.RequestAdvanced(),
		AnimalFreed:     outcome.FreesAnimal,
	}
	if requestID != nil {
		status := string(outcome.RequestStatus)
		resp.RequestStatus = &status
	}
	return resp, nil
}

// GetByID returns a single appointment.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.AppointmentResponse, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AppointmentResponse{}, err
	}
	animalName, err := s.repo.GetAnimalName(ctx, appointment.AnimalID)
	if err != nil {
		animalName = ""
	}
	return toResponse(appointment, animalName), nil
}

// List returns a paginated appointment listing.
func (s *Service) List(ctx context.Context, req transport.ListAppointmentsRequest) (transport.AppointmentListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := repository.ListAppointmentsParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := req.Status
		params.Status = &status
	}
	if req.VisitDate != "" {
		day, err := time.Parse(dateLayout, req.VisitDate)
		if err != nil {
			return transport.AppointmentListResponse{}, apperr.BadRequest("visitDate must be formatted as YYYY-MM-DD")
		}
		params.VisitDate = &day
	}
	if req.AnimalID != "" {
		animalID, err := uuid.Parse(req.AnimalID)
		if err != nil {
			return transport.AppointmentListResponse{}, apperr.BadRequest("invalid animal id")
		}
		params.AnimalID = &animalID
	}

	appointments, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.AppointmentListResponse{}, err
	}

	items := make([]transport.AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		items = append(items, toResponse(a, ""))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.AppointmentListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// DaySlots returns the half hour grid for a date with taken markers.
func (s *Service) DaySlots(ctx context.Context, visitDate string) (transport.DaySlotsResponse, error) {
	day, err := time.Parse(dateLayout, visitDate)
	if err != nil {
		return transport.DaySlotsResponse{}, apperr.BadRequest("visitDate must be formatted as YYYY-MM-DD")
	}

	taken, err := s.repo.TakenSlots(ctx, day)
	if err != nil {
		return transport.DaySlotsResponse{}, err
	}
	takenSet := make(map[string]bool, len(taken))
	for _, slot := range taken {
		takenSet[slot] = true
	}

	grid := slotGrid()
	slots := make([]transport.DaySlot, 0, len(grid))
	for _, slot := range grid {
		slots = append(slots, transport.DaySlot{SlotTime: slot, Taken: takenSet[slot]})
	}
	return transport.DaySlotsResponse{VisitDate: visitDate, Slots: slots}, nil
}

// resolveRequestLink ties the booking to an adoption request. An explicit
// request id must exist, match the animal, and still be open. Without
// one, the most recent open request for the requester and animal is used
// when present.
func (s *Service) resolveRequestLink(ctx context.Context, req transport.CreateAppointmentRequest) (*uuid.UUID, error) {
	if req.RequestID != nil {
		ref, err := s.repo.GetRequestRef(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if ref.AnimalID != req.AnimalID {
			return nil, apperr.Validation("adoption request belongs to a different animal")
		}
		if ref.Status != string(domain.RequestPending) && ref.Status != string(domain.RequestInReview) {
			return nil, apperr.Conflict("adoption request is already decided")
		}
		return &ref.ID, nil
	}

	ref, err := s.repo.FindOpenRequest(ctx, sanitize.Text(req.RequesterEmail), req.AnimalID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ref.ID, nil
}

func (s *Service) publishScheduled(ctx context.Context, a repository.Appointment, animalName string, rescheduled bool) {
	base := events.NewBaseEvent()
	if rescheduled {
		s.bus.Publish(ctx, events.AppointmentRescheduled{
			BaseEvent:      base,
			AppointmentID:  a.ID,
			RequestID:      a.RequestID,
			AnimalID:       a.AnimalID,
			AnimalName:     animalName,
			RequesterName:  a.RequesterName,
			RequesterEmail: a.RequesterEmail,
			VisitDate:      a.VisitDate.Format(dateLayout),
			SlotTime:       a.SlotTime,
		})
		return
	}
	s.bus.Publish(ctx, events.AppointmentScheduled{
		BaseEvent:      base,
		AppointmentID:  a.ID,
		RequestID:      a.RequestID,
		AnimalID:       a.AnimalID,
		AnimalName:     animalName,
		RequesterName:  a.RequesterName,
		RequesterEmail: a.RequesterEmail,
		VisitDate:      a.VisitDate.Format(dateLayout),
		SlotTime:       a.SlotTime,
	})
}

func (s *Service) scheduleReminder(ctx context.Context, appointmentID uuid.UUID, slotStart time.Time) {
	remindAt := slotStart.Add(-s.reminderLead)
	if !remindAt.After(s.clock.Now()) {
		return
	}
	visitDate := slotStart.Format(dateLayout)
	slotTime := slotStart.Format(slotLayout)
	if err := s.reminders.ScheduleAppointmentReminder(ctx, appointmentID, visitDate, slotTime, remindAt); err != nil {
		s.log.Error("failed to schedule visit reminder", "appointment_id", appointmentID, "error", err)
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toResponse(a repository.Appointment, animalName string) transport.AppointmentResponse {
	return transport.AppointmentResponse{
		ID:             a.ID,
		AnimalID:       a.AnimalID,
		AnimalName:     animalName,
		RequestID:      a.RequestID,
		RequesterName:  a.RequesterName,
		RequesterEmail: a.RequesterEmail,
		RequesterPhone: a.RequesterPhone,
		VisitDate:      a.VisitDate.Format(dateLayout),
		SlotTime:       a.SlotTime,
		Status:         a.Status,
		Attendance:     a.Attendance,
		Interaction:    a.Interaction,
		Notes:          a.Notes,
		EvaluatedAt:    a.EvaluatedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func optionalText(value string) *string {
	cleaned := sanitize.Text(value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
