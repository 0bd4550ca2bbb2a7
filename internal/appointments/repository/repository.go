// Package repository provides PostgreSQL persistence for visit appointments.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"patitas_backend/platform/apperr"
)

const (
	appointmentNotFoundMessage = "appointment not found"
	slotTakenMessage           = "slot already booked"

	pgUniqueViolation = "23505"
)

// Repo implements appointment persistence backed by pgx.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a Repo.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const appointmentColumns = `id, animal_id, request_id, requester_name, requester_email, requester_phone,
        visit_date, slot_time, status, attendance, interaction, notes, evaluated_at, created_at, updated_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.AnimalID,
		&a.RequestID,
		&a.RequesterName,
		&a.RequesterEmail,
		&a.RequesterPhone,
		&a.VisitDate,
		&a.SlotTime,
		&a.Status,
		&a.Attendance,
		&a.Interaction,
		&a.Notes,
		&a.EvaluatedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create books a visit slot. The partial unique index on
// (visit_date, slot_time) for scheduled rows closes the booking race:
// the second concurrent insert fails with a unique violation and is
// surfaced as a conflict.
func (r *Repo) Create(ctx context.Context, params CreateAppointmentParams) (Appointment, error) {
	query := `
        INSERT INTO appointments (
            animal_id, request_id, requester_name, requester_email, requester_phone,
            visit_date, slot_time, status, notes
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, 'scheduled', $8)
        RETURNING ` + appointmentColumns

	appointment, err := scanAppointment(r.pool.QueryRow(ctx, query,
		params.AnimalID,
		params.RequestID,
		params.RequesterName,
		params.RequesterEmail,
		params.RequesterPhone,
		params.VisitDate,
		params.SlotTime,
		params.Notes,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return Appointment{}, apperr.Conflict(slotTakenMessage)
		}
		return Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return appointment, nil
}

// GetByID retrieves an appointment by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appointment, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, apperr.NotFound(appointmentNotFoundMessage)
		}
		return Appointment{}, fmt.Errorf("get appointment by id: %w", err)
	}
	return appointment, nil
}

// UpdateSlot moves a scheduled appointment to a new slot. The same
// partial unique index guards the target slot.
func (r *Repo) UpdateSlot(ctx context.Context, id uuid.UUID, visitDate time.Time, slotTime string) (Appointment, error) {
	query := `
        UPDATE appointments
        SET visit_date = $2, slot_time = $3, updated_at = NOW()
        WHERE id = $1 AND status = 'scheduled'
        RETURNING ` + appointmentColumns

	appointment, err := scanAppointment(r.pool.QueryRow(ctx, query, id, visitDate, slotTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, apperr.NotFound("no scheduled appointment to reschedule")
		}
		if isUniqueViolation(err) {
			return Appointment{}, apperr.Conflict(slotTakenMessage)
		}
		return Appointment{}, fmt.Errorf("reschedule appointment: %w", err)
	}
	return appointment, nil
}

// List returns appointments matching the filters plus the unpaginated total.
func (r *Repo) List(ctx context.Context, params ListAppointmentsParams) ([]Appointment, int, error) {
	whereClause := "TRUE"
	args := []interface{}{}

	if params.Status != nil {
		args = append(args, *params.Status)
		whereClause += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.VisitDate != nil {
		args = append(args, *params.VisitDate)
		whereClause += fmt.Sprintf(" AND visit_date = $%d", len(args))
	}
	if params.AnimalID != nil {
		args = append(args, *params.AnimalID)
		whereClause += fmt.Sprintf(" AND animal_id = $%d", len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM appointments WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
        SELECT `+appointmentColumns+`
        FROM appointments
        WHERE %s
        ORDER BY visit_date ASC, slot_time ASC
        LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appointment: %w", err)
		}
		items = append(items, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate appointments: %w", err)
	}
	return items, total, nil
}

// TakenSlots returns the slot times already booked for a visit date.
func (r *Repo) TakenSlots(ctx context.Context, visitDate time.Time) ([]string, error) {
	query := `
        SELECT slot_time FROM appointments
        WHERE visit_date = $1 AND status = 'scheduled'
        ORDER BY slot_time`

	rows, err := r.pool.Query(ctx, query, visitDate)
	if err != nil {
		return nil, fmt.Errorf("taken slots: %w", err)
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

// GetRequestRef loads the request slice the appointment flow needs,
// joined with its animal.
func (r *Repo) GetRequestRef(ctx context.Context, requestID uuid.UUID) (RequestRef, error) {
	query := `
        SELECT ar.id, ar.status, ar.requester_name, ar.requester_email, ar.animal_id, an.name
        FROM adoption_requests ar
        JOIN animals an ON an.id = ar.animal_id
        WHERE ar.id = $1`

	var ref RequestRef
	if err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&ref.ID,
		&ref.Status,
		&ref.RequesterName,
		&ref.RequesterEmail,
		&ref.AnimalID,
		&ref.AnimalName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequestRef{}, apperr.NotFound("adoption request not found")
		}
		return RequestRef{}, fmt.Errorf("get request ref: %w", err)
	}
	return ref, nil
}

// FindOpenRequest looks up the most recent non-terminal request by the
// requester's email for the given animal. Used to link walk-in bookings
// that did not carry a request id.
func (r *Repo) FindOpenRequest(ctx context.Context, requesterEmail string, animalID uuid.UUID) (RequestRef, error) {
	query := `
        SELECT ar.id, ar.status, ar.requester_name, ar.requester_email, ar.animal_id, an.name
        FROM adoption_requests ar
        JOIN animals an ON an.id = ar.animal_id
        WHERE ar.requester_email = $1 AND ar.animal_id = $2
          AND ar.status IN ('pending', 'in_review')
        ORDER BY ar.created_at DESC
        LIMIT 1`

	var ref RequestRef
	if err := r.pool.QueryRow(ctx, query, requesterEmail, animalID).Scan(
		&ref.ID,
		&ref.Status,
		&ref.RequesterName,
		&ref.RequesterEmail,
		&ref.AnimalID,
		&ref.AnimalName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequestRef{}, apperr.NotFound("no open adoption request for requester and animal")
		}
		return RequestRef{}, fmt.Errorf("find open request: %w", err)
	}
	return ref, nil
}

// GetAnimalName returns the display name for an animal.
func (r *Repo) GetAnimalName(ctx context.Context, animalID uuid.UUID) (string, error) {
	var name string
	if err := r.pool.QueryRow(ctx, `SELECT name FROM animals WHERE id = $1`, animalID).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("animal not found")
		}
		return "", fmt.Errorf("get animal name: %w", err)
	}
	return name, nil
}

// ApplyEvaluation writes every effect of a visit evaluation in a single
// transaction: the appointment's terminal state, the linked request's
// transition, and the animal's availability when the outcome frees it.
func (r *Repo) ApplyEvaluation(ctx context.Context, params ApplyEvaluationParams) (Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Appointment{}, fmt.Errorf("begin evaluation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE appointments
        SET status = $2, attendance = $3, interaction = $4,
            notes = COALESCE($5, notes), evaluated_at = $6, updated_at = NOW()
        WHERE id = $1 AND status = 'scheduled'
        RETURNING ` + appointmentColumns

	appointment, err := scanAppointment(tx.QueryRow(ctx, query,
		params.AppointmentID,
		params.AppointmentStatus,
		params.Attendance,
		params.Interaction,
		params.Notes,
		params.EvaluatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, apperr.Conflict("appointment already evaluated")
		}
		return Appointment{}, fmt.Errorf("evaluate appointment: %w", err)
	}

	if params.RequestID != nil {
		tag, err := tx.Exec(ctx, `
            UPDATE adoption_requests
            SET status = $2, updated_at = NOW()
            WHERE id = $1 AND status IN ('pending', 'in_review')`,
			*params.RequestID, params.RequestStatus,
		)
		if err != nil {
			return Appointment{}, fmt.Errorf("advance adoption request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return Appointment{}, apperr.Conflict("adoption request already decided")
		}

		if params.FreesAnimal {
			if _, err := tx.Exec(ctx, `
                UPDATE animals SET availability = 'available', updated_at = NOW()
                WHERE id = $1 AND availability <> 'adopted'`,
				params.AnimalID,
			); err != nil {
				return Appointment{}, fmt.Errorf("free animal: %w", err)
			}
		} else if params.RequestStatus == "in_review" {
			if _, err := tx.Exec(ctx, `
                UPDATE animals SET availability = 'in_review', updated_at = NOW()
                WHERE id = $1 AND availability <> 'adopted'`,
				params.AnimalID,
			); err != nil {
				return Appointment{}, fmt.Errorf("hold animal for review: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Appointment{}, fmt.Errorf("commit evaluation tx: %w", err)
	}
	return appointment, nil
}
