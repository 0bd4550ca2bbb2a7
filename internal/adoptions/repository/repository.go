// Package repository provides PostgreSQL persistence for adoption requests
// and their terminal review decisions.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"patitas_backend/platform/apperr"
)

const (
	requestNotFoundMessage = "adoption request not found"

	pgUniqueViolation = "23505"
)

// Repo implements adoption persistence backed by pgx.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a Repo.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const requestColumns = `ar.id, ar.request_number, ar.animal_id, an.name, ar.requester_name,
        ar.requester_email, ar.requester_phone, ar.message, ar.status, ar.created_at, ar.updated_at`

func scanRequest(row pgx.Row) (AdoptionRequest, error) {
	var r AdoptionRequest
	err := row.Scan(
		&r.ID,
		&r.RequestNumber,
		&r.AnimalID,
		&r.AnimalName,
		&r.RequesterName,
		&r.RequesterEmail,
		&r.RequesterPhone,
		&r.Message,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// NextRequestNumber atomically generates the next request number for a year.
func (r *Repo) NextRequestNumber(ctx context.Context, year int) (string, error) {
	var nextNum int
	query := `
        INSERT INTO adoption_request_counters (year, last_number)
        VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_number = adoption_request_counters.last_number + 1
        RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("generate request number: %w", err)
	}
	return fmt.Sprintf("ADR-%d-%04d", year, nextNum), nil
}

// GetAnimalAvailability returns an animal's availability state.
func (r *Repo) GetAnimalAvailability(ctx context.Context, animalID uuid.UUID) (string, error) {
	var availability string
	if err := r.pool.QueryRow(ctx,
		`SELECT availability FROM animals WHERE id = $1`, animalID,
	).Scan(&availability); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("animal not found")
		}
		return "", fmt.Errorf("get animal availability: %w", err)
	}
	return availability, nil
}

// CreateRequest files a new pending request. The partial unique index on
// (animal_id, requester_email) for open rows rejects a duplicate open
// request from the same requester.
func (r *Repo) CreateRequest(ctx context.Context, params CreateRequestParams) (AdoptionRequest, error) {
	query := `
        WITH inserted AS (
            INSERT INTO adoption_requests (
                request_number, animal_id, requester_name, requester_email, requester_phone, message, status
            ) VALUES ($1, $2, $3, $4, $5, $6, 'pending')
            RETURNING *
        )
        SELECT ` + requestColumns + `
        FROM inserted ar
        JOIN animals an ON an.id = ar.animal_id`

	request, err := scanRequest(r.pool.QueryRow(ctx, query,
		params.RequestNumber,
		params.AnimalID,
		params.RequesterName,
		params.RequesterEmail,
		params.RequesterPhone,
		params.Message,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return AdoptionRequest{}, apperr.Conflict("requester already has an open request for this animal")
		}
		return AdoptionRequest{}, fmt.Errorf("create adoption request: %w", err)
	}
	return request, nil
}

// GetByID retrieves a request by ID, joined with its animal.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (AdoptionRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM adoption_requests ar
        JOIN animals an ON an.id = ar.animal_id
        WHERE ar.id = $1`

	request, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdoptionRequest{}, apperr.NotFound(requestNotFoundMessage)
		}
		return AdoptionRequest{}, fmt.Errorf("get adoption request by id: %w", err)
	}
	return request, nil
}

// List returns requests matching the filters plus the unpaginated total.
func (r *Repo) List(ctx context.Context, params ListRequestsParams) ([]AdoptionRequest, int, error) {
	whereClause := "TRUE"
	args := []interface{}{}

	if params.Status != nil {
		args = append(args, *params.Status)
		whereClause += fmt.Sprintf(" AND ar.status = $%d", len(args))
	}
	if params.AnimalID != nil {
		args = append(args, *params.AnimalID)
		whereClause += fmt.Sprintf(" AND ar.animal_id = $%d", len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM adoption_requests ar WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count adoption requests: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
        SELECT `+requestColumns+`
        FROM adoption_requests ar
        JOIN animals an ON an.id = ar.animal_id
        WHERE %s
        ORDER BY ar.created_at DESC
        LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list adoption requests: %w", err)
	}
	defer rows.Close()

	items := make([]AdoptionRequest, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan adoption request: %w", err)
		}
		items = append(items, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate adoption requests: %w", err)
	}
	return items, total, nil
}

// Decide finalizes a request under review. Every side effect lands in
// one transaction: the decision record, the request's terminal status,
// the animal's availability, the approved visit moved into the archive,
// and the removal of upcoming visits that the decision makes moot.
// Repeating an identical decision is a no-op.
func (r *Repo) Decide(ctx context.Context, params DecideParams) (DecideResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return DecideResult{}, fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := `
        SELECT ` + requestColumns + `
        FROM adoption_requests ar
        JOIN animals an ON an.id = ar.animal_id
        WHERE ar.id = $1
        FOR UPDATE OF ar`

	request, err := scanRequest(tx.QueryRow(ctx, lockQuery, params.RequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DecideResult{}, apperr.NotFound(requestNotFoundMessage)
		}
		return DecideResult{}, fmt.Errorf("lock adoption request: %w", err)
	}

	switch request.Status {
	case "approved", "rejected":
		if request.Status == params.Decision {
			return DecideResult{Request: request, AlreadyDecided: true}, nil
		}
		return DecideResult{}, apperr.Conflict("adoption request already decided")
	case "in_review":
		// decidable
	default:
		return DecideResult{}, apperr.Conflict("adoption request has not passed its visit review")
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO adoption_records (request_id, animal_id, decision, contract_ref, reason, decided_by, decided_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (request_id) DO NOTHING`,
		request.ID, request.AnimalID, params.Decision,
		params.ContractRef, params.Reason, params.DecidedBy, params.DecidedAt,
	); err != nil {
		return DecideResult{}, fmt.Errorf("record adoption decision: %w", err)
	}

	result := DecideResult{}

	if params.Decision == "approved" {
		tag, err := tx.Exec(ctx, `
            UPDATE animals SET availability = 'adopted', updated_at = NOW()
            WHERE id = $1 AND availability <> 'adopted'`,
			request.AnimalID,
		)
		if err != nil {
			return DecideResult{}, fmt.Errorf("mark animal adopted: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return DecideResult{}, apperr.Conflict("animal already adopted through another request")
		}

		var appointmentID uuid.UUID
		err = tx.QueryRow(ctx, `
            SELECT id FROM appointments
            WHERE request_id = $1 AND status = 'completed'
            ORDER BY evaluated_at DESC
            LIMIT 1`, request.ID,
		).Scan(&appointmentID)
		switch {
		case err == nil:
			if _, err := tx.Exec(ctx, `
                INSERT INTO approved_appointment_archive (
                    appointment_id, request_id, animal_id, requester_name, requester_email,
                    visit_date, slot_time, attendance, interaction, evaluated_at
                )
                SELECT id, request_id, animal_id, requester_name, requester_email,
                       visit_date, slot_time, attendance, interaction, evaluated_at
                FROM appointments WHERE id = $1
                ON CONFLICT (appointment_id) DO NOTHING`,
				appointmentID,
			); err != nil {
				return DecideResult{}, fmt.Errorf("archive approved visit: %w", err)
			}
			// The archive row is the permanent copy; the visit leaves
			// the live table.
			if _, err := tx.Exec(ctx, `
                DELETE FROM appointments WHERE id = $1`,
				appointmentID,
			); err != nil {
				return DecideResult{}, fmt.Errorf("remove archived visit: %w", err)
			}
			result.AppointmentArchived = true
		case errors.Is(err, pgx.ErrNoRows):
			// The caller warns; an approval may proceed without a stored visit.
		default:
			return DecideResult{}, fmt.Errorf("find approved visit: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx, `
            UPDATE animals SET availability = 'available', updated_at = NOW()
            WHERE id = $1 AND availability <> 'adopted'`,
			request.AnimalID,
		); err != nil {
			return DecideResult{}, fmt.Errorf("release animal: %w", err)
		}
	}

	// Walk-in bookings made before the request was filed carry no request
	// link; match them by the requester and animal pair as well.
	tag, err := tx.Exec(ctx, `
        DELETE FROM appointments
        WHERE status = 'scheduled'
          AND (request_id = $1 OR (requester_email = $2 AND animal_id = $3))`,
		request.ID, request.RequesterEmail, request.AnimalID,
	)
	if err != nil {
		return DecideResult{}, fmt.Errorf("drop upcoming visits: %w", err)
	}
	result.CancelledUpcoming = int(tag.RowsAffected())

	if err := tx.QueryRow(ctx, `
        UPDATE adoption_requests ar SET status = $2, updated_at = NOW()
        WHERE ar.id = $1
        RETURNING ar.id`, request.ID, params.Decision,
	).Scan(&request.ID); err != nil {
		return DecideResult{}, fmt.Errorf("finalize adoption request: %w", err)
	}
	request.Status = params.Decision
	result.Request = request

	if err := tx.Commit(ctx); err != nil {
		return DecideResult{}, fmt.Errorf("commit decision tx: %w", err)
	}
	return result, nil
}
