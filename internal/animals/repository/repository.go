// Package repository provides PostgreSQL persistence for shelter animals.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patitas_backend/platform/apperr"
)

const animalNotFoundMessage = "animal not found"

// Repo implements animal persistence backed by pgx.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a Repo.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const animalColumns = `id, name, species, breed, sex, birth_date, description, availability, created_at, updated_at`

func scanAnimal(row pgx.Row) (Animal, error) {
	var a Animal
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Species,
		&a.Breed,
		&a.Sex,
		&a.BirthDate,
		&a.Description,
		&a.Availability,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Create registers a new animal. Availability always starts at available.
func (r *Repo) Create(ctx context.Context, params CreateAnimalParams) (Animal, error) {
	query := `
        INSERT INTO animals (name, species, breed, sex, birth_date, description, availability)
        VALUES ($1, $2, $3, $4, $5, $6, 'available')
        RETURNING ` + animalColumns

	animal, err := scanAnimal(r.pool.QueryRow(ctx, query,
		params.Name,
		params.Species,
		params.Breed,
		params.Sex,
		params.BirthDate,
		params.Description,
	))
	if err != nil {
		return Animal{}, fmt.Errorf("create animal: %w", err)
	}
	return animal, nil
}

// GetByID retrieves an animal by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals WHERE id = $1`

	animal, err := scanAnimal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Animal{}, apperr.NotFound(animalNotFoundMessage)
		}
		return Animal{}, fmt.Errorf("get animal by id: %w", err)
	}
	return animal, nil
}

// Update patches descriptive fields. Availability is owned by the adoption
// lifecycle and is never touched here.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateAnimalParams) (Animal, error) {
	query := `
        UPDATE animals SET
            name        = COALESCE($2, name),
            breed       = COALESCE($3, breed),
            sex         = COALESCE($4, sex),
            birth_date  = COALESCE($5, birth_date),
            description = COALESCE($6, description),
            updated_at  = NOW()
        WHERE id = $1
        RETURNING ` + animalColumns

	animal, err := scanAnimal(r.pool.QueryRow(ctx, query,
		id,
		params.Name,
		params.Breed,
		params.Sex,
		params.BirthDate,
		params.Description,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Animal{}, apperr.NotFound(animalNotFoundMessage)
		}
		return Animal{}, fmt.Errorf("update animal: %w", err)
	}
	return animal, nil
}

// List returns animals matching the filters plus the unpaginated total.
func (r *Repo) List(ctx context.Context, params ListAnimalsParams) ([]Animal, int, error) {
	whereClause := "TRUE"
	args := []interface{}{}

	if params.Availability != nil {
		args = append(args, *params.Availability)
		whereClause += fmt.Sprintf(" AND availability = $%d", len(args))
	}
	if params.Species != nil {
		args = append(args, *params.Species)
		whereClause += fmt.Sprintf(" AND species = $%d", len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM animals WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count animals: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
        SELECT `+animalColumns+`
        FROM animals
        WHERE %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list animals: %w", err)
	}
	defer rows.Close()

	items := make([]Animal, 0)
	for rows.Next() {
		animal, err := scanAnimal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan animal: %w", err)
		}
		items = append(items, animal)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate animals: %w", err)
	}
	return items, total, nil
}

// HasOpenRequests reports whether any non-terminal adoption request
// references the animal. Used to guard deletion.
func (r *Repo) HasOpenRequests(ctx context.Context, animalID uuid.UUID) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM adoption_requests
            WHERE animal_id = $1 AND status IN ('pending', 'in_review')
        )`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, animalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check open requests: %w", err)
	}
	return exists, nil
}

// Delete removes an animal permanently.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete animal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(animalNotFoundMessage)
	}
	return nil
}
