package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"paws-and-claws/internal/domain/adoptions"
)

type ApplicationsRepo struct {
	db *sql.DB
}

func NewApplicationsRepo(db *sql.DB) *ApplicationsRepo {
	return &ApplicationsRepo{db: db}
}

const applicationColumns = `
	id, user_id, pet_id, message, status, current_step, created_at_utc
`

func (r *ApplicationsRepo) Create(ctx context.Context, a adoptions.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		a.ID,
		a.UserID,
		a.PetID,
		a.Message,
		string(a.Status),
		a.CurrentStep,
		a.CreatedAtUtc,
	)
	return err
}

func (r *ApplicationsRepo) Update(ctx context.Context, a adoptions.Application) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_applications
		SET
			message = $2,
			status = $3,
			current_step = $4,
			created_at_utc = $5
		WHERE id = $1
	`,
		a.ID,
		a.Message,
		string(a.Status),
		a.CurrentStep,
		a.CreatedAtUtc,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Application{}, adoptions.ErrNotFound
	}
	return scanApplication(r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM adoption_applications WHERE id = $1
	`, id))
}

func (r *ApplicationsRepo) GetByUserAndPet(ctx context.Context, userID, petID string) (adoptions.Application, error) {
	return scanApplication(r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE user_id = $1 AND pet_id = $2
	`, userID, petID))
}

func (r *ApplicationsRepo) ListByUser(ctx context.Context, userID string) ([]adoptions.Application, error) {
	return r.list(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE user_id = $1
	`, userID)
}

func (r *ApplicationsRepo) ListByPet(ctx context.Context, petID string) ([]adoptions.Application, error) {
	return r.list(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE pet_id = $1
	`, petID)
}

func (r *ApplicationsRepo) ListAll(ctx context.Context) ([]adoptions.Application, error) {
	return r.list(ctx, `
		SELECT `+applicationColumns+` FROM adoption_applications
	`)
}

func (r *ApplicationsRepo) list(ctx context.Context, query string, args ...any) ([]adoptions.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Application, 0)
	for rows.Next() {
		var a adoptions.Application
		var status string
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.PetID,
			&a.Message,
			&status,
			&a.CurrentStep,
			&a.CreatedAtUtc,
		); err != nil {
			return nil, err
		}
		a.Status = adoptions.Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanApplication(row *sql.Row) (adoptions.Application, error) {
	var a adoptions.Application
	var status string
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.PetID,
		&a.Message,
		&status,
		&a.CurrentStep,
		&a.CreatedAtUtc,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return adoptions.Application{}, adoptions.ErrNotFound
		}
		return adoptions.Application{}, err
	}
	a.Status = adoptions.Status(status)
	return a, nil
}
