package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"paws-and-claws/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, email, password_hash,
	first_name, last_name,
	address, living_situation, has_other_pets,
	role, profile_picture_url,
	created_at, updated_at
`

// CreateWithOwnedPets inserts the account and its pets in one transaction.
func (r *UsersRepo) CreateWithOwnedPets(ctx context.Context, u users.User, pets []users.OwnedPet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Address,
		u.LivingSituation,
		u.HasOtherPets,
		u.Role,
		u.ProfilePictureURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrEmailTaken
		}
		return err
	}

	for _, p := range pets {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO owned_pets (id, user_id, name, species, gender, breed, age, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			p.ID,
			p.UserID,
			p.Name,
			p.Species,
			p.Gender,
			p.Breed,
			p.Age,
			p.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	if strings.TrimSpace(email) == "" {
		return users.User{}, users.ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			first_name = $3,
			last_name = $4,
			address = $5,
			living_situation = $6,
			has_other_pets = $7,
			profile_picture_url = $8,
			updated_at = $9
		WHERE id = $1
	`,
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Address,
		u.LivingSituation,
		u.HasOtherPets,
		u.ProfilePictureURL,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrEmailTaken
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) ListOwnedPets(ctx context.Context, userID string) ([]users.OwnedPet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, species, gender, breed, age, created_at
		FROM owned_pets
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.OwnedPet, 0)
	for rows.Next() {
		var p users.OwnedPet
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Species,
			&p.Gender,
			&p.Breed,
			&p.Age,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *UsersRepo) CountOwnedPets(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM owned_pets WHERE user_id = $1
	`, userID).Scan(&n)
	return n, err
}

func (r *UsersRepo) scanOne(row *sql.Row) (users.User, error) {
	var u users.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Address,
		&u.LivingSituation,
		&u.HasOtherPets,
		&u.Role,
		&u.ProfilePictureURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
