package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

// -- Users --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	return &u, nil
}

// -- Clinics --

type clinicRepoPG struct {
	pool *pgxpool.Pool
}

func NewClinicRepo(pool *pgxpool.Pool) ClinicRepository {
	return &clinicRepoPG{pool: pool}
}

func (r *clinicRepoPG) CreateForUser(ctx context.Context, c *Clinic, userID uuid.UUID) error {
	c.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)
		err := conn.QueryRow(ctx, `
			INSERT INTO clinics (id, name) VALUES ($1, $2)
			RETURNING created_at, updated_at`,
			c.ID, c.Name,
		).Scan(&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("clinic create: %w", err)
		}
		if _, err := conn.Exec(ctx,
			`INSERT INTO users_to_clinics (user_id, clinic_id) VALUES ($1, $2)`, userID, c.ID); err != nil {
			return fmt.Errorf("clinic link user: %w", err)
		}
		return nil
	})
}

func (r *clinicRepoPG) FirstForUser(ctx context.Context, userID uuid.UUID) (*Clinic, error) {
	var c Clinic
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT c.id, c.name, c.created_at, c.updated_at
		FROM clinics c
		JOIN users_to_clinics uc ON uc.clinic_id = c.id
		WHERE uc.user_id = $1
		ORDER BY uc.created_at, c.id
		LIMIT 1`, userID,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("clinic for user: %w", err)
	}
	return &c, nil
}
