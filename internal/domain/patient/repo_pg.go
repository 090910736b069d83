package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/phi"
)

type repoPG struct {
	pool      *pgxpool.Pool
	encryptor phi.FieldEncryptor
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

// NewRepoWithEncryption encrypts email and phone number at rest.
// A nil encryptor stores them in clear text.
func NewRepoWithEncryption(pool *pgxpool.Pool, enc phi.FieldEncryptor) Repository {
	return &repoPG{pool: pool, encryptor: enc}
}

const patientCols = `id, clinic_id, name, email, phone_number, sex, created_at, updated_at`

func (r *repoPG) encrypt(p *Patient) (email, phone string, err error) {
	email, phone = p.Email, p.PhoneNumber
	if err := phi.EncryptFields(r.encryptor, &email, &phone); err != nil {
		return "", "", err
	}
	return email, phone, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()

	email, phone, err := r.encrypt(p)
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}

	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO patients (id, clinic_id, name, email, phone_number, sex)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		p.ID, p.ClinicID, p.Name, email, phone, string(p.Sex),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error) {
	p, err := r.scan(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND clinic_id = $2`, id, clinicID))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patient get: %w", err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	email, phone, err := r.encrypt(p)
	if err != nil {
		return fmt.Errorf("patient update: %w", err)
	}

	err = db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE patients SET name = $3, email = $4, phone_number = $5, sex = $6, updated_at = NOW()
		WHERE id = $1 AND clinic_id = $2
		RETURNING created_at, updated_at`,
		p.ID, p.ClinicID, p.Name, email, phone, string(p.Sex),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("patient update: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM patients WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	if err != nil {
		return fmt.Errorf("patient delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	conn := db.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE clinic_id = $1`, clinicID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("patient count: %w", err)
	}

	rows, err := conn.Query(ctx, `SELECT `+patientCols+` FROM patients
		WHERE clinic_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("patient list: %w", err)
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	var sex string
	if err := row.Scan(&p.ID, &p.ClinicID, &p.Name, &p.Email, &p.PhoneNumber, &sex, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Sex = Sex(sex)
	if err := phi.DecryptFields(r.encryptor, &p.Email, &p.PhoneNumber); err != nil {
		return nil, fmt.Errorf("decrypt patient %s: %w", p.ID, err)
	}
	return &p, nil
}
