package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const doctorCols = `id, clinic_id, name, COALESCE(avatar_image_url, ''), specialty, appointment_price_in_cents,
	available_from_week_day, available_to_week_day, available_from_time, available_to_time,
	created_at, updated_at`

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO doctors (
			id, clinic_id, name, avatar_image_url, specialty, appointment_price_in_cents,
			available_from_week_day, available_to_week_day, available_from_time, available_to_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		d.ID, d.ClinicID, d.Name, nullable(d.AvatarImageURL), d.Specialty, d.AppointmentPriceInCents,
		d.AvailableFromWeekDay, d.AvailableToWeekDay, d.AvailableFromTime, d.AvailableToTime,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("doctor create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1 AND clinic_id = $2`, id, clinicID))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctor get: %w", err)
	}
	return d, nil
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE doctors SET
			name = $3, avatar_image_url = $4, specialty = $5, appointment_price_in_cents = $6,
			available_from_week_day = $7, available_to_week_day = $8,
			available_from_time = $9, available_to_time = $10, updated_at = NOW()
		WHERE id = $1 AND clinic_id = $2
		RETURNING created_at, updated_at`,
		d.ID, d.ClinicID, d.Name, nullable(d.AvatarImageURL), d.Specialty, d.AppointmentPriceInCents,
		d.AvailableFromWeekDay, d.AvailableToWeekDay, d.AvailableFromTime, d.AvailableToTime,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("doctor update: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM doctors WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	if err != nil {
		return fmt.Errorf("doctor delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE clinic_id = $1 ORDER BY name, id`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("doctor list: %w", err)
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctor list: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var fromDay, toDay int16
	err := row.Scan(&d.ID, &d.ClinicID, &d.Name, &d.AvatarImageURL, &d.Specialty, &d.AppointmentPriceInCents,
		&fromDay, &toDay, &d.AvailableFromTime, &d.AvailableToTime, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.AvailableFromWeekDay = int(fromDay)
	d.AvailableToWeekDay = int(toDay)
	return &d, nil
}
