package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

const bookingColumns = `
	id, clinic_id, patient_id, full_name, email, phone, country, treatment,
	message, preferred_date, status, created_at, updated_at`

type bookingRepository struct {
	BaseRepository
}

func NewBookingRepository(base BaseRepository) repository.BookingRepository {
	return &bookingRepository{base}
}

func (r *bookingRepository) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = model.BookingNew
	}

	query := `
		INSERT INTO clinic_requests (
			id, clinic_id, patient_id, full_name, email, phone, country, treatment,
			message, preferred_date, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.ClinicID,
		b.PatientID,
		b.FullName,
		b.Email,
		b.Phone,
		b.Country,
		b.Treatment,
		b.Message,
		b.PreferredDate,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return mapError("booking", "create", err)
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM clinic_requests WHERE id = $1`, id); err != nil {
		return nil, mapError("booking", "get", err)
	}
	return &b, nil
}

func (r *bookingRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, status model.BookingStatus, page model.Pagination) ([]*model.Booking, int, error) {
	page = page.Normalize()
	w := &where{}
	w.add("clinic_id = $%d", clinicID)
	if status != "" {
		w.add("status = $%d", status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clinic_requests`+w.sql(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM clinic_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, w.sql(), len(w.args)+1, len(w.args)+2)
	args := append(append([]interface{}{}, w.args...), page.PageSize, page.Offset())

	bookings := []*model.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *bookingRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error) {
	bookings := []*model.Booking{}
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+` FROM clinic_requests WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	var b model.Booking
	err := r.db.GetContext(ctx, &b, `
		UPDATE clinic_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+bookingColumns, id, status)
	if err != nil {
		return nil, mapError("booking", "update", err)
	}
	return &b, nil
}
