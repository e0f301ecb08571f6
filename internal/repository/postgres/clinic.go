package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

const clinicColumns = `
	id, name, slug, specialty, description, address, country, city, province,
	district, map_url, status, moderation_status, moderation_reason, is_published,
	owner_id, rating, review_count, created_at, updated_at`

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	now := time.Now()
	clinic.ID = uuid.New()
	clinic.CreatedAt = now
	clinic.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO clinics (
				id, name, slug, specialty, description, address, country, city,
				province, district, map_url, status, moderation_status, is_published,
				owner_id, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)
		`
		_, err := tx.ExecContext(ctx, query,
			clinic.ID,
			clinic.Name,
			clinic.Slug,
			clinic.Specialty,
			clinic.Description,
			clinic.Address,
			clinic.Country,
			clinic.City,
			clinic.Province,
			clinic.District,
			clinic.MapURL,
			clinic.Status,
			clinic.ModerationStatus,
			clinic.IsPublished,
			clinic.OwnerID,
			clinic.CreatedAt,
			clinic.UpdatedAt,
		)
		if err != nil {
			return mapError("clinic", "create", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO clinic_profile_drafts (id, clinic_id, status, updated_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), clinic.ID, model.DraftEditing, now)
		if err != nil {
			return mapError("draft", "create", err)
		}
		return nil
	})
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, `SELECT `+clinicColumns+` FROM clinics WHERE id = $1`, id)
	if err != nil {
		return nil, mapError("clinic", "get", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) GetBySlug(ctx context.Context, slug string) (*model.Clinic, error) {
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, `SELECT `+clinicColumns+` FROM clinics WHERE slug = $1`, slug)
	if err != nil {
		return nil, mapError("clinic", "get", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM clinics WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *clinicRepository) Update(ctx context.Context, id uuid.UUID, cols []patch.Column) error {
	if len(cols) == 0 {
		return nil
	}
	set, args := setClause(cols, 2)
	query := `UPDATE clinics SET ` + set + `, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return mapError("clinic", "update", err)
	}
	return rowsAffected(res, "clinic")
}

func (r *clinicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return mapError("clinic", "delete", err)
	}
	return rowsAffected(res, "clinic")
}

// where collects conditions and positional arguments for list queries.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (r *clinicRepository) list(ctx context.Context, w *where, order string, page model.Pagination) ([]*model.Clinic, int, error) {
	page = page.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clinics`+w.sql(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count clinics: %w", err)
	}

	args := append(append([]interface{}{}, w.args...), page.PageSize, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM clinics%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		clinicColumns, w.sql(), order, len(w.args)+1, len(w.args)+2)

	clinics := []*model.Clinic{}
	if err := r.db.SelectContext(ctx, &clinics, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, total, nil
}

func (r *clinicRepository) ListPublic(ctx context.Context, filter *model.ClinicFilter) ([]*model.Clinic, int, error) {
	w := &where{conds: []string{"is_published = TRUE", "moderation_status = 'approved'"}}
	if filter.Country != "" {
		w.add("country ILIKE $%d", filter.Country)
	}
	if filter.City != "" {
		w.add("city ILIKE $%d", filter.City)
	}
	if filter.Specialty != "" {
		w.add("specialty ILIKE $%d", filter.Specialty)
	}
	return r.list(ctx, w, "rating DESC, name ASC", filter.Pagination)
}

func (r *clinicRepository) ListAdmin(ctx context.Context, filter *model.AdminClinicFilter) ([]*model.Clinic, int, error) {
	w := &where{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		w.add("(name ILIKE $%[1]d OR slug ILIKE $%[1]d OR city ILIKE $%[1]d)", "%"+s+"%")
	}
	if filter.ModerationStatus != "" {
		w.add("moderation_status = $%d", filter.ModerationStatus)
	}
	return r.list(ctx, w, "updated_at DESC", filter.Pagination)
}

func (r *clinicRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicService, error) {
	services := []*model.ClinicService{}
	err := r.db.SelectContext(ctx, &services, `
		SELECT id, clinic_id, name, price, currency, description
		FROM clinic_services
		WHERE clinic_id = $1
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *clinicRepository) ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	err := r.db.SelectContext(ctx, &doctors, `
		SELECT id, clinic_id, full_name, title, specialty
		FROM clinic_staff
		WHERE clinic_id = $1
		ORDER BY full_name
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
