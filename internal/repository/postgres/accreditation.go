package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

type accreditationRepository struct {
	BaseRepository
}

func NewAccreditationRepository(base BaseRepository) repository.AccreditationRepository {
	return &accreditationRepository{base}
}

func (r *accreditationRepository) Create(ctx context.Context, a *model.Accreditation) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accreditations (id, clinic_id, name, issuer, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.ClinicID, a.Name, a.Issuer, a.ValidUntil, a.CreatedAt)
	return mapError("accreditation", "create", err)
}

func (r *accreditationRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Accreditation, error) {
	list := []*model.Accreditation{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT id, clinic_id, name, issuer, valid_until, created_at
		FROM accreditations
		WHERE clinic_id = $1
		ORDER BY name
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accreditations: %w", err)
	}
	return list, nil
}
