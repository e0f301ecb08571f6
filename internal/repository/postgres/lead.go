package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

type leadRepository struct {
	BaseRepository
}

func NewLeadRepository(base BaseRepository) repository.LeadRepository {
	return &leadRepository{base}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.PartnerLead) error {
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO partner_leads (
			id, clinic_name, contact_name, email, phone, country, city, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		lead.ID,
		lead.ClinicName,
		lead.ContactName,
		lead.Email,
		lead.Phone,
		lead.Country,
		lead.City,
		lead.Message,
		lead.CreatedAt,
	)
	return mapError("lead", "create", err)
}
