package lead

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/internal/service/event"
)

type LeadServicer interface {
	Create(ctx context.Context, req *model.CreatePartnerLeadRequest) (*model.PartnerLead, error)
}

type Service struct {
	repo   repository.LeadRepository
	events event.Emitter
}

func NewService(repo repository.LeadRepository, events event.Emitter) *Service {
	return &Service{repo: repo, events: events}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Create stores a partner signup from the landing page and queues the
// notification email.
func (s *Service) Create(ctx context.Context, req *model.CreatePartnerLeadRequest) (*model.PartnerLead, error) {
	lead := &model.PartnerLead{
		ClinicName:  strings.TrimSpace(req.ClinicName),
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       optional(req.Phone),
		Country:     strings.TrimSpace(req.Country),
		City:        optional(req.City),
		Message:     optional(req.Message),
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, model.EventLeadCreated, lead); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to emit lead event")
	}
	return lead, nil
}
