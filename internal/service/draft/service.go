package draft

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/profile"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/internal/service/event"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

// Schema covers the draft JSON documents the profile wizard edits.
var Schema = patch.Schema{
	model.DraftBasicInfo:  patch.JSON,
	model.DraftServices:   patch.JSON,
	model.DraftDoctors:    patch.JSON,
	model.DraftFacilities: patch.JSON,
	model.DraftHours:      patch.JSON,
	model.DraftGallery:    patch.JSON,
	model.DraftLocation:   patch.JSON,
	model.DraftPricing:    patch.JSON,
}

type DraftServicer interface {
	Get(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error)
	Save(ctx context.Context, clinicID uuid.UUID, p patch.Patch) (*model.ClinicProfileDraft, error)
	Submit(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error)
	Preview(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfile, error)
}

type Service struct {
	clinics repository.ClinicRepository
	drafts  repository.DraftRepository
	events  event.Emitter
	now     func() time.Time
}

func NewService(clinics repository.ClinicRepository, drafts repository.DraftRepository, events event.Emitter) *Service {
	return &Service{
		clinics: clinics,
		drafts:  drafts,
		events:  events,
		now:     time.Now,
	}
}

// Get returns the clinic's draft, starting an editing one on first access.
func (s *Service) Get(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error) {
	if _, err := s.clinics.Get(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.drafts.Ensure(ctx, clinicID)
}

// Save applies a partial update to the draft documents. Fields absent from the
// patch keep their stored value.
func (s *Service) Save(ctx context.Context, clinicID uuid.UUID, p patch.Patch) (*model.ClinicProfileDraft, error) {
	current, err := s.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Editable() {
		return nil, apperrors.Conflict("draft is awaiting moderation", nil)
	}
	if len(p) == 0 {
		return current, nil
	}
	if err := p.Restrict(model.DraftFields...); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	if err := s.drafts.Save(ctx, clinicID, p.Columns(Schema)); err != nil {
		return nil, err
	}
	return s.drafts.GetByClinic(ctx, clinicID)
}

// Submit sends the draft to the moderation queue.
func (s *Service) Submit(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error) {
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	current, err := s.drafts.Ensure(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case model.DraftEditing, model.DraftRejected:
	case model.DraftPending:
		return nil, apperrors.Conflict("draft already submitted", nil)
	default:
		return nil, apperrors.Conflict("draft has no changes since publication", nil)
	}

	at := s.now().UTC()
	if err := s.drafts.Submit(ctx, clinicID, at); err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, model.EventDraftSubmitted, model.ModerationEvent{
		ClinicID:   clinic.ID,
		ClinicName: clinic.Name,
		Slug:       clinic.Slug,
		At:         at,
	}); err != nil {
		log.Error().Err(err).Str("clinic_id", clinicID.String()).Msg("failed to emit draft submitted event")
	}

	return s.drafts.GetByClinic(ctx, clinicID)
}

func (s *Service) Preview(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfile, error) {
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.Ensure(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	return profile.Preview(clinic, d), nil
}
