package moderation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/profile"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/internal/service/event"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/metrics"
)

const (
	actionApprove = "approve"
	actionReject  = "reject"

	maxReasonLen = 1000
)

// CacheInvalidator drops cached public pages of a clinic.
type CacheInvalidator interface {
	Invalidate(slug string)
}

type ModerationServicer interface {
	ListQueue(ctx context.Context, status model.DraftStatus) ([]*model.ModerationQueueItem, error)
	Get(ctx context.Context, clinicID uuid.UUID) (*model.ModerationDetail, error)
	Approve(ctx context.Context, clinicID uuid.UUID) (*model.ModerationQueueItem, error)
	Reject(ctx context.Context, clinicID uuid.UUID, reason string) (*model.ModerationQueueItem, error)
}

// Service orchestrates the moderation procedures. State transitions of the
// clinic and its draft happen only inside publish_clinic_from_draft and
// reject_clinic_draft.
type Service struct {
	repo    repository.ModerationRepository
	clinics repository.ClinicRepository
	drafts  repository.DraftRepository
	events  event.Emitter
	cache   CacheInvalidator
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(
	repo repository.ModerationRepository,
	clinics repository.ClinicRepository,
	drafts repository.DraftRepository,
	events event.Emitter,
	cache CacheInvalidator,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:    repo,
		clinics: clinics,
		drafts:  drafts,
		events:  events,
		cache:   cache,
		metrics: m,
		now:     time.Now,
	}
}

// ListQueue lists drafts in the given status, pending when empty.
func (s *Service) ListQueue(ctx context.Context, status model.DraftStatus) ([]*model.ModerationQueueItem, error) {
	if status == "" {
		status = model.DraftPending
	}
	items, err := s.repo.ListQueue(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.CanApprove = item.CanBeApproved()
	}
	return items, nil
}

func (s *Service) item(ctx context.Context, clinicID uuid.UUID) (*model.ModerationQueueItem, error) {
	item, err := s.repo.GetQueueItem(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	item.CanApprove = item.CanBeApproved()
	return item, nil
}

func (s *Service) Get(ctx context.Context, clinicID uuid.UUID) (*model.ModerationDetail, error) {
	item, err := s.item(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.GetByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	return &model.ModerationDetail{
		Item:    item,
		Clinic:  clinic,
		Draft:   d,
		Preview: profile.Preview(clinic, d),
	}, nil
}

func (s *Service) Approve(ctx context.Context, clinicID uuid.UUID) (*model.ModerationQueueItem, error) {
	item, err := s.item(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if !item.CanApprove {
		s.record(actionApprove, "conflict")
		return nil, apperrors.Conflict("only pending drafts can be approved", nil)
	}

	if err := s.repo.PublishFromDraft(ctx, clinicID); err != nil {
		s.record(actionApprove, "error")
		return nil, rpcError(err)
	}
	s.record(actionApprove, "ok")
	s.cache.Invalidate(item.Slug)

	s.emit(ctx, model.EventClinicPublished, model.ModerationEvent{
		ClinicID:   item.ClinicID,
		ClinicName: item.ClinicName,
		Slug:       item.Slug,
		At:         s.now().UTC(),
	})

	log.Info().Str("clinic_id", clinicID.String()).Msg("clinic draft published")
	return s.item(ctx, clinicID)
}

func (s *Service) Reject(ctx context.Context, clinicID uuid.UUID, reason string) (*model.ModerationQueueItem, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.BadRequest("rejection reason is required", nil)
	}
	if len([]rune(reason)) > maxReasonLen {
		return nil, apperrors.BadRequest("rejection reason is too long", nil)
	}

	item, err := s.item(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if item.DraftStatus != model.DraftPending {
		s.record(actionReject, "conflict")
		return nil, apperrors.Conflict("only pending drafts can be rejected", nil)
	}

	if err := s.repo.RejectDraft(ctx, clinicID, reason); err != nil {
		s.record(actionReject, "error")
		return nil, rpcError(err)
	}
	s.record(actionReject, "ok")
	s.cache.Invalidate(item.Slug)

	s.emit(ctx, model.EventDraftRejected, model.ModerationEvent{
		ClinicID:   item.ClinicID,
		ClinicName: item.ClinicName,
		Slug:       item.Slug,
		Reason:     reason,
		At:         s.now().UTC(),
	})

	log.Info().Str("clinic_id", clinicID.String()).Str("reason", reason).Msg("clinic draft rejected")
	return s.item(ctx, clinicID)
}

func (s *Service) record(action, result string) {
	if s.metrics != nil {
		s.metrics.ModerationActions.WithLabelValues(action, result).Inc()
	}
}

func (s *Service) emit(ctx context.Context, eventType string, payload model.ModerationEvent) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to emit moderation event")
	}
}

// rpcError keeps taxonomy errors from the repository and hides everything
// else behind the generic internal message.
func rpcError(err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(err)
}
