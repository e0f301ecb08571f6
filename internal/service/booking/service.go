package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/internal/service/event"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
)

type BookingServicer interface {
	Create(ctx context.Context, clinicID uuid.UUID, patientID *uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error)
	List(ctx context.Context, clinicID uuid.UUID, filter *model.BookingFilter) (*model.Page[*model.Booking], error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, clinicID, bookingID uuid.UUID, status model.BookingStatus) (*model.Booking, error)
}

type Service struct {
	repo    repository.BookingRepository
	clinics repository.ClinicRepository
	events  event.Emitter
}

func NewService(repo repository.BookingRepository, clinics repository.ClinicRepository, events event.Emitter) *Service {
	return &Service{
		repo:    repo,
		clinics: clinics,
		events:  events,
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Create files a new request against a publicly listed clinic.
func (s *Service) Create(ctx context.Context, clinicID uuid.UUID, patientID *uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if !clinic.IsPublic() {
		return nil, apperrors.NotFound("clinic", nil)
	}

	b := &model.Booking{
		ClinicID:      clinicID,
		PatientID:     patientID,
		FullName:      strings.TrimSpace(req.FullName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         optional(req.Phone),
		Country:       optional(req.Country),
		Treatment:     optional(req.Treatment),
		Message:       optional(req.Message),
		PreferredDate: req.PreferredDate,
		Status:        model.BookingNew,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventBookingCreated, model.BookingEvent{Op: model.BookingOpInsert, Booking: b})
	return b, nil
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, filter *model.BookingFilter) (*model.Page[*model.Booking], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.BadRequest("invalid booking status", nil)
	}
	filter.Pagination = filter.Pagination.Normalize()

	bookings, total, err := s.repo.ListByClinic(ctx, clinicID, filter.Status, filter.Pagination)
	if err != nil {
		return nil, err
	}
	return &model.Page[*model.Booking]{
		Items:    bookings,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// UpdateStatus changes a booking's status on behalf of staff of clinicID.
func (s *Service) UpdateStatus(ctx context.Context, clinicID, bookingID uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest("invalid booking status", nil)
	}

	current, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.ClinicID != clinicID {
		return nil, apperrors.Forbidden("booking belongs to another clinic")
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventBookingUpdated, model.BookingEvent{Op: model.BookingOpUpdate, Booking: updated})
	return updated, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload model.BookingEvent) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		log.Error().
			Err(err).
			Str("event_type", eventType).
			Str("booking_id", payload.Booking.ID.String()).
			Msg("failed to emit booking event")
	}
}
