package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	"github.com/jwalitptl/clinic-directory/internal/service/booking"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
)

const reportStatusOpen = "open"

type CacheInvalidator interface {
	Invalidate(slug string)
}

// PatientServicer covers the patient area and the anonymous report form.
type PatientServicer interface {
	ListRequests(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error)
	CreateRequest(ctx context.Context, patientID uuid.UUID, req *model.PatientBookingRequest) (*model.Booking, error)
	CreateReview(ctx context.Context, patientID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error)
	CreateReport(ctx context.Context, clinicID uuid.UUID, req *model.CreateReportRequest) (*model.Report, error)
}

type Service struct {
	bookings booking.BookingServicer
	clinics  repository.ClinicRepository
	reviews  repository.ReviewRepository
	reports  repository.ReportRepository
	cache    CacheInvalidator
}

func NewService(
	bookings booking.BookingServicer,
	clinics repository.ClinicRepository,
	reviews repository.ReviewRepository,
	reports repository.ReportRepository,
	cache CacheInvalidator,
) *Service {
	return &Service{
		bookings: bookings,
		clinics:  clinics,
		reviews:  reviews,
		reports:  reports,
		cache:    cache,
	}
}

func (s *Service) ListRequests(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error) {
	return s.bookings.ListByPatient(ctx, patientID)
}

func (s *Service) CreateRequest(ctx context.Context, patientID uuid.UUID, req *model.PatientBookingRequest) (*model.Booking, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid clinic_id", err)
	}
	return s.bookings.Create(ctx, clinicID, &patientID, &req.CreateBookingRequest)
}

func (s *Service) publicClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !clinic.IsPublic() {
		return nil, apperrors.NotFound("clinic", nil)
	}
	return clinic, nil
}

// CreateReview stores one review per patient and clinic.
func (s *Service) CreateReview(ctx context.Context, patientID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid clinic_id", err)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.BadRequest("rating must be between 1 and 5", nil)
	}
	clinic, err := s.publicClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		ClinicID:  clinicID,
		PatientID: patientID,
		Rating:    req.Rating,
	}
	if c := strings.TrimSpace(req.Comment); c != "" {
		review.Comment = &c
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("clinic already reviewed", err)
		}
		return nil, err
	}
	s.cache.Invalidate(clinic.Slug)
	return review, nil
}

func (s *Service) CreateReport(ctx context.Context, clinicID uuid.UUID, req *model.CreateReportRequest) (*model.Report, error) {
	if _, err := s.publicClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	report := &model.Report{
		ClinicID: clinicID,
		Reason:   strings.TrimSpace(req.Reason),
		Status:   reportStatusOpen,
	}
	if e := strings.ToLower(strings.TrimSpace(req.ReporterEmail)); e != "" {
		report.ReporterEmail = &e
	}
	if d := strings.TrimSpace(req.Details); d != "" {
		report.Details = &d
	}
	if report.Reason == "" {
		return nil, apperrors.BadRequest("reason is required", nil)
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
