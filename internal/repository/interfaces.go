package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

// All repository interfaces in one file
type (
	ClinicRepository interface {
		// Create inserts the clinic together with its empty editing draft.
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		GetBySlug(ctx context.Context, slug string) (*model.Clinic, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		Update(ctx context.Context, id uuid.UUID, cols []patch.Column) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListPublic(ctx context.Context, filter *model.ClinicFilter) ([]*model.Clinic, int, error)
		ListAdmin(ctx context.Context, filter *model.AdminClinicFilter) ([]*model.Clinic, int, error)
		ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicService, error)
		ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
	}

	DraftRepository interface {
		GetByClinic(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error)
		// Ensure returns the clinic's draft, creating an editing one if none exists.
		Ensure(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error)
		// Save applies cols and moves the draft back to editing. Pending drafts are
		// never touched; Conflict is returned instead.
		Save(ctx context.Context, clinicID uuid.UUID, cols []patch.Column) error
		// Submit marks the draft and the clinic pending in one transaction.
		Submit(ctx context.Context, clinicID uuid.UUID, at time.Time) error
	}

	ModerationRepository interface {
		ListQueue(ctx context.Context, draftStatus model.DraftStatus) ([]*model.ModerationQueueItem, error)
		GetQueueItem(ctx context.Context, clinicID uuid.UUID) (*model.ModerationQueueItem, error)
		PublishFromDraft(ctx context.Context, clinicID uuid.UUID) error
		RejectDraft(ctx context.Context, clinicID uuid.UUID, reason string) error
	}

	SearchRepository interface {
		Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error)
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		ListByClinic(ctx context.Context, clinicID uuid.UUID, status model.BookingStatus, page model.Pagination) ([]*model.Booking, int, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error)
	}

	ReviewRepository interface {
		// Create inserts the review and refreshes the clinic's rating aggregate.
		Create(ctx context.Context, review *model.Review) error
		ListByClinic(ctx context.Context, clinicID uuid.UUID, limit int) ([]*model.Review, error)
	}

	ReportRepository interface {
		Create(ctx context.Context, report *model.Report) error
	}

	AccreditationRepository interface {
		Create(ctx context.Context, accreditation *model.Accreditation) error
		ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Accreditation, error)
	}

	LeadRepository interface {
		Create(ctx context.Context, lead *model.PartnerLead) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPendingEvents moves due events to processing and returns them.
		// Events left in processing longer than lease are reclaimed.
		ClaimPendingEvents(ctx context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
