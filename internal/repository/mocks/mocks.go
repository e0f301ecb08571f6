// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

type ClinicRepository struct{ mock.Mock }

func (m *ClinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	return m.Called(ctx, clinic).Error(0)
}

func (m *ClinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Clinic)
	return c, args.Error(1)
}

func (m *ClinicRepository) GetBySlug(ctx context.Context, slug string) (*model.Clinic, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(*model.Clinic)
	return c, args.Error(1)
}

func (m *ClinicRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *ClinicRepository) Update(ctx context.Context, id uuid.UUID, cols []patch.Column) error {
	return m.Called(ctx, id, cols).Error(0)
}

func (m *ClinicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ClinicRepository) ListPublic(ctx context.Context, filter *model.ClinicFilter) ([]*model.Clinic, int, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*model.Clinic)
	return list, args.Int(1), args.Error(2)
}

func (m *ClinicRepository) ListAdmin(ctx context.Context, filter *model.AdminClinicFilter) ([]*model.Clinic, int, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*model.Clinic)
	return list, args.Int(1), args.Error(2)
}

func (m *ClinicRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicService, error) {
	args := m.Called(ctx, clinicID)
	list, _ := args.Get(0).([]*model.ClinicService)
	return list, args.Error(1)
}

func (m *ClinicRepository) ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	args := m.Called(ctx, clinicID)
	list, _ := args.Get(0).([]*model.Doctor)
	return list, args.Error(1)
}

type DraftRepository struct{ mock.Mock }

func (m *DraftRepository) GetByClinic(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error) {
	args := m.Called(ctx, clinicID)
	d, _ := args.Get(0).(*model.ClinicProfileDraft)
	return d, args.Error(1)
}

func (m *DraftRepository) Ensure(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error) {
	args := m.Called(ctx, clinicID)
	d, _ := args.Get(0).(*model.ClinicProfileDraft)
	return d, args.Error(1)
}

func (m *DraftRepository) Save(ctx context.Context, clinicID uuid.UUID, cols []patch.Column) error {
	return m.Called(ctx, clinicID, cols).Error(0)
}

func (m *DraftRepository) Submit(ctx context.Context, clinicID uuid.UUID, at time.Time) error {
	return m.Called(ctx, clinicID, at).Error(0)
}

type ModerationRepository struct{ mock.Mock }

func (m *ModerationRepository) ListQueue(ctx context.Context, draftStatus model.DraftStatus) ([]*model.ModerationQueueItem, error) {
	args := m.Called(ctx, draftStatus)
	list, _ := args.Get(0).([]*model.ModerationQueueItem)
	return list, args.Error(1)
}

func (m *ModerationRepository) GetQueueItem(ctx context.Context, clinicID uuid.UUID) (*model.ModerationQueueItem, error) {
	args := m.Called(ctx, clinicID)
	item, _ := args.Get(0).(*model.ModerationQueueItem)
	return item, args.Error(1)
}

func (m *ModerationRepository) PublishFromDraft(ctx context.Context, clinicID uuid.UUID) error {
	return m.Called(ctx, clinicID).Error(0)
}

func (m *ModerationRepository) RejectDraft(ctx context.Context, clinicID uuid.UUID, reason string) error {
	return m.Called(ctx, clinicID, reason).Error(0)
}

type SearchRepository struct{ mock.Mock }

func (m *SearchRepository) Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	list, _ := args.Get(0).([]*model.SearchResult)
	return list, args.Error(1)
}

type BookingRepository struct{ mock.Mock }

func (m *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *BookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, status model.BookingStatus, page model.Pagination) ([]*model.Booking, int, error) {
	args := m.Called(ctx, clinicID, status, page)
	list, _ := args.Get(0).([]*model.Booking)
	return list, args.Int(1), args.Error(2)
}

func (m *BookingRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error) {
	args := m.Called(ctx, patientID)
	list, _ := args.Get(0).([]*model.Booking)
	return list, args.Error(1)
}

func (m *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	args := m.Called(ctx, id, status)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

type ReviewRepository struct{ mock.Mock }

func (m *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *ReviewRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit int) ([]*model.Review, error) {
	args := m.Called(ctx, clinicID, limit)
	list, _ := args.Get(0).([]*model.Review)
	return list, args.Error(1)
}

type ReportRepository struct{ mock.Mock }

func (m *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return m.Called(ctx, report).Error(0)
}

type AccreditationRepository struct{ mock.Mock }

func (m *AccreditationRepository) Create(ctx context.Context, a *model.Accreditation) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AccreditationRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Accreditation, error) {
	args := m.Called(ctx, clinicID)
	list, _ := args.Get(0).([]*model.Accreditation)
	return list, args.Error(1)
}

type LeadRepository struct{ mock.Mock }

func (m *LeadRepository) Create(ctx context.Context, lead *model.PartnerLead) error {
	return m.Called(ctx, lead).Error(0)
}

type OutboxRepository struct{ mock.Mock }

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) ClaimPendingEvents(ctx context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit, lease)
	list, _ := args.Get(0).([]*model.OutboxEvent)
	return list, args.Error(1)
}

func (m *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	return m.Called(ctx, id, status, errorMessage, retryAt).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// Emitter records emitted events.
type Emitter struct{ mock.Mock }

func (m *Emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}
