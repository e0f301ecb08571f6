package clinic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/profile"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

const (
	detailCacheTTL    = time.Minute
	recentReviewLimit = 10
	maxSlugAttempts   = 50
)

// UpdateSchema lists the clinic columns an admin may patch. Publication and
// moderation columns are owned by the moderation procedures.
var UpdateSchema = patch.Schema{
	"name":        patch.Text,
	"slug":        patch.Text,
	"specialty":   patch.Text,
	"description": patch.Text,
	"address":     patch.Text,
	"country":     patch.Text,
	"city":        patch.Text,
	"province":    patch.Text,
	"district":    patch.Text,
	"map_url":     patch.Text,
	"status":      patch.Text,
}

type ClinicServicer interface {
	ListPublic(ctx context.Context, filter *model.ClinicFilter) (*model.Page[*model.Clinic], error)
	GetPublicBySlug(ctx context.Context, slug string) (*model.ClinicDetail, error)
	GetPublicByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error)

	CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, p patch.Patch) (*model.Clinic, error)
	DeleteClinic(ctx context.Context, id uuid.UUID) error
	ListClinics(ctx context.Context, filter *model.AdminClinicFilter) (*model.Page[*model.Clinic], error)
	AddAccreditation(ctx context.Context, clinicID uuid.UUID, req *model.CreateAccreditationRequest) (*model.Accreditation, error)

	Invalidate(slug string)
}

type Service struct {
	repo           repository.ClinicRepository
	accreditations repository.AccreditationRepository
	reviews        repository.ReviewRepository
	cache          *cache.Cache
}

func NewService(
	repo repository.ClinicRepository,
	accreditations repository.AccreditationRepository,
	reviews repository.ReviewRepository,
	c *cache.Cache,
) *Service {
	if c == nil {
		c = cache.New(detailCacheTTL, 2*detailCacheTTL)
	}
	return &Service{
		repo:           repo,
		accreditations: accreditations,
		reviews:        reviews,
		cache:          c,
	}
}

func detailKey(slug string) string {
	return "clinic:" + slug
}

func (s *Service) ListPublic(ctx context.Context, filter *model.ClinicFilter) (*model.Page[*model.Clinic], error) {
	filter.Pagination = filter.Pagination.Normalize()
	clinics, total, err := s.repo.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.Page[*model.Clinic]{
		Items:    clinics,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}, nil
}

// GetPublicBySlug returns the detail page of a published, approved clinic.
// Anything else is reported as not found.
func (s *Service) GetPublicBySlug(ctx context.Context, slug string) (*model.ClinicDetail, error) {
	if cached, ok := s.cache.Get(detailKey(slug)); ok {
		return cached.(*model.ClinicDetail), nil
	}

	clinic, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !clinic.IsPublic() {
		return nil, apperrors.NotFound("clinic", nil)
	}

	services, err := s.repo.ListServices(ctx, clinic.ID)
	if err != nil {
		return nil, err
	}
	doctors, err := s.repo.ListDoctors(ctx, clinic.ID)
	if err != nil {
		return nil, err
	}
	accreditations, err := s.accreditations.ListByClinic(ctx, clinic.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByClinic(ctx, clinic.ID, recentReviewLimit)
	if err != nil {
		return nil, err
	}

	detail := &model.ClinicDetail{
		Clinic:         clinic,
		Profile:        profile.Published(clinic, services, doctors),
		Services:       services,
		Doctors:        doctors,
		Accreditations: accreditations,
		Reviews:        reviews,
	}
	s.cache.SetDefault(detailKey(slug), detail)
	return detail, nil
}

// GetPublicByID loads a clinic that accepts public writes (requests, reviews, reports).
func (s *Service) GetPublicByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !clinic.IsPublic() {
		return nil, apperrors.NotFound("clinic", nil)
	}
	return clinic, nil
}

func (s *Service) Invalidate(slug string) {
	s.cache.Delete(detailKey(slug))
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.BadRequest("name is required", nil)
	}

	uniqueSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	clinic := &model.Clinic{
		Name:             name,
		Slug:             uniqueSlug,
		Specialty:        optional(req.Specialty),
		Description:      optional(req.Description),
		Address:          optional(req.Address),
		Country:          optional(req.Country),
		City:             optional(req.City),
		Province:         optional(req.Province),
		District:         optional(req.District),
		MapURL:           optional(req.MapURL),
		Status:           "active",
		ModerationStatus: model.ModerationDraft,
		IsPublished:      false,
	}
	if req.OwnerID != "" {
		ownerID, err := uuid.Parse(req.OwnerID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid owner_id", err)
		}
		clinic.OwnerID = &ownerID
	}

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, err
	}

	log.Info().
		Str("clinic_id", clinic.ID.String()).
		Str("slug", clinic.Slug).
		Msg("clinic created")
	return clinic, nil
}

// uniqueSlug slugifies source and appends -2, -3... until the slug is free.
func (s *Service) uniqueSlug(ctx context.Context, source string) (string, error) {
	base := slug.Make(source)
	if base == "" {
		base = "clinic"
	}

	candidate := base
	for i := 2; i < maxSlugAttempts+2; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, p patch.Patch) (*model.Clinic, error) {
	if err := p.Restrict(keys(UpdateSchema)...); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	if p.Cleared("name") || p.Cleared("slug") || p.Cleared("status") {
		return nil, apperrors.BadRequest("name, slug and status cannot be cleared", nil)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if requested, ok := p.Text("slug"); ok {
		normalized := slug.Make(requested)
		if normalized == "" {
			return nil, apperrors.BadRequest("invalid slug", nil)
		}
		if normalized != current.Slug {
			exists, err := s.repo.SlugExists(ctx, normalized)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperrors.Conflict("slug already in use", nil)
			}
		}
		p["slug"] = patch.Op{Mode: patch.Set, Value: normalized}
	}

	if len(p) > 0 {
		if err := s.repo.Update(ctx, id, p.Columns(UpdateSchema)); err != nil {
			return nil, err
		}
	}
	s.Invalidate(current.Slug)

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Invalidate(updated.Slug)
	return updated, nil
}

func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(current.Slug)
	return nil
}

func (s *Service) ListClinics(ctx context.Context, filter *model.AdminClinicFilter) (*model.Page[*model.Clinic], error) {
	filter.Pagination = filter.Pagination.Normalize()
	clinics, total, err := s.repo.ListAdmin(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.Page[*model.Clinic]{
		Items:    clinics,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}, nil
}

func (s *Service) AddAccreditation(ctx context.Context, clinicID uuid.UUID, req *model.CreateAccreditationRequest) (*model.Accreditation, error) {
	clinic, err := s.repo.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	a := &model.Accreditation{
		ClinicID:   clinicID,
		Name:       strings.TrimSpace(req.Name),
		Issuer:     optional(req.Issuer),
		ValidUntil: req.ValidUntil,
	}
	if err := s.accreditations.Create(ctx, a); err != nil {
		return nil, err
	}
	s.Invalidate(clinic.Slug)
	return a, nil
}

func keys(schema patch.Schema) []string {
	out := make([]string, 0, len(schema))
	for k := range schema {
		out = append(out, k)
	}
	return out
}
