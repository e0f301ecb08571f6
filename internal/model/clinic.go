package model

import (
	"time"

	"github.com/google/uuid"
)

type ModerationStatus string

const (
	ModerationDraft    ModerationStatus = "draft"
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Clinic is the published directory listing. Only the publish procedure flips
// IsPublished and ModerationStatus to their public values.
type Clinic struct {
	Base
	Name             string           `db:"name" json:"name"`
	Slug             string           `db:"slug" json:"slug"`
	Specialty        *string          `db:"specialty" json:"specialty"`
	Description      *string          `db:"description" json:"description"`
	Address          *string          `db:"address" json:"address"`
	Country          *string          `db:"country" json:"country"`
	City             *string          `db:"city" json:"city"`
	Province         *string          `db:"province" json:"province"`
	District         *string          `db:"district" json:"district"`
	MapURL           *string          `db:"map_url" json:"map_url"`
	Status           string           `db:"status" json:"status"`
	ModerationStatus ModerationStatus `db:"moderation_status" json:"moderation_status"`
	ModerationReason *string          `db:"moderation_reason" json:"moderation_reason,omitempty"`
	IsPublished      bool             `db:"is_published" json:"is_published"`
	OwnerID          *uuid.UUID       `db:"owner_id" json:"owner_id,omitempty"`
	Rating           float64          `db:"rating" json:"rating"`
	ReviewCount      int              `db:"review_count" json:"review_count"`
}

// IsPublic reports whether the listing may be shown on the public site.
func (c *Clinic) IsPublic() bool {
	return c.IsPublished && c.ModerationStatus == ModerationApproved
}

type ClinicFilter struct {
	Country   string `form:"country"`
	City      string `form:"city"`
	Specialty string `form:"specialty"`
	Pagination
}

type AdminClinicFilter struct {
	Search           string `form:"search"`
	ModerationStatus string `form:"moderation_status"`
	Pagination
}

// ClinicDetail is the public detail page payload.
type ClinicDetail struct {
	Clinic         *Clinic          `json:"clinic"`
	Profile        *ClinicProfile   `json:"profile"`
	Services       []*ClinicService `json:"services"`
	Doctors        []*Doctor        `json:"doctors"`
	Accreditations []*Accreditation `json:"accreditations"`
	Reviews        []*Review        `json:"reviews"`
}

type ClinicService struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClinicID    uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name        string    `db:"name" json:"name"`
	Price       *string   `db:"price" json:"price"`
	Currency    *string   `db:"currency" json:"currency"`
	Description *string   `db:"description" json:"description"`
}

// Doctor is a staff member listed on a clinic page.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Title     *string   `db:"title" json:"title"`
	Specialty *string   `db:"specialty" json:"specialty"`
}

type Accreditation struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ClinicID   uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	Name       string     `db:"name" json:"name"`
	Issuer     *string    `db:"issuer" json:"issuer"`
	ValidUntil *time.Time `db:"valid_until" json:"valid_until"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type CreateClinicRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Specialty   string `json:"specialty" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"omitempty,max=4000"`
	Address     string `json:"address" binding:"omitempty,max=500"`
	Country     string `json:"country" binding:"omitempty,max=100"`
	City        string `json:"city" binding:"omitempty,max=100"`
	Province    string `json:"province" binding:"omitempty,max=100"`
	District    string `json:"district" binding:"omitempty,max=100"`
	MapURL      string `json:"map_url" binding:"omitempty,url"`
	OwnerID     string `json:"owner_id" binding:"omitempty,uuid"`
}
