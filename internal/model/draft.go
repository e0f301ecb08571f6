package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type DraftStatus string

const (
	DraftEditing   DraftStatus = "editing"
	DraftPending   DraftStatus = "pending"
	DraftPublished DraftStatus = "published"
	DraftRejected  DraftStatus = "rejected"
)

// Editable reports whether the owner may still change the draft.
func (s DraftStatus) Editable() bool {
	return s == DraftEditing || s == DraftRejected || s == DraftPublished
}

// ClinicProfileDraft is the one-per-clinic shadow record holding provisional
// profile content until it is published.
type ClinicProfileDraft struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	ClinicID    uuid.UUID      `db:"clinic_id" json:"clinic_id"`
	BasicInfo   types.JSONText `db:"basic_info" json:"basic_info"`
	Services    types.JSONText `db:"services" json:"services"`
	Doctors     types.JSONText `db:"doctors" json:"doctors"`
	Facilities  types.JSONText `db:"facilities" json:"facilities"`
	Hours       types.JSONText `db:"hours" json:"hours"`
	Gallery     types.JSONText `db:"gallery" json:"gallery"`
	Location    types.JSONText `db:"location" json:"location"`
	Pricing     types.JSONText `db:"pricing" json:"pricing"`
	Status      DraftStatus    `db:"status" json:"status"`
	SubmittedAt *time.Time     `db:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Draft JSON columns, in the order the profile wizard presents them.
const (
	DraftBasicInfo  = "basic_info"
	DraftServices   = "services"
	DraftDoctors    = "doctors"
	DraftFacilities = "facilities"
	DraftHours      = "hours"
	DraftGallery    = "gallery"
	DraftLocation   = "location"
	DraftPricing    = "pricing"
)

var DraftFields = []string{
	DraftBasicInfo,
	DraftServices,
	DraftDoctors,
	DraftFacilities,
	DraftHours,
	DraftGallery,
	DraftLocation,
	DraftPricing,
}
