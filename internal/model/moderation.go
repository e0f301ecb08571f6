package model

import (
	"time"

	"github.com/google/uuid"
)

// ModerationQueueItem is a row of the moderation_queue view.
type ModerationQueueItem struct {
	ClinicID         uuid.UUID        `db:"clinic_id" json:"clinic_id"`
	ClinicName       string           `db:"clinic_name" json:"clinic_name"`
	Slug             string           `db:"slug" json:"slug"`
	Country          *string          `db:"country" json:"country"`
	City             *string          `db:"city" json:"city"`
	ModerationStatus ModerationStatus `db:"moderation_status" json:"moderation_status"`
	IsPublished      bool             `db:"is_published" json:"is_published"`
	DraftID          uuid.UUID        `db:"draft_id" json:"draft_id"`
	DraftStatus      DraftStatus      `db:"draft_status" json:"draft_status"`
	SubmittedAt      *time.Time       `db:"submitted_at" json:"submitted_at"`
	DraftUpdatedAt   time.Time        `db:"draft_updated_at" json:"draft_updated_at"`
	CanApprove       bool             `db:"-" json:"can_approve"`
}

// CanBeApproved is true only for drafts awaiting review.
func (i *ModerationQueueItem) CanBeApproved() bool {
	return i.DraftStatus == DraftPending
}

type ModerationDetail struct {
	Item    *ModerationQueueItem `json:"item"`
	Clinic  *Clinic              `json:"clinic"`
	Draft   *ClinicProfileDraft  `json:"draft"`
	Preview *ClinicProfile       `json:"preview"`
}
