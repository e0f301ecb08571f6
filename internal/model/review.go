package model

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateReviewRequest struct {
	ClinicID string `json:"clinic_id" binding:"required,uuid"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"omitempty,max=4000"`
}

type Report struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ClinicID      uuid.UUID `db:"clinic_id" json:"clinic_id"`
	ReporterEmail *string   `db:"reporter_email" json:"reporter_email"`
	Reason        string    `db:"reason" json:"reason"`
	Details       *string   `db:"details" json:"details"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type CreateReportRequest struct {
	ReporterEmail string `json:"reporter_email" form:"reporter_email" binding:"omitempty,email"`
	Reason        string `json:"reason" form:"reason" binding:"required,min=3,max=200"`
	Details       string `json:"details" form:"details" binding:"omitempty,max=4000"`
}

type PatientReportRequest struct {
	ClinicID string `json:"clinic_id" form:"clinic_id" binding:"required,uuid"`
	CreateReportRequest
}

type CreateAccreditationRequest struct {
	Name       string     `json:"name" binding:"required,max=200"`
	Issuer     string     `json:"issuer" binding:"omitempty,max=200"`
	ValidUntil *time.Time `json:"valid_until"`
}
