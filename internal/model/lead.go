package model

import (
	"time"

	"github.com/google/uuid"
)

// PartnerLead is a clinic that signed up through the marketing landing page.
type PartnerLead struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClinicName  string    `db:"clinic_name" json:"clinic_name"`
	ContactName string    `db:"contact_name" json:"contact_name"`
	Email       string    `db:"email" json:"email"`
	Phone       *string   `db:"phone" json:"phone"`
	Country     string    `db:"country" json:"country"`
	City        *string   `db:"city" json:"city"`
	Message     *string   `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreatePartnerLeadRequest struct {
	ClinicName  string `json:"clinic_name" form:"clinic_name" binding:"required,min=2,max=200"`
	ContactName string `json:"contact_name" form:"contact_name" binding:"required,min=2,max=200"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	Phone       string `json:"phone" form:"phone" binding:"omitempty,max=40"`
	Country     string `json:"country" form:"country" binding:"required,max=100"`
	City        string `json:"city" form:"city" binding:"omitempty,max=100"`
	Message     string `json:"message" form:"message" binding:"omitempty,max=4000"`
}
