package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingNew       BookingStatus = "New"
	BookingInReview  BookingStatus = "In review"
	BookingContacted BookingStatus = "Contacted"
	BookingScheduled BookingStatus = "Scheduled"
	BookingDone      BookingStatus = "Done"
	BookingRejected  BookingStatus = "Rejected"
)

var BookingStatuses = []BookingStatus{
	BookingNew,
	BookingInReview,
	BookingContacted,
	BookingScheduled,
	BookingDone,
	BookingRejected,
}

func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Booking is a customer inquiry (clinic_requests row) scoped to one clinic.
type Booking struct {
	Base
	ClinicID      uuid.UUID     `db:"clinic_id" json:"clinic_id"`
	PatientID     *uuid.UUID    `db:"patient_id" json:"patient_id,omitempty"`
	FullName      string        `db:"full_name" json:"full_name"`
	Email         string        `db:"email" json:"email"`
	Phone         *string       `db:"phone" json:"phone"`
	Country       *string       `db:"country" json:"country"`
	Treatment     *string       `db:"treatment" json:"treatment"`
	Message       *string       `db:"message" json:"message"`
	PreferredDate *time.Time    `db:"preferred_date" json:"preferred_date"`
	Status        BookingStatus `db:"status" json:"status"`
}

type CreateBookingRequest struct {
	FullName      string     `json:"full_name" form:"full_name" binding:"required,min=2,max=200"`
	Email         string     `json:"email" form:"email" binding:"required,email"`
	Phone         string     `json:"phone" form:"phone" binding:"omitempty,max=40"`
	Country       string     `json:"country" form:"country" binding:"omitempty,max=100"`
	Treatment     string     `json:"treatment" form:"treatment" binding:"omitempty,max=200"`
	Message       string     `json:"message" form:"message" binding:"omitempty,max=4000"`
	PreferredDate *time.Time `json:"preferred_date" form:"preferred_date" time_format:"2006-01-02"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" form:"status" binding:"required,booking_status"`
}

type BookingOp string

const (
	BookingOpInsert BookingOp = "INSERT"
	BookingOpUpdate BookingOp = "UPDATE"
	BookingOpDelete BookingOp = "DELETE"
)

// BookingEvent is the change notification pushed to portal subscribers.
type BookingEvent struct {
	Op      BookingOp `json:"op"`
	Booking *Booking  `json:"booking"`
}

// PatientBookingRequest is a request filed from the patient area, where the
// clinic is named in the body rather than the path.
type PatientBookingRequest struct {
	ClinicID string `json:"clinic_id" form:"clinic_id" binding:"required,uuid"`
	CreateBookingRequest
}

type BookingFilter struct {
	Status BookingStatus `form:"status"`
	Pagination
}
