package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusRetry      OutboxStatus = "retry"
	OutboxStatusProcessed  OutboxStatus = "processed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// Event types written to the outbox.
const (
	EventDraftSubmitted  = "CLINIC_DRAFT_SUBMITTED"
	EventClinicPublished = "CLINIC_PUBLISHED"
	EventDraftRejected   = "CLINIC_DRAFT_REJECTED"
	EventBookingCreated  = "BOOKING_CREATED"
	EventBookingUpdated  = "BOOKING_UPDATED"
	EventLeadCreated     = "LEAD_CREATED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
}

// ModerationEvent is the payload of publish/reject/submit events.
type ModerationEvent struct {
	ClinicID   uuid.UUID `json:"clinic_id"`
	ClinicName string    `json:"clinic_name"`
	Slug       string    `json:"slug"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}
