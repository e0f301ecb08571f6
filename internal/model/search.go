package model

import "github.com/google/uuid"

// SearchResult is one row returned by the search_clinics procedures.
type SearchResult struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Country   *string   `db:"country" json:"country"`
	City      *string   `db:"city" json:"city"`
	Specialty *string   `db:"specialty" json:"specialty"`
	Rank      *float64  `db:"rank" json:"rank,omitempty"`
}
