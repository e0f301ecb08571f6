package model

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RolePatient  Role = "patient"
)

// TokenClaims are the claims carried by access tokens issued by the identity provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role     Role       `json:"role"`
	ClinicID *uuid.UUID `json:"clinic_id,omitempty"`
	Email    string     `json:"email,omitempty"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID   uuid.UUID
	Role     Role
	ClinicID *uuid.UUID
	Email    string
}
