package models

import "github.com/google/uuid"

// Operator roles.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Operator is a person allowed to run shifts on this lot.
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
}
