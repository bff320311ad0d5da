package models

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError marks input rejected before it reaches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateVehicleNumber enforces the plate rules carried over from the
// booth software: non-blank, at least 3 characters, at least 3 alphanumerics.
func ValidateVehicleNumber(plate string) error {
	trimmed := strings.TrimSpace(plate)
	if trimmed == "" {
		return &ValidationError{Field: "vehicle_number", Message: "vehicle number is required"}
	}
	if len(trimmed) < 3 {
		return &ValidationError{Field: "vehicle_number", Message: "vehicle number must be at least 3 characters"}
	}
	alnum := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if alnum < 3 {
		return &ValidationError{Field: "vehicle_number", Message: "vehicle number must contain at least 3 alphanumeric characters"}
	}
	return nil
}

// ValidateTransportName rejects blank transport names.
func ValidateTransportName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "transport_name", Message: "transport name is required"}
	}
	return nil
}

// ValidateCashAmount rejects negative money values.
func ValidateCashAmount(field string, amount float64) error {
	if amount < 0 {
		return &ValidationError{Field: field, Message: "amount must not be negative"}
	}
	return nil
}
