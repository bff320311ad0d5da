package models

import "errors"

// Business-rule sentinels. Handlers map these to HTTP statuses with errors.Is;
// services wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound               = errors.New("record not found")
	ErrShiftAlreadyActive     = errors.New("a shift is already active")
	ErrNoActiveShift          = errors.New("no active shift")
	ErrShiftNotActive         = errors.New("shift is no longer active")
	ErrDuplicateEntry         = errors.New("vehicle already parked")
	ErrNotShiftOwner          = errors.New("shift belongs to another operator")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrExitBeforeEntry        = errors.New("exit time precedes entry time")
	ErrUnconfirmedDiscrepancy = errors.New("significant cash discrepancy requires confirmation")
)
