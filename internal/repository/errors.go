package repository

import (
	"errors"
	"strings"
)

// Errors shared by all repositories. ErrDuplicateEntry doubles as the
// arbitration signal for identity claims: whichever insert loses the
// unique primary key race surfaces it.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// isDuplicateKeyError checks if the error is a duplicate key violation
// from either backing database.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505") // PostgreSQL unique violation code
}
