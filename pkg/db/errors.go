package db

import "strings"

// IsUniqueViolation reports whether err is a unique-constraint violation.
// When constraintName is given it must appear in the driver message, which
// works for Postgres constraint names; sqlite (used in tests) reports the
// column list instead, so the generic check covers both drivers.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
