// Package sqlerr translates PostgreSQL driver errors into application errors.
//
// Raw SQLSTATE codes are mapped onto a small set of categories (unique
// violation, foreign key violation, ...) which repositories use to detect
// races and which the HTTP layer turns into client-facing messages.
package sqlerr

import "fmt"

// Code is the category of a database error.
type Code string

const (
	Other                Code = "other"
	NotNullViolation     Code = "not_null_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	UniqueViolation      Code = "unique_violation"
	CheckViolation       Code = "check_violation"
	InvalidTextRep       Code = "invalid_text_representation"
	UndefinedTable       Code = "undefined_table"
	SerializationFailure Code = "serialization_failure"
	DeadlockDetected     Code = "deadlock_detected"
	ConnectionFailure    Code = "connection_failure"
)

// Severity mirrors the severity levels PostgreSQL reports.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a database error reduced to the fields the application cares about.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	if e.ConstraintName != "" {
		return fmt.Sprintf("%s %s (%s): %s", e.Severity, e.DatabaseCode, e.ConstraintName, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a SQLSTATE onto a Code.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidTextRep
	case "42P01":
		return UndefinedTable
	case "40001":
		return SerializationFailure
	case "40P01":
		return DeadlockDetected
	case "08000", "08003", "08006":
		return ConnectionFailure
	default:
		return Other
	}
}

// MapSeverity maps the driver's severity string onto a Severity.
// Unknown values are treated as errors.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}
