package models

import "fmt"

// MalformedInputError reports an input row that cannot be turned into an order:
// an unparseable timestamp, a missing required column, or a delivery that
// precedes its creation. Parsing never continues past one.
type MalformedInputError struct {
	Row    int    // 1-based data row, 0 when the whole file is affected (e.g. header)
	Column string // logical column name ("created_at", "delivered_at")
	Value  string
	Reason string
	Err    error
}

// Error implements error interface
func (e *MalformedInputError) Error() string {
	loc := "header"
	if e.Row > 0 {
		loc = fmt.Sprintf("row %d", e.Row)
	}
	msg := fmt.Sprintf("malformed input at %s", loc)
	if e.Column != "" {
		msg += fmt.Sprintf(", column %s", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// InsufficientDataError reports that a stage had no rows to work with, which
// leaves percentiles and means undefined.
type InsufficientDataError struct {
	Stage string
	Rows  int
}

// Error implements error interface
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %d rows after cleaning", e.Stage, e.Rows)
}
