package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	CodeRequired          = "REQUIRED"
	CodeInvalidType       = "INVALID_TYPE"
	CodeInvalidLength     = "INVALID_LENGTH"
	CodeInvalidRange      = "INVALID_RANGE"
	CodeInvalidValue      = "INVALID_VALUE"
	CodeDuplicateInFile   = "DUPLICATE_IN_FILE"
	CodeDuplicateInDB     = "DUPLICATE_IN_DB"
	CodeReferenceNotFound = "REFERENCE_NOT_FOUND"
)

var (
	ErrEmptyFile     = errors.New("CSV file is empty")
	ErrMissingHeader = errors.New("CSV file missing header row")
	ErrNoDataRows    = errors.New("CSV file contains no data rows")
	ErrTooManyRows   = errors.New("CSV file exceeds the row limit")
)

// RowError describes a problem with one cell or row. Row is the 1-based
// line number with the header on line 1.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// MissingColumnsError lists required headers absent from the file
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV file is missing required columns: %v", e.Columns)
}

// ErrorList collects row errors up to a cap and keeps counting past it
type ErrorList struct {
	errors []RowError
	max    int
	total  int
}

// NewErrorList creates a list that stores at most max errors
func NewErrorList(max int) *ErrorList {
	if max <= 0 {
		max = 100
	}
	return &ErrorList{max: max}
}

func (l *ErrorList) Add(errs ...RowError) {
	for _, err := range errs {
		l.total++
		if len(l.errors) < l.max {
			l.errors = append(l.errors, err)
		}
	}
}

// Errors returns the stored errors; never nil
func (l *ErrorList) Errors() []RowError {
	if l.errors == nil {
		return []RowError{}
	}
	return l.errors
}

// Total counts every added error, stored or not
func (l *ErrorList) Total() int { return l.total }

// Truncated reports whether errors were dropped at the cap
func (l *ErrorList) Truncated() bool { return l.total > len(l.errors) }
