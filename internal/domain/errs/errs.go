// Package errs defines the error taxonomy shared by stores, policies and
// handlers.
//
// Handlers map these to responses:
//   - *ValidationError: 422 with per-field messages
//   - ErrPermissionDenied, ErrNotFound: 303 back to the resource list
//   - *ImportColumnMismatch, *ImportRowError: 422, import rolled back
//   - ErrTokenExpired, ErrTokenInvalid: generic 400
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrPermissionDenied means the actor may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound means the record does not exist or is outside the actor's scope.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition means a membership change does not apply to the
	// target's current state.
	ErrInvalidTransition = errors.New("invalid membership transition")
	// ErrTokenExpired means a signed token is authentic but older than its max age.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid means a signed token failed verification.
	ErrTokenInvalid = errors.New("token invalid")
)

// FieldError is one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError collects every field failure of one input.
type ValidationError struct {
	merr *multierror.Error
}

// Add records a failure for field. It returns v so calls can be chained
// from a nil-safe constructor.
func (v *ValidationError) Add(field, message string) *ValidationError {
	v.merr = multierror.Append(v.merr, FieldError{Field: field, Message: message})
	return v
}

// Merge appends every field failure of other.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for _, fe := range other.Fields() {
		v.Add(fe.Field, fe.Message)
	}
}

// Fields returns the collected failures in insertion order.
func (v *ValidationError) Fields() []FieldError {
	if v == nil || v.merr == nil {
		return nil
	}
	out := make([]FieldError, 0, len(v.merr.Errors))
	for _, e := range v.merr.Errors {
		var fe FieldError
		if errors.As(e, &fe) {
			out = append(out, fe)
			continue
		}
		out = append(out, FieldError{Message: e.Error()})
	}
	return out
}

// ByField groups messages by field name.
func (v *ValidationError) ByField() map[string][]string {
	m := map[string][]string{}
	for _, fe := range v.Fields() {
		m[fe.Field] = append(m[fe.Field], fe.Message)
	}
	return m
}

// HasErrors reports whether any failure was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && v.merr != nil && len(v.merr.Errors) > 0
}

// OrNil returns v as an error when it holds failures, otherwise nil.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	fields := v.Fields()
	if len(fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(fields))
	for _, fe := range fields {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	return new(ValidationError).Add(field, message)
}

// ImportColumnMismatch reports a CSV row whose column count is wrong.
// Row is 1-based and counts the header row.
type ImportColumnMismatch struct {
	Row      int
	Expected int
	Actual   int
}

func (e *ImportColumnMismatch) Error() string {
	return fmt.Sprintf("row %d: expected %d columns, got %d", e.Row, e.Expected, e.Actual)
}

// ImportRowError reports a CSV row that could not be converted or stored.
// Row is 1-based and counts the header row.
type ImportRowError struct {
	Row int
	Err error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error { return e.Err }

// SortedFields returns field names with failures, sorted. Useful for
// deterministic assertions and log lines.
func (v *ValidationError) SortedFields() []string {
	m := v.ByField()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
