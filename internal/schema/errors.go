package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes one failing field in a validated document.
type FieldError struct {
	Path   string `json:"path"`   // dotted path, list indices inline: "tasks.0.title"
	Reason string `json:"reason"` // human-readable constraint violation
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ValidationError reports every failing field in a document. It is fatal
// to the call that produced it and never partially applied.
type ValidationError struct {
	Fields []FieldError
}

// Error joins all field errors as "<path>: <reason>" entries.
func (e *ValidationError) Error() string {
	entries := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		entries[i] = f.String()
	}
	return "validation failed: " + strings.Join(entries, "; ")
}

// HasPath reports whether any field error is located at the given path.
func (e *ValidationError) HasPath(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// IsValidationError returns true if the error is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Warning records a questionable substitution made during normalization,
// such as replacing an unparsable date with the current instant. Warnings
// never fail validation; callers decide whether to surface them.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}
