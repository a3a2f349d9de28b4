package storage

import (
	"errors"
	"fmt"
)

// ParseError reports a corrupt stored document. It is non-fatal by
// contract: reads degrade to defaults and the error is logged, never
// returned to Get callers.
type ParseError struct {
	Key Key
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corrupt document for key %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// QuotaError reports a browser-local write that still exceeds the quota
// after reclamation. The write did not happen; the cache retains the
// value for the session.
type QuotaError struct {
	Key   Key
	Need  int64 // bytes the write required
	Quota int64 // configured capacity
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded writing key %q: need %d bytes of %d", e.Key, e.Need, e.Quota)
}

// IsQuotaError returns true if the error is a QuotaError.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
