package migrate

import (
	"errors"
	"fmt"
)

// MigrationError reports a failed migration step. The migration call is
// fatal but the process is not: callers continue on un-migrated data and
// the pre-migration snapshot stays in the backup slot.
type MigrationError struct {
	// FromVersion and ToVersion identify the failing step, not the whole
	// requested range.
	FromVersion string
	ToVersion   string
	Message     string
	Err         error
}

func (e *MigrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("migration %s -> %s: %s: %v", e.FromVersion, e.ToVersion, e.Message, e.Err)
	}
	return fmt.Sprintf("migration %s -> %s: %s", e.FromVersion, e.ToVersion, e.Message)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// IsMigrationError returns true if the error is a MigrationError.
// Uses errors.As to handle wrapped errors.
func IsMigrationError(err error) bool {
	var me *MigrationError
	return errors.As(err, &me)
}
