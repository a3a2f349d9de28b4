package migrate

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// BackupSink receives the pre-migration backup and log entry. The store
// implements it; tests substitute an in-memory sink.
type BackupSink interface {
	SaveBackup(model.Backup) error
	AppendMigrationLog(model.MigrationLogEntry) error
}

// Result reports the outcome of a migration run.
//
// On success Data holds the migrated snapshot. On failure Err holds a
// *MigrationError for the first failing step and Data is nil; the
// pre-migration data remains in the backup slot untouched.
type Result struct {
	Success      bool
	Data         *model.Snapshot
	MigratedFrom string
	MigratedTo   string
	Err          error
}

// Engine applies the ordered step chain. Construct one per process via
// New; the zero value is not usable.
type Engine struct {
	steps []Step
	sink  BackupSink
	log   *log.Logger
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSteps replaces the default upgrade chain. Used by tests to inject
// failing steps.
func WithSteps(steps []Step) Option {
	return func(e *Engine) { e.steps = steps }
}

// WithClock replaces the wall clock used for backup and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates a migration engine writing backups through sink.
func New(sink BackupSink, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		steps: defaultSteps(),
		sink:  sink,
		log:   logger,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NeedsMigration reports whether a stored version is stale.
func (e *Engine) NeedsMigration(storedVersion string) bool {
	return storedVersion != model.CurrentSchemaVersion
}

// Run migrates a snapshot from storedVersion to the current version.
//
// The full pre-migration snapshot is backed up and the attempt logged
// before any step mutates data. Steps apply in order; the first failure
// halts the run and is reported in Result.Err. Running against
// already-current data is a no-op success with no backup written.
func (e *Engine) Run(snap *model.Snapshot, storedVersion string) Result {
	if !e.NeedsMigration(storedVersion) {
		return Result{
			Success:      true,
			Data:         snap,
			MigratedFrom: storedVersion,
			MigratedTo:   storedVersion,
		}
	}

	chain, err := e.chainFrom(storedVersion)
	if err != nil {
		return Result{Success: false, Err: err, MigratedFrom: storedVersion}
	}

	// Backup before any mutation. A failure to secure the backup aborts
	// the migration entirely: never mutate what cannot be restored.
	backup := model.Backup{
		SchemaVersion: storedVersion,
		CreatedAt:     e.now(),
		Data:          snap.Clone(),
	}
	if err := e.sink.SaveBackup(backup); err != nil {
		return Result{
			Success: false,
			Err: &MigrationError{
				FromVersion: storedVersion,
				ToVersion:   model.CurrentSchemaVersion,
				Message:     "backup failed",
				Err:         err,
			},
			MigratedFrom: storedVersion,
		}
	}
	entry := model.MigrationLogEntry{
		From:      storedVersion,
		To:        model.CurrentSchemaVersion,
		Timestamp: e.now(),
	}
	if err := e.sink.AppendMigrationLog(entry); err != nil {
		e.log.Warn("migration log append failed", "err", err)
	}

	working := snap.Clone()
	for _, step := range chain {
		e.log.Info("applying migration step", "from", step.From, "to", step.To)
		if err := step.Apply(&working); err != nil {
			return Result{
				Success: false,
				Err: &MigrationError{
					FromVersion: step.From,
					ToVersion:   step.To,
					Message:     "step failed",
					Err:         err,
				},
				MigratedFrom: storedVersion,
			}
		}
		working.SchemaVersion = step.To
	}

	return Result{
		Success:      true,
		Data:         &working,
		MigratedFrom: storedVersion,
		MigratedTo:   working.SchemaVersion,
	}
}

// chainFrom returns the contiguous step chain starting at the stored
// version. An unknown version is unmigratable and fails before backup:
// there is nothing sensible to transform.
func (e *Engine) chainFrom(storedVersion string) ([]Step, error) {
	for i, step := range e.steps {
		if step.From == storedVersion {
			return e.steps[i:], nil
		}
	}
	return nil, &MigrationError{
		FromVersion: storedVersion,
		ToVersion:   model.CurrentSchemaVersion,
		Message:     fmt.Sprintf("no migration path from version %q", storedVersion),
	}
}
