// Package schema normalizes untyped JSON into model records.
//
// Validation runs in two passes:
//
//  1. Structural: the embedded CUE schema (schema.cue) is unified with the
//     incoming document. Type conflicts, enum violations, and malformed
//     colors surface here with precise field paths.
//  2. Normalization: the document is walked field by field, defaults are
//     filled in, and date-bearing fields are coerced from ISO-8601 strings,
//     epoch numbers, or native values.
//
// Failures from both passes are merged into a single ValidationError whose
// entries read "<path>: <reason>" (e.g. "tasks.0.title: must not be empty").
// An unparsable date string is not a failure: the field falls back to the
// current instant and the substitution is reported as a Warning, because
// silently moving a creation time to import time is a data-integrity hazard
// the caller should at least get to log.
package schema
