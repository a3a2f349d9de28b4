package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce    sync.Once
	schemaCtx     *cue.Context
	importDef     cue.Value
	schemaLoadErr error
)

// loadSchema compiles the embedded schema once and caches the #Import
// definition. A compile failure here is a programming error, not a data
// error, so it propagates as a plain error rather than a ValidationError.
func loadSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaLoadErr = fmt.Errorf("compile embedded schema: %w", err)
			return
		}
		importDef = v.LookupPath(cue.ParsePath("#Import"))
		if err := importDef.Err(); err != nil {
			schemaLoadErr = fmt.Errorf("lookup #Import: %w", err)
		}
	})
	return importDef, schemaLoadErr
}

// structuralErrors unifies a raw JSON document with #Import and converts
// every CUE conflict into a FieldError with a dotted path.
func structuralErrors(raw []byte) ([]FieldError, error) {
	schemaVal, err := loadSchema()
	if err != nil {
		return nil, err
	}

	// JSON is a subset of CUE, so the document compiles directly.
	data := schemaCtx.CompileBytes(raw, cue.Filename("import.json"))
	if cerr := data.Err(); cerr != nil {
		return []FieldError{{Path: "document", Reason: "not a valid document: " + cueErrReason(cerr)}}, nil
	}

	unified := schemaVal.Unify(data)
	verr := unified.Validate()
	if verr == nil {
		return nil, nil
	}

	var fields []FieldError
	for _, e := range cueerrors.Errors(verr) {
		path := strings.Join(e.Path(), ".")
		if path == "" {
			path = "document"
		}
		format, args := e.Msg()
		fields = append(fields, FieldError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}
	return fields, nil
}

func cueErrReason(err error) string {
	if list := cueerrors.Errors(err); len(list) > 0 {
		format, args := list[0].Msg()
		return fmt.Sprintf(format, args...)
	}
	return err.Error()
}
