package association

import (
	"errors"
	"fmt"

	"techmap/internal/diagnostic"
)

// ErrSchema matches every *SchemaError via errors.Is.
var ErrSchema = errors.New("specification schema violation")

// Schema error codes.
const (
	CodeUnknownField   = "unknown_field"
	CodeAndWithID      = "and_with_id"
	CodeWrongShape     = "wrong_shape"
	CodeMissingField   = "missing_field"
	CodeInvalidSection = "invalid_section"
	CodeDuplicate      = "duplicate_criterion"
	CodeLoadFailed     = "load_failed"
)

// SchemaError reports a specification that violates the grammar.
type SchemaError struct {
	// Criterion is the id of the criterion whose document is malformed.
	Criterion string
	// Path locates the entry, e.g. "sufficient[1].using[0]".
	Path    string
	Code    string
	Message string
	// Entry is the offending raw value.
	Entry any
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("criterion %q", e.Criterion)
	if e.Path != "" {
		msg += " at " + e.Path
	}

	msg += fmt.Sprintf(": [%s] %s", e.Code, e.Message)
	if e.Entry != nil {
		msg += fmt.Sprintf(" (entry: %v)", e.Entry)
	}

	return msg
}

// Is makes every SchemaError match ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// SchemaErrors flattens err (possibly produced by errors.Join) into the
// SchemaErrors it carries.
func SchemaErrors(err error) []*SchemaError {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case *SchemaError:
		return []*SchemaError{e}
	case interface{ Unwrap() []error }:
		var out []*SchemaError
		for _, inner := range e.Unwrap() {
			out = append(out, SchemaErrors(inner)...)
		}

		return out
	}

	var se *SchemaError
	if errors.As(err, &se) {
		return []*SchemaError{se}
	}

	return nil
}

// Diagnose converts the errors carried by err into diagnostics. Errors
// that are not schema violations, such as unreadable files, are reported
// under "load_failed".
func Diagnose(err error) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	diagnose(res, err)
	res.Sort()

	return res
}

func diagnose(res *diagnostic.Diagnostics, err error) {
	if err == nil {
		return
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			diagnose(res, inner)
		}

		return
	}

	var se *SchemaError
	if !errors.As(err, &se) {
		res.AddError(CodeLoadFailed, err.Error(), "", "")
		return
	}

	msg := se.Message
	if se.Entry != nil {
		msg += fmt.Sprintf(" (entry: %v)", se.Entry)
	}

	res.AddError(se.Code, msg, se.Criterion, se.Path)
}
