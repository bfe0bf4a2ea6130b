package queryplanner

import (
	"fmt"
	"strings"

	"github.com/samsarahq/go/oops"
)

// Kind identifies one of the error categories spec §7 defines.
type Kind int

const (
	// SchemaValidation means the composed schema is internally
	// inconsistent (missing owner for a non-built-in field, unresolvable
	// requires path).
	SchemaValidation Kind = iota
	// OperationValidation means the operation names an undefined
	// fragment, field, or type, or otherwise fails standard GraphQL
	// validation.
	OperationValidation
	// NoMatchingOperation means operation-name resolution found nothing.
	NoMatchingOperation
	// AmbiguousOperation means multiple operations exist and no name was
	// given to disambiguate.
	AmbiguousOperation
	// UnsatisfiableKey means no key on an entity type is resolvable by
	// the parent group's service, so the field cannot be reached.
	UnsatisfiableKey
)

func (k Kind) String() string {
	switch k {
	case SchemaValidation:
		return "SCHEMA_VALIDATION"
	case OperationValidation:
		return "OPERATION_VALIDATION"
	case NoMatchingOperation:
		return "NO_MATCHING_OPERATION"
	case AmbiguousOperation:
		return "AMBIGUOUS_OPERATION"
	case UnsatisfiableKey:
		return "UNSATISFIABLE_KEY"
	default:
		return "UNKNOWN"
	}
}

// PlanError is the error type every exported planner entrypoint returns on
// failure. SchemaValidation errors are collected as a batch before any plan
// node is emitted; Causes holds every problem Schema.Validate found. Every
// other kind, OperationValidation included, carries only the first error
// that stopped planning (len(Causes) == 1); operation errors are not
// batched. Internal invariant violations during splitting are always fatal.
type PlanError struct {
	Kind   Kind
	Causes []error
}

func (e *PlanError) Error() string {
	msgs := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		msgs[i] = c.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(msgs, "; "))
}

func (e *PlanError) Unwrap() []error { return e.Causes }

func newError(kind Kind, format string, args ...interface{}) *PlanError {
	return &PlanError{Kind: kind, Causes: []error{oops.Errorf(format, args...)}}
}

func wrapError(kind Kind, err error, format string, args ...interface{}) *PlanError {
	return &PlanError{Kind: kind, Causes: []error{oops.Wrapf(err, format, args...)}}
}

// newErrf builds a plain error for use inside a Causes slice that's being
// assembled by hand (e.g. one PlanError wrapping several field errors).
func newErrf(format string, args ...interface{}) error {
	return oops.Errorf(format, args...)
}
