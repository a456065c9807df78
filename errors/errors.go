package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // document decoding
	PhaseResolve Phase = "resolve" // name/reference resolution
	PhaseEmit    Phase = "emit"    // source text generation
)

// Kind categorizes the error
type Kind string

const (
	KindSchema           Kind = "schema_violation"
	KindUnresolvedSymbol Kind = "unresolved_symbol"
	KindUnsupported      Kind = "unsupported"
	KindInvalidReference Kind = "invalid_reference"
	KindInternal         Kind = "internal"
)

// Error is the structured error type used throughout the generator
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	WitType string
	Scope   string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Scope != "" {
		b.WriteString(" in ")
		b.WriteString(e.Scope)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.WitType != "" {
		b.WriteString(": WIT type ")
		b.WriteString(e.WitType)
	}

	if e.Detail != "" {
		if e.WitType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Scope sets the interface or world being processed
func (b *Builder) Scope(name string) *Builder {
	b.err.Scope = name
	return b
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SchemaViolation creates an error for a model node that matches no known variant.
// The raw shape is included so the offending input can be located.
func SchemaViolation(phase Phase, path []string, rawShape string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSchema,
		Path:   path,
		Detail: fmt.Sprintf("node matches no known variant: %s", rawShape),
	}
}

// UnresolvedSymbol creates an error for a failed symbol table lookup
func UnresolvedSymbol(scope, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolvedSymbol,
		Scope:  scope,
		Detail: fmt.Sprintf("symbol %q not declared", name),
	}
}

// Unsupported creates an error for a recognized but unimplemented construct.
// Distinct from schema violations so future extension is traceable.
func Unsupported(phase Phase, construct string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: fmt.Sprintf("not implemented: %s", construct),
	}
}

// InvalidReference creates an error for a dangling positional reference
func InvalidReference(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidReference,
		Detail: fmt.Sprintf("%s index %d out of bounds (length %d)", what, index, length),
	}
}

// Internal creates an error for a broken walker invariant, such as a member
// visited outside any active scope
func Internal(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseEmit,
		Kind:   KindInternal,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
