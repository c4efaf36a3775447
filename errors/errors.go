package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBind        Phase = "bind"        // native resource binding
	PhaseCallback    Phase = "callback"    // bridge calls
	PhaseDispatch    Phase = "dispatch"    // host-side message handling
	PhaseLog         Phase = "log"         // log slot arbitration
	PhaseReplication Phase = "replication" // replicator callbacks
	PhaseStream      Phase = "stream"      // blob streaming
	PhaseEngine      Phase = "engine"      // native engine operations
)

// Kind categorizes the error
type Kind string

const (
	KindClosed       Kind = "closed"
	KindTimeout      Kind = "timeout"
	KindProtocol     Kind = "protocol"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindUnreachable  Kind = "unreachable"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Path sets the location path (e.g. callback id, document id)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// Closed creates an error for an operation on a closed object
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Timeout creates an error for a decision call that exceeded its bounded wait
func Timeout(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTimeout,
		Detail: fmt.Sprintf("%s timed out", what),
	}
}

// Protocol creates an error for an unexpected response shape
func Protocol(phase Phase, path []string, detail string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProtocol,
		Path:   path,
		Detail: detail,
		Value:  value,
	}
}

// Conflict creates an error for a slot owned by a different capability
func Conflict(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindConflict,
		Detail: detail,
	}
}

// InvalidState creates an error for an operation in the wrong lifecycle state
func InvalidState(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unreachable creates an error for a message posted to a dead port
func Unreachable(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnreachable,
		Detail: fmt.Sprintf("%s is not receiving", what),
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
