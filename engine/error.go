package engine

import "fmt"

// ErrorDomain identifies the native subsystem that produced an error.
type ErrorDomain int32

const (
	DomainEngine    ErrorDomain = 1 // engine core
	DomainPOSIX     ErrorDomain = 2
	DomainSQLite    ErrorDomain = 3
	DomainFleece    ErrorDomain = 4
	DomainNetwork   ErrorDomain = 5
	DomainWebSocket ErrorDomain = 6
)

// Error codes in DomainEngine used by the bridge itself.
const (
	CodeConflict        int32 = 8  // revision conflict
	CodeUnexpectedError int32 = 10 // callback failure surfaced to the engine
	CodeNotOpen         int32 = 19 // handle used after close
)

// Error is the native engine error structure. It is passed through the
// bridge verbatim, never swallowed or rewrapped.
type Error struct {
	Domain  ErrorDomain
	Code    int32
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine error (domain %d, code %d): %s", e.Domain, e.Code, e.Message)
}

// Is matches engine errors by domain and code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Domain == t.Domain && e.Code == t.Code
	}
	return false
}

// ResolverFailed is the error reported when a conflict resolver signals
// that host-side logic failed for a single document. It is scoped to that
// document's resolution only.
func ResolverFailed(docID string) *Error {
	return &Error{
		Domain:  DomainEngine,
		Code:    CodeUnexpectedError,
		Message: fmt.Sprintf("conflict resolver failed for document %q", docID),
	}
}
