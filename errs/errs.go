// Package errs defines the service's error taxonomy: a fixed set of
// Kind values, each carrying the origin's message, so job records and query
// responses can expose {kind,message} without leaking internal error types.
package errs

import "fmt"

type Kind string

const (
	InvalidInput     Kind = "InvalidInput"
	FetchFailed      Kind = "FetchFailed"
	ParseFailed      Kind = "ParseFailed"
	EmbedFailed      Kind = "EmbedFailed"
	IndexUnavailable Kind = "IndexUnavailable"
	IndexNotReady    Kind = "IndexNotReady"
	Timeout          Kind = "Timeout"
	NotFound         Kind = "NotFound"
	Internal         Kind = "Internal"
)

// Error wraps an underlying cause with a taxonomy Kind, following the
// propagation policy: "query endpoints translate errors to structured
// {success:false, error:{kind,message}} responses and never raise to the
// transport layer".
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: cause.Error(), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf extracts the taxonomy Kind from err, defaulting to Internal for any
// error not already wrapped as *Error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if asError(err, &e) {
		return e.Kind
	}
	return Internal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
