package session

import "errors"

// Kind classifies a lifecycle error so the HTTP layer can map it to a
// status code without inspecting messages.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindUpstream        Kind = "upstream_error"
)

// Error is a classified lifecycle error. Messages are safe to surface
// to callers; wrapped causes are not serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind from an error chain; unknown errors report
// as upstream failures.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUpstream
}

// MessageOf extracts the caller-safe message from an error chain.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "internal error"
}
