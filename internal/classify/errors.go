package classify

import (
	"errors"
	"fmt"
)

// Kind is the stable failure classification surfaced to callers.
type Kind int

const (
	// KindUnknown marks internal failures with no client-facing category.
	KindUnknown Kind = iota
	// KindDecode marks malformed or unsupported image payloads (client-caused).
	KindDecode
	// KindInference marks predictor failures (service-side).
	KindInference
	// KindNotReady marks requests arriving before warm-up could complete.
	KindNotReady
	// KindConfiguration marks malformed device descriptors or out-of-range
	// request parameters (client-caused).
	KindConfiguration
)

// String returns the wire-stable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "invalid_image"
	case KindInference:
		return "inference_failed"
	case KindNotReady:
		return "not_ready"
	case KindConfiguration:
		return "invalid_configuration"
	default:
		return "internal_error"
	}
}

// Error carries a failure kind and a client-safe detail string. The wrapped
// cause is for logs only and must never reach response bodies.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a kinded error. err may be nil.
func NewError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the failure kind from an error chain; unclassified errors
// report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// DetailOf returns the client-safe detail for an error chain, or a generic
// message for unclassified errors.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal error"
}
