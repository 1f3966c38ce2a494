package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a run failed.
type ErrorKind int

// Error kinds. The set is closed; every error surfaced by a run carries one.
const (
	KindUnknown ErrorKind = iota
	// KindConfiguration: a required setting is missing or invalid. Raised
	// before any I/O.
	KindConfiguration
	// KindFetch: the deal source was unreachable or returned invalid data.
	KindFetch
	// KindDelivery: the notification channel did not accept the message.
	KindDelivery
	// KindStorage: the state store could not be read or written.
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindFetch:
		return "fetch"
	case KindDelivery:
		return "delivery"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the step that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and operation. A nil err yields nil.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
