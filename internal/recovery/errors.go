package recovery

import "errors"

// ErrorKind classifies a failed operation.
type ErrorKind int

const (
	// KindValidation is a local check that failed before any request was sent.
	KindValidation ErrorKind = iota + 1
	// KindEndpoint is a failure reported by the endpoint (success false).
	KindEndpoint
	// KindTransport means the request could not complete.
	KindTransport
	// KindState means the operation is not allowed right now (wrong step, pending, completed).
	KindState
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEndpoint:
		return "endpoint"
	case KindTransport:
		return "transport"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Sentinel causes carried by *Error.
var (
	ErrPending          = errors.New("a request is already in flight")
	ErrWrongStep        = errors.New("operation not allowed in the current step")
	ErrCompleted        = errors.New("recovery already completed")
	ErrPhoneRequired    = errors.New("phone is required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEndpoint         = errors.New("endpoint reported failure")
)

// Error is the failure result of a flow operation. Message is what the user was shown;
// it is empty for KindState errors, which are not notified.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return "recovery: " + e.Kind.String() + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err if it is an *Error, otherwise 0.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
