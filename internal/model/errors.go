package model

// ErrorKind classifies request-level failures.
type ErrorKind string

const (
	KindMalformedDate     ErrorKind = "MalformedDate"
	KindInvertedRange     ErrorKind = "InvertedRange"
	KindFutureEndDate     ErrorKind = "FutureEndDate"
	KindEmptySelection    ErrorKind = "EmptySelection"
	KindEmptyFieldSet     ErrorKind = "EmptyFieldSet"
	KindUnknownInstrument ErrorKind = "UnknownInstrument"
	KindNoDataCollected   ErrorKind = "NoDataCollected"
	KindFileIO            ErrorKind = "FileIOError"
)

// RequestError is a failure that aborts a whole request.
// Failures is only set for NoDataCollected.
type RequestError struct {
	Kind     ErrorKind
	Message  string
	Failures []SeriesResult
	Err      error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is matches on Kind so callers can compare against the sentinels below.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	return ok && t.Kind == e.Kind
}

// Client reports whether the failure was caused by the request rather than the server.
func (e *RequestError) Client() bool {
	return e.Kind != KindFileIO
}

var (
	ErrMalformedDate     = &RequestError{Kind: KindMalformedDate}
	ErrInvertedRange     = &RequestError{Kind: KindInvertedRange}
	ErrFutureEndDate     = &RequestError{Kind: KindFutureEndDate}
	ErrEmptySelection    = &RequestError{Kind: KindEmptySelection}
	ErrEmptyFieldSet     = &RequestError{Kind: KindEmptyFieldSet}
	ErrUnknownInstrument = &RequestError{Kind: KindUnknownInstrument}
	ErrNoDataCollected   = &RequestError{Kind: KindNoDataCollected}
	ErrFileIO            = &RequestError{Kind: KindFileIO}
)

// UnknownInstrument reports a name missing from the registry for its category.
// It is recoverable: the name is dropped and the request continues.
func UnknownInstrument(category, name string) *RequestError {
	return &RequestError{Kind: KindUnknownInstrument, Message: "unknown " + category + " instrument: " + name}
}

// NewRequestError builds a RequestError of the given kind.
func NewRequestError(kind ErrorKind, message string) *RequestError {
	return &RequestError{Kind: kind, Message: message}
}
