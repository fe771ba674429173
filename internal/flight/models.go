// Package flight validates raw flight requests and encodes them into the
// feature row consumed by the delay model.
package flight

import (
	"errors"
	"fmt"
	"time"
)

// Layouts accepted for the raw request fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Raw holds the five untrusted request fields as received from a caller.
type Raw struct {
	Date        string `json:"date" validate:"required"`
	STD         string `json:"std" validate:"required"`
	STA         string `json:"sta" validate:"required"`
	Origin      string `json:"from_city" validate:"required"`
	Destination string `json:"to_city" validate:"required"`
}

// TimeOfDay is a clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Request is a validated flight request.
type Request struct {
	Date        time.Time
	Departure   TimeOfDay
	Arrival     TimeOfDay
	Origin      string
	Destination string
}

// DateString formats the request date as YYYY-MM-DD.
func (r Request) DateString() string {
	return r.Date.Format(DateLayout)
}

// Kind classifies why a request was rejected.
type Kind string

const (
	KindMissingField   Kind = "MISSING_FIELD"
	KindInvalidFormat  Kind = "INVALID_FORMAT"
	KindSameAirport    Kind = "SAME_AIRPORT"
	KindSameTime       Kind = "SAME_TIME"
	KindPastDate       Kind = "PAST_DATE"
	KindFlightTooShort Kind = "FLIGHT_TOO_SHORT"
	KindUnknownAirport Kind = "UNKNOWN_AIRPORT"
)

// Validation errors. A *ValidationError unwraps to one of these.
var (
	ErrMissingField   = errors.New("missing field")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrSameAirport    = errors.New("same airport")
	ErrSameTime       = errors.New("same time")
	ErrPastDate       = errors.New("date in the past")
	ErrFlightTooShort = errors.New("flight too short")
	ErrUnknownAirport = errors.New("unknown airport")
)

var kindErrors = map[Kind]error{
	KindMissingField:   ErrMissingField,
	KindInvalidFormat:  ErrInvalidFormat,
	KindSameAirport:    ErrSameAirport,
	KindSameTime:       ErrSameTime,
	KindPastDate:       ErrPastDate,
	KindFlightTooShort: ErrFlightTooShort,
	KindUnknownAirport: ErrUnknownAirport,
}

// ValidationError describes a rejected request. Message is safe to show to
// the caller.
type ValidationError struct {
	Kind    Kind
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for the kind.
func (e *ValidationError) Unwrap() error {
	return kindErrors[e.Kind]
}

func newError(kind Kind, field, value, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Value: value, Message: msg}
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
