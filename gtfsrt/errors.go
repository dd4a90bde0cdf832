package gtfsrt

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownEnum is returned for an enum code outside the known variants.
	ErrUnknownEnum = errors.New("unknown enum code")
	// ErrBearingOutOfRange is returned for a negative integer bearing or one above
	// the 16-bit signed maximum.
	ErrBearingOutOfRange = errors.New("bearing out of range")
	// ErrBearingShape is returned when bearing is neither a number nor a string.
	ErrBearingShape = errors.New("bearing must be a number or a numeric string")
)

// DecodeError reports a field of the feed that could not be decoded.
// Field is a dotted path using the wire (JSON) names.
type DecodeError struct {
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode feed: %v", e.Err)
	}
	if e.Value != "" {
		return fmt.Sprintf("decode %s (value %s): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError reports a failed request to the realtime API. It is never
// produced for a body that arrived but failed to decode.
type TransportError struct {
	Feed       string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d from %s", e.Feed, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: failed to fetch %s: %v", e.Feed, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
