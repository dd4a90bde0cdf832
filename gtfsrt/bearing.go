package gtfsrt

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// decodeBearing normalises position.bearing, which AT sends as a float, an
// integer, a numeric string or not at all. Shapes are tried in a fixed order
// and anything else is rejected:
//
//	absent, null    -> nil
//	12.5, 1e2       -> used as is
//	90              -> unsigned, must fit in int16
//	-45             -> rejected, integers are unsigned on the wire
//	"7", "12.5"     -> parsed as a float
func decodeBearing(raw json.RawMessage) (*float32, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{Field: "bearing", Value: string(raw), Err: err}
		}
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, &DecodeError{Field: "bearing", Value: s, Err: err}
		}
		b := float32(f)
		return &b, nil

	case c == '-' || (c >= '0' && c <= '9'):
		if bytes.ContainsAny(raw, ".eE") {
			f, err := strconv.ParseFloat(string(raw), 32)
			if err != nil {
				return nil, &DecodeError{Field: "bearing", Value: string(raw), Err: err}
			}
			b := float32(f)
			return &b, nil
		}
		if c == '-' {
			return nil, &DecodeError{Field: "bearing", Value: string(raw), Err: ErrBearingOutOfRange}
		}
		n, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil || n > math.MaxInt16 {
			return nil, &DecodeError{Field: "bearing", Value: string(raw), Err: ErrBearingOutOfRange}
		}
		b := float32(n)
		return &b, nil
	}

	return nil, &DecodeError{Field: "bearing", Value: string(raw), Err: ErrBearingShape}
}
