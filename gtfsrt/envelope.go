package gtfsrt

import (
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is the outer message returned by every AT realtime endpoint.
type Envelope struct {
	Status   string          `json:"status"`
	Response *Response       `json:"response"`
	Error    json.RawMessage `json:"error,omitempty"`
}

type Response struct {
	Header Header   `json:"header"`
	Entity []Entity `json:"entity"`
}

// Header is the feed metadata. AT sends the timestamp as a double.
type Header struct {
	GTFSRealtimeVersion string         `json:"gtfs_realtime_version"`
	Incrementality      Incrementality `json:"incrementality"`
	Timestamp           *float64       `json:"timestamp,omitempty"`
}

// Failed reports whether the upstream filled in the error field.
func (e *Envelope) Failed() bool {
	return !isNull(e.Error)
}

// Decode parses a raw feed response. Decoding is all or nothing: the first
// field that cannot be decoded aborts it with a *DecodeError.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, asDecodeError(err)
	}
	return &env, nil
}

// DecodeReader reads r to the end and decodes it.
func DecodeReader(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return Decode(data)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire struct {
		Status   *string         `json:"status"`
		Response json.RawMessage `json:"response"`
		Error    json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}
	if wire.Status == nil {
		return &DecodeError{Field: "status", Err: ErrMissingField}
	}
	if isNull(wire.Response) {
		// a failed request may carry only the error
		if !isNull(wire.Error) {
			*e = Envelope{Status: *wire.Status, Error: wire.Error}
			return nil
		}
		return &DecodeError{Field: "response", Err: ErrMissingField}
	}

	resp, err := decodeOptional[Response]("response", wire.Response)
	if err != nil {
		return err
	}

	*e = Envelope{Status: *wire.Status, Response: resp}
	if !isNull(wire.Error) {
		e.Error = wire.Error
	}
	return nil
}

// UnmarshalJSON decodes entities one at a time so errors name their index.
// A missing entity list decodes as empty.
func (r *Response) UnmarshalJSON(data []byte) error {
	var wire struct {
		Header json.RawMessage   `json:"header"`
		Entity []json.RawMessage `json:"entity"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}
	if isNull(wire.Header) {
		return &DecodeError{Field: "header", Err: ErrMissingField}
	}

	header, err := decodeOptional[Header]("header", wire.Header)
	if err != nil {
		return err
	}

	entities := make([]Entity, 0, len(wire.Entity))
	for i, raw := range wire.Entity {
		var ent Entity
		if err := json.Unmarshal(raw, &ent); err != nil {
			return within(fmt.Sprintf("entity[%d]", i), err)
		}
		entities = append(entities, ent)
	}

	*r = Response{Header: *header, Entity: entities}
	return nil
}

// UnmarshalJSON defaults Incrementality to FullDataset when absent.
func (h *Header) UnmarshalJSON(data []byte) error {
	type alias Header
	var wire struct {
		alias
		Version *string `json:"gtfs_realtime_version"`
	}
	wire.Incrementality = FullDataset
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}
	if wire.Version == nil {
		return &DecodeError{Field: "gtfs_realtime_version", Err: ErrMissingField}
	}

	*h = Header(wire.alias)
	h.GTFSRealtimeVersion = *wire.Version
	return nil
}
