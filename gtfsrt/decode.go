package gtfsrt

import (
	"bytes"
	"encoding/json"
	"errors"
)

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || string(data) == "null"
}

// asDecodeError converts errors from encoding/json into a DecodeError keyed by wire path.
func asDecodeError(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return &DecodeError{Field: te.Field, Value: te.Value, Err: err}
	}
	return &DecodeError{Err: err}
}

// within attributes err to the named child field.
func within(field string, err error) error {
	de := asDecodeError(err).(*DecodeError)
	path := field
	if de.Field != "" {
		path = field + "." + de.Field
	}
	return &DecodeError{Field: path, Value: de.Value, Err: de.Err}
}

// decodeOptional decodes raw into a new T, returning nil when raw is absent or null.
func decodeOptional[T any](field string, raw json.RawMessage) (*T, error) {
	if isNull(raw) {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, within(field, err)
	}
	return v, nil
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         *string         `json:"id"`
		TripUpdate json.RawMessage `json:"trip_update"`
		Vehicle    json.RawMessage `json:"vehicle"`
		IsDeleted  *bool           `json:"is_deleted"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}
	if wire.ID == nil {
		return &DecodeError{Field: "id", Err: ErrMissingField}
	}

	tu, err := decodeOptional[TripUpdate]("trip_update", wire.TripUpdate)
	if err != nil {
		return err
	}
	vp, err := decodeOptional[VehiclePosition]("vehicle", wire.Vehicle)
	if err != nil {
		return err
	}

	*e = Entity{ID: *wire.ID, TripUpdate: tu, Vehicle: vp}
	if wire.IsDeleted != nil {
		e.IsDeleted = *wire.IsDeleted
	}
	return nil
}

func (t *TripUpdate) UnmarshalJSON(data []byte) error {
	var wire struct {
		Trip           json.RawMessage `json:"trip"`
		Vehicle        json.RawMessage `json:"vehicle"`
		StopTimeUpdate json.RawMessage `json:"stop_time_update"`
		Timestamp      *uint64         `json:"timestamp"`
		Delay          *int32          `json:"delay"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}
	if isNull(wire.Trip) {
		return &DecodeError{Field: "trip", Err: ErrMissingField}
	}

	trip, err := decodeOptional[TripDescriptor]("trip", wire.Trip)
	if err != nil {
		return err
	}
	vehicle, err := decodeOptional[VehicleDescriptor]("vehicle", wire.Vehicle)
	if err != nil {
		return err
	}
	stu, err := decodeOptional[StopTimeUpdate]("stop_time_update", wire.StopTimeUpdate)
	if err != nil {
		return err
	}

	*t = TripUpdate{
		Trip:           trip,
		Vehicle:        vehicle,
		StopTimeUpdate: stu,
		Timestamp:      wire.Timestamp,
		Delay:          wire.Delay,
	}
	return nil
}

// UnmarshalJSON defaults ScheduleRelationship to StopScheduled when absent.
func (s *StopTimeUpdate) UnmarshalJSON(data []byte) error {
	type alias StopTimeUpdate
	a := alias{ScheduleRelationship: StopScheduled}
	if err := json.Unmarshal(data, &a); err != nil {
		return asDecodeError(err)
	}
	*s = StopTimeUpdate(a)
	return nil
}

// UnmarshalJSON defaults CurrentStatus to InTransitTo when absent.
func (v *VehiclePosition) UnmarshalJSON(data []byte) error {
	type alias VehiclePosition
	var wire struct {
		alias
		Trip     json.RawMessage `json:"trip"`
		Vehicle  json.RawMessage `json:"vehicle"`
		Position json.RawMessage `json:"position"`
	}
	wire.CurrentStatus = InTransitTo
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}

	out := VehiclePosition(wire.alias)
	var err error
	if out.Trip, err = decodeOptional[TripDescriptor]("trip", wire.Trip); err != nil {
		return err
	}
	if out.Vehicle, err = decodeOptional[VehicleDescriptor]("vehicle", wire.Vehicle); err != nil {
		return err
	}
	if out.Position, err = decodeOptional[Position]("position", wire.Position); err != nil {
		return err
	}
	*v = out
	return nil
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var wire struct {
		Latitude  *float32        `json:"latitude"`
		Longitude *float32        `json:"longitude"`
		Bearing   json.RawMessage `json:"bearing"`
		Odometer  *float64        `json:"odometer"`
		Speed     *float32        `json:"speed"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return asDecodeError(err)
	}
	if wire.Latitude == nil {
		return &DecodeError{Field: "latitude", Err: ErrMissingField}
	}
	if wire.Longitude == nil {
		return &DecodeError{Field: "longitude", Err: ErrMissingField}
	}

	bearing, err := decodeBearing(wire.Bearing)
	if err != nil {
		return err
	}

	*p = Position{
		Latitude:  *wire.Latitude,
		Longitude: *wire.Longitude,
		Bearing:   bearing,
		Odometer:  wire.Odometer,
		Speed:     wire.Speed,
	}
	return nil
}
