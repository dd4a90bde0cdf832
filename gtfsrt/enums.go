package gtfsrt

import (
	"strconv"
)

// TripScheduleRelationship is the relation between a trip and the static schedule.
type TripScheduleRelationship uint8

const (
	TripScheduled TripScheduleRelationship = iota
	TripAdded
	TripUnscheduled
	TripCancelled
)

func (r TripScheduleRelationship) String() string {
	switch r {
	case TripScheduled:
		return "SCHEDULED"
	case TripAdded:
		return "ADDED"
	case TripUnscheduled:
		return "UNSCHEDULED"
	case TripCancelled:
		return "CANCELED"
	}
	return "TripScheduleRelationship(" + strconv.Itoa(int(r)) + ")"
}

func (r *TripScheduleRelationship) UnmarshalJSON(data []byte) error {
	code, ok, err := decodeCode("schedule_relationship", data, uint8(TripCancelled))
	if err != nil || !ok {
		return err
	}
	*r = TripScheduleRelationship(code)
	return nil
}

// StopScheduleRelationship is the relation between a stop time update and the static schedule.
type StopScheduleRelationship uint8

const (
	StopScheduled StopScheduleRelationship = iota
	StopSkipped
	StopNoData
)

func (r StopScheduleRelationship) String() string {
	switch r {
	case StopScheduled:
		return "SCHEDULED"
	case StopSkipped:
		return "SKIPPED"
	case StopNoData:
		return "NO_DATA"
	}
	return "StopScheduleRelationship(" + strconv.Itoa(int(r)) + ")"
}

func (r *StopScheduleRelationship) UnmarshalJSON(data []byte) error {
	code, ok, err := decodeCode("schedule_relationship", data, uint8(StopNoData))
	if err != nil || !ok {
		return err
	}
	*r = StopScheduleRelationship(code)
	return nil
}

// VehicleStopStatus is where the vehicle is relative to its current stop.
type VehicleStopStatus uint8

const (
	// IncomingAt means the vehicle is about to arrive at the stop.
	IncomingAt VehicleStopStatus = iota
	// StoppedAt means the vehicle is standing at the stop.
	StoppedAt
	// InTransitTo means the vehicle has departed and is heading for the next stop.
	InTransitTo
)

func (s VehicleStopStatus) String() string {
	switch s {
	case IncomingAt:
		return "INCOMING_AT"
	case StoppedAt:
		return "STOPPED_AT"
	case InTransitTo:
		return "IN_TRANSIT_TO"
	}
	return "VehicleStopStatus(" + strconv.Itoa(int(s)) + ")"
}

func (s *VehicleStopStatus) UnmarshalJSON(data []byte) error {
	code, ok, err := decodeCode("current_status", data, uint8(InTransitTo))
	if err != nil || !ok {
		return err
	}
	*s = VehicleStopStatus(code)
	return nil
}

// CongestionLevel is the congestion the vehicle is experiencing.
type CongestionLevel uint8

const (
	UnknownCongestionLevel CongestionLevel = iota
	RunningSmoothly
	StopAndGo
	Congestion
	SevereCongestion
)

func (c CongestionLevel) String() string {
	switch c {
	case UnknownCongestionLevel:
		return "UNKNOWN_CONGESTION_LEVEL"
	case RunningSmoothly:
		return "RUNNING_SMOOTHLY"
	case StopAndGo:
		return "STOP_AND_GO"
	case Congestion:
		return "CONGESTION"
	case SevereCongestion:
		return "SEVERE_CONGESTION"
	}
	return "CongestionLevel(" + strconv.Itoa(int(c)) + ")"
}

func (c *CongestionLevel) UnmarshalJSON(data []byte) error {
	code, ok, err := decodeCode("congestion_level", data, uint8(SevereCongestion))
	if err != nil || !ok {
		return err
	}
	*c = CongestionLevel(code)
	return nil
}

// OccupancyStatus is the passenger load of the vehicle.
type OccupancyStatus uint8

const (
	Empty OccupancyStatus = iota
	ManySeatsAvailable
	FewSeatsAvailable
	StandingRoomOnly
	CrushedStandingRoomOnly
	Full
	NotAcceptingPassengers
)

func (o OccupancyStatus) String() string {
	switch o {
	case Empty:
		return "EMPTY"
	case ManySeatsAvailable:
		return "MANY_SEATS_AVAILABLE"
	case FewSeatsAvailable:
		return "FEW_SEATS_AVAILABLE"
	case StandingRoomOnly:
		return "STANDING_ROOM_ONLY"
	case CrushedStandingRoomOnly:
		return "CRUSHED_STANDING_ROOM_ONLY"
	case Full:
		return "FULL"
	case NotAcceptingPassengers:
		return "NOT_ACCEPTING_PASSENGERS"
	}
	return "OccupancyStatus(" + strconv.Itoa(int(o)) + ")"
}

func (o *OccupancyStatus) UnmarshalJSON(data []byte) error {
	code, ok, err := decodeCode("occupancy_status", data, uint8(NotAcceptingPassengers))
	if err != nil || !ok {
		return err
	}
	*o = OccupancyStatus(code)
	return nil
}

// Incrementality tells whether a feed holds the full dataset or only changes.
type Incrementality uint8

const (
	FullDataset Incrementality = iota
	Differential
)

func (i Incrementality) String() string {
	switch i {
	case FullDataset:
		return "FULL_DATASET"
	case Differential:
		return "DIFFERENTIAL"
	}
	return "Incrementality(" + strconv.Itoa(int(i)) + ")"
}

func (i *Incrementality) UnmarshalJSON(data []byte) error {
	code, ok, err := decodeCode("incrementality", data, uint8(Differential))
	if err != nil || !ok {
		return err
	}
	*i = Incrementality(code)
	return nil
}

// decodeCode reads a small integer enum code. ok is false for a JSON null,
// in which case the caller keeps its current (default) value.
func decodeCode(field string, data []byte, max uint8) (code uint8, ok bool, err error) {
	if isNull(data) {
		return 0, false, nil
	}
	n, perr := strconv.ParseUint(string(data), 10, 8)
	if perr != nil || n > uint64(max) {
		return 0, false, &DecodeError{Field: field, Value: string(data), Err: ErrUnknownEnum}
	}
	return uint8(n), true, nil
}
