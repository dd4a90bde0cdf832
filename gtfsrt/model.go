package gtfsrt

// Entity is one record of a feed. A trip-updates entity carries TripUpdate,
// a vehicle-positions entity carries Vehicle, and a merged entity may carry both.
type Entity struct {
	ID         string           `json:"id"`
	TripUpdate *TripUpdate      `json:"trip_update,omitempty"`
	Vehicle    *VehiclePosition `json:"vehicle,omitempty"`
	IsDeleted  bool             `json:"is_deleted"`
}

// TripUpdate describes the realtime progress of one trip. The AT feed sends at
// most one relevant stop time update per entity.
type TripUpdate struct {
	Trip           *TripDescriptor    `json:"trip"`
	Vehicle        *VehicleDescriptor `json:"vehicle,omitempty"`
	StopTimeUpdate *StopTimeUpdate    `json:"stop_time_update,omitempty"`
	Timestamp      *uint64            `json:"timestamp,omitempty"`
	Delay          *int32             `json:"delay,omitempty"`
}

// TripDescriptor identifies a trip instance.
type TripDescriptor struct {
	TripID               *string                   `json:"trip_id,omitempty"`
	RouteID              *string                   `json:"route_id,omitempty"`
	DirectionID          *uint32                   `json:"direction_id,omitempty"`
	StartTime            *string                   `json:"start_time,omitempty"`
	StartDate            *string                   `json:"start_date,omitempty"`
	ScheduleRelationship *TripScheduleRelationship `json:"schedule_relationship,omitempty"`
}

// VehicleDescriptor identifies a vehicle.
type VehicleDescriptor struct {
	ID           *string `json:"id,omitempty"`
	Label        *string `json:"label,omitempty"`
	LicensePlate *string `json:"license_plate,omitempty"`
}

type StopTimeUpdate struct {
	StopSequence         *uint32                  `json:"stop_sequence,omitempty"`
	StopID               *string                  `json:"stop_id,omitempty"`
	Arrival              *StopTimeEvent           `json:"arrival,omitempty"`
	Departure            *StopTimeEvent           `json:"departure,omitempty"`
	ScheduleRelationship StopScheduleRelationship `json:"schedule_relationship"`
}

type StopTimeEvent struct {
	Delay       *int32 `json:"delay,omitempty"`
	Time        *int64 `json:"time,omitempty"`
	Uncertainty *int32 `json:"uncertainty,omitempty"`
}

// VehiclePosition is the realtime position and status of a vehicle. Trip is
// absent for vehicles that are not running a known trip.
type VehiclePosition struct {
	Trip                *TripDescriptor    `json:"trip,omitempty"`
	Vehicle             *VehicleDescriptor `json:"vehicle,omitempty"`
	Position            *Position          `json:"position,omitempty"`
	CurrentStopSequence *uint32            `json:"current_stop_sequence,omitempty"`
	StopID              *string            `json:"stop_id,omitempty"`
	CurrentStatus       VehicleStopStatus  `json:"current_status"`
	Timestamp           *uint64            `json:"timestamp,omitempty"`
	CongestionLevel     *CongestionLevel   `json:"congestion_level,omitempty"`
	OccupancyStatus     *OccupancyStatus   `json:"occupancy_status,omitempty"`
}

type Position struct {
	Latitude  float32  `json:"latitude"`
	Longitude float32  `json:"longitude"`
	Bearing   *float32 `json:"bearing,omitempty"`
	Odometer  *float64 `json:"odometer,omitempty"`
	Speed     *float32 `json:"speed,omitempty"`
}

// Nil-safe getters, in the style of generated protobuf code.

func (t *TripDescriptor) GetTripID() string {
	if t == nil || t.TripID == nil {
		return ""
	}
	return *t.TripID
}

func (t *TripDescriptor) GetRouteID() string {
	if t == nil || t.RouteID == nil {
		return ""
	}
	return *t.RouteID
}

func (t *TripDescriptor) GetStartDate() string {
	if t == nil || t.StartDate == nil {
		return ""
	}
	return *t.StartDate
}
