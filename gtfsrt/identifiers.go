package gtfsrt

import "strings"

// VersionSeparator splits an AT identifier from its GTFS version suffix,
// e.g. "1140-20231009112233_v106.13".
const VersionSeparator = '-'

// TruncateAt returns s up to, but not including, the first sep. When sep does
// not occur the identifier is treated as unusable and ok is false.
func TruncateAt(s string, sep rune) (string, bool) {
	i := strings.IndexRune(s, sep)
	if i < 0 {
		return "", false
	}
	return s[:i], true
}

// TripID returns the trip update's trip id without its version suffix.
func (e *Entity) TripID() (string, bool) {
	if e.TripUpdate == nil || e.TripUpdate.Trip == nil || e.TripUpdate.Trip.TripID == nil {
		return "", false
	}
	return TruncateAt(*e.TripUpdate.Trip.TripID, VersionSeparator)
}

// RouteID returns the trip update's route id without its version suffix.
func (e *Entity) RouteID() (string, bool) {
	if e.TripUpdate == nil || e.TripUpdate.Trip == nil || e.TripUpdate.Trip.RouteID == nil {
		return "", false
	}
	return TruncateAt(*e.TripUpdate.Trip.RouteID, VersionSeparator)
}

// StopID returns the stop time update's stop id without its version suffix.
func (e *Entity) StopID() (string, bool) {
	if e.TripUpdate == nil || e.TripUpdate.StopTimeUpdate == nil || e.TripUpdate.StopTimeUpdate.StopID == nil {
		return "", false
	}
	return TruncateAt(*e.TripUpdate.StopTimeUpdate.StopID, VersionSeparator)
}

// VehicleTripID returns the raw trip id the vehicle position is linked to.
// This is the key vehicles are joined on.
func (e *Entity) VehicleTripID() (string, bool) {
	if e.Vehicle == nil || e.Vehicle.Trip == nil || e.Vehicle.Trip.TripID == nil {
		return "", false
	}
	return *e.Vehicle.Trip.TripID, true
}
