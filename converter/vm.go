package converter

import (
	"math"
	"strconv"

	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
	"github.com/theoremus-urban-solutions/at-realtime/siri"
	"github.com/theoremus-urban-solutions/at-realtime/utils"
)

func buildMVJ(ent *gtfsrt.Entity, opts Options) siri.MonitoredVehicleJourney {
	vp := ent.Vehicle
	trip := vp.Trip
	if trip == nil && ent.TripUpdate != nil {
		trip = ent.TripUpdate.Trip
	}

	tripID, routeID := journeyIDs(ent, opts.NormalizeIDs)

	// LineRef format: {codespace}:Line:{route_id}
	routeID = applyFieldMutators(routeID, opts.FieldMutators.LineRef)
	lineRef := reference(opts.ProducerRef, "Line", routeID)

	direction := ""
	if trip != nil && trip.DirectionID != nil {
		direction = strconv.FormatUint(uint64(*trip.DirectionID), 10)
	}

	var framed *siri.FramedVehicleJourneyRef
	if tripID != "" {
		framed = &siri.FramedVehicleJourneyRef{
			DataFrameRef:           utils.ServiceDateToISO(trip.GetStartDate()),
			DatedVehicleJourneyRef: reference(opts.ProducerRef, "ServiceJourney", tripID),
		}
	}

	// VehicleRef format: {codespace}:VehicleRef:{vehicle_id}
	vehicleID := ent.ID
	if vp.Vehicle != nil && vp.Vehicle.ID != nil {
		vehicleID = *vp.Vehicle.ID
	}

	var location *siri.VehicleLocation
	var bearing *float64
	var velocity *int
	if pos := vp.Position; pos != nil {
		location = &siri.VehicleLocation{
			Longitude: roundCoordinate(pos.Longitude),
			Latitude:  roundCoordinate(pos.Latitude),
		}
		if pos.Bearing != nil {
			b := float64(*pos.Bearing)
			bearing = &b
		}
		if pos.Speed != nil {
			// m/s to km/h
			v := int(math.Round(float64(*pos.Speed) * 3.6))
			velocity = &v
		}
	}

	return siri.MonitoredVehicleJourney{
		LineRef:                 lineRef,
		DirectionRef:            direction,
		FramedVehicleJourneyRef: framed,
		Monitored:               true,
		DataSource:              opts.ProducerRef,
		VehicleLocation:         location,
		Bearing:                 bearing,
		Velocity:                velocity,
		Occupancy:               mapOccupancyStatus(vp.OccupancyStatus),
		Delay:                   calculateDelay(ent.TripUpdate),
		InCongestion:            mapCongestionLevel(vp.CongestionLevel),
		VehicleStatus:           mapVehicleStatus(vp.CurrentStatus),
		VehicleRef:              reference(opts.ProducerRef, "VehicleRef", vehicleID),
		MonitoredCall:           buildMonitoredCall(ent, opts),
		IsCompleteStopSequence:  false,
	}
}

// identifier returns id, truncated at the version separator when normalize is
// set. A normalized id without a separator is unusable and comes back empty.
func identifier(id string, normalize bool) string {
	if !normalize {
		return id
	}
	bare, _ := gtfsrt.TruncateAt(id, gtfsrt.VersionSeparator)
	return bare
}

// journeyIDs picks the trip and route ids used in references. Ids sent on the
// matched trip update win over the vehicle's trip and are normalized through
// the entity accessors.
func journeyIDs(ent *gtfsrt.Entity, normalize bool) (tripID, routeID string) {
	vt := ent.Vehicle.Trip
	tripID = identifier(vt.GetTripID(), normalize)
	routeID = identifier(vt.GetRouteID(), normalize)

	if ent.TripUpdate == nil || ent.TripUpdate.Trip == nil {
		return tripID, routeID
	}
	tt := ent.TripUpdate.Trip
	if tt.TripID != nil {
		tripID = *tt.TripID
		if normalize {
			tripID, _ = ent.TripID()
		}
	}
	if tt.RouteID != nil {
		routeID = *tt.RouteID
		if normalize {
			routeID, _ = ent.RouteID()
		}
	}
	return tripID, routeID
}

// reference formats {codespace}:{kind}:{id}, or the bare id without a codespace.
func reference(codespace, kind, id string) string {
	if id == "" || codespace == "" {
		return id
	}
	return codespace + ":" + kind + ":" + id
}

// roundCoordinate drops the float32 noise from a widened coordinate.
func roundCoordinate(v float32) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', -1, 32), 64)
	return f
}

// applyFieldMutators applies [from,to] pairs to a reference value
func applyFieldMutators(value string, mapping []string) string {
	for i := 0; i+1 < len(mapping); i += 2 {
		if value == mapping[i] {
			return mapping[i+1]
		}
	}
	return value
}

// calculateDelay prefers the trip level delay and falls back to the stop
// time update's departure, then arrival delay.
func calculateDelay(tu *gtfsrt.TripUpdate) string {
	if tu == nil {
		return "PT0S"
	}
	if tu.Delay != nil {
		return utils.FormatDelayAsISO8601Duration(int64(*tu.Delay))
	}
	if stu := tu.StopTimeUpdate; stu != nil {
		if stu.Departure != nil && stu.Departure.Delay != nil {
			return utils.FormatDelayAsISO8601Duration(int64(*stu.Departure.Delay))
		}
		if stu.Arrival != nil && stu.Arrival.Delay != nil {
			return utils.FormatDelayAsISO8601Duration(int64(*stu.Arrival.Delay))
		}
	}
	return "PT0S"
}

// mapOccupancyStatus maps GTFS-RT occupancy_status to SIRI Occupancy values
func mapOccupancyStatus(status *gtfsrt.OccupancyStatus) string {
	if status == nil {
		return ""
	}
	switch *status {
	case gtfsrt.Empty, gtfsrt.ManySeatsAvailable:
		return "manySeatsAvailable"
	case gtfsrt.FewSeatsAvailable:
		return "seatsAvailable"
	case gtfsrt.StandingRoomOnly, gtfsrt.CrushedStandingRoomOnly:
		return "standingAvailable"
	case gtfsrt.Full:
		return "full"
	case gtfsrt.NotAcceptingPassengers:
		return "notAcceptingPassengers"
	}
	return ""
}

// mapCongestionLevel maps congestion_level to InCongestion. Absent data omits
// the field; STOP_AND_GO and worse count as congested.
func mapCongestionLevel(level *gtfsrt.CongestionLevel) *bool {
	if level == nil {
		return nil
	}
	inCongestion := *level >= gtfsrt.StopAndGo
	return &inCongestion
}

func mapVehicleStatus(status gtfsrt.VehicleStopStatus) string {
	switch status {
	case gtfsrt.IncomingAt:
		return "approaching"
	case gtfsrt.StoppedAt:
		return "atStop"
	}
	return "inProgress"
}

// buildMonitoredCall describes the stop the vehicle is at or heading to. The
// trip update's stop time update wins over the vehicle's own stop_id.
func buildMonitoredCall(ent *gtfsrt.Entity, opts Options) *siri.MonitoredCall {
	var stopID string
	var seq *uint32
	var stu *gtfsrt.StopTimeUpdate
	if ent.TripUpdate != nil && ent.TripUpdate.StopTimeUpdate != nil && ent.TripUpdate.StopTimeUpdate.StopID != nil {
		stu = ent.TripUpdate.StopTimeUpdate
		stopID, seq = *stu.StopID, stu.StopSequence
	} else if ent.Vehicle.StopID != nil {
		stopID, seq = *ent.Vehicle.StopID, ent.Vehicle.CurrentStopSequence
	} else {
		return nil
	}

	if opts.NormalizeIDs {
		if stu != nil {
			stopID, _ = ent.StopID()
		} else {
			stopID = identifier(stopID, true)
		}
		if stopID == "" {
			return nil
		}
	}
	stopID = applyFieldMutators(stopID, opts.FieldMutators.StopPointRef)

	call := &siri.MonitoredCall{
		// StopPointRef format: {codespace}:Quay:{stop_id}
		StopPointRef: reference(opts.ProducerRef, "Quay", stopID),
	}
	if seq != nil {
		order := int(*seq)
		call.Order = &order
	}
	atStop := ent.Vehicle.CurrentStatus == gtfsrt.StoppedAt
	call.VehicleAtStop = &atStop

	if stu != nil {
		if stu.Arrival != nil && stu.Arrival.Time != nil {
			call.ExpectedArrivalTime = utils.Iso8601FromUnixSeconds(*stu.Arrival.Time)
		}
		if stu.Departure != nil && stu.Departure.Time != nil {
			call.ExpectedDepartureTime = utils.Iso8601FromUnixSeconds(*stu.Departure.Time)
		}
	}
	return call
}
