// Package converter projects merged GTFS-Realtime data onto SIRI
// VehicleMonitoring.
//
// # Overview
//
// The input is a gtfsrt.Combined snapshot: vehicle positions that have been
// joined with their trip updates. Each merged vehicle becomes one
// VehicleActivity; the trip update supplies the delay and the monitored call.
// No static GTFS data is consulted, so names (stop, line, destination) are
// not filled in.
//
// # Usage
//
//	combined, _ := client.FetchCombined(ctx, gtfsrt.Filter{})
//	resp := converter.BuildVehicleMonitoring(combined, converter.Options{
//	    ProducerRef:    "AT",
//	    ReadIntervalMS: 30000,
//	    NormalizeIDs:   true,
//	})
//
// # References
//
// With a ProducerRef set, references follow the codespace convention:
//
//	LineRef                {codespace}:Line:{route_id}
//	DatedVehicleJourneyRef {codespace}:ServiceJourney:{trip_id}
//	VehicleRef             {codespace}:VehicleRef:{vehicle_id}
//	StopPointRef           {codespace}:Quay:{stop_id}
//
// Without one the bare identifiers are used. FieldMutators rewrite stop and
// line identifiers before the prefix is applied.
//
// # Field mapping
//
//	occupancy_status   -> Occupancy (manySeatsAvailable, seatsAvailable, ...)
//	congestion_level   -> InCongestion (STOP_AND_GO and worse)
//	current_status     -> VehicleStatus and MonitoredCall.VehicleAtStop
//	position.speed     -> Velocity in km/h
//	delay              -> Delay as an ISO 8601 duration
package converter
