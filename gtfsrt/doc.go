// Package gtfsrt decodes, merges and exports the Auckland Transport GTFS-Realtime JSON feeds.
//
// It handles two feed types:
//   - Trip Updates: schedule deviations (delay, stop time update) per trip
//   - Vehicle Positions: current vehicle location, status and trip linkage
//
// Decode turns a raw response into an Envelope. Merge joins a trip-updates
// Envelope onto a vehicle-positions Envelope by trip id, producing one Entity
// per vehicle that can be linked to a trip update. Client fetches both feeds
// concurrently and merges them in one call.
package gtfsrt
