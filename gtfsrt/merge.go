package gtfsrt

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// JoinKey selects how trip-update entities are indexed for the merge.
type JoinKey int

const (
	// JoinByTripID indexes trip updates by their decoded trip_update.trip.trip_id.
	JoinByTripID JoinKey = iota
	// JoinByEntityID indexes trip updates by the outer entity id. AT sets the
	// entity id equal to the trip id, so this matches the upstream convention.
	JoinByEntityID
)

func (k JoinKey) String() string {
	if k == JoinByEntityID {
		return "entityId"
	}
	return "tripId"
}

// ParseJoinKey reads the names used in configuration and on the command line.
func ParseJoinKey(s string) (JoinKey, error) {
	switch s {
	case "", "tripId", "trip_id":
		return JoinByTripID, nil
	case "entityId", "entity_id":
		return JoinByEntityID, nil
	}
	return JoinByTripID, fmt.Errorf("unknown join key %q (want tripId or entityId)", s)
}

type mergeConfig struct {
	joinBy JoinKey
}

type MergeOption func(*mergeConfig)

// WithJoinKey overrides the default JoinByTripID.
func WithJoinKey(k JoinKey) MergeOption {
	return func(c *mergeConfig) { c.joinBy = k }
}

// MergeStats counts what happened to the entities of both feeds.
type MergeStats struct {
	Indexed        int `json:"indexed"`
	Duplicates     int `json:"duplicates"`
	DroppedNoTrip  int `json:"dropped_no_trip"`
	DroppedNoMatch int `json:"dropped_no_match"`
	Merged         int `json:"merged"`
}

// Combined is the merged view of one fetch cycle. Header always comes from
// the trip-updates feed.
type Combined struct {
	Header   Header     `json:"header"`
	Entities []Entity   `json:"entity"`
	Stats    MergeStats `json:"-"`
}

// Merge joins trip updates onto vehicle positions. Each vehicle whose trip id
// resolves to an indexed trip update yields one entity: a copy of the vehicle
// entity with TripUpdate replaced by the matched one. Vehicles without a trip
// id or without a match are dropped, as are trip updates with no vehicle.
// Later duplicates in the trip-updates feed win. Inputs are never modified
// and the result shares no memory with them.
func Merge(tripUpdates, vehiclePositions *Envelope, opts ...MergeOption) (*Combined, error) {
	if tripUpdates == nil || tripUpdates.Response == nil {
		return nil, errors.New("merge: trip updates envelope has no response")
	}
	if vehiclePositions == nil || vehiclePositions.Response == nil {
		return nil, errors.New("merge: vehicle positions envelope has no response")
	}

	cfg := mergeConfig{joinBy: JoinByTripID}
	for _, opt := range opts {
		opt(&cfg)
	}

	var stats MergeStats
	index := make(map[string]*Entity, len(tripUpdates.Response.Entity))
	for i := range tripUpdates.Response.Entity {
		ent := &tripUpdates.Response.Entity[i]
		key, ok := indexKey(ent, cfg.joinBy)
		if !ok {
			continue
		}
		if _, dup := index[key]; dup {
			stats.Duplicates++
		}
		index[key] = ent
	}
	stats.Indexed = len(index)

	merged := make([]Entity, 0, len(vehiclePositions.Response.Entity))
	for i := range vehiclePositions.Response.Entity {
		ent := &vehiclePositions.Response.Entity[i]

		tripID, ok := ent.VehicleTripID()
		if !ok {
			stats.DroppedNoTrip++
			continue
		}
		match, ok := index[tripID]
		if !ok {
			stats.DroppedNoMatch++
			continue
		}

		out, err := cloneEntity(ent)
		if err != nil {
			return nil, err
		}
		out.TripUpdate = nil
		if match.TripUpdate != nil {
			var tu TripUpdate
			if err := copier.CopyWithOption(&tu, match.TripUpdate, copier.Option{DeepCopy: true}); err != nil {
				return nil, fmt.Errorf("merge: copy trip update %s: %w", match.ID, err)
			}
			out.TripUpdate = &tu
		}
		merged = append(merged, out)
	}
	stats.Merged = len(merged)

	var header Header
	if err := copier.CopyWithOption(&header, &tripUpdates.Response.Header, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("merge: copy header: %w", err)
	}

	log.Debug().
		Str("joinby", cfg.joinBy.String()).
		Int("indexed", stats.Indexed).
		Int("duplicates", stats.Duplicates).
		Int("droppednotrip", stats.DroppedNoTrip).
		Int("droppednomatch", stats.DroppedNoMatch).
		Int("merged", stats.Merged).
		Msg("Merged realtime feeds")

	return &Combined{Header: header, Entities: merged, Stats: stats}, nil
}

func indexKey(ent *Entity, joinBy JoinKey) (string, bool) {
	if joinBy == JoinByEntityID {
		return ent.ID, true
	}
	if ent.TripUpdate == nil || ent.TripUpdate.Trip == nil || ent.TripUpdate.Trip.TripID == nil {
		return "", false
	}
	return *ent.TripUpdate.Trip.TripID, true
}

func cloneEntity(ent *Entity) (Entity, error) {
	var out Entity
	if err := copier.CopyWithOption(&out, ent, copier.Option{DeepCopy: true}); err != nil {
		return Entity{}, fmt.Errorf("merge: copy entity %s: %w", ent.ID, err)
	}
	return out, nil
}
