package atrealtime

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

// SnapshotStore holds the latest merged snapshot and memoizes encoded
// responses for it. A new snapshot invalidates every memoized response.
type SnapshotStore struct {
	mu            sync.RWMutex
	latest        *gtfsrt.Combined
	fetchedAt     time.Time
	responseCache map[string][]byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{responseCache: map[string][]byte{}}
}

// Set replaces the current snapshot.
func (s *SnapshotStore) Set(c *gtfsrt.Combined, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = c
	s.fetchedAt = fetchedAt
	s.responseCache = map[string][]byte{}
}

// Get returns the current snapshot, or ok=false before the first successful poll.
// The snapshot must be treated as read-only.
func (s *SnapshotStore) Get() (c *gtfsrt.Combined, fetchedAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.fetchedAt, s.latest != nil
}

func memoKey(args ...string) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

// Encoded returns the memoized response for key, building it from the current
// snapshot on a miss. An empty key builds every time and is never stored.
func (s *SnapshotStore) Encoded(key string, build func(*gtfsrt.Combined) ([]byte, error)) ([]byte, error) {
	s.mu.RLock()
	latest := s.latest
	buf, hit := s.responseCache[key]
	s.mu.RUnlock()
	if hit && key != "" {
		return buf, nil
	}
	if latest == nil {
		return nil, errNoSnapshot
	}

	buf, err := build(latest)
	if err != nil || key == "" {
		return buf, err
	}

	s.mu.Lock()
	// a newer snapshot may have landed while building
	if s.latest == latest {
		s.responseCache[key] = buf
	}
	s.mu.Unlock()
	return buf, nil
}

// selectEntities applies the vehicle query filters. Comparisons are
// case-insensitive; lineref and tripid also match the id without its version
// suffix.
func selectEntities(c *gtfsrt.Combined, q vehicleQuery) *gtfsrt.Combined {
	if q.empty() {
		return c
	}
	out := &gtfsrt.Combined{Header: c.Header, Stats: c.Stats, Entities: make([]gtfsrt.Entity, 0, len(c.Entities))}
	for _, ent := range c.Entities {
		trip := tripOf(&ent)
		if q.VehicleRef != "" && !strings.EqualFold(vehicleIDOf(&ent), q.VehicleRef) {
			continue
		}
		if q.LineRef != "" && !matchesID(trip.GetRouteID(), q.LineRef) {
			continue
		}
		if q.TripID != "" && !matchesID(trip.GetTripID(), q.TripID) {
			continue
		}
		if q.DirectionRef != "" {
			if trip == nil || trip.DirectionID == nil || q.DirectionRef != directionString(*trip.DirectionID) {
				continue
			}
		}
		out.Entities = append(out.Entities, ent)
	}
	return out
}

func tripOf(ent *gtfsrt.Entity) *gtfsrt.TripDescriptor {
	if ent.Vehicle != nil && ent.Vehicle.Trip != nil {
		return ent.Vehicle.Trip
	}
	if ent.TripUpdate != nil {
		return ent.TripUpdate.Trip
	}
	return nil
}

func vehicleIDOf(ent *gtfsrt.Entity) string {
	if ent.Vehicle != nil && ent.Vehicle.Vehicle != nil && ent.Vehicle.Vehicle.ID != nil {
		return *ent.Vehicle.Vehicle.ID
	}
	return ent.ID
}

func matchesID(id, want string) bool {
	if id == "" {
		return false
	}
	if strings.EqualFold(id, want) {
		return true
	}
	bare, ok := gtfsrt.TruncateAt(id, gtfsrt.VersionSeparator)
	return ok && strings.EqualFold(bare, want)
}

func directionString(d uint32) string { return strconv.FormatUint(uint64(d), 10) }
