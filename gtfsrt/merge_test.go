package gtfsrt

import (
	"testing"
)

func mustDecode(t *testing.T, data []byte) *Envelope {
	t.Helper()
	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return env
}

func TestMerge_EndToEnd(t *testing.T) {
	tu := mustDecode(t, envelopeWith(`{"id":"T1","trip_update":{"trip":{"trip_id":"T1"},"delay":30}}`))
	vp := mustDecode(t, envelopeWith(`{"id":"V1","vehicle":{"trip":{"trip_id":"T1"},"position":{"latitude":-36.8,"longitude":174.7,"bearing":90}}}`))

	c, err := Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(c.Entities) != 1 {
		t.Fatalf("Expected 1 merged entity, got %d", len(c.Entities))
	}

	got := c.Entities[0]
	if got.ID != "V1" {
		t.Errorf("Expected merged id V1, got %q", got.ID)
	}
	if got.TripUpdate == nil || got.TripUpdate.Delay == nil || *got.TripUpdate.Delay != 30 {
		t.Errorf("Expected trip_update.delay 30, got %+v", got.TripUpdate)
	}
	if got.Vehicle == nil || got.Vehicle.Position == nil {
		t.Fatal("Expected vehicle position to be preserved")
	}
	if got.Vehicle.Position.Latitude != float32(-36.8) || *got.Vehicle.Position.Bearing != 90 {
		t.Errorf("Unexpected position: %+v", got.Vehicle.Position)
	}
	if c.Stats.Merged != 1 || c.Stats.Indexed != 1 {
		t.Errorf("Unexpected stats: %+v", c.Stats)
	}
}

func TestMerge_Fixtures(t *testing.T) {
	tu := mustDecode(t, loadFixture(t, "tripupdates.json"))
	vp := mustDecode(t, loadFixture(t, "vehiclepositions.json"))

	c, err := Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// 31234 and 41111 have matching trips, 59999 has no trip and 60000 no match.
	if len(c.Entities) != 2 {
		t.Fatalf("Expected 2 merged entities, got %d", len(c.Entities))
	}
	if c.Entities[0].ID != "31234" || c.Entities[1].ID != "41111" {
		t.Errorf("Expected vehicle order 31234, 41111; got %s, %s", c.Entities[0].ID, c.Entities[1].ID)
	}
	if *c.Entities[1].TripUpdate.Delay != -15 {
		t.Errorf("Expected delay -15 on 41111, got %d", *c.Entities[1].TripUpdate.Delay)
	}

	want := MergeStats{Indexed: 3, Merged: 2, DroppedNoTrip: 1, DroppedNoMatch: 1}
	if c.Stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, c.Stats)
	}

	if c.Header.GTFSRealtimeVersion != "1.0" || c.Header.Timestamp == nil || *c.Header.Timestamp != 1697000000.123 {
		t.Errorf("Header should come from the trip updates feed, got %+v", c.Header)
	}

	t.Logf("✓ Merged %d vehicles", len(c.Entities))
}

func TestMerge_DropCases(t *testing.T) {
	tu := mustDecode(t, envelopeWith(`
		{"id":"T1","trip_update":{"trip":{"trip_id":"T1"}}},
		{"id":"T2","trip_update":{"trip":{"trip_id":"T2"}}}`))
	vp := mustDecode(t, envelopeWith(`
		{"id":"no-vehicle"},
		{"id":"no-trip","vehicle":{"vehicle":{"id":"no-trip"}}},
		{"id":"no-trip-id","vehicle":{"trip":{"route_id":"R"}}},
		{"id":"no-match","vehicle":{"trip":{"trip_id":"T9"}}},
		{"id":"ok","vehicle":{"trip":{"trip_id":"T1"}}}`))

	c, err := Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(c.Entities) != 1 || c.Entities[0].ID != "ok" {
		t.Fatalf("Expected only entity ok, got %+v", c.Entities)
	}
	for _, e := range c.Entities {
		if tid, _ := e.VehicleTripID(); tid == "T2" {
			t.Error("Trip update without a vehicle must not appear in the merged view")
		}
	}
	if c.Stats.DroppedNoTrip != 3 || c.Stats.DroppedNoMatch != 1 {
		t.Errorf("Unexpected drop counts: %+v", c.Stats)
	}
}

func TestMerge_EmptyTripUpdates(t *testing.T) {
	tu := mustDecode(t, []byte(`{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0"},"entity":[]}}`))
	vp := mustDecode(t, loadFixture(t, "vehiclepositions.json"))

	c, err := Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(c.Entities) != 0 {
		t.Errorf("Expected empty merge, got %d entities", len(c.Entities))
	}
}

func TestMerge_DuplicatesLastWins(t *testing.T) {
	tu := mustDecode(t, envelopeWith(`
		{"id":"T1","trip_update":{"trip":{"trip_id":"T1"},"delay":10}},
		{"id":"T1","trip_update":{"trip":{"trip_id":"T1"},"delay":20}}`))
	vp := mustDecode(t, envelopeWith(`{"id":"V1","vehicle":{"trip":{"trip_id":"T1"}}}`))

	for _, key := range []JoinKey{JoinByTripID, JoinByEntityID} {
		t.Run(key.String(), func(t *testing.T) {
			c, err := Merge(tu, vp, WithJoinKey(key))
			if err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			if len(c.Entities) != 1 {
				t.Fatalf("Expected 1 entity, got %d", len(c.Entities))
			}
			if *c.Entities[0].TripUpdate.Delay != 20 {
				t.Errorf("Expected later duplicate to win (delay 20), got %d", *c.Entities[0].TripUpdate.Delay)
			}
			if c.Stats.Duplicates != 1 {
				t.Errorf("Expected 1 duplicate, got %d", c.Stats.Duplicates)
			}
		})
	}
}

func TestMerge_JoinKeys(t *testing.T) {
	// The entity id no longer equals the trip id.
	tu := mustDecode(t, envelopeWith(`{"id":"entity-7","trip_update":{"trip":{"trip_id":"T1"},"delay":5}}`))
	vp := mustDecode(t, envelopeWith(`{"id":"V1","vehicle":{"trip":{"trip_id":"T1"}}}`))

	byTrip, err := Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(byTrip.Entities) != 1 {
		t.Errorf("Join by trip id should match, got %d entities", len(byTrip.Entities))
	}

	byEntity, err := Merge(tu, vp, WithJoinKey(JoinByEntityID))
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(byEntity.Entities) != 0 {
		t.Errorf("Join by entity id should not match, got %d entities", len(byEntity.Entities))
	}
}

func TestMerge_ReplacesTripUpdateEvenWhenAbsent(t *testing.T) {
	tu := mustDecode(t, envelopeWith(`{"id":"T1"}`))
	vp := mustDecode(t, envelopeWith(`{"id":"V1","trip_update":{"trip":{"trip_id":"stale"},"delay":99},"vehicle":{"trip":{"trip_id":"T1"}}}`))

	c, err := Merge(tu, vp, WithJoinKey(JoinByEntityID))
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(c.Entities) != 1 {
		t.Fatalf("Expected 1 entity, got %d", len(c.Entities))
	}
	if c.Entities[0].TripUpdate != nil {
		t.Errorf("Vehicle's own trip update should be overwritten with absence, got %+v", c.Entities[0].TripUpdate)
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	tu := mustDecode(t, envelopeWith(`{"id":"T1","trip_update":{"trip":{"trip_id":"T1"},"stop_time_update":{"stop_sequence":4}}}`))
	vp := mustDecode(t, envelopeWith(`{"id":"V1","vehicle":{"trip":{"trip_id":"T1"},"position":{"latitude":1,"longitude":2}}}`))

	c, err := Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	out := c.Entities[0]

	if out.TripUpdate == tu.Response.Entity[0].TripUpdate {
		t.Error("Merged trip update must not share memory with the input")
	}
	if out.Vehicle == vp.Response.Entity[0].Vehicle {
		t.Error("Merged vehicle must not share memory with the input")
	}

	out.Vehicle.Position.Latitude = 99
	out.TripUpdate.StopTimeUpdate.ScheduleRelationship = StopSkipped
	if vp.Response.Entity[0].Vehicle.Position.Latitude != 1 {
		t.Error("Mutating the merged position changed the vehicle feed")
	}
	if tu.Response.Entity[0].TripUpdate.StopTimeUpdate.ScheduleRelationship != StopScheduled {
		t.Error("Mutating the merged stop time update changed the trip updates feed")
	}
	if vp.Response.Entity[0].TripUpdate != nil {
		t.Error("Merge must not modify the vehicle feed entity")
	}
}

func TestMerge_NilInputs(t *testing.T) {
	ok := mustDecode(t, envelopeWith(`{"id":"a"}`))
	if _, err := Merge(nil, ok); err == nil {
		t.Error("Expected error for nil trip updates")
	}
	if _, err := Merge(ok, &Envelope{Status: "OK"}); err == nil {
		t.Error("Expected error for vehicle positions without response")
	}
}

func TestParseJoinKey(t *testing.T) {
	tests := []struct {
		input   string
		want    JoinKey
		wantErr bool
	}{
		{"", JoinByTripID, false},
		{"tripId", JoinByTripID, false},
		{"trip_id", JoinByTripID, false},
		{"entityId", JoinByEntityID, false},
		{"entity_id", JoinByEntityID, false},
		{"vehicle", JoinByTripID, true},
	}
	for _, tt := range tests {
		got, err := ParseJoinKey(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseJoinKey(%q) = (%v, %v)", tt.input, got, err)
		}
	}
}
