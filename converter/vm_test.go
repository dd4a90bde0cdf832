package converter

import (
	"encoding/json"
	"testing"

	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

const testTripUpdates = `{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0","timestamp":1697000000},"entity":[
	{"id":"1140-20231009112233_v106.13","trip_update":{
		"trip":{"trip_id":"1140-20231009112233_v106.13","route_id":"NX1-209","start_date":"20231010","direction_id":1},
		"stop_time_update":{"stop_sequence":7,"stop_id":"7036-f9f31a1d","arrival":{"delay":42,"time":1697000300}},
		"delay":75}},
	{"id":"2250-20231009112233_v106.13","trip_update":{
		"trip":{"trip_id":"2250-20231009112233_v106.13","route_id":"OUT-202"},
		"stop_time_update":{"stop_sequence":3,"stop_id":"1234-abcd","departure":{"delay":-15}}}}]}}`

const testVehiclePositions = `{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0","timestamp":1697000005},"entity":[
	{"id":"31234","vehicle":{
		"trip":{"trip_id":"1140-20231009112233_v106.13","route_id":"NX1-209","start_date":"20231010","direction_id":1},
		"position":{"latitude":-36.84846,"longitude":174.76334,"bearing":"135","speed":10},
		"timestamp":1697000001,"vehicle":{"id":"31234"},"occupancy_status":2,"congestion_level":1}},
	{"id":"41111","vehicle":{
		"trip":{"trip_id":"2250-20231009112233_v106.13"},
		"position":{"latitude":-36.9,"longitude":174.8},
		"current_status":1,"congestion_level":3,"occupancy_status":5}}]}}`

func testCombined(t *testing.T) *gtfsrt.Combined {
	t.Helper()
	tu, err := gtfsrt.Decode([]byte(testTripUpdates))
	if err != nil {
		t.Fatalf("Failed to decode trip updates: %v", err)
	}
	vp, err := gtfsrt.Decode([]byte(testVehiclePositions))
	if err != nil {
		t.Fatalf("Failed to decode vehicle positions: %v", err)
	}
	c, err := gtfsrt.Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	return c
}

func TestBuildVehicleMonitoring(t *testing.T) {
	resp := BuildVehicleMonitoring(testCombined(t), Options{ProducerRef: "AT", ReadIntervalMS: 30000, NormalizeIDs: true})

	sd := resp.Siri.ServiceDelivery
	if sd.ProducerRef != "AT" || sd.ResponseTimestamp != "2023-10-11T04:53:20Z" {
		t.Errorf("Unexpected service delivery header: %+v", sd)
	}
	if len(sd.VehicleMonitoringDelivery) != 1 {
		t.Fatalf("Expected 1 VM delivery, got %d", len(sd.VehicleMonitoringDelivery))
	}
	vm := sd.VehicleMonitoringDelivery[0]
	if vm.ValidUntil != "2023-10-11T04:53:50Z" {
		t.Errorf("Expected ValidUntil 30s after header, got %q", vm.ValidUntil)
	}
	if len(vm.VehicleActivity) != 2 {
		t.Fatalf("Expected 2 vehicle activities, got %d", len(vm.VehicleActivity))
	}

	first := vm.VehicleActivity[0]
	if first.RecordedAtTime != "2023-10-11T04:53:21Z" {
		t.Errorf("RecordedAtTime should come from the vehicle timestamp, got %q", first.RecordedAtTime)
	}
	mvj := first.MonitoredVehicleJourney
	checks := []struct {
		name, got, want string
	}{
		{"LineRef", mvj.LineRef, "AT:Line:NX1"},
		{"DirectionRef", mvj.DirectionRef, "1"},
		{"DatedVehicleJourneyRef", mvj.FramedVehicleJourneyRef.DatedVehicleJourneyRef, "AT:ServiceJourney:1140"},
		{"DataFrameRef", mvj.FramedVehicleJourneyRef.DataFrameRef, "2023-10-10"},
		{"VehicleRef", mvj.VehicleRef, "AT:VehicleRef:31234"},
		{"Delay", mvj.Delay, "PT1M15S"},
		{"Occupancy", mvj.Occupancy, "seatsAvailable"},
		{"VehicleStatus", mvj.VehicleStatus, "inProgress"},
		{"DataSource", mvj.DataSource, "AT"},
		{"StopPointRef", mvj.MonitoredCall.StopPointRef, "AT:Quay:7036"},
		{"ExpectedArrivalTime", mvj.MonitoredCall.ExpectedArrivalTime, "2023-10-11T04:58:20Z"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if mvj.VehicleLocation.Latitude != -36.84846 || mvj.VehicleLocation.Longitude != 174.76334 {
		t.Errorf("Unexpected location: %+v", mvj.VehicleLocation)
	}
	if mvj.Bearing == nil || *mvj.Bearing != 135 {
		t.Errorf("Expected bearing 135, got %v", mvj.Bearing)
	}
	if mvj.Velocity == nil || *mvj.Velocity != 36 {
		t.Errorf("Expected velocity 36 km/h, got %v", mvj.Velocity)
	}
	if mvj.InCongestion == nil || *mvj.InCongestion {
		t.Errorf("RUNNING_SMOOTHLY should not be congested, got %v", mvj.InCongestion)
	}
	if *mvj.MonitoredCall.Order != 7 || *mvj.MonitoredCall.VehicleAtStop {
		t.Errorf("Unexpected monitored call: %+v", mvj.MonitoredCall)
	}
	if !mvj.Monitored || mvj.IsCompleteStopSequence {
		t.Error("Monitored must be true and IsCompleteStopSequence false")
	}

	second := vm.VehicleActivity[1].MonitoredVehicleJourney
	if second.LineRef != "AT:Line:OUT" {
		t.Errorf("Route id should come from the matched trip update, got %q", second.LineRef)
	}
	if second.Delay != "-PT15S" {
		t.Errorf("Expected delay from departure event, got %q", second.Delay)
	}
	if second.VehicleRef != "AT:VehicleRef:41111" {
		t.Errorf("VehicleRef should fall back to the entity id, got %q", second.VehicleRef)
	}
	if second.VehicleStatus != "atStop" || !*second.MonitoredCall.VehicleAtStop {
		t.Errorf("STOPPED_AT should map to atStop, got %q", second.VehicleStatus)
	}
	if second.InCongestion == nil || !*second.InCongestion || second.Occupancy != "full" {
		t.Errorf("Unexpected congestion/occupancy: %v %q", second.InCongestion, second.Occupancy)
	}
	if vm.VehicleActivity[1].RecordedAtTime != sd.ResponseTimestamp {
		t.Error("RecordedAtTime should fall back to the header timestamp")
	}
}

func TestBuildVehicleMonitoring_BareIdentifiers(t *testing.T) {
	resp := BuildVehicleMonitoring(testCombined(t), Options{})
	mvj := resp.Siri.ServiceDelivery.VehicleMonitoringDelivery[0].VehicleActivity[0].MonitoredVehicleJourney

	if mvj.LineRef != "NX1-209" {
		t.Errorf("Expected raw route id, got %q", mvj.LineRef)
	}
	if mvj.MonitoredCall.StopPointRef != "7036-f9f31a1d" {
		t.Errorf("Expected raw stop id, got %q", mvj.MonitoredCall.StopPointRef)
	}
	if resp.Siri.ServiceDelivery.VehicleMonitoringDelivery[0].ValidUntil != "" {
		t.Error("ValidUntil should be empty without a read interval")
	}
}

func TestBuildVehicleMonitoring_FieldMutators(t *testing.T) {
	resp := BuildVehicleMonitoring(testCombined(t), Options{
		ProducerRef:  "AT",
		NormalizeIDs: true,
		FieldMutators: FieldMutators{
			StopPointRef: []string{"7036", "7036A"},
			LineRef:      []string{"NX1", "NX1X"},
		},
	})
	mvj := resp.Siri.ServiceDelivery.VehicleMonitoringDelivery[0].VehicleActivity[0].MonitoredVehicleJourney
	if mvj.MonitoredCall.StopPointRef != "AT:Quay:7036A" {
		t.Errorf("Expected mutated stop ref, got %q", mvj.MonitoredCall.StopPointRef)
	}
	if mvj.LineRef != "AT:Line:NX1X" {
		t.Errorf("Expected mutated line ref, got %q", mvj.LineRef)
	}
}

func TestBuildVehicleMonitoring_EmptySnapshot(t *testing.T) {
	resp := BuildVehicleMonitoring(&gtfsrt.Combined{Header: gtfsrt.Header{GTFSRealtimeVersion: "1.0"}}, Options{})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	vm := out["Siri"].(map[string]any)["ServiceDelivery"].(map[string]any)["VehicleMonitoringDelivery"].([]any)[0].(map[string]any)
	if activities, ok := vm["VehicleActivity"].([]any); !ok || len(activities) != 0 {
		t.Errorf("Expected empty VehicleActivity array, got %v", vm["VehicleActivity"])
	}
}

func TestApplyFieldMutators(t *testing.T) {
	mapping := []string{"A", "B", "C", "D", "odd"}
	tests := map[string]string{"A": "B", "C": "D", "X": "X", "odd": "odd"}
	for in, want := range tests {
		if got := applyFieldMutators(in, mapping); got != want {
			t.Errorf("applyFieldMutators(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapOccupancyStatus(t *testing.T) {
	tests := []struct {
		status gtfsrt.OccupancyStatus
		want   string
	}{
		{gtfsrt.Empty, "manySeatsAvailable"},
		{gtfsrt.ManySeatsAvailable, "manySeatsAvailable"},
		{gtfsrt.FewSeatsAvailable, "seatsAvailable"},
		{gtfsrt.StandingRoomOnly, "standingAvailable"},
		{gtfsrt.CrushedStandingRoomOnly, "standingAvailable"},
		{gtfsrt.Full, "full"},
		{gtfsrt.NotAcceptingPassengers, "notAcceptingPassengers"},
	}
	for _, tt := range tests {
		s := tt.status
		if got := mapOccupancyStatus(&s); got != tt.want {
			t.Errorf("mapOccupancyStatus(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
	if got := mapOccupancyStatus(nil); got != "" {
		t.Errorf("Absent occupancy should map to empty, got %q", got)
	}
}

func TestBuildVehicleMonitoring_UnversionedIdentifiers(t *testing.T) {
	tu, err := gtfsrt.Decode([]byte(`{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0"},"entity":[
		{"id":"noseparator","trip_update":{"trip":{"trip_id":"noseparator","route_id":"NX1"},
			"stop_time_update":{"stop_sequence":2,"stop_id":"7036"}}}]}}`))
	if err != nil {
		t.Fatalf("Failed to decode trip updates: %v", err)
	}
	vp, err := gtfsrt.Decode([]byte(`{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0"},"entity":[
		{"id":"V1","vehicle":{"trip":{"trip_id":"noseparator","route_id":"NX1"},"position":{"latitude":-36.8,"longitude":174.7}}}]}}`))
	if err != nil {
		t.Fatalf("Failed to decode vehicle positions: %v", err)
	}
	c, err := gtfsrt.Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	tests := []struct {
		name      string
		normalize bool
		journey   string
		line      string
		stop      string
	}{
		{name: "normalized", normalize: true},
		{name: "raw", normalize: false, journey: "AT:ServiceJourney:noseparator", line: "AT:Line:NX1", stop: "AT:Quay:7036"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := BuildVehicleMonitoring(c, Options{ProducerRef: "AT", NormalizeIDs: tt.normalize})
			mvj := resp.Siri.ServiceDelivery.VehicleMonitoringDelivery[0].VehicleActivity[0].MonitoredVehicleJourney

			journey := ""
			if mvj.FramedVehicleJourneyRef != nil {
				journey = mvj.FramedVehicleJourneyRef.DatedVehicleJourneyRef
			}
			if journey != tt.journey {
				t.Errorf("DatedVehicleJourneyRef = %q, want %q", journey, tt.journey)
			}
			if mvj.LineRef != tt.line {
				t.Errorf("LineRef = %q, want %q", mvj.LineRef, tt.line)
			}
			stop := ""
			if mvj.MonitoredCall != nil {
				stop = mvj.MonitoredCall.StopPointRef
			}
			if stop != tt.stop {
				t.Errorf("StopPointRef = %q, want %q", stop, tt.stop)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		id        string
		normalize bool
		want      string
	}{
		{"1140-20231009112233_v106.13", true, "1140"},
		{"1140-20231009112233_v106.13", false, "1140-20231009112233_v106.13"},
		{"noseparator", true, ""},
		{"noseparator", false, "noseparator"},
		{"", true, ""},
	}
	for _, tt := range tests {
		if got := identifier(tt.id, tt.normalize); got != tt.want {
			t.Errorf("identifier(%q, %v) = %q, want %q", tt.id, tt.normalize, got, tt.want)
		}
	}
}
