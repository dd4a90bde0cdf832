package formatter

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/at-realtime/converter"
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

func testSnapshot(t *testing.T) *gtfsrt.Combined {
	t.Helper()
	tu, err := gtfsrt.Decode([]byte(`{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0","timestamp":1697000000},"entity":[
		{"id":"T1","trip_update":{"trip":{"trip_id":"T1-v2","route_id":"R&D-1"},"delay":30}}]}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	vp, err := gtfsrt.Decode([]byte(`{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0"},"entity":[
		{"id":"V1","vehicle":{"trip":{"trip_id":"T1-v2","route_id":"R&D-1"},"position":{"latitude":-36.8,"longitude":174.7,"bearing":90},"vehicle":{"id":"V1"}}}]}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	c, err := gtfsrt.Merge(tu, vp)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	return c
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = (%q, %v)", f, got, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestBuild_JSON(t *testing.T) {
	b, err := Build(FormatJSON, testSnapshot(t), converter.Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var out struct {
		Header struct {
			Version string `json:"gtfs_realtime_version"`
		} `json:"header"`
		Entity []struct {
			ID         string `json:"id"`
			TripUpdate struct {
				Delay int `json:"delay"`
			} `json:"trip_update"`
		} `json:"entity"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if out.Header.Version != "1.0" || len(out.Entity) != 1 || out.Entity[0].ID != "V1" || out.Entity[0].TripUpdate.Delay != 30 {
		t.Errorf("Unexpected JSON output: %s", b)
	}
	if strings.Contains(string(b), "Stats") || strings.Contains(string(b), "Merged") {
		t.Error("Merge stats must not be serialized")
	}
}

func TestBuild_Protobuf(t *testing.T) {
	b, err := Build(FormatProtobuf, testSnapshot(t), converter.Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		t.Fatalf("Output is not a FeedMessage: %v", err)
	}
	if len(fm.GetEntity()) != 1 || fm.GetEntity()[0].GetTripUpdate().GetDelay() != 30 {
		t.Errorf("Unexpected feed message: %v", &fm)
	}
}

func TestBuild_Pretty(t *testing.T) {
	b, err := Build(FormatPretty, testSnapshot(t), converter.Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out := string(b)
	for _, want := range []string{"gtfsrt.Combined", `ID:`, `"V1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Pretty output missing %q:\n%s", want, out)
		}
	}
}

func TestBuild_Siri(t *testing.T) {
	b, err := Build(FormatSiri, testSnapshot(t), converter.Options{ProducerRef: "AT"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(string(b), `"VehicleRef": "AT:VehicleRef:V1"`) {
		t.Errorf("Unexpected SIRI JSON output: %s", b)
	}
}

func TestBuild_SiriXML(t *testing.T) {
	b, err := Build(FormatSiriXML, testSnapshot(t), converter.Options{ProducerRef: "AT"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// must be well formed
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("Output is not well-formed XML: %v\n%s", err, b)
		}
	}

	out := string(b)
	for _, want := range []string{
		"<LineRef>AT:Line:R&amp;D-1</LineRef>",
		"<Delay>PT30S</Delay>",
		"<Bearing>90.00</Bearing>",
		"<Monitored>true</Monitored>",
		"<IsCompleteStopSequence>false</IsCompleteStopSequence>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("XML output missing %q", want)
		}
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, testSnapshot(t), converter.Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("JSON output should end with a newline")
	}
	if err := Write(&buf, Format("csv"), testSnapshot(t), converter.Options{}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestFromEnvelope(t *testing.T) {
	env, err := gtfsrt.Decode([]byte(`{"status":"OK","response":{"header":{"gtfs_realtime_version":"1.0"},"entity":[{"id":"a"},{"id":"b"}]}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	c := FromEnvelope(env)
	if len(c.Entities) != 2 || c.Header.GTFSRealtimeVersion != "1.0" {
		t.Errorf("Unexpected snapshot: %+v", c)
	}
	if got := FromEnvelope(&gtfsrt.Envelope{Status: "Error"}); len(got.Entities) != 0 {
		t.Error("Envelope without response should give an empty snapshot")
	}
}

func TestContentType(t *testing.T) {
	tests := map[Format]string{
		FormatJSON:     "application/json",
		FormatSiri:     "application/json",
		FormatProtobuf: "application/x-protobuf",
		FormatSiriXML:  "application/xml",
	}
	for f, want := range tests {
		if got := f.ContentType(); got != want {
			t.Errorf("%s.ContentType() = %q, want %q", f, got, want)
		}
	}
}
