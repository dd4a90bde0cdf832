package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/theoremus-urban-solutions/at-realtime/converter"
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

// Format selects how a snapshot is written.
type Format string

const (
	FormatJSON     Format = "json"
	FormatPretty   Format = "pretty"
	FormatProtobuf Format = "pb"
	FormatSiri     Format = "siri"
	FormatSiriXML  Format = "siri-xml"
)

// Formats lists every supported format, in the order shown in help text.
var Formats = []Format{FormatJSON, FormatPretty, FormatProtobuf, FormatSiri, FormatSiriXML}

// ParseFormat reads a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatProtobuf:
		return "application/x-protobuf"
	case FormatSiriXML:
		return "application/xml"
	case FormatPretty:
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Build encodes a snapshot in format f. opts only matter for the SIRI formats.
func Build(f Format, c *gtfsrt.Combined, opts converter.Options) ([]byte, error) {
	switch f {
	case FormatJSON:
		return BuildJSON(c)
	case FormatPretty:
		return BuildPretty(c), nil
	case FormatProtobuf:
		return gtfsrt.MarshalFeed(c)
	case FormatSiri:
		return BuildJSON(converter.BuildVehicleMonitoring(c, opts))
	case FormatSiriXML:
		res := converter.BuildVehicleMonitoring(c, opts)
		return BuildXML(&res), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// Write encodes a snapshot and writes it to w.
func Write(w io.Writer, f Format, c *gtfsrt.Combined, opts converter.Options) error {
	b, err := Build(f, c, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write %s output: %w", f, err)
	}
	return nil
}

// FromEnvelope presents a single decoded feed as a snapshot so it can be
// written in any format. No merge takes place.
func FromEnvelope(env *gtfsrt.Envelope) *gtfsrt.Combined {
	if env.Response == nil {
		return &gtfsrt.Combined{Entities: []gtfsrt.Entity{}}
	}
	return &gtfsrt.Combined{Header: env.Response.Header, Entities: env.Response.Entity}
}
