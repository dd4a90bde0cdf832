// Package formatter serializes merged realtime snapshots.
//
// This package is organized into:
// - wrapper.go: format selection and dispatch
// - json.go: JSON serialization
// - pretty.go: Go-syntax dump for terminals
// - xml.go: SIRI VM XML serialization with proper escaping
//
// Protobuf output is produced by gtfsrt.MarshalFeed. SIRI XML is written by
// hand for precise control over element order.
package formatter
