package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/at-realtime/siri"
)

// BuildXML serializes a SIRI VM response to XML
func BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">`)
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeElem(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeElem(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString(`<VehicleMonitoringDelivery version="2.0">`)
	writeElem(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeElem(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeElem(b, "RecordedAtTime", va.RecordedAtTime)
		writeElem(b, "ValidUntilTime", va.ValidUntilTime)
		writeMVJXML(b, va.MonitoredVehicleJourney)
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

// writeMVJXML emits the journey in SIRI element order.
func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeElem(b, "LineRef", mvj.LineRef)
	writeElem(b, "DirectionRef", mvj.DirectionRef)
	if fr := mvj.FramedVehicleJourneyRef; fr != nil {
		b.WriteString("<FramedVehicleJourneyRef>")
		writeElem(b, "DataFrameRef", fr.DataFrameRef)
		writeElem(b, "DatedVehicleJourneyRef", fr.DatedVehicleJourneyRef)
		b.WriteString("</FramedVehicleJourneyRef>")
	}
	writeElem(b, "Monitored", strconv.FormatBool(mvj.Monitored))
	if mvj.InCongestion != nil {
		writeElem(b, "InCongestion", strconv.FormatBool(*mvj.InCongestion))
	}
	writeElem(b, "DataSource", mvj.DataSource)
	if loc := mvj.VehicleLocation; loc != nil {
		b.WriteString("<VehicleLocation>")
		writeElem(b, "Longitude", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
		writeElem(b, "Latitude", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
		b.WriteString("</VehicleLocation>")
	}
	if mvj.Bearing != nil {
		writeElem(b, "Bearing", strconv.FormatFloat(*mvj.Bearing, 'f', 2, 64))
	}
	if mvj.Velocity != nil {
		writeElem(b, "Velocity", strconv.Itoa(*mvj.Velocity))
	}
	writeElem(b, "Occupancy", mvj.Occupancy)
	writeElem(b, "Delay", mvj.Delay)
	writeElem(b, "VehicleStatus", mvj.VehicleStatus)
	writeElem(b, "VehicleRef", mvj.VehicleRef)
	if mc := mvj.MonitoredCall; mc != nil {
		b.WriteString("<MonitoredCall>")
		writeElem(b, "StopPointRef", mc.StopPointRef)
		if mc.Order != nil {
			writeElem(b, "Order", strconv.Itoa(*mc.Order))
		}
		if mc.VehicleAtStop != nil {
			writeElem(b, "VehicleAtStop", strconv.FormatBool(*mc.VehicleAtStop))
		}
		writeElem(b, "ExpectedArrivalTime", mc.ExpectedArrivalTime)
		writeElem(b, "ExpectedDepartureTime", mc.ExpectedDepartureTime)
		b.WriteString("</MonitoredCall>")
	}
	writeElem(b, "IsCompleteStopSequence", strconv.FormatBool(mvj.IsCompleteStopSequence))
	b.WriteString("</MonitoredVehicleJourney>")
}

// writeElem writes <name>value</name>, skipping empty values.
func writeElem(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<" + name + ">")
	b.WriteString(xmlEscape(value))
	b.WriteString("</" + name + ">")
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

// BuildErrorXML renders msg as a SIRI ErrorCondition.
func BuildErrorXML(msg string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">`)
	b.WriteString("<ServiceDelivery><ErrorCondition>")
	writeElem(&b, "Description", msg)
	b.WriteString("</ErrorCondition></ServiceDelivery></Siri>")
	return []byte(b.String())
}
