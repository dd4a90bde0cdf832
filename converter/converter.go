package converter

import (
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
	"github.com/theoremus-urban-solutions/at-realtime/siri"
	"github.com/theoremus-urban-solutions/at-realtime/utils"
)

// BuildVehicleMonitoring projects a merged snapshot onto a complete SIRI VM
// response. Every merged entity with a vehicle becomes one VehicleActivity,
// in the snapshot's order.
func BuildVehicleMonitoring(c *gtfsrt.Combined, opts Options) siri.SiriResponse {
	timestamp := headerTimestamp(c.Header)
	responseTimestamp := utils.Iso8601FromUnixSeconds(timestamp)

	vm := siri.VehicleMonitoring{
		ResponseTimestamp: responseTimestamp,
		ValidUntil:        utils.ValidUntilFrom(timestamp, opts.ReadIntervalMS),
		VehicleActivity:   make([]siri.VehicleActivityEntry, 0, len(c.Entities)),
	}
	for i := range c.Entities {
		ent := &c.Entities[i]
		if ent.Vehicle == nil {
			continue
		}
		recorded := timestamp
		if ent.Vehicle.Timestamp != nil {
			recorded = int64(*ent.Vehicle.Timestamp)
		}
		vm.VehicleActivity = append(vm.VehicleActivity, siri.VehicleActivityEntry{
			RecordedAtTime:          utils.Iso8601FromUnixSeconds(recorded),
			ValidUntilTime:          utils.ValidUntilFrom(recorded, opts.ReadIntervalMS),
			MonitoredVehicleJourney: buildMVJ(ent, opts),
		})
	}

	return siri.SiriResponse{Siri: siri.SiriServiceDelivery{ServiceDelivery: siri.ServiceDelivery{
		ResponseTimestamp:         responseTimestamp,
		ProducerRef:               opts.ProducerRef,
		VehicleMonitoringDelivery: []siri.VehicleMonitoring{vm},
	}}}
}

func headerTimestamp(h gtfsrt.Header) int64 {
	if h.Timestamp == nil {
		return 0
	}
	return int64(*h.Timestamp)
}
