package siri

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil,omitempty"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                 string                   `json:"LineRef"`
	DirectionRef            string                   `json:"DirectionRef,omitempty"`
	FramedVehicleJourneyRef *FramedVehicleJourneyRef `json:"FramedVehicleJourneyRef,omitempty"`
	Monitored               bool                     `json:"Monitored"`
	DataSource              string                   `json:"DataSource"`
	VehicleLocation         *VehicleLocation         `json:"VehicleLocation,omitempty"`
	Bearing                 *float64                 `json:"Bearing,omitempty"`
	Velocity                *int                     `json:"Velocity,omitempty"` // km/h
	Occupancy               string                   `json:"Occupancy,omitempty"`
	Delay                   string                   `json:"Delay"` // ISO 8601 duration, "PT0S" when unknown
	InCongestion            *bool                    `json:"InCongestion,omitempty"`
	VehicleStatus           string                   `json:"VehicleStatus,omitempty"`
	VehicleRef              string                   `json:"VehicleRef"`
	MonitoredCall           *MonitoredCall           `json:"MonitoredCall,omitempty"`
	IsCompleteStopSequence  bool                     `json:"IsCompleteStopSequence"`
}

// FramedVehicleJourneyRef identifies the dated journey a vehicle is running
type FramedVehicleJourneyRef struct {
	DataFrameRef           string `json:"DataFrameRef"`
	DatedVehicleJourneyRef string `json:"DatedVehicleJourneyRef"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Longitude float64 `json:"Longitude"`
	Latitude  float64 `json:"Latitude"`
}

// MonitoredCall represents the stop the vehicle is at or heading to
type MonitoredCall struct {
	StopPointRef          string `json:"StopPointRef"`
	Order                 *int   `json:"Order,omitempty"`
	VehicleAtStop         *bool  `json:"VehicleAtStop,omitempty"`
	ExpectedArrivalTime   string `json:"ExpectedArrivalTime,omitempty"`
	ExpectedDepartureTime string `json:"ExpectedDepartureTime,omitempty"`
}
