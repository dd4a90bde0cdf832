package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// APIConfig contains the realtime API connection settings
type APIConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	APIKey    string `yaml:"apiKey"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// FeedsConfig contains the endpoint paths of the two realtime feeds
type FeedsConfig struct {
	TripUpdatesPath      string `yaml:"tripUpdatesPath" validate:"omitempty,startswith=/"`
	VehiclePositionsPath string `yaml:"vehiclePositionsPath" validate:"omitempty,startswith=/"`
}

// MergeConfig controls how trip updates are joined onto vehicles
type MergeConfig struct {
	JoinBy       string `yaml:"joinBy" validate:"omitempty,oneof=tripId trip_id entityId entity_id"`
	NormalizeIDs bool   `yaml:"normalizeIds"`
}

// PollerConfig contains the background refresh settings
type PollerConfig struct {
	ReadIntervalMS int `yaml:"readIntervalMS" validate:"gte=0"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `yaml:"pretty"`
}

// FieldMutators remap SIRI references. Each list holds from,to pairs.
type FieldMutators struct {
	StopPointRef []string `yaml:"StopPointRef"`
	LineRef      []string `yaml:"LineRef"`
}

// SiriConfig contains SIRI projection settings
type SiriConfig struct {
	ProducerRef   string        `yaml:"producerRef"`
	FieldMutators FieldMutators `yaml:"fieldMutators"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Feeds   FeedsConfig   `yaml:"feeds"`
	Merge   MergeConfig   `yaml:"merge"`
	Poller  PollerConfig  `yaml:"poller"`
	Logging LoggingConfig `yaml:"logging"`
	Siri    SiriConfig    `yaml:"siri"`
}
