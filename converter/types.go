package converter

// Options contains everything needed to project merged realtime data onto SIRI.
type Options struct {
	// ProducerRef is the codespace used in SIRI references like
	// {codespace}:Line:{route_id}. Leave empty to emit bare identifiers.
	ProducerRef string

	// ReadIntervalMS is the refresh interval in milliseconds.
	// Used to calculate ValidUntil timestamps in SIRI responses.
	ReadIntervalMS int64

	// NormalizeIDs strips the version suffix from trip, route and stop ids
	// before they are used in references.
	NormalizeIDs bool

	// FieldMutators defines string replacement rules for SIRI references.
	FieldMutators FieldMutators
}

// FieldMutators defines string replacement rules for SIRI reference fields.
// Format: [from1, to1, from2, to2, ...] - pairs of old/new values, applied to
// the identifier before the codespace prefix is added.
//
// Example:
//
//	FieldMutators{
//	    StopPointRef: []string{"7036", "7036A"},
//	}
type FieldMutators struct {
	StopPointRef []string
	LineRef      []string
}
