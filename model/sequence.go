package model

// Sequence is the complete time-ordered, voice-partitioned set of events
// for one processed input. Built once by the sequence package; transforms
// return new values rather than mutating, so callers may share a Sequence
// freely once they have it.
type Sequence struct {
	TempoBPM float64

	// Events is ordered by time; at equal time an off sorts before an on,
	// remaining ties keep emission order.
	Events []Event

	// TotalDuration is the time of the last event, in beats. Zero for an
	// empty sequence.
	TotalDuration float64

	// VoiceEvents partitions Events by channel. Each sub-stream is a
	// filtered, order-preserving view of the full stream.
	VoiceEvents [NumVoices][]Event
}
