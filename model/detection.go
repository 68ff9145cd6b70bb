package model

// Voice is one of the four fixed vocal parts a note gets assigned to.
type Voice uint8

const (
	Soprano Voice = iota
	Alto
	Tenor
	Bass
)

const NumVoices = 4

// Channel returns the fixed channel for a voice. The mapping is a
// system-wide constant, never configurable per call.
func (v Voice) Channel() uint8 {
	return uint8(v)
}

func (v Voice) String() string {
	switch v {
	case Soprano:
		return "soprano"
	case Alto:
		return "alto"
	case Tenor:
		return "tenor"
	case Bass:
		return "bass"
	}
	return "unknown"
}

// RawDetection is one candidate pitch observation as produced by the
// inference stage, before any voice assignment.
type RawDetection struct {
	// Pitch is a note number, nominally 0-127. Out-of-range values are
	// clamped during classification, never rejected.
	Pitch int `json:"pitch"`

	Confidence float32 `json:"confidence"`

	// DurationBeats is the note length in beats. Zero means "use the
	// configured default"; the ms-to-beats conversion happens at the
	// ingestion boundary, not here.
	DurationBeats float64 `json:"duration_beats,omitempty"`

	// Position is the vertical staff-line index, when the detector knows
	// it. It overrides the pitch-range classification entirely.
	Position *int `json:"position,omitempty"`

	// Timestamp orders detections in beats from the start of the source.
	// Detections without one sort as zero and keep their input order.
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// ClassifiedNote is a RawDetection with its voice and channel decided.
// Created only by the classifier and never mutated afterward.
type ClassifiedNote struct {
	RawDetection
	Voice   Voice `json:"voice"`
	Channel uint8 `json:"channel"`
}
