package constants

import "os"

func GetListenAddr() string {
	addr := os.Getenv("SERVE_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

// MinPitch and MaxPitch bound the pitch range the inference model scores
// over. Index 0 of a confidence vector maps to MinPitch, ascending one
// semitone per index, wrapping past MaxPitch.
const MinPitch = 36
const MaxPitch = 96

// DefaultVelocity is used for note-ons when a detection carries no usable
// confidence.
const DefaultVelocity = 96

const DefaultTicksPerBeat = 480

const MicrosPerMinute = 60_000_000
