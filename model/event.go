package model

type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
)

func (k EventKind) String() string {
	if k == NoteOn {
		return "on"
	}
	return "off"
}

// Event is a single directed timing point. Events always occur in on/off
// pairs per note: every on has exactly one later-or-equal off with the
// same pitch and channel.
type Event struct {
	Kind     EventKind
	Pitch    uint8
	Velocity uint8
	// Time is in beats from sequence start.
	Time    float64
	Channel uint8
}
