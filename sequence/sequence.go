package sequence

import (
	"math"
	"sort"

	"github.com/snapscore/melodex/constants"
	"github.com/snapscore/melodex/model"
)

// MinDurationBeats replaces non-positive duration hints so every on event
// gets a strictly later off event.
const MinDurationBeats = 1e-6

func timestampOrZero(n model.ClassifiedNote) float64 {
	if n.Timestamp == nil {
		return 0
	}
	return *n.Timestamp
}

// velocityFor scales a detection confidence into [1,127]. A detection
// with no usable confidence gets the default velocity.
func velocityFor(confidence float32) uint8 {
	if confidence <= 0 {
		return constants.DefaultVelocity
	}
	v := math.Round(float64(confidence) * 127)
	if v < 1 {
		v = 1
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}

// sortEvents orders events by time; at equal time an off sorts before an
// on, remaining ties keep their current order.
func sortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].Kind == model.NoteOff && events[j].Kind == model.NoteOn
	})
}

func partition(events []model.Event) [model.NumVoices][]model.Event {
	var byVoice [model.NumVoices][]model.Event
	for _, e := range events {
		if e.Channel < model.NumVoices {
			byVoice[e.Channel] = append(byVoice[e.Channel], e)
		}
	}
	return byVoice
}

// Build lays the classified notes out as a monophonic sequence: notes are
// sorted by timestamp (stable, missing timestamps count as zero) and then
// placed back to back, each note's off event becoming the next note's on
// time. Notes are never overlapped; that is a property of the detected
// stream, not a limitation to fix here.
func Build(notes []model.ClassifiedNote, tempoBPM float64) (model.Sequence, error) {
	if tempoBPM <= 0 {
		return model.Sequence{}, model.Violationf("tempo must be positive, got %v", tempoBPM)
	}

	sorted := make([]model.ClassifiedNote, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return timestampOrZero(sorted[i]) < timestampOrZero(sorted[j])
	})

	events := make([]model.Event, 0, 2*len(sorted))
	var currentTime float64
	for _, n := range sorted {
		dur := n.DurationBeats
		if dur <= 0 {
			dur = MinDurationBeats
		}
		pitch := uint8(n.Pitch)
		events = append(events,
			model.Event{Kind: model.NoteOn, Pitch: pitch, Velocity: velocityFor(n.Confidence), Time: currentTime, Channel: n.Channel},
			model.Event{Kind: model.NoteOff, Pitch: pitch, Velocity: 0, Time: currentTime + dur, Channel: n.Channel},
		)
		currentTime += dur
	}

	sortEvents(events)

	var total float64
	if len(events) > 0 {
		total = events[len(events)-1].Time
	}

	return model.Sequence{
		TempoBPM:      tempoBPM,
		Events:        events,
		TotalDuration: total,
		VoiceEvents:   partition(events),
	}, nil
}

// WithTempo rescales a sequence to a new tempo, preserving the musical
// content: event times scale by oldBPM/newBPM so the same beats play
// slower or faster. Returns a new sequence; the input is untouched.
func WithTempo(seq model.Sequence, newBPM float64) (model.Sequence, error) {
	if newBPM <= 0 {
		return model.Sequence{}, model.Violationf("tempo must be positive, got %v", newBPM)
	}

	scale := seq.TempoBPM / newBPM
	events := make([]model.Event, len(seq.Events))
	for i, e := range seq.Events {
		e.Time *= scale
		events[i] = e
	}

	return model.Sequence{
		TempoBPM:      newBPM,
		Events:        events,
		TotalDuration: seq.TotalDuration * scale,
		VoiceEvents:   partition(events),
	}, nil
}

// WithVoiceMuted zeroes the velocity of every event on the voice's
// channel. Timing is untouched; muting affects loudness, not scheduling.
func WithVoiceMuted(seq model.Sequence, voice model.Voice) model.Sequence {
	ch := voice.Channel()
	events := make([]model.Event, len(seq.Events))
	for i, e := range seq.Events {
		if e.Channel == ch {
			e.Velocity = 0
		}
		events[i] = e
	}

	return model.Sequence{
		TempoBPM:      seq.TempoBPM,
		Events:        events,
		TotalDuration: seq.TotalDuration,
		VoiceEvents:   partition(events),
	}
}

// EventsForVoice returns a copy of one voice's sub-stream.
func EventsForVoice(seq model.Sequence, voice model.Voice) []model.Event {
	src := seq.VoiceEvents[voice.Channel()]
	events := make([]model.Event, len(src))
	copy(events, src)
	return events
}

// EventsForVoices merges the requested sub-streams and re-sorts by time.
func EventsForVoices(seq model.Sequence, voices []model.Voice) []model.Event {
	var events []model.Event
	for _, v := range voices {
		events = append(events, seq.VoiceEvents[v.Channel()]...)
	}
	sortEvents(events)
	return events
}
