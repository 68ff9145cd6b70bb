package midi

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/snapscore/melodex/constants"
	"github.com/snapscore/melodex/model"
)

// Standard MIDI file framing: format 0, one track.
var headerMagic = []byte("MThd")
var trackMagic = []byte("MTrk")

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

// appendVLQ appends a variable-length quantity: base 128, 7 data bits per
// byte, most significant byte first, continuation bit set on every byte
// but the last.
func appendVLQ(buf []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}
	return append(buf, tmp[i:]...)
}

func statusByte(kind model.EventKind, channel uint8) byte {
	if kind == model.NoteOn {
		return 0x90 | channel
	}
	return 0x80 | channel
}

// encodeTrackData renders the track body: tempo meta-event at time zero,
// the note events with tick deltas, and the end-of-track meta-event.
func encodeTrackData(seq model.Sequence, ticksPerBeat uint16) ([]byte, error) {
	microsPerBeat := int64(math.Round(constants.MicrosPerMinute / seq.TempoBPM))
	if microsPerBeat <= 0 || microsPerBeat > 0xFFFFFF {
		return nil, model.Violationf("tempo %v does not fit a 3-byte tempo event", seq.TempoBPM)
	}

	var data []byte
	data = append(data, 0x00, 0xFF, 0x51, 0x03,
		byte(microsPerBeat>>16), byte(microsPerBeat>>8), byte(microsPerBeat))

	var prevTicks int64
	for _, e := range seq.Events {
		if e.Pitch > 127 {
			return nil, model.Violationf("pitch %v out of range", e.Pitch)
		}
		if e.Velocity > 127 {
			return nil, model.Violationf("velocity %v out of range", e.Velocity)
		}
		if e.Channel >= model.NumVoices {
			return nil, model.Violationf("channel %v out of range", e.Channel)
		}

		ticks := int64(math.Round(e.Time * float64(ticksPerBeat)))
		delta := ticks - prevTicks
		if delta < 0 {
			return nil, model.Violationf("negative delta at time %v, events not sorted", e.Time)
		}
		prevTicks = ticks

		data = appendVLQ(data, uint32(delta))
		data = append(data, statusByte(e.Kind, e.Channel), e.Pitch, e.Velocity)
	}

	data = append(data, endOfTrack...)
	return data, nil
}

// Encode serializes a sequence into a standard MIDI file: an MThd header
// chunk followed by a single MTrk chunk. Output is a deterministic
// function of the sequence. Out-of-range pitch or velocity and unsorted
// events are contract violations, not things to clamp: they mean an
// upstream invariant already broke.
func Encode(seq model.Sequence, ticksPerBeat uint16) ([]byte, error) {
	if seq.TempoBPM <= 0 {
		return nil, model.Violationf("tempo must be positive, got %v", seq.TempoBPM)
	}
	if ticksPerBeat == 0 {
		return nil, model.Violationf("ticks per beat must be positive")
	}

	trackData, err := encodeTrackData(seq, ticksPerBeat)
	if err != nil {
		return nil, err
	}

	// track body is buffered above so the length prefix is exact
	buf := new(bytes.Buffer)
	buf.Write(headerMagic)
	binary.Write(buf, binary.BigEndian, uint32(6))
	binary.Write(buf, binary.BigEndian, uint16(0)) // format 0
	binary.Write(buf, binary.BigEndian, uint16(1)) // one track
	binary.Write(buf, binary.BigEndian, ticksPerBeat)

	buf.Write(trackMagic)
	binary.Write(buf, binary.BigEndian, uint32(len(trackData)))
	buf.Write(trackData)

	return buf.Bytes(), nil
}
