package classify

import (
	"github.com/snapscore/melodex/model"
	"github.com/snapscore/melodex/util"
)

// voiceRange is one closed pitch range. The ranges overlap on purpose;
// evaluation order is the tie-break.
type voiceRange struct {
	voice model.Voice
	low   int
	high  int
}

// Evaluated top-down, first match wins. A pitch of 72 is soprano, a
// pitch of 60 is alto.
var voiceRanges = []voiceRange{
	{model.Soprano, 72, 96},
	{model.Alto, 60, 84},
	{model.Tenor, 48, 72},
	{model.Bass, 36, 60},
}

// voiceForPosition maps a vertical staff-line index to a voice, treble
// clef assumed. When a detection carries a position it wins outright over
// the pitch-range result.
func voiceForPosition(pos int) model.Voice {
	switch {
	case pos <= 2:
		return model.Soprano
	case pos <= 4:
		return model.Alto
	case pos <= 7:
		return model.Tenor
	default:
		return model.Bass
	}
}

// Classify assigns a detection to a voice. The function is total: an
// out-of-range pitch is clamped to [0,127] first and anything left
// unmatched falls through to bass, so a single bad detection can never
// fail the pipeline.
func Classify(d model.RawDetection) model.ClassifiedNote {
	d.Pitch = util.Clamp(d.Pitch, 0, 127)

	voice := model.Bass
	for _, r := range voiceRanges {
		if d.Pitch >= r.low && d.Pitch <= r.high {
			voice = r.voice
			break
		}
	}

	if d.Position != nil {
		voice = voiceForPosition(*d.Position)
	}

	return model.ClassifiedNote{
		RawDetection: d,
		Voice:        voice,
		Channel:      voice.Channel(),
	}
}

// ClassifyAll classifies each detection in order. Output length and order
// match the input.
func ClassifyAll(detections []model.RawDetection) []model.ClassifiedNote {
	res := make([]model.ClassifiedNote, 0, len(detections))
	for _, d := range detections {
		res = append(res, Classify(d))
	}
	return res
}
