package pipeline

import (
	"github.com/snapscore/melodex/classify"
	"github.com/snapscore/melodex/config"
	"github.com/snapscore/melodex/model"
	"github.com/snapscore/melodex/sequence"
)

// ConvertDetections is the inference-free entry point: it takes
// detections produced elsewhere, applies the confidence threshold and
// the default duration, and classifies and sequences them. Both the
// convert command and the HTTP API go through here.
func ConvertDetections(cfg config.Config, detections []model.RawDetection) (model.Sequence, model.ConvertStats, error) {
	stats := model.ConvertStats{Received: len(detections)}

	var kept []model.RawDetection
	var confidenceSum float32
	for _, d := range detections {
		if d.Confidence < cfg.ConfidenceThreshold {
			continue
		}
		if d.DurationBeats <= 0 {
			d.DurationBeats = cfg.DefaultNoteDurationBeats()
		}
		kept = append(kept, d)
		confidenceSum += d.Confidence
	}
	stats.AboveThreshold = len(kept)
	if len(kept) > 0 {
		stats.MeanConfidence = confidenceSum / float32(len(kept))
	}

	notes := classify.ClassifyAll(kept)
	seq, err := sequence.Build(notes, cfg.TempoBPM)
	if err != nil {
		return model.Sequence{}, stats, err
	}
	return seq, stats, nil
}
