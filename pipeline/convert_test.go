package pipeline

import (
	"testing"

	"github.com/snapscore/melodex/config"
	"github.com/snapscore/melodex/model"
	"github.com/stretchr/testify/assert"
)

func TestConvertDetectionsFiltersAndDefaults(t *testing.T) {
	cfg := config.Default()
	dets := []model.RawDetection{
		{Pitch: 72, Confidence: 0.9, DurationBeats: 1},
		{Pitch: 60, Confidence: 0.2}, // below threshold
		{Pitch: 48, Confidence: 0.7}, // no duration hint
	}

	seq, stats, err := ConvertDetections(cfg, dets)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(3, stats.Received)
	assert.Equal(2, stats.AboveThreshold)
	assert.InDelta(0.8, float64(stats.MeanConfidence), 1e-6)

	assert.Equal(4, len(seq.Events))
	// default duration is 100 ms at 120 bpm, i.e. 0.2 beats
	assert.InDelta(1.2, seq.TotalDuration, 1e-9)
}

func TestConvertDetectionsEmpty(t *testing.T) {
	seq, stats, err := ConvertDetections(config.Default(), nil)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(0, stats.Received)
	assert.Empty(seq.Events)
	assert.Equal(0.0, seq.TotalDuration)
}
