package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/snapscore/melodex/config"
	"github.com/snapscore/melodex/infer"
	"github.com/snapscore/melodex/model"
	"github.com/stretchr/testify/assert"
)

type fakeExtractor struct {
	tiles []infer.Tile
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, image string) ([]infer.Tile, error) {
	return f.tiles, f.err
}

// fakeEngine scores every tile with a single confident pitch, failing
// whole batches by batch number when told to.
type fakeEngine struct {
	ready      bool
	failOn     map[int]bool
	confidence float32
	pitchIndex int
	calls      int
	onInfer    func()
}

func (f *fakeEngine) Ready() bool { return f.ready }

func (f *fakeEngine) Infer(ctx context.Context, tiles []infer.Tile) ([][]float32, error) {
	batchNum := f.calls
	f.calls++
	if f.onInfer != nil {
		f.onInfer()
	}
	if f.failOn[batchNum] {
		return nil, errors.New("model crashed")
	}
	res := make([][]float32, len(tiles))
	for i := range tiles {
		vec := make([]float32, 61)
		vec[f.pitchIndex] = f.confidence
		res[i] = vec
	}
	return res, nil
}

func makeTiles(n int) []infer.Tile {
	tiles := make([]infer.Tile, n)
	for i := range tiles {
		tiles[i] = infer.Tile{Features: []float32{0}, Row: -1, Seq: i}
	}
	return tiles
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.BatchSize = 32
	return cfg
}

func TestRunNotReady(t *testing.T) {
	o := NewOrchestrator(testConfig(), &fakeExtractor{}, &fakeEngine{ready: false}, nil)
	_, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.ErrorIs(err, infer.ErrNotReady)
	assert.Equal(model.StateError, o.State())
}

func TestRunHappyPath(t *testing.T) {
	engine := &fakeEngine{ready: true, confidence: 0.9, pitchIndex: 36} // pitch 72
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: makeTiles(10)}, engine, nil)

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(model.StateDone, res.State)
	assert.Equal(model.StateDone, o.State())
	assert.NotEmpty(res.RunID)
	assert.Equal(10, res.Stats.TilesConsidered)
	assert.Equal(10, res.Stats.TilesAboveThreshold)
	assert.Equal(10, res.Stats.NotesDetected)
	assert.InDelta(0.9, float64(res.Stats.MeanConfidence), 1e-6)
	assert.Empty(res.Stats.BatchFailures)

	assert.Equal(10, len(res.Notes))
	for _, n := range res.Notes {
		assert.Equal(72, n.Pitch)
		assert.Equal(model.Soprano, n.Voice)
	}
	assert.Equal(20, len(res.Sequence.Events))
}

func TestRunSkipsFailedBatchAndContinues(t *testing.T) {
	engine := &fakeEngine{
		ready:      true,
		confidence: 0.8,
		pitchIndex: 0, // pitch 36
		failOn:     map[int]bool{1: true},
	}
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: makeTiles(96)}, engine, nil)

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(model.StateDone, res.State)
	assert.Equal(3, engine.calls)
	// the middle batch is lost, the other two survive
	assert.Equal(64, res.Stats.TilesConsidered)
	assert.Equal(64, res.Stats.NotesDetected)
	assert.Equal(1, len(res.Stats.BatchFailures))
	assert.Equal(1, res.Stats.BatchFailures[0].BatchNum)
	assert.Contains(res.Stats.BatchFailures[0].Reason, "model crashed")
}

func TestRunFiltersBelowThreshold(t *testing.T) {
	engine := &fakeEngine{ready: true, confidence: 0.3, pitchIndex: 10}
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: makeTiles(5)}, engine, nil)

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(5, res.Stats.TilesConsidered)
	assert.Equal(0, res.Stats.TilesAboveThreshold)
	assert.Equal(0, res.Stats.NotesDetected)
	assert.Empty(res.Sequence.Events)
}

func TestRunExtractionFailureIsFatal(t *testing.T) {
	engine := &fakeEngine{ready: true, confidence: 0.9}
	o := NewOrchestrator(testConfig(), &fakeExtractor{err: errors.New("bad image")}, engine, nil)

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.Error(err)
	assert.Equal(model.StateError, res.State)
	assert.Equal(0, engine.calls)
}

func TestCancelObservedAtBatchBoundary(t *testing.T) {
	engine := &fakeEngine{ready: true, confidence: 0.9, pitchIndex: 20}
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: makeTiles(96)}, engine, nil)
	// cancel during the first inference call; the flag is picked up at
	// the next batch boundary
	engine.onInfer = func() { o.Cancel() }

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(model.StateCancelled, res.State)
	assert.Equal(model.StateCancelled, o.State())
	assert.Equal(1, engine.calls)
	// partial statistics survive cancellation
	assert.Equal(32, res.Stats.TilesConsidered)
	assert.Empty(res.Notes)
}

func TestRunAfterCancelStartsFresh(t *testing.T) {
	engine := &fakeEngine{ready: true, confidence: 0.9, pitchIndex: 20}
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: makeTiles(4)}, engine, nil)

	o.Cancel()
	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(model.StateDone, res.State)
}

func TestRunAssignsTimestampsFromTileOrder(t *testing.T) {
	engine := &fakeEngine{ready: true, confidence: 0.9, pitchIndex: 0}
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: makeTiles(3)}, engine, nil)

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	for i, n := range res.Notes {
		if assert.NotNil(n.Timestamp) {
			assert.Equal(float64(i), *n.Timestamp)
		}
	}
}

func TestRunUsesTileRowAsPosition(t *testing.T) {
	tiles := makeTiles(2)
	tiles[0].Row = 2
	engine := &fakeEngine{ready: true, confidence: 0.9, pitchIndex: 0} // pitch 36
	o := NewOrchestrator(testConfig(), &fakeExtractor{tiles: tiles}, engine, nil)

	res, err := o.Run(context.Background(), "score.png")

	assert := assert.New(t)
	assert.NoError(err)
	// position 2 overrides the bass pitch range
	assert.Equal(model.Soprano, res.Notes[0].Voice)
	assert.Equal(model.Bass, res.Notes[1].Voice)
	assert.Nil(res.Notes[1].Position)
}
