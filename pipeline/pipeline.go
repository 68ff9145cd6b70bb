package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/snapscore/melodex/classify"
	"github.com/snapscore/melodex/config"
	"github.com/snapscore/melodex/infer"
	"github.com/snapscore/melodex/model"
	"github.com/snapscore/melodex/sequence"
	"github.com/snapscore/melodex/util"
	"github.com/viterin/vek/vek32"
)

// progress callbacks are debounced so a fast run doesn't flood the
// caller with per-batch updates
const progressInterval = 100 * time.Millisecond

type ProgressFunc func(state model.RunState, batchesDone int, batchesTotal int)

// Orchestrator drives one run at a time through preprocessing,
// inference, classification and sequencing. It owns nothing but
// run-scoped state; callers wanting overlapping runs are responsible for
// their own isolation.
type Orchestrator struct {
	cfg       config.Config
	extractor infer.Extractor
	engine    infer.Engine

	progress  ProgressFunc
	debounced func(func())

	state     atomic.Int32
	cancelled atomic.Bool
}

// NewOrchestrator wires a run pipeline over the given collaborators.
// progress may be nil.
func NewOrchestrator(cfg config.Config, extractor infer.Extractor, engine infer.Engine, progress ProgressFunc) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		engine:    engine,
		progress:  progress,
		debounced: debounce.New(progressInterval),
	}
}

// Cancel is safe to call concurrently with Run. It is cooperative: it
// takes effect at the next stage or batch boundary, and a batch already
// dispatched to the engine runs to completion.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

func (o *Orchestrator) State() model.RunState {
	return model.RunState(o.state.Load())
}

func (o *Orchestrator) setState(s model.RunState) {
	o.state.Store(int32(s))
}

func (o *Orchestrator) reportProgress(state model.RunState, done int, total int) {
	if o.progress == nil {
		return
	}
	o.debounced(func() {
		o.progress(state, done, total)
	})
}

// checkCancelled observes the cancellation flag at a stage boundary and
// moves the run to its terminal state if set.
func (o *Orchestrator) checkCancelled(res *model.PipelineResult) bool {
	if !o.cancelled.Load() {
		return false
	}
	o.setState(model.StateCancelled)
	res.State = model.StateCancelled
	return true
}

func meanConfidence(confidences []float32) float32 {
	if len(confidences) == 0 {
		return 0
	}
	return vek32.Mean(confidences)
}

// Run processes one source image end to end: extract tiles, infer in
// batches, classify the surviving detections and build the sequence. A
// failed batch is recorded in the statistics and skipped, never
// propagated; a non-ready engine aborts before any batch is dispatched.
// Cancellation yields a cancelled result with partial statistics, not an
// error.
func (o *Orchestrator) Run(ctx context.Context, image string) (*model.PipelineResult, error) {
	if o.engine == nil || !o.engine.Ready() {
		o.setState(model.StateError)
		return nil, infer.ErrNotReady
	}

	o.cancelled.Store(false)
	res := &model.PipelineResult{RunID: uuid.New().String()}

	o.setState(model.StatePreprocessing)
	if o.checkCancelled(res) {
		return res, nil
	}

	tiles, err := o.extractor.Extract(ctx, image)
	if err != nil {
		o.setState(model.StateError)
		res.State = model.StateError
		return res, fmt.Errorf("feature extraction failed: %w", err)
	}

	o.setState(model.StateInferring)
	numBatches := (len(tiles) + o.cfg.BatchSize - 1) / o.cfg.BatchSize
	var detections []model.RawDetection
	var confidences []float32

	for b := 0; b < numBatches; b++ {
		if o.checkCancelled(res) {
			res.Stats.MeanConfidence = meanConfidence(confidences)
			return res, nil
		}

		start := b * o.cfg.BatchSize
		end := util.Min(start+o.cfg.BatchSize, len(tiles))
		batch := tiles[start:end]

		scores, err := o.engine.Infer(ctx, batch)
		if err != nil {
			res.Stats.BatchFailures = append(res.Stats.BatchFailures, model.BatchFailure{
				BatchNum: b,
				Reason:   err.Error(),
			})
			o.reportProgress(model.StateInferring, b+1, numBatches)
			continue
		}

		for i, vec := range scores {
			res.Stats.TilesConsidered++
			if len(vec) == 0 {
				continue
			}
			best := vek32.ArgMax(vec)
			conf := vec[best]
			if conf < o.cfg.ConfidenceThreshold {
				continue
			}
			res.Stats.TilesAboveThreshold++
			confidences = append(confidences, conf)

			tile := batch[i]
			ts := float64(tile.Seq)
			det := model.RawDetection{
				Pitch:         infer.PitchForIndex(best),
				Confidence:    conf,
				DurationBeats: o.cfg.DefaultNoteDurationBeats(),
				Timestamp:     &ts,
			}
			if tile.Row >= 0 {
				row := tile.Row
				det.Position = &row
			}
			detections = append(detections, det)
		}
		o.reportProgress(model.StateInferring, b+1, numBatches)
	}
	res.Stats.MeanConfidence = meanConfidence(confidences)

	if o.checkCancelled(res) {
		return res, nil
	}

	// from here the run goes to completion; classification and
	// sequencing are fast enough that cancellation no longer applies
	o.setState(model.StateClassifying)
	res.Notes = classify.ClassifyAll(detections)
	res.Stats.NotesDetected = len(res.Notes)

	o.setState(model.StateSequencing)
	seq, err := sequence.Build(res.Notes, o.cfg.TempoBPM)
	if err != nil {
		o.setState(model.StateError)
		res.State = model.StateError
		return res, err
	}
	res.Sequence = seq

	o.setState(model.StateDone)
	res.State = model.StateDone
	return res, nil
}
