package model

// RunState tracks where a pipeline run is. A run moves forward through
// the states in order; error is reachable from any stage and cancelled
// only from preprocessing/inferring.
type RunState int32

const (
	StateIdle RunState = iota
	StatePreprocessing
	StateInferring
	StateClassifying
	StateSequencing
	StateDone
	StateError
	StateCancelled
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreprocessing:
		return "preprocessing"
	case StateInferring:
		return "inferring"
	case StateClassifying:
		return "classifying"
	case StateSequencing:
		return "sequencing"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// BatchFailure records one recoverable inference failure. The run keeps
// going; the failure only shows up here.
type BatchFailure struct {
	BatchNum int    `json:"batch_num"`
	Reason   string `json:"reason"`
}

type RunStats struct {
	TilesConsidered     int            `json:"tiles_considered"`
	TilesAboveThreshold int            `json:"tiles_above_threshold"`
	NotesDetected       int            `json:"notes_detected"`
	MeanConfidence      float32        `json:"mean_confidence"`
	BatchFailures       []BatchFailure `json:"batch_failures,omitempty"`
}

// PipelineResult is what one run hands back. Notes and Sequence are
// immutable once returned; callers may share them read-only.
type PipelineResult struct {
	RunID    string
	State    RunState
	Notes    []ClassifiedNote
	Sequence Sequence
	Stats    RunStats
}
