package orchestrator

import "time"

// State is the interface that all job states must implement
type State interface {
	Name() string
}

// Helper to track state transitions for testing
type StateRecorder struct {
	path []string
}

func NewStateRecorder() *StateRecorder {
	return &StateRecorder{path: make([]string, 0)}
}

func (r *StateRecorder) Record(state State) {
	r.path = append(r.path, state.Name())
}

func (r *StateRecorder) Path() []string {
	return r.path
}

// Phase timing boundaries (stored separately from states)
type PhaseTiming struct {
	SubmittedAt       time.Time
	BackendReadyAt    time.Time
	AnalysisStartedAt time.Time
	CompletedAt       time.Time
}

// StageIndex maps a state to the progress stage reported on the handle.
// Scanning and Simulating share a stage because a job passes through one
// or the other, never both. Idle and the terminal states report no stage.
func StageIndex(s State) int {
	switch s.(type) {
	case *PreparingState:
		return 0
	case *ConfiguringDriverState:
		return 1
	case *ConfiguringReceiverState:
		return 2
	case *ScanningState, *SimulatingState:
		return 3
	case *ReportingState:
		return 4
	default:
		return -1
	}
}
