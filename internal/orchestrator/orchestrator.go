// Package orchestrator runs signal-integrity analysis jobs through a typed
// state machine. One job is in flight at a time; progress and messages are
// published on buffered channels that never block the worker, and the
// terminal result is always delivered.
package orchestrator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/livinlefevreloca/netprep/internal/cct"
)

// signalBuffer sizes the progress and message channels. Five stages fit
// with room to spare, so an unconsumed handle still sees every stage.
const signalBuffer = 8

// Orchestrator accepts analysis jobs and runs them one at a time.
type Orchestrator struct {
	factory Factory
	logger  *slog.Logger

	busy atomic.Bool
	wg   sync.WaitGroup

	// Optional state recorder for testing
	recorder *StateRecorder
}

// New creates an orchestrator that builds backends with the given factory.
func New(factory Factory, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		factory: factory,
		logger:  logger,
	}
}

// DefaultFactory builds the bundled cct engine.
func DefaultFactory(logger *slog.Logger) Factory {
	return func(spec cct.Spec) (Backend, error) {
		return cct.New(spec, logger)
	}
}

// Handle follows a submitted job. Progress carries stage indexes and
// Messages stage descriptions; both may drop signals if the consumer
// lags. Done carries the terminal result and never drops.
type Handle struct {
	RunID    string
	Progress <-chan int
	Messages <-chan string
	Done     <-chan Result

	stats *SignalStats
}

// SignalStats counts signal deliveries and drops for a job
type SignalStats struct {
	ProgressSent    int64
	ProgressDropped int64
	MessagesSent    int64
	MessagesDropped int64
}

// Stats returns a copy of the current signal statistics
func (h *Handle) Stats() SignalStats {
	return SignalStats{
		ProgressSent:    atomic.LoadInt64(&h.stats.ProgressSent),
		ProgressDropped: atomic.LoadInt64(&h.stats.ProgressDropped),
		MessagesSent:    atomic.LoadInt64(&h.stats.MessagesSent),
		MessagesDropped: atomic.LoadInt64(&h.stats.MessagesDropped),
	}
}

// job bundles everything one run needs: the request, the send side of the
// handle channels, and the accumulating results.
type job struct {
	runID  string
	req    Request
	state  State
	timing PhaseTiming

	progress chan int
	messages chan string
	done     chan Result
	stats    *SignalStats

	backend    Backend
	reports    []cct.DriverReport
	summary    string
	reportPath string
	failure    *Failure
	finished   bool

	recorder *StateRecorder
	logger   *slog.Logger
}

// Submit starts a job. It rejects synchronously with ErrJobInFlight while
// a previous job is running and with ErrMissingInput when the network or
// metadata file does not exist; everything else is reported on the handle.
func (o *Orchestrator) Submit(req Request) (*Handle, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrJobInFlight
	}
	if err := checkInputs(req); err != nil {
		o.busy.Store(false)
		return nil, err
	}

	runID := fmt.Sprintf("%s:%s", req.Mode, uuid.NewString())
	j := &job{
		runID:    runID,
		req:      req,
		state:    &IdleState{},
		progress: make(chan int, signalBuffer),
		messages: make(chan string, signalBuffer),
		done:     make(chan Result, 1),
		stats:    &SignalStats{},
		recorder: o.recorder,
		logger:   o.logger.With("run_id", runID),
	}
	j.timing.SubmittedAt = time.Now()

	handle := &Handle{
		RunID:    runID,
		Progress: j.progress,
		Messages: j.messages,
		Done:     j.done,
		stats:    j.stats,
	}

	j.logger.Info("job submitted",
		"mode", req.Mode.String(),
		"network", req.NetworkPath,
		"metadata", req.MetadataPath)

	o.wg.Add(1)
	go o.run(j)
	return handle, nil
}

// Busy reports whether a job is currently in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Close waits for the in-flight job, if any, to reach its terminal state.
func (o *Orchestrator) Close() {
	o.wg.Wait()
}

func checkInputs(req Request) error {
	for _, path := range []string{req.NetworkPath, req.MetadataPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
	}
	return nil
}

// classify maps a stage error to its failure kind. Anything wrapping
// cct.ErrDependency counts as a dependency failure, the rest as runtime
// failures.
func classify(err error) FailureKind {
	if errors.Is(err, cct.ErrDependency) {
		return FailureDependency
	}
	return FailureRuntime
}

// transitionTo performs a state transition, publishes the stage signal,
// and logs it
func (j *job) transitionTo(newState State) {
	oldStateName := j.state.Name()
	j.state = newState

	// Record state for testing if recorder is present
	if j.recorder != nil {
		j.recorder.Record(newState)
	}

	if stage := StageIndex(newState); stage >= 0 {
		j.sendProgress(stage)
		j.sendMessage(stageMessage(newState))
	}

	j.logger.Info("state transition",
		"from", oldStateName,
		"to", newState.Name())
}

func (j *job) sendProgress(stage int) {
	select {
	case j.progress <- stage:
		atomic.AddInt64(&j.stats.ProgressSent, 1)
	default:
		atomic.AddInt64(&j.stats.ProgressDropped, 1)
	}
}

func (j *job) sendMessage(msg string) {
	select {
	case j.messages <- msg:
		atomic.AddInt64(&j.stats.MessagesSent, 1)
	default:
		atomic.AddInt64(&j.stats.MessagesDropped, 1)
	}
}

func (j *job) fail(kind FailureKind, err error) {
	j.failure = &Failure{Kind: kind, Err: err}
}

// stageMessage describes the work a state performs, for the Messages channel.
func stageMessage(s State) string {
	switch s.(type) {
	case *PreparingState:
		return "preparing analysis backend"
	case *ConfiguringDriverState:
		return "configuring driver parameters"
	case *ConfiguringReceiverState:
		return "configuring receiver parameters"
	case *ScanningState:
		return "scanning port couplings"
	case *SimulatingState:
		return "running transient simulation"
	case *ReportingState:
		return "generating report"
	default:
		return ""
	}
}

// run is the main worker loop
func (o *Orchestrator) run(j *job) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("job panic recovered", "panic", r)
			j.fail(FailureRuntime, fmt.Errorf("panic: %v", r))
			j.transitionTo(&FailedState{})
			o.finish(j)
		}
	}()

	idle := j.state.(*IdleState)
	j.transitionTo(idle.ToPreparing())

	for {
		switch j.state.(type) {
		case *PreparingState:
			o.runPreparing(j)
		case *ConfiguringDriverState:
			o.runConfiguringDriver(j)
		case *ConfiguringReceiverState:
			o.runConfiguringReceiver(j)
		case *ScanningState:
			o.runScanning(j)
		case *SimulatingState:
			o.runSimulating(j)
		case *ReportingState:
			o.runReporting(j)
		case *CompletedState:
			o.finish(j)
			return
		case *FailedState:
			o.finish(j)
			return
		default:
			j.logger.Error("unknown state type",
				"state", fmt.Sprintf("%T", j.state))
			j.fail(FailureRuntime, fmt.Errorf("unknown state type %T", j.state))
			j.transitionTo(&FailedState{})
		}
	}
}

// runPreparing builds the backend from the job inputs
func (o *Orchestrator) runPreparing(j *job) {
	state := j.state.(*PreparingState)

	spec := cct.Spec{
		NetworkPath:  j.req.NetworkPath,
		MetadataPath: j.req.MetadataPath,
		WorkDir:      j.req.WorkDir,
		Config:       j.req.Config,
	}
	backend, err := o.factory(spec)
	if err != nil {
		j.fail(FailureDependency, fmt.Errorf("build backend: %w", err))
		j.transitionTo(state.ToFailed())
		return
	}

	j.backend = backend
	j.timing.BackendReadyAt = time.Now()
	j.transitionTo(state.ToConfiguringDriver())
}

// runConfiguringDriver pushes the driver-side parameters
func (o *Orchestrator) runConfiguringDriver(j *job) {
	state := j.state.(*ConfiguringDriverState)

	if err := j.backend.ConfigureDriver(j.req.Config.Driver()); err != nil {
		j.fail(classify(err), fmt.Errorf("configure driver: %w", err))
		j.transitionTo(state.ToFailed())
		return
	}
	j.transitionTo(state.ToConfiguringReceiver())
}

// runConfiguringReceiver pushes the receiver-side parameters and picks
// the analysis branch for the job mode
func (o *Orchestrator) runConfiguringReceiver(j *job) {
	state := j.state.(*ConfiguringReceiverState)

	if err := j.backend.ConfigureReceiver(j.req.Config.Receiver()); err != nil {
		j.fail(classify(err), fmt.Errorf("configure receiver: %w", err))
		j.transitionTo(state.ToFailed())
		return
	}

	j.timing.AnalysisStartedAt = time.Now()
	if j.req.Mode == ModeRun {
		j.transitionTo(state.ToSimulating())
	} else {
		j.transitionTo(state.ToScanning())
	}
}

// runScanning executes the coupling scan
func (o *Orchestrator) runScanning(j *job) {
	state := j.state.(*ScanningState)

	reports, err := j.backend.Scan()
	if err != nil {
		j.fail(classify(err), fmt.Errorf("scan: %w", err))
		j.transitionTo(state.ToFailed())
		return
	}
	j.reports = reports
	j.transitionTo(state.ToReporting())
}

// runSimulating executes the transient simulation
func (o *Orchestrator) runSimulating(j *job) {
	state := j.state.(*SimulatingState)

	err := j.backend.Run(j.req.Config.TStepSeconds, j.req.Config.TStopSeconds)
	if err != nil {
		j.fail(classify(err), fmt.Errorf("transient run: %w", err))
		j.transitionTo(state.ToFailed())
		return
	}
	j.transitionTo(state.ToReporting())
}

// runReporting aggregates the analysis output for the job mode
func (o *Orchestrator) runReporting(j *job) {
	state := j.state.(*ReportingState)

	switch j.req.Mode {
	case ModeScan:
		j.summary = cct.Summarize(j.req.Config.ThresholdDB, j.reports)
	default:
		path, err := j.backend.GenerateReport(j.req.OutputPath)
		if err != nil {
			j.fail(classify(err), fmt.Errorf("generate report: %w", err))
			j.transitionTo(state.ToFailed())
			return
		}
		j.reportPath = path
	}
	j.transitionTo(state.ToCompleted())
}

// finish delivers the terminal result and releases the job slot. The
// slot is released only after the result is on the Done channel, so a
// successful new Submit always sees the previous result delivered.
func (o *Orchestrator) finish(j *job) {
	if j.finished {
		return
	}
	j.finished = true
	j.timing.CompletedAt = time.Now()
	elapsed := j.timing.CompletedAt.Sub(j.timing.SubmittedAt)

	var result Result
	switch {
	case j.failure != nil:
		result = *j.failure
		j.logger.Error("job failed",
			"kind", j.failure.Kind.String(),
			"error", j.failure.Err,
			"elapsed", elapsed)
	case j.req.Mode == ModeRun:
		result = RunResult{ReportPath: j.reportPath}
		j.logger.Info("job completed", "report", j.reportPath, "elapsed", elapsed)
	default:
		result = ScanResult{Summary: j.summary, Drivers: j.reports}
		j.logger.Info("job completed", "drivers", len(j.reports), "elapsed", elapsed)
	}

	j.done <- result
	o.busy.Store(false)
}
