package orchestrator

import (
	"errors"
	"fmt"

	"github.com/livinlefevreloca/netprep/internal/cct"
)

// ErrJobInFlight is returned by Submit while a previous job is still running.
var ErrJobInFlight = errors.New("orchestrator: job already in flight")

// ErrMissingInput is returned by Submit when a required input file is absent.
// The wrapped message names the path.
var ErrMissingInput = errors.New("orchestrator: missing input")

// Mode selects which analysis a job performs.
type Mode int

const (
	// ModeScan runs the coupling scan and produces a text summary.
	ModeScan Mode = iota
	// ModeRun runs the transient simulation and produces a waveform report.
	ModeRun
)

// String returns a human-readable representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeScan:
		return "scan"
	case ModeRun:
		return "run"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode word from the CLI or config into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "scan":
		return ModeScan, nil
	case "run":
		return ModeRun, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// Request describes a single analysis job.
type Request struct {
	Mode         Mode
	NetworkPath  string
	MetadataPath string
	WorkDir      string
	OutputPath   string
	Config       cct.Config
}

// Backend is the slice of the analysis engine the orchestrator drives.
// *cct.Engine satisfies it.
type Backend interface {
	ConfigureDriver(p cct.DriverParams) error
	ConfigureReceiver(p cct.ReceiverParams) error
	Scan() ([]cct.DriverReport, error)
	Run(tstepSeconds, tstopSeconds float64) error
	GenerateReport(outputPath string) (string, error)
}

// Factory builds the backend for a job. A factory error fails the job
// with kind FailureDependency.
type Factory func(spec cct.Spec) (Backend, error)

// FailureKind classifies a failed job: the backend could not be brought
// up at all, or it came up and an analysis stage went wrong.
type FailureKind int

const (
	FailureDependency FailureKind = iota
	FailureRuntime
)

// String returns a human-readable representation of the failure kind
func (k FailureKind) String() string {
	switch k {
	case FailureDependency:
		return "dependency"
	case FailureRuntime:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome of a job, delivered once on Done.
type Result interface {
	resultMarker()
}

// ScanResult carries the coupling scan outcome.
type ScanResult struct {
	Summary string
	Drivers []cct.DriverReport
}

// RunResult carries the transient simulation outcome.
type RunResult struct {
	ReportPath string
}

// Failure carries a classified job error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (ScanResult) resultMarker() {}
func (RunResult) resultMarker()  {}
func (Failure) resultMarker()    {}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
