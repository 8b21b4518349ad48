// Package cct is the analysis backend: it loads a port metadata
// document and a Touchstone network model, and runs the two job kinds
// against them. A threshold scan reports which ports matter; a
// transient pass produces a report file.
package cct

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/livinlefevreloca/netprep/internal/ports"
	"github.com/livinlefevreloca/netprep/lib/quantity"
	"github.com/livinlefevreloca/netprep/lib/touchstone"
)

// ErrDependency marks failures where the backend's inputs are absent,
// as opposed to present but bad.
var ErrDependency = errors.New("cct: dependency unavailable")

// SettingsFileName is the grouped settings payload written into the
// work directory once both sides are configured.
const SettingsFileName = "cct_settings.json"

// Spec names the inputs of one analysis job.
type Spec struct {
	NetworkPath  string
	MetadataPath string
	WorkDir      string
	Config       Config
}

// Engine is one loaded analysis job. Construct with New, configure both
// sides, then Scan or Run.
type Engine struct {
	spec    Spec
	logger  *slog.Logger
	doc     *ports.Document
	network *touchstone.Network

	driver   *DriverParams
	receiver *ReceiverParams

	waveforms []waveform
	runTStep  float64
}

// New loads the metadata document and the network model. A missing
// input file is a dependency error; a present but unreadable one is
// not.
func New(spec Spec, logger *slog.Logger) (*Engine, error) {
	if spec.WorkDir == "" {
		return nil, fmt.Errorf("no work directory")
	}

	for _, path := range []string{spec.NetworkPath, spec.MetadataPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDependency, err)
		}
	}

	doc, err := ports.Load(spec.MetadataPath)
	if err != nil {
		return nil, err
	}
	network, err := touchstone.ParsePath(spec.NetworkPath)
	if err != nil {
		return nil, err
	}

	if network.NumPorts != len(doc.Ports) {
		return nil, fmt.Errorf("network %s has %d ports but the metadata describes %d",
			spec.NetworkPath, network.NumPorts, len(doc.Ports))
	}

	if err := os.MkdirAll(spec.WorkDir, 0o755); err != nil {
		return nil, err
	}

	logger.Debug("analysis backend loaded",
		"network", spec.NetworkPath, "ports", network.NumPorts, "points", network.Points())

	return &Engine{
		spec:    spec,
		logger:  logger,
		doc:     doc,
		network: network,
	}, nil
}

// Document returns the loaded port metadata.
func (e *Engine) Document() *ports.Document {
	return e.doc
}

// ConfigureDriver records the transmit-side parameters. Once both
// sides are configured the settings payload lands in the work
// directory.
func (e *Engine) ConfigureDriver(p DriverParams) error {
	if p.VHighVolts <= 0 || p.TRiseSeconds <= 0 {
		return fmt.Errorf("driver parameters out of range: vhigh %g, t_rise %g", p.VHighVolts, p.TRiseSeconds)
	}
	e.driver = &p
	return e.writeSettings()
}

// ConfigureReceiver records the receive-side parameters.
func (e *Engine) ConfigureReceiver(p ReceiverParams) error {
	if p.ResistanceOhms <= 0 {
		return fmt.Errorf("receiver resistance %g out of range", p.ResistanceOhms)
	}
	e.receiver = &p
	return e.writeSettings()
}

type settingsPayload struct {
	TX      txSettings  `json:"tx"`
	RX      rxSettings  `json:"rx"`
	Run     runSettings `json:"run"`
	Options optSettings `json:"options"`
}

type txSettings struct {
	VHigh        string `json:"vhigh"`
	TRise        string `json:"t_rise"`
	UnitInterval string `json:"unit_interval"`
	Resistance   string `json:"resistance"`
	Capacitance  string `json:"capacitance"`
}

type rxSettings struct {
	Resistance  string `json:"resistance"`
	Capacitance string `json:"capacitance"`
}

type runSettings struct {
	TStep string `json:"tstep"`
	TStop string `json:"tstop"`
}

type optSettings struct {
	ThresholdDB *float64 `json:"threshold_db"`
	Version     string   `json:"version"`
}

// writeSettings writes the grouped payload once both sides are known.
func (e *Engine) writeSettings() error {
	if e.driver == nil || e.receiver == nil {
		return nil
	}

	payload := settingsPayload{
		TX: txSettings{
			VHigh:        quantity.FormatEng(e.driver.VHighVolts, "V"),
			TRise:        quantity.FormatEng(e.driver.TRiseSeconds, "s"),
			UnitInterval: quantity.FormatEng(e.driver.UnitIntervalSeconds, "s"),
			Resistance:   quantity.FormatEng(e.driver.ResistanceOhms, "ohm"),
			Capacitance:  quantity.FormatEng(e.driver.CapacitanceFarads, "F"),
		},
		RX: rxSettings{
			Resistance:  quantity.FormatEng(e.receiver.ResistanceOhms, "ohm"),
			Capacitance: quantity.FormatEng(e.receiver.CapacitanceFarads, "F"),
		},
		Run: runSettings{
			TStep: quantity.FormatEng(e.spec.Config.TStepSeconds, "s"),
			TStop: quantity.FormatEng(e.spec.Config.TStopSeconds, "s"),
		},
		Options: optSettings{
			ThresholdDB: e.spec.Config.ThresholdDB,
			Version:     e.spec.Config.Version,
		},
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := filepath.Join(e.spec.WorkDir, SettingsFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	e.logger.Debug("settings written", "path", path)
	return nil
}

func (e *Engine) configured() error {
	if e.driver == nil {
		return fmt.Errorf("driver side not configured")
	}
	if e.receiver == nil {
		return fmt.Errorf("receiver side not configured")
	}
	return nil
}
