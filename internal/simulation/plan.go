// Package simulation plans the pre-solve mutations of a design: an
// optional cutout around the signal nets and a SYZ analysis setup with
// its frequency sweeps. The plan only records pending mutations; the
// caller commits them through the session.
package simulation

import (
	"fmt"
	"slices"

	"github.com/livinlefevreloca/netprep/internal/edb"
	"github.com/livinlefevreloca/netprep/lib/quantity"
)

// Engine is the slice of the design handle the planner drives. It is
// satisfied by *edb.Design.
type Engine interface {
	Cutout(signalNets, referenceNets []string, expansionMeters float64, extent string) error
	CreateAnalysisSetup(name string) (*edb.Setup, error)
}

// Sweep is one frequency range of the analysis setup. Start, stop and
// step are unit strings ("1kHz", "0.1GHz") or plain counts ("1", "10").
type Sweep struct {
	Type  string
	Start string
	Stop  string
	Step  string
}

// Plan describes the cutout and the analysis setup applied to a design
// before solving.
type Plan struct {
	CutoutEnabled   bool
	ExpansionMeters float64
	Extent          string
	SetupName       string
	Sweeps          []Sweep
}

var sweepTypes = []string{"linear count", "log scale", "linear scale"}

// DefaultPlan covers DC to 10 GHz: a single DC point, a log sweep
// through the low band, then a dense linear sweep.
func DefaultPlan() Plan {
	return Plan{
		CutoutEnabled:   true,
		ExpansionMeters: 0.002,
		Extent:          "Bounding",
		SetupName:       "netprep_syz",
		Sweeps: []Sweep{
			{Type: "linear count", Start: "0", Stop: "1kHz", Step: "1"},
			{Type: "log scale", Start: "1kHz", Stop: "0.1GHz", Step: "10"},
			{Type: "linear scale", Start: "0.1GHz", Stop: "10GHz", Step: "0.1GHz"},
		},
	}
}

// Validate checks the plan before any engine call.
func (p Plan) Validate() error {
	if p.SetupName == "" {
		return fmt.Errorf("simulation: empty setup name")
	}
	if p.CutoutEnabled {
		if p.ExpansionMeters <= 0 {
			return fmt.Errorf("simulation: cutout expansion must be positive, got %g", p.ExpansionMeters)
		}
		if p.Extent == "" {
			return fmt.Errorf("simulation: empty cutout extent")
		}
	}
	if len(p.Sweeps) == 0 {
		return fmt.Errorf("simulation: plan needs at least one sweep")
	}
	for i, sw := range p.Sweeps {
		if !slices.Contains(sweepTypes, sw.Type) {
			return fmt.Errorf("simulation: sweep %d: unknown type %q", i, sw.Type)
		}
		fields := []struct{ name, value string }{
			{"start", sw.Start},
			{"stop", sw.Stop},
			{"step", sw.Step},
		}
		for _, f := range fields {
			if _, err := quantity.Parse(f.value); err != nil {
				return fmt.Errorf("simulation: sweep %d: bad %s: %w", i, f.name, err)
			}
		}
	}
	return nil
}

// Apply installs the plan on the design as pending mutations.
func (p Plan) Apply(eng Engine, signalNets []string, referenceNet string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(signalNets) == 0 {
		return fmt.Errorf("simulation: no signal nets")
	}

	if p.CutoutEnabled {
		referenceNets := []string{}
		if referenceNet != "" {
			referenceNets = []string{referenceNet}
		}
		if err := eng.Cutout(signalNets, referenceNets, p.ExpansionMeters, p.Extent); err != nil {
			return fmt.Errorf("cutout: %w", err)
		}
	}

	setup, err := eng.CreateAnalysisSetup(p.SetupName)
	if err != nil {
		return fmt.Errorf("create setup %s: %w", p.SetupName, err)
	}
	for _, sw := range p.Sweeps {
		if err := setup.AddFrequencySweep(sw.Type, sw.Start, sw.Stop, sw.Step); err != nil {
			return fmt.Errorf("add %s sweep %s..%s: %w", sw.Type, sw.Start, sw.Stop, err)
		}
	}
	return nil
}
