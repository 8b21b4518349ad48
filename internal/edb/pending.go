package edb

import (
	"fmt"
	"slices"
)

// GroupRef is a pin group created on an open design. Groups exist only as
// pending mutations until SaveAs writes them out.
type GroupRef interface {
	// Name returns the group's final (possibly de-duplicated) name.
	Name() string
	// CreatePortTerminal creates a port terminal anchored on this group.
	CreatePortTerminal(impedanceOhms float64) (Terminal, error)
}

// Terminal is a port terminal created on a pin group.
type Terminal interface {
	Name() string
	SetName(name string) error
	// SetReference binds the terminal's reference terminal. The reference
	// must belong to the same design.
	SetReference(ref Terminal) error
}

// pendingSet accumulates everything created on an open handle between
// open and SaveAs.
type pendingSet struct {
	groups    []*pinGroup
	terminals []*portTerminal
	cutouts   []cutout
	setups    []*Setup

	groupNames    map[string]bool
	terminalNames map[string]bool
	nextID        int
}

func newPendingSet() *pendingSet {
	return &pendingSet{
		groupNames:    make(map[string]bool),
		terminalNames: make(map[string]bool),
	}
}

func (p *pendingSet) id() int {
	p.nextID++
	return p.nextID
}

type pinGroup struct {
	d         *Design
	id        int
	name      string
	component string
	net       string
	pins      []string
}

type portTerminal struct {
	d         *Design
	id        int
	name      string
	groupID   int
	impedance float64
	reference *portTerminal
}

type cutout struct {
	expansion     float64
	extent        string
	signalNets    []string
	referenceNets []string
}

// Setup is a pending analysis setup and its frequency sweeps.
type Setup struct {
	d      *Design
	id     int
	name   string
	kind   string
	sweeps []sweep
}

type sweep struct {
	sweepType string
	start     string
	stop      string
	step      string
}

var sweepTypes = []string{"linear count", "log scale", "linear scale"}

// CreatePinGroup groups all pins of component on net under the given
// name. It returns (nil, nil) when the component has no pins on the net;
// a name already taken by another pending group gets a numeric suffix.
func (d *Design) CreatePinGroup(component, net, name string) (GroupRef, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if name == "" {
		return nil, fmt.Errorf("edb: empty pin group name")
	}

	pins, err := d.pinsOn(component, net)
	if err != nil {
		return nil, err
	}
	if len(pins) == 0 {
		return nil, nil
	}

	final := name
	for n := 1; d.pending.groupNames[final]; n++ {
		final = fmt.Sprintf("%s_%d", name, n)
	}

	g := &pinGroup{
		d:         d,
		id:        d.pending.id(),
		name:      final,
		component: component,
		net:       net,
		pins:      pins,
	}
	d.pending.groups = append(d.pending.groups, g)
	d.pending.groupNames[final] = true

	return g, nil
}

func (g *pinGroup) Name() string {
	return g.name
}

func (g *pinGroup) CreatePortTerminal(impedanceOhms float64) (Terminal, error) {
	if g.d.closed {
		return nil, ErrClosed
	}
	if impedanceOhms <= 0 {
		return nil, fmt.Errorf("edb: terminal impedance must be positive, got %g", impedanceOhms)
	}

	id := g.d.pending.id()
	t := &portTerminal{
		d:         g.d,
		id:        id,
		name:      fmt.Sprintf("terminal_%d", id),
		groupID:   g.id,
		impedance: impedanceOhms,
	}
	g.d.pending.terminals = append(g.d.pending.terminals, t)
	g.d.pending.terminalNames[t.name] = true

	return t, nil
}

func (t *portTerminal) Name() string {
	return t.name
}

func (t *portTerminal) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("edb: empty terminal name")
	}
	if t.d.pending.terminalNames[name] {
		return fmt.Errorf("edb: terminal name %q already in use", name)
	}
	delete(t.d.pending.terminalNames, t.name)
	t.name = name
	t.d.pending.terminalNames[name] = true
	return nil
}

func (t *portTerminal) SetReference(ref Terminal) error {
	rt, ok := ref.(*portTerminal)
	if !ok || rt.d != t.d {
		return fmt.Errorf("edb: reference terminal belongs to a different design")
	}
	t.reference = rt
	return nil
}

// Cutout records a pending cutout of the design down to the given signal
// and reference nets.
func (d *Design) Cutout(signalNets, referenceNets []string, expansionMeters float64, extent string) error {
	if d.closed {
		return ErrClosed
	}
	if len(signalNets) == 0 {
		return fmt.Errorf("edb: cutout needs at least one signal net")
	}
	if expansionMeters <= 0 {
		return fmt.Errorf("edb: cutout expansion must be positive, got %g", expansionMeters)
	}
	if extent == "" {
		return fmt.Errorf("edb: empty cutout extent")
	}

	d.pending.cutouts = append(d.pending.cutouts, cutout{
		expansion:     expansionMeters,
		extent:        extent,
		signalNets:    slices.Clone(signalNets),
		referenceNets: slices.Clone(referenceNets),
	})
	return nil
}

// CreateAnalysisSetup records a pending SYZ analysis setup.
func (d *Design) CreateAnalysisSetup(name string) (*Setup, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if name == "" {
		return nil, fmt.Errorf("edb: empty setup name")
	}
	for _, s := range d.pending.setups {
		if s.name == name {
			return nil, fmt.Errorf("edb: setup %q already exists", name)
		}
	}

	s := &Setup{
		d:    d,
		id:   d.pending.id(),
		name: name,
		kind: "syz",
	}
	d.pending.setups = append(d.pending.setups, s)

	return s, nil
}

// Name returns the setup name.
func (s *Setup) Name() string {
	return s.name
}

// AddFrequencySweep appends a sweep to the setup. Start, stop and step
// are kept as written ("1kHz", "0.1GHz", plain counts) and interpreted
// by the consuming solver.
func (s *Setup) AddFrequencySweep(sweepType, start, stop, step string) error {
	if s.d.closed {
		return ErrClosed
	}
	if !slices.Contains(sweepTypes, sweepType) {
		return fmt.Errorf("edb: unknown sweep type %q", sweepType)
	}
	if start == "" || stop == "" || step == "" {
		return fmt.Errorf("edb: sweep needs start, stop and step")
	}

	s.sweeps = append(s.sweeps, sweep{
		sweepType: sweepType,
		start:     start,
		stop:      stop,
		step:      step,
	})
	return nil
}

// PendingCounts reports how many mutations of each kind are waiting for
// the next SaveAs.
func (d *Design) PendingCounts() (groups, terminals, cutouts, setups int) {
	return len(d.pending.groups), len(d.pending.terminals), len(d.pending.cutouts), len(d.pending.setups)
}
