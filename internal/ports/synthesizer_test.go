package ports

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/livinlefevreloca/netprep/internal/classify"
	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/edb"
)

type fakeSource struct {
	components map[string][]edb.Pin
	nets       map[string][]string
}

func (s *fakeSource) Components() (map[string][]edb.Pin, error) {
	return s.components, nil
}

func (s *fakeSource) Nets() (map[string][]string, error) {
	return s.nets, nil
}

// catalogOf builds a catalog where each component touches the listed
// nets, one pin per net.
func catalogOf(t *testing.T, touches map[string][]string) *design.Catalog {
	t.Helper()

	components := make(map[string][]edb.Pin, len(touches))
	nets := make(map[string][]string)
	for component, touched := range touches {
		pins := make([]edb.Pin, 0, len(touched))
		for i, net := range touched {
			pins = append(pins, edb.Pin{
				Number: string(rune('1' + i)),
				Name:   net,
				Net:    net,
			})
			nets[net] = append(nets[net], component)
		}
		components[component] = pins
	}

	return design.NewCatalog(&fakeSource{components: components, nets: nets}, 1)
}

type fakeTerminal struct {
	name       string
	reference  edb.Terminal
	setNameErr error
}

func (ft *fakeTerminal) Name() string { return ft.name }

func (ft *fakeTerminal) SetName(name string) error {
	if ft.setNameErr != nil {
		return ft.setNameErr
	}
	ft.name = name
	return nil
}

func (ft *fakeTerminal) SetReference(ref edb.Terminal) error {
	ft.reference = ref
	return nil
}

type fakeGroup struct {
	engine *fakeEngine
	key    string
	name   string
}

func (fg *fakeGroup) Name() string { return fg.name }

func (fg *fakeGroup) CreatePortTerminal(impedanceOhms float64) (edb.Terminal, error) {
	fg.engine.impedances = append(fg.engine.impedances, impedanceOhms)
	if fg.engine.noTerminal[fg.key] {
		return nil, nil
	}
	term := &fakeTerminal{setNameErr: fg.engine.nameErrOn[fg.key]}
	fg.engine.terminals[fg.key] = term
	return term, nil
}

// fakeEngine records CreatePinGroup traffic and lets tests suppress or
// fail specific (component, net) combinations. Keys are "component/net".
type fakeEngine struct {
	calls      []string
	impedances []float64
	terminals  map[string]*fakeTerminal
	noGroup    map[string]bool
	noTerminal map[string]bool
	failOn     map[string]error
	nameErrOn  map[string]error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		terminals:  make(map[string]*fakeTerminal),
		noGroup:    make(map[string]bool),
		noTerminal: make(map[string]bool),
		failOn:     make(map[string]error),
		nameErrOn:  make(map[string]error),
	}
}

func (e *fakeEngine) CreatePinGroup(component, net, name string) (edb.GroupRef, error) {
	key := component + "/" + net
	e.calls = append(e.calls, key)
	if err := e.failOn[key]; err != nil {
		return nil, err
	}
	if e.noGroup[key] {
		return nil, nil
	}
	return &fakeGroup{engine: e, key: key, name: name}, nil
}

func (e *fakeEngine) callCount(key string) int {
	n := 0
	for _, c := range e.calls {
		if c == key {
			n++
		}
	}
	return n
}

func testSynthesizer(t *testing.T, eng *fakeEngine, touches map[string][]string) *Synthesizer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSynthesizer(eng, catalogOf(t, touches), logger)
}

func mustRoles(t *testing.T, drivers, receivers []string) design.RoleAssignment {
	t.Helper()
	roles, err := design.NewRoleAssignment(drivers, receivers)
	if err != nil {
		t.Fatalf("role assignment: %v", err)
	}
	return roles
}

func singleSelection(nets ...string) classify.Selection {
	sel := classify.Selection{Kind: make(map[string]classify.Kind)}
	for _, net := range nets {
		sel.Nets = append(sel.Nets, net)
		sel.Kind[net] = classify.KindSingle
	}
	return sel
}

func TestSynthesizeSingleEnded(t *testing.T) {
	eng := newFakeEngine()
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "B", "GND"},
		"U2": {"A", "B", "GND"},
	})

	records, err := s.Synthesize(singleSelection("A", "B"), "GND", mustRoles(t, []string{"U1"}, []string{"U2"}))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	want := []Record{
		{Sequence: 1, Name: "1_U1_A", Component: "U1", Role: design.RoleDriver, Net: "A", NetKind: classify.KindSingle, ReferenceNet: "GND"},
		{Sequence: 2, Name: "2_U2_A", Component: "U2", Role: design.RoleReceiver, Net: "A", NetKind: classify.KindSingle, ReferenceNet: "GND"},
		{Sequence: 3, Name: "3_U1_B", Component: "U1", Role: design.RoleDriver, Net: "B", NetKind: classify.KindSingle, ReferenceNet: "GND"},
		{Sequence: 4, Name: "4_U2_B", Component: "U2", Role: design.RoleReceiver, Net: "B", NetKind: classify.KindSingle, ReferenceNet: "GND"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, w := range want {
		got := records[i]
		if got.Sequence != w.Sequence || got.Name != w.Name || got.Component != w.Component ||
			got.Role != w.Role || got.Net != w.Net || got.NetKind != w.NetKind ||
			got.ReferenceNet != w.ReferenceNet || got.Pair != nil || got.Polarity != nil {
			t.Errorf("record %d = %+v, want %+v", i, got, w)
		}
	}

	// One reference group per component, one signal group per record.
	if n := eng.callCount("U1/GND"); n != 1 {
		t.Errorf("U1 reference group created %d times, want 1", n)
	}
	if n := eng.callCount("U2/GND"); n != 1 {
		t.Errorf("U2 reference group created %d times, want 1", n)
	}
	if len(eng.calls) != 6 {
		t.Errorf("engine saw %d pin group calls, want 6: %v", len(eng.calls), eng.calls)
	}
	for _, z := range eng.impedances {
		if z != PortImpedanceOhms {
			t.Errorf("terminal impedance %v, want %v", z, PortImpedanceOhms)
		}
	}
}

func TestSynthesizeBindsReference(t *testing.T) {
	eng := newFakeEngine()
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "GND"},
		"U2": {"A", "GND"},
	})

	if _, err := s.Synthesize(singleSelection("A"), "GND", mustRoles(t, []string{"U1"}, []string{"U2"})); err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	ref := eng.terminals["U1/GND"]
	if ref == nil {
		t.Fatal("no reference terminal for U1")
	}
	if ref.name != "ref;U1;GND" {
		t.Errorf("reference terminal named %q, want ref;U1;GND", ref.name)
	}
	signal := eng.terminals["U1/A"]
	if signal == nil {
		t.Fatal("no signal terminal for U1 on A")
	}
	if signal.reference != edb.Terminal(ref) {
		t.Errorf("signal terminal bound to %v, want U1 reference terminal", signal.reference)
	}
	if other := eng.terminals["U2/A"]; other.reference == edb.Terminal(ref) {
		t.Error("U2 signal terminal bound to U1 reference terminal")
	}
}

func TestSynthesizeDifferential(t *testing.T) {
	eng := newFakeEngine()
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"DQS_P", "DQS_N", "GND"},
		"U2": {"DQS_P", "DQS_N", "GND"},
	})

	sel := classify.Selection{
		Nets: []string{"DQS_P", "DQS_N"},
		Kind: map[string]classify.Kind{
			"DQS_P": classify.KindDifferential,
			"DQS_N": classify.KindDifferential,
		},
		Pair: map[string]string{"DQS_P": "P0", "DQS_N": "P0"},
		Polarity: map[string]string{
			"DQS_P": classify.PolarityPositive,
			"DQS_N": classify.PolarityNegative,
		},
	}

	records, err := s.Synthesize(sel, "GND", mustRoles(t, []string{"U1"}, []string{"U2"}))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	for i, r := range records {
		if r.NetKind != classify.KindDifferential {
			t.Errorf("record %d kind %v, want differential", i, r.NetKind)
		}
		if r.Pair == nil || *r.Pair != "P0" {
			t.Errorf("record %d pair %v, want P0", i, r.Pair)
		}
		wantPolarity := classify.PolarityPositive
		if r.Net == "DQS_N" {
			wantPolarity = classify.PolarityNegative
		}
		if r.Polarity == nil || *r.Polarity != wantPolarity {
			t.Errorf("record %d polarity %v, want %s", i, r.Polarity, wantPolarity)
		}
	}
}

func TestSynthesizeSkipsComponentOffNet(t *testing.T) {
	eng := newFakeEngine()
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "GND"},
		"U3": {"C", "GND"},
	})

	records, err := s.Synthesize(singleSelection("A"), "GND", mustRoles(t, []string{"U1"}, []string{"U3"}))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(records) != 1 || records[0].Component != "U1" {
		t.Fatalf("got %+v, want a single U1 record", records)
	}
	// U3 never touched A, so no group may have been requested for it.
	if n := eng.callCount("U3/A"); n != 0 {
		t.Errorf("U3/A pin group requested %d times, want 0", n)
	}
}

func TestSynthesizeNoReferenceTerminal(t *testing.T) {
	eng := newFakeEngine()
	eng.noGroup["U2/GND"] = true
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "B", "GND"},
		"U2": {"A", "B", "GND"},
	})

	records, err := s.Synthesize(singleSelection("A", "B"), "GND", mustRoles(t, []string{"U1"}, []string{"U2"}))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	for i, r := range records {
		if r.Component != "U1" {
			t.Errorf("record %d belongs to %s, want U1 only", i, r.Component)
		}
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Sequence != 1 || records[1].Sequence != 2 {
		t.Errorf("sequences %d,%d, want 1,2", records[0].Sequence, records[1].Sequence)
	}
	// The missing reference is not cached as a failure; each net retries.
	if n := eng.callCount("U2/GND"); n != 2 {
		t.Errorf("U2 reference group attempted %d times, want 2", n)
	}
}

func TestSynthesizeNoSignalTerminal(t *testing.T) {
	eng := newFakeEngine()
	eng.noTerminal["U1/B"] = true
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "B", "GND"},
		"U2": {"A", "B", "GND"},
	})

	records, err := s.Synthesize(singleSelection("A", "B"), "GND", mustRoles(t, []string{"U1"}, []string{"U2"}))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
		if r.Sequence != i+1 {
			t.Errorf("record %d has sequence %d, want %d", i, r.Sequence, i+1)
		}
	}
	want := "1_U1_A 2_U2_A 3_U2_B"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("records %q, want %q", got, want)
	}
}

func TestSynthesizePartialOnEngineFailure(t *testing.T) {
	eng := newFakeEngine()
	eng.failOn["U2/B"] = errors.New("engine unavailable")
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "B", "GND"},
		"U2": {"A", "B", "GND"},
	})

	records, err := s.Synthesize(singleSelection("A", "B"), "GND", mustRoles(t, []string{"U1"}, []string{"U2"}))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "engine unavailable") {
		t.Errorf("error %q does not carry the engine failure", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records alongside the error, want 3", len(records))
	}
	if records[2].Name != "3_U1_B" {
		t.Errorf("last retained record %q, want 3_U1_B", records[2].Name)
	}
}

func TestSynthesizeNameFailure(t *testing.T) {
	eng := newFakeEngine()
	eng.nameErrOn["U1/A"] = errors.New("name taken")
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "GND"},
		"U2": {"A", "GND"},
	})

	records, err := s.Synthesize(singleSelection("A"), "GND", mustRoles(t, []string{"U1"}, []string{"U2"}))
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want none before the first port", len(records))
	}
}

func TestSynthesizePreconditions(t *testing.T) {
	eng := newFakeEngine()
	s := testSynthesizer(t, eng, map[string][]string{
		"U1": {"A", "GND"},
		"U2": {"A", "GND"},
	})
	roles := mustRoles(t, []string{"U1"}, []string{"U2"})

	if _, err := s.Synthesize(classify.Selection{}, "GND", roles); err == nil {
		t.Error("empty selection accepted")
	}
	if _, err := s.Synthesize(singleSelection("A"), "", roles); err == nil {
		t.Error("empty reference net accepted")
	}
	noReceivers, err := design.NewRoleAssignment([]string{"U1"}, nil)
	if err != nil {
		t.Fatalf("role assignment: %v", err)
	}
	if _, err := s.Synthesize(singleSelection("A"), "GND", noReceivers); err == nil {
		t.Error("role assignment without receivers accepted")
	}
	if len(eng.calls) != 0 {
		t.Errorf("engine touched during precondition failures: %v", eng.calls)
	}
}
