package cct

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/livinlefevreloca/netprep/internal/classify"
	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/ports"
)

const fourPortMA = `! four port channel
# GHz S MA R 50
1.0
0.9 0    0.5 0    0.0001 0 0.01 0
0.5 0    0.9 0    0.0001 0 0.0001 0
0.0001 0 0.0001 0 0.9 0    0.5 0
0.01 0   0.0001 0 0.5 0    0.9 0
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureDocument() *ports.Document {
	return &ports.Document{
		DesignPath:         "design_applied.netdb",
		ReferenceNet:       "GND",
		DriverComponents:   []string{"U1"},
		ReceiverComponents: []string{"U2"},
		Ports: []ports.Record{
			{Sequence: 1, Name: "1_U1_A", Component: "U1", Role: design.RoleDriver, Net: "A", NetKind: classify.KindSingle, ReferenceNet: "GND"},
			{Sequence: 2, Name: "2_U2_A", Component: "U2", Role: design.RoleReceiver, Net: "A", NetKind: classify.KindSingle, ReferenceNet: "GND"},
			{Sequence: 3, Name: "3_U1_B", Component: "U1", Role: design.RoleDriver, Net: "B", NetKind: classify.KindSingle, ReferenceNet: "GND"},
			{Sequence: 4, Name: "4_U2_B", Component: "U2", Role: design.RoleReceiver, Net: "B", NetKind: classify.KindSingle, ReferenceNet: "GND"},
		},
	}
}

// fixtureSpec writes the four-port network and its metadata document
// into a temp dir and returns a ready spec.
func fixtureSpec(t *testing.T) Spec {
	t.Helper()

	dir := t.TempDir()
	networkPath := filepath.Join(dir, "channel.s4p")
	if err := os.WriteFile(networkPath, []byte(fourPortMA), 0o644); err != nil {
		t.Fatalf("write network: %v", err)
	}
	metadataPath := filepath.Join(dir, "design_applied_ports.json")
	if err := fixtureDocument().Write(metadataPath); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	return Spec{
		NetworkPath:  networkPath,
		MetadataPath: metadataPath,
		WorkDir:      filepath.Join(dir, "work"),
		Config:       DefaultConfig(),
	}
}

func fixtureEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(fixtureSpec(t), testLogger())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func configuredEngine(t *testing.T) *Engine {
	t.Helper()
	e := fixtureEngine(t)
	cfg := e.spec.Config
	if err := e.ConfigureDriver(cfg.Driver()); err != nil {
		t.Fatalf("configure driver: %v", err)
	}
	if err := e.ConfigureReceiver(cfg.Receiver()); err != nil {
		t.Fatalf("configure receiver: %v", err)
	}
	return e
}

func TestNewMissingInputs(t *testing.T) {
	spec := fixtureSpec(t)
	spec.NetworkPath = filepath.Join(t.TempDir(), "absent.s4p")

	_, err := New(spec, testLogger())
	if !errors.Is(err, ErrDependency) {
		t.Errorf("missing network: got %v, want a dependency error", err)
	}

	spec = fixtureSpec(t)
	spec.MetadataPath = filepath.Join(t.TempDir(), "absent.json")
	_, err = New(spec, testLogger())
	if !errors.Is(err, ErrDependency) {
		t.Errorf("missing metadata: got %v, want a dependency error", err)
	}
}

func TestNewPortCountMismatch(t *testing.T) {
	spec := fixtureSpec(t)

	// Two-port network against four-port metadata.
	two := filepath.Join(filepath.Dir(spec.NetworkPath), "channel.s2p")
	if err := os.WriteFile(two, []byte("# GHz S MA\n1.0 0.9 0 0.5 0 0.5 0 0.9 0\n"), 0o644); err != nil {
		t.Fatalf("write network: %v", err)
	}
	spec.NetworkPath = two

	_, err := New(spec, testLogger())
	if err == nil {
		t.Fatal("port count mismatch accepted")
	}
	if errors.Is(err, ErrDependency) {
		t.Errorf("mismatch classified as a dependency error: %v", err)
	}
}

func TestNewMalformedNetworkIsNotDependency(t *testing.T) {
	spec := fixtureSpec(t)
	if err := os.WriteFile(spec.NetworkPath, []byte("# GHz S MA\n1.0 0.5\n"), 0o644); err != nil {
		t.Fatalf("write network: %v", err)
	}

	_, err := New(spec, testLogger())
	if err == nil {
		t.Fatal("malformed network accepted")
	}
	if errors.Is(err, ErrDependency) {
		t.Errorf("malformed input classified as a dependency error: %v", err)
	}
}

func TestSettingsPayload(t *testing.T) {
	e := configuredEngine(t)

	data, err := os.ReadFile(filepath.Join(e.spec.WorkDir, SettingsFileName))
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cct_settings", data)
}

func TestSettingsWaitForBothSides(t *testing.T) {
	e := fixtureEngine(t)
	if err := e.ConfigureDriver(e.spec.Config.Driver()); err != nil {
		t.Fatalf("configure driver: %v", err)
	}

	if _, err := os.Stat(filepath.Join(e.spec.WorkDir, SettingsFileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("settings written with only one side configured: %v", err)
	}

	if err := e.ConfigureReceiver(e.spec.Config.Receiver()); err != nil {
		t.Fatalf("configure receiver: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.spec.WorkDir, SettingsFileName)); err != nil {
		t.Errorf("settings missing after both sides configured: %v", err)
	}
}

func TestConfigureValidation(t *testing.T) {
	e := fixtureEngine(t)

	bad := e.spec.Config.Driver()
	bad.VHighVolts = 0
	if err := e.ConfigureDriver(bad); err == nil {
		t.Error("zero swing accepted")
	}

	badRx := e.spec.Config.Receiver()
	badRx.ResistanceOhms = -1
	if err := e.ConfigureReceiver(badRx); err == nil {
		t.Error("negative receiver resistance accepted")
	}
}

func TestConfigSubsets(t *testing.T) {
	cfg := DefaultConfig()

	d := cfg.Driver()
	if d.VHighVolts != 0.8 || d.TRiseSeconds != 30e-12 || d.ResistanceOhms != 40 || d.CapacitanceFarads != 1e-12 {
		t.Errorf("driver subset = %+v", d)
	}
	r := cfg.Receiver()
	if r.ResistanceOhms != 30 || r.CapacitanceFarads != 1.8e-12 {
		t.Errorf("receiver subset = %+v", r)
	}
	if cfg.ThresholdDB == nil || *cfg.ThresholdDB != -60 {
		t.Errorf("threshold = %v, want -60", cfg.ThresholdDB)
	}
	if cfg.Version != "2025.1" {
		t.Errorf("version = %q", cfg.Version)
	}
}
