package cct

import (
	"strings"
	"testing"
)

func TestScan(t *testing.T) {
	e := configuredEngine(t)

	reports, err := e.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}

	first := reports[0]
	if first.Label != "1_U1_A" {
		t.Errorf("first report for %q, want 1_U1_A", first.Label)
	}
	// Port 3 couples at -80 dB, below the -60 dB threshold.
	if first.TotalPorts != 4 || first.KeptPorts != 3 {
		t.Errorf("first report kept %d/%d, want 3/4", first.KeptPorts, first.TotalPorts)
	}
	if first.TotalRxPorts == nil || *first.TotalRxPorts != 2 || *first.KeptRxPorts != 2 {
		t.Errorf("first report rx %v/%v, want 2/2", first.KeptRxPorts, first.TotalRxPorts)
	}

	second := reports[1]
	if second.Label != "3_U1_B" {
		t.Errorf("second report for %q, want 3_U1_B", second.Label)
	}
	if second.KeptPorts != 2 {
		t.Errorf("second report kept %d, want 2 (itself and port 4)", second.KeptPorts)
	}
	if second.KeptRxPorts == nil || *second.KeptRxPorts != 1 {
		t.Errorf("second report rx kept %v, want 1", second.KeptRxPorts)
	}
}

func TestScanWithoutThresholdKeepsEverything(t *testing.T) {
	e := configuredEngine(t)
	e.spec.Config.ThresholdDB = nil

	reports, err := e.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, r := range reports {
		if r.KeptPorts != r.TotalPorts {
			t.Errorf("%s kept %d/%d with no threshold", r.Label, r.KeptPorts, r.TotalPorts)
		}
	}
}

func TestScanRequiresConfiguration(t *testing.T) {
	e := fixtureEngine(t)

	if _, err := e.Scan(); err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("unconfigured scan: got %v", err)
	}
}

func TestScanTightThreshold(t *testing.T) {
	e := configuredEngine(t)
	tight := -20.0
	e.spec.Config.ThresholdDB = &tight

	reports, err := e.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	// At -20 dB only the -6 dB neighbor survives alongside the driver.
	if reports[0].KeptPorts != 2 {
		t.Errorf("kept %d at -20 dB, want 2", reports[0].KeptPorts)
	}
}
