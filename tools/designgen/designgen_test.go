package designgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/livinlefevreloca/netprep/internal/edb"
	_ "github.com/mattn/go-sqlite3"
)

const validDescription = `{
  "components": [
    {
      "name": "U1",
      "pins": [
        {"number": "1", "name": "A1", "net": "DQ0"},
        {"number": "2", "name": "A2", "net": "DQ1"},
        {"number": "3", "name": "B1", "net": "GND"},
        {"number": "4", "name": "B2", "net": ""}
      ]
    },
    {
      "name": "U2",
      "pins": [
        {"number": "1", "name": "C1", "net": "DQ0"},
        {"number": "2", "name": "C2", "net": "CLK_P"},
        {"number": "3", "name": "C3", "net": "CLK_N"}
      ]
    }
  ],
  "diff_pairs": [
    {"label": "CLK", "positive_net": "CLK_P", "negative_net": "CLK_N"}
  ]
}`

func writeDescription(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write description: %v", err)
	}
	return path
}

func loadValid(t *testing.T) *Description {
	t.Helper()
	desc, err := LoadDescription(writeDescription(t, validDescription))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return desc
}

func TestLoadDescription_Valid(t *testing.T) {
	desc := loadValid(t)

	if len(desc.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(desc.Components))
	}
	if desc.Components[0].Name != "U1" {
		t.Errorf("expected first component U1, got %s", desc.Components[0].Name)
	}
	if len(desc.Components[0].Pins) != 4 {
		t.Errorf("expected 4 pins on U1, got %d", len(desc.Components[0].Pins))
	}
	if len(desc.DiffPairs) != 1 {
		t.Fatalf("expected 1 diff pair, got %d", len(desc.DiffPairs))
	}
	if desc.DiffPairs[0].PositiveNet != "CLK_P" {
		t.Errorf("expected positive net CLK_P, got %s", desc.DiffPairs[0].PositiveNet)
	}
}

func TestLoadDescription_NotFound(t *testing.T) {
	if _, err := LoadDescription("/nonexistent/board.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadDescription_BadJSON(t *testing.T) {
	if _, err := LoadDescription(writeDescription(t, "{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadDescription_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no components",
			content: `{"components": []}`,
			wantErr: "no components",
		},
		{
			name: "duplicate component",
			content: `{"components": [
				{"name": "U1", "pins": [{"number": "1", "net": "A"}]},
				{"name": "U1", "pins": [{"number": "1", "net": "B"}]}
			]}`,
			wantErr: "duplicate component name: U1",
		},
		{
			name: "duplicate pin number",
			content: `{"components": [
				{"name": "U1", "pins": [
					{"number": "1", "net": "A"},
					{"number": "1", "net": "B"}
				]}
			]}`,
			wantErr: "duplicate pin number: 1",
		},
		{
			name: "pin without number",
			content: `{"components": [
				{"name": "U1", "pins": [{"name": "A1", "net": "A"}]}
			]}`,
			wantErr: "pin with no number",
		},
		{
			name: "pair references unknown net",
			content: `{"components": [
				{"name": "U1", "pins": [{"number": "1", "net": "CLK_P"}]}
			], "diff_pairs": [
				{"label": "CLK", "positive_net": "CLK_P", "negative_net": "CLK_N"}
			]}`,
			wantErr: "unknown net: CLK_N",
		},
		{
			name: "pair with identical legs",
			content: `{"components": [
				{"name": "U1", "pins": [{"number": "1", "net": "CLK_P"}]}
			], "diff_pairs": [
				{"label": "CLK", "positive_net": "CLK_P", "negative_net": "CLK_P"}
			]}`,
			wantErr: "identical legs",
		},
		{
			name: "duplicate pair label",
			content: `{"components": [
				{"name": "U1", "pins": [
					{"number": "1", "net": "CLK_P"},
					{"number": "2", "net": "CLK_N"}
				]}
			], "diff_pairs": [
				{"label": "CLK", "positive_net": "CLK_P", "negative_net": "CLK_N"},
				{"label": "CLK", "positive_net": "CLK_N", "negative_net": "CLK_P"}
			]}`,
			wantErr: "duplicate diff pair label: CLK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDescription(writeDescription(t, tt.content))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	desc := loadValid(t)
	outputPath := filepath.Join(t.TempDir(), "board.netdb")

	if err := Generate(desc, outputPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	design, err := edb.Open(outputPath, "2025.1")
	if err != nil {
		t.Fatalf("failed to open generated design: %v", err)
	}
	defer design.Close()

	components, err := design.Components()
	if err != nil {
		t.Fatalf("failed to read components: %v", err)
	}
	if len(components) != 2 {
		t.Errorf("expected 2 components, got %d", len(components))
	}
	if len(components["U1"]) != 4 {
		t.Errorf("expected 4 pins on U1, got %d", len(components["U1"]))
	}

	nets, err := design.Nets()
	if err != nil {
		t.Fatalf("failed to read nets: %v", err)
	}
	if _, ok := nets["DQ0"]; !ok {
		t.Error("expected net DQ0 in the generated design")
	}
	if _, ok := nets[""]; ok {
		t.Error("unconnected pins must not form a net")
	}

	pairs, err := design.DifferentialPairs()
	if err != nil {
		t.Fatalf("failed to read diff pairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Label != "CLK" {
		t.Errorf("expected one CLK pair, got %v", pairs)
	}
}

func TestGenerate_RefusesExistingOutput(t *testing.T) {
	desc := loadValid(t)
	outputPath := filepath.Join(t.TempDir(), "board.netdb")
	if err := os.WriteFile(outputPath, []byte("occupied"), 0644); err != nil {
		t.Fatalf("failed to seed output file: %v", err)
	}

	err := Generate(desc, outputPath)
	if err == nil {
		t.Fatal("expected error for existing output")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error %q does not mention the existing output", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil || string(content) != "occupied" {
		t.Error("existing output file must be left alone")
	}
}

func TestGenerate_RevalidatesDescription(t *testing.T) {
	// A description mutated after loading must be rejected before any
	// file is created.
	desc := loadValid(t)
	desc.Components[0].Pins = desc.Components[0].Pins[:0]
	desc.Components[1].Pins = desc.Components[1].Pins[:0]

	outputPath := filepath.Join(t.TempDir(), "board.netdb")
	if err := Generate(desc, outputPath); err == nil {
		t.Fatal("expected error for a pair referencing no pins")
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("no output must be written for an invalid description")
	}
}
