// Package touchstone reads Touchstone 1.x network files (.sNp): an
// optional option line (`# GHz S MA R 50`), `!` comments, and
// whitespace-wrapped records of one frequency plus 2·N² values.
package touchstone

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var networkLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `![^\r\n]*`},
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Hash", Pattern: `#`},
	{Name: "Number", Pattern: `[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?`},
	{Name: "Word", Pattern: `[A-Za-z][A-Za-z0-9_]*`},
})

type networkFile struct {
	Lines []*networkLine `parser:"@@*"`
}

// networkLine is one physical line: an option line, a run of values, or
// nothing at all. Records wrap across lines, so values regroup later.
type networkLine struct {
	Option *optionLine `parser:"( @@"`
	Values []float64   `parser:"| @Number+ )? EOL"`
}

// optionLine keeps the raw fields; their meaning is positional-ish and
// case-insensitive, so interpretation happens outside the grammar.
type optionLine struct {
	Fields []string `parser:"Hash @( Word | Number )*"`
}

var networkParser = participle.MustBuild[networkFile](
	participle.Lexer(networkLexer),
	participle.Elide("Comment", "Whitespace"),
)

// options is the interpreted option line.
type options struct {
	freqScale float64
	format    string
	reference float64
}

func defaultOptions() options {
	return options{freqScale: 1e9, format: "MA", reference: 50}
}

var freqScales = map[string]float64{
	"hz":  1,
	"khz": 1e3,
	"mhz": 1e6,
	"ghz": 1e9,
}

// interpret walks the option fields: a frequency unit, the parameter
// letter, the format, and `R <ohms>`, in any order.
func interpret(fields []string) (options, error) {
	opts := defaultOptions()

	for i := 0; i < len(fields); i++ {
		f := fields[i]
		lower := strings.ToLower(f)
		switch {
		case lower == "r":
			if i+1 >= len(fields) {
				return opts, fmt.Errorf("option line: R without a resistance")
			}
			i++
			r, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return opts, fmt.Errorf("option line: resistance %q: %w", fields[i], err)
			}
			opts.reference = r
		case freqScales[lower] != 0:
			opts.freqScale = freqScales[lower]
		case lower == "s":
			// The only parameter kind this reader handles.
		case lower == "y" || lower == "z" || lower == "h" || lower == "g":
			return opts, fmt.Errorf("option line: only S-parameters are supported, not %s", f)
		case lower == "ri" || lower == "ma" || lower == "db":
			opts.format = strings.ToUpper(lower)
		default:
			return opts, fmt.Errorf("option line: unknown field %q", f)
		}
	}

	return opts, nil
}

var portCountPattern = regexp.MustCompile(`(?i)\.s(\d+)p$`)

// PortCount reads the port count from a .sNp file name.
func PortCount(path string) (int, error) {
	m := portCountPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, fmt.Errorf("cannot tell port count from %q, want a .sNp extension", path)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad port count in %q", path)
	}
	return n, nil
}

// ParsePath parses the network file at path, taking the port count from
// its extension.
func ParsePath(path string) (*Network, error) {
	nPorts, err := PortCount(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	net, err := Parse(f, nPorts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return net, nil
}

// Parse reads a Touchstone document with a known port count.
func Parse(r io.Reader, nPorts int) (*Network, error) {
	if nPorts < 1 {
		return nil, fmt.Errorf("port count %d out of range", nPorts)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	file, err := networkParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	opts := defaultOptions()
	sawOptions := false
	var values []float64
	for _, line := range file.Lines {
		switch {
		case line.Option != nil:
			// Touchstone 1.x reads only the first option line.
			if sawOptions {
				continue
			}
			sawOptions = true
			if opts, err = interpret(line.Option.Fields); err != nil {
				return nil, err
			}
		case len(line.Values) > 0:
			values = append(values, line.Values...)
		}
	}

	return assemble(values, nPorts, opts)
}

// assemble regroups the flat value stream into per-frequency records
// and converts them into complex S-matrices.
func assemble(values []float64, nPorts int, opts options) (*Network, error) {
	record := 1 + 2*nPorts*nPorts
	if len(values) == 0 {
		return nil, fmt.Errorf("no network data")
	}
	if len(values)%record != 0 {
		return nil, fmt.Errorf("%d values is not whole %d-port records (%d values each)",
			len(values), nPorts, record)
	}

	n := &Network{
		NumPorts:      nPorts,
		ReferenceOhms: opts.reference,
	}

	for at := 0; at < len(values); at += record {
		n.Frequencies = append(n.Frequencies, values[at]*opts.freqScale)

		matrix := make([][]complex128, nPorts)
		for i := range matrix {
			matrix[i] = make([]complex128, nPorts)
		}
		pairs := values[at+1 : at+record]
		for k := 0; k < nPorts*nPorts; k++ {
			s, err := toComplex(pairs[2*k], pairs[2*k+1], opts.format)
			if err != nil {
				return nil, err
			}
			i, j := matrixSlot(k, nPorts)
			matrix[i][j] = s
		}
		n.Matrices = append(n.Matrices, matrix)
	}

	return n, nil
}

// matrixSlot maps the k-th value pair of a record to its matrix cell.
// Two-port files order pairs S11 S21 S12 S22; every other size is
// row-major.
func matrixSlot(k, nPorts int) (int, int) {
	if nPorts == 2 {
		return k % 2, k / 2
	}
	return k / nPorts, k % nPorts
}

func toComplex(a, b float64, format string) (complex128, error) {
	switch format {
	case "RI":
		return complex(a, b), nil
	case "MA":
		return cmplx.Rect(a, b*math.Pi/180), nil
	case "DB":
		return cmplx.Rect(math.Pow(10, a/20), b*math.Pi/180), nil
	default:
		return 0, fmt.Errorf("unknown data format %q", format)
	}
}
