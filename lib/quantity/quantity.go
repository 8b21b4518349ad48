// Package quantity parses and formats physical quantities written the
// way circuit people write them: a number, an optional engineering
// suffix, an optional unit word. "30ps", "0.1GHz", "1.8pF", "40ohm" and
// plain "10" all parse; suffixes are case-sensitive where SI is (M is
// mega, m is milli).
package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// units are the unit words stripped before the suffix is read, longest
// first so "ohms" wins over "s". Matching is case-sensitive: "F" is
// farad, "f" is femto.
var units = []string{"Ohms", "ohms", "Ohm", "ohm", "Hz", "V", "F", "s"}

var suffixes = []struct {
	symbol string
	exp    int
}{
	{"meg", 6},
	{"T", 12},
	{"G", 9},
	{"M", 6},
	{"k", 3},
	{"K", 3},
	{"m", -3},
	{"u", -6},
	{"n", -9},
	{"p", -12},
	{"f", -15},
}

// Parse reads a quantity string into its base-unit value:
// Parse("30ps") is 3e-11, Parse("0.1GHz") is 1e8, Parse("10") is 10.
// The suffix scales the decimal text, not the parsed float, so "3ns"
// lands on the same float64 as the literal 3e-9.
func Parse(s string) (float64, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	for _, u := range units {
		if strings.HasSuffix(text, u) {
			text = strings.TrimSuffix(text, u)
			break
		}
	}
	if text == "" {
		return 0, fmt.Errorf("quantity %q has no value", s)
	}

	exp := 0
	for _, suf := range suffixes {
		if strings.HasSuffix(text, suf.symbol) {
			exp = suf.exp
			text = strings.TrimSuffix(text, suf.symbol)
			break
		}
	}
	if text == "" {
		return 0, fmt.Errorf("quantity %q has no value", s)
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", s, err)
	}
	if exp == 0 {
		return value, nil
	}
	if scaled, err := strconv.ParseFloat(text+"e"+strconv.Itoa(exp), 64); err == nil {
		return scaled, nil
	}
	// A mantissa with its own exponent ("1e3k") cannot take an
	// appended one.
	return value * math.Pow10(exp), nil
}

// Format writes the value followed by the unit, no prefix: Format(1e8,
// "Hz") is "1e+08Hz".
func Format(value float64, unit string) string {
	return fmt.Sprintf("%g%s", value, unit)
}

var engPrefixes = []struct {
	scale  float64
	symbol string
}{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
	{1e-15, "f"},
}

// FormatEng writes the value with the engineering prefix that keeps the
// mantissa in [1, 1000): FormatEng(3e-11, "s") is "30ps". Values in
// [0.1, 1) stay plain ("0.8V", not "800mV"), and zero is just "0" plus
// the unit.
func FormatEng(value float64, unit string) string {
	if value == 0 {
		return "0" + unit
	}

	abs := value
	if abs < 0 {
		abs = -abs
	}
	if abs >= 0.1 && abs < 1 {
		return strconv.FormatFloat(value, 'g', 12, 64) + unit
	}

	prefix := engPrefixes[len(engPrefixes)-1]
	for _, p := range engPrefixes {
		if abs >= p.scale {
			prefix = p
			break
		}
	}

	mantissa := value / prefix.scale
	return fmt.Sprintf("%s%s%s", strconv.FormatFloat(mantissa, 'g', 12, 64), prefix.symbol, unit)
}

// Coerce narrows a sweep field to the tightest of int, float64, string.
// It never fails; a value that is not a number stays a string.
func Coerce(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
