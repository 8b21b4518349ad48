package cct

import (
	"fmt"
	"strings"
)

// Summarize renders the scan outcome as the pre-run summary text: the
// threshold line, the average kept ratios, then one line per driver
// with its own ratios, percentages to one decimal.
func Summarize(thresholdDB *float64, reports []DriverReport) string {
	var b strings.Builder

	if thresholdDB != nil {
		fmt.Fprintf(&b, "Pre-run complete at threshold %.1f dB.\n", *thresholdDB)
	} else {
		b.WriteString("Pre-run complete (no threshold).\n")
	}

	if len(reports) == 0 {
		b.WriteString("No drivers evaluated.\n")
		return b.String()
	}

	portSum := 0.0
	rxSum := 0.0
	rxCount := 0
	for _, r := range reports {
		portSum += percent(r.KeptPorts, r.TotalPorts)
		if r.TotalRxPorts != nil && r.KeptRxPorts != nil {
			rxSum += percent(*r.KeptRxPorts, *r.TotalRxPorts)
			rxCount++
		}
	}

	fmt.Fprintf(&b, "Average kept ports: %.1f%%\n", portSum/float64(len(reports)))
	if rxCount > 0 {
		fmt.Fprintf(&b, "Average kept rx ports: %.1f%%\n", rxSum/float64(rxCount))
	}

	for _, r := range reports {
		fmt.Fprintf(&b, "%s: ports %d/%d (%.1f%%)",
			r.Label, r.KeptPorts, r.TotalPorts, percent(r.KeptPorts, r.TotalPorts))
		if r.TotalRxPorts != nil && r.KeptRxPorts != nil {
			fmt.Fprintf(&b, ", rx %d/%d (%.1f%%)",
				*r.KeptRxPorts, *r.TotalRxPorts, percent(*r.KeptRxPorts, *r.TotalRxPorts))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

func percent(kept, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(kept) / float64(total)
}
