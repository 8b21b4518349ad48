package cct

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/livinlefevreloca/netprep/internal/ports"
)

// DriverReport is the scan outcome for one driver port: how many ports
// couple above threshold, overall and among the receiver-role ports.
// The rx counts are nil when the document has no receiver ports.
type DriverReport struct {
	Label        string
	TotalPorts   int
	KeptPorts    int
	TotalRxPorts *int
	KeptRxPorts  *int
}

// Scan evaluates the worst-case coupling from every driver port to
// every other port and reports, per driver, how many ports clear the
// threshold. The driver's own port always counts as kept; a nil
// threshold keeps everything. Drivers are evaluated in parallel;
// reports come back in driver sequence order.
func (e *Engine) Scan() ([]DriverReport, error) {
	if err := e.configured(); err != nil {
		return nil, err
	}

	drivers := e.doc.Drivers()
	if len(drivers) == 0 {
		return nil, fmt.Errorf("metadata has no driver ports")
	}
	receivers := make(map[int]bool)
	for _, r := range e.doc.Receivers() {
		receivers[r.Sequence] = true
	}

	reports := make([]DriverReport, len(drivers))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for at, d := range drivers {
		g.Go(func() error {
			report, err := e.scanDriver(d, receivers)
			if err != nil {
				return err
			}
			reports[at] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	threshold := "none"
	if e.spec.Config.ThresholdDB != nil {
		threshold = fmt.Sprintf("%.1f dB", *e.spec.Config.ThresholdDB)
	}
	e.logger.Info("scan finished", "drivers", len(reports), "threshold", threshold)
	return reports, nil
}

func (e *Engine) scanDriver(d ports.Record, receivers map[int]bool) (DriverReport, error) {
	report := DriverReport{Label: d.Name, TotalPorts: len(e.doc.Ports)}

	if len(receivers) > 0 {
		total := len(receivers)
		kept := 0
		report.TotalRxPorts = &total
		report.KeptRxPorts = &kept
	}

	for _, p := range e.doc.Ports {
		keep := p.Sequence == d.Sequence
		if !keep {
			if e.spec.Config.ThresholdDB == nil {
				keep = true
			} else {
				coupling, err := e.network.MaxCouplingDB(p.Sequence, d.Sequence)
				if err != nil {
					return report, err
				}
				keep = coupling >= *e.spec.Config.ThresholdDB
			}
		}
		if !keep {
			continue
		}
		report.KeptPorts++
		if receivers[p.Sequence] && report.KeptRxPorts != nil {
			*report.KeptRxPorts++
		}
	}

	return report, nil
}
