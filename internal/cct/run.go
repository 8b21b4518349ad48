package cct

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// waveform is one driver-to-receiver transient trace.
type waveform struct {
	label   string
	samples []float64
}

// Run computes the transient step response of every driver-to-receiver
// path: the configured swing, scaled by the path's DC coupling, through
// a first-order filter built from the rise time and the RC loads.
// Samples cover [0, tstop] at tstep. Results stay on the engine for
// GenerateReport.
func (e *Engine) Run(tstepSeconds, tstopSeconds float64) error {
	if err := e.configured(); err != nil {
		return err
	}
	if tstepSeconds <= 0 {
		return fmt.Errorf("tstep %g out of range", tstepSeconds)
	}
	if tstopSeconds < tstepSeconds {
		return fmt.Errorf("tstop %g shorter than tstep %g", tstopSeconds, tstepSeconds)
	}

	drivers := e.doc.Drivers()
	receivers := e.doc.Receivers()
	if len(drivers) == 0 || len(receivers) == 0 {
		return fmt.Errorf("transient run needs at least one driver and one receiver port")
	}

	// 10-90 rise through a first-order filter is 2.2 time constants.
	tau := e.driver.TRiseSeconds/2.2 +
		e.driver.ResistanceOhms*e.driver.CapacitanceFarads +
		e.receiver.ResistanceOhms*e.receiver.CapacitanceFarads

	steps := int(tstopSeconds/tstepSeconds+1e-9) + 1
	e.waveforms = nil
	e.runTStep = tstepSeconds
	for _, d := range drivers {
		for _, r := range receivers {
			coupling, err := e.network.CouplingAtDCDB(r.Sequence, d.Sequence)
			if err != nil {
				return err
			}
			gain := math.Pow(10, coupling/20)

			w := waveform{
				label:   d.Name + "_to_" + r.Name,
				samples: make([]float64, steps),
			}
			for k := 0; k < steps; k++ {
				t := float64(k) * tstepSeconds
				w.samples[k] = e.driver.VHighVolts * gain * (1 - math.Exp(-t/tau))
			}
			e.waveforms = append(e.waveforms, w)
		}
	}

	e.logger.Info("transient run finished",
		"paths", len(e.waveforms), "samples", steps, "tstep", tstepSeconds, "tstop", tstopSeconds)
	return nil
}

// GenerateReport writes the transient traces as CSV: a time column and
// one column per driver-to-receiver path. Returns the path written.
func (e *Engine) GenerateReport(outputPath string) (string, error) {
	if len(e.waveforms) == 0 {
		return "", fmt.Errorf("no transient results; run first")
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"time_s"}
	for _, wf := range e.waveforms {
		header = append(header, wf.label)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	tstep := e.runTStep
	for k := range e.waveforms[0].samples {
		row := make([]string, 0, len(e.waveforms)+1)
		row = append(row, strconv.FormatFloat(float64(k)*tstep, 'g', -1, 64))
		for _, wf := range e.waveforms {
			row = append(row, strconv.FormatFloat(wf.samples[k], 'g', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", err
	}

	e.logger.Info("report written", "path", outputPath)
	return outputPath, nil
}
