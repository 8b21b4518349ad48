package cct

// Config carries the electrical and run parameters of one analysis job.
// It travels wholesale: a job gets exactly one Config and never a
// partial update of it.
type Config struct {
	VHighVolts                float64
	TRiseSeconds              float64
	UnitIntervalSeconds       float64
	DriverResistanceOhms      float64
	DriverCapacitanceFarads   float64
	ReceiverResistanceOhms    float64
	ReceiverCapacitanceFarads float64
	TStepSeconds              float64
	TStopSeconds              float64

	// ThresholdDB is the reduction threshold of the scan pass. Nil
	// means no reduction: every port is kept.
	ThresholdDB *float64

	Version string
}

// DefaultConfig returns the stock DDR-ish parameter set.
func DefaultConfig() Config {
	threshold := -60.0
	return Config{
		VHighVolts:                0.8,
		TRiseSeconds:              30e-12,
		UnitIntervalSeconds:       133e-12,
		DriverResistanceOhms:      40,
		DriverCapacitanceFarads:   1e-12,
		ReceiverResistanceOhms:    30,
		ReceiverCapacitanceFarads: 1.8e-12,
		TStepSeconds:              100e-12,
		TStopSeconds:              3e-9,
		ThresholdDB:               &threshold,
		Version:                   "2025.1",
	}
}

// DriverParams is the transmit-side slice of the config.
type DriverParams struct {
	VHighVolts          float64
	TRiseSeconds        float64
	UnitIntervalSeconds float64
	ResistanceOhms      float64
	CapacitanceFarads   float64
}

// ReceiverParams is the receive-side slice of the config.
type ReceiverParams struct {
	ResistanceOhms    float64
	CapacitanceFarads float64
}

// Driver extracts the transmit-side parameters.
func (c Config) Driver() DriverParams {
	return DriverParams{
		VHighVolts:          c.VHighVolts,
		TRiseSeconds:        c.TRiseSeconds,
		UnitIntervalSeconds: c.UnitIntervalSeconds,
		ResistanceOhms:      c.DriverResistanceOhms,
		CapacitanceFarads:   c.DriverCapacitanceFarads,
	}
}

// Receiver extracts the receive-side parameters.
func (c Config) Receiver() ReceiverParams {
	return ReceiverParams{
		ResistanceOhms:    c.ReceiverResistanceOhms,
		CapacitanceFarads: c.ReceiverCapacitanceFarads,
	}
}
