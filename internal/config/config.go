package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/livinlefevreloca/netprep/internal/cct"
	"github.com/livinlefevreloca/netprep/internal/simulation"
	"github.com/livinlefevreloca/netprep/lib/quantity"
)

// Config represents the application configuration
type Config struct {
	Design     DesignConfig     `toml:"design"`
	Job        JobConfig        `toml:"job"`
	Simulation SimulationConfig `toml:"simulation"`
	Logging    LoggingConfig    `toml:"logging"`
}

// DesignConfig holds the design database settings
type DesignConfig struct {
	Path string `toml:"path"`
}

// JobConfig holds the analysis job settings. Electrical values are
// quantity strings ("0.8V", "30ps") parsed on conversion, not on load.
type JobConfig struct {
	WorkDir  string         `toml:"workdir"`
	Driver   DriverConfig   `toml:"driver"`
	Receiver ReceiverConfig `toml:"receiver"`
	Run      RunConfig      `toml:"run"`

	// Options carries the reduction threshold and solver version.
	// Prune is the legacy spelling of the same table; when a file
	// carries both, options wins.
	Options *OptionsConfig `toml:"options"`
	Prune   *OptionsConfig `toml:"prune"`
}

// DriverConfig holds the transmit-side electrical parameters
type DriverConfig struct {
	VHigh        string `toml:"vhigh"`
	TRise        string `toml:"t_rise"`
	UnitInterval string `toml:"unit_interval"`
	Resistance   string `toml:"resistance"`
	Capacitance  string `toml:"capacitance"`
}

// ReceiverConfig holds the receive-side electrical parameters
type ReceiverConfig struct {
	Resistance  string `toml:"resistance"`
	Capacitance string `toml:"capacitance"`
}

// RunConfig holds the transient run window
type RunConfig struct {
	TStep string `toml:"tstep"`
	TStop string `toml:"tstop"`
}

// OptionsConfig holds the scan/run options. ThresholdDB is a pointer so
// a partial table keeps the stock threshold; the no-threshold mode is
// reachable through the API only, never from a file.
type OptionsConfig struct {
	ThresholdDB *float64 `toml:"threshold_db"`
	Version     string   `toml:"version"`
}

// SimulationConfig holds the pre-solve plan settings
type SimulationConfig struct {
	Cutout    bool          `toml:"cutout"`
	Expansion float64       `toml:"expansion"`
	Extent    string        `toml:"extent"`
	Setup     string        `toml:"setup"`
	Sweeps    []SweepConfig `toml:"sweep"`
}

// SweepConfig is one frequency range of the analysis setup
type SweepConfig struct {
	Type  string `toml:"type"`
	Start string `toml:"start"`
	Stop  string `toml:"stop"`
	Step  string `toml:"step"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultThresholdDB = -60.0
	defaultVersion     = "2025.1"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	plan := simulation.DefaultPlan()
	sweeps := make([]SweepConfig, len(plan.Sweeps))
	for i, sw := range plan.Sweeps {
		sweeps[i] = SweepConfig{Type: sw.Type, Start: sw.Start, Stop: sw.Stop, Step: sw.Step}
	}

	return &Config{
		Design: DesignConfig{
			Path: "",
		},
		Job: JobConfig{
			WorkDir: "netprep_work",
			Driver: DriverConfig{
				VHigh:        "0.8V",
				TRise:        "30ps",
				UnitInterval: "133ps",
				Resistance:   "40ohm",
				Capacitance:  "1pF",
			},
			Receiver: ReceiverConfig{
				Resistance:  "30ohm",
				Capacitance: "1.8pF",
			},
			Run: RunConfig{
				TStep: "100ps",
				TStop: "3ns",
			},
		},
		Simulation: SimulationConfig{
			Cutout:    plan.CutoutEnabled,
			Expansion: plan.ExpansionMeters,
			Extent:    plan.Extent,
			Setup:     plan.SetupName,
			Sweeps:    sweeps,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFromFile loads configuration from a TOML file
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// Parse TOML file
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadConfig loads configuration with the following precedence:
// 1. Default values
// 2. Config file (if specified)
// 3. Command-line flags (handled by caller)
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	// Load from file if it exists
	fileConfig, err := LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}

	return fileConfig, nil
}

// options resolves the options/prune alias pair and fills unset fields
// with the stock values.
func (j JobConfig) options() OptionsConfig {
	chosen := j.Prune
	if j.Options != nil {
		chosen = j.Options
	}

	threshold := defaultThresholdDB
	resolved := OptionsConfig{ThresholdDB: &threshold, Version: defaultVersion}
	if chosen == nil {
		return resolved
	}
	if chosen.ThresholdDB != nil {
		resolved.ThresholdDB = chosen.ThresholdDB
	}
	if chosen.Version != "" {
		resolved.Version = chosen.Version
	}
	return resolved
}

// Analysis assembles the electrical job parameters, parsing every
// quantity string into base units. The defaults convert to exactly
// cct.DefaultConfig().
func (c *Config) Analysis() (cct.Config, error) {
	var out cct.Config
	fields := []struct {
		name  string
		value string
		dst   *float64
	}{
		{"job.driver.vhigh", c.Job.Driver.VHigh, &out.VHighVolts},
		{"job.driver.t_rise", c.Job.Driver.TRise, &out.TRiseSeconds},
		{"job.driver.unit_interval", c.Job.Driver.UnitInterval, &out.UnitIntervalSeconds},
		{"job.driver.resistance", c.Job.Driver.Resistance, &out.DriverResistanceOhms},
		{"job.driver.capacitance", c.Job.Driver.Capacitance, &out.DriverCapacitanceFarads},
		{"job.receiver.resistance", c.Job.Receiver.Resistance, &out.ReceiverResistanceOhms},
		{"job.receiver.capacitance", c.Job.Receiver.Capacitance, &out.ReceiverCapacitanceFarads},
		{"job.run.tstep", c.Job.Run.TStep, &out.TStepSeconds},
		{"job.run.tstop", c.Job.Run.TStop, &out.TStopSeconds},
	}
	for _, f := range fields {
		value, err := quantity.Parse(f.value)
		if err != nil {
			return cct.Config{}, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if value <= 0 {
			return cct.Config{}, fmt.Errorf("%s must be positive, got %s", f.name, f.value)
		}
		*f.dst = value
	}

	opts := c.Job.options()
	out.ThresholdDB = opts.ThresholdDB
	out.Version = opts.Version
	return out, nil
}

// SimulationPlan maps the [simulation] section onto a solve plan.
func (c *Config) SimulationPlan() simulation.Plan {
	sweeps := make([]simulation.Sweep, len(c.Simulation.Sweeps))
	for i, sw := range c.Simulation.Sweeps {
		sweeps[i] = simulation.Sweep{Type: sw.Type, Start: sw.Start, Stop: sw.Stop, Step: sw.Step}
	}
	return simulation.Plan{
		CutoutEnabled:   c.Simulation.Cutout,
		ExpansionMeters: c.Simulation.Expansion,
		Extent:          c.Simulation.Extent,
		SetupName:       c.Simulation.Setup,
		Sweeps:          sweeps,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Job validation
	if c.Job.WorkDir == "" {
		return fmt.Errorf("job workdir must be specified")
	}
	if _, err := c.Analysis(); err != nil {
		return err
	}
	opts := c.Job.options()
	if *opts.ThresholdDB >= 0 {
		return fmt.Errorf("job options threshold_db must be negative, got %g", *opts.ThresholdDB)
	}

	// Simulation validation
	if err := c.SimulationPlan().Validate(); err != nil {
		return err
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}
