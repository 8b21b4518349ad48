package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	setupDesign    string
	setupNets      []string
	setupReference string
	setupExpansion float64
	setupNoCutout  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the simulation plan and commit the design",
	Long: `Install the configured pre-solve plan on the design: a cutout
around the signal nets and a SYZ analysis setup with its frequency
sweeps, committed under the design's applied identity.

Examples:
  netprep setup --design boards/dimm_applied.netdb --nets DQ0,DQ1 --reference GND
  netprep setup --design boards/dimm_applied.netdb --nets DQ0 --reference GND --expansion 0.004
  netprep setup --design boards/dimm_applied.netdb --nets DQ0 --reference GND --no-cutout`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVar(&setupDesign, "design", "", "design database path")
	setupCmd.Flags().StringSliceVar(&setupNets, "nets", nil, "signal nets of the plan")
	setupCmd.Flags().StringVar(&setupReference, "reference", "", "reference net")
	setupCmd.Flags().Float64Var(&setupExpansion, "expansion", 0, "cutout expansion in meters")
	setupCmd.Flags().BoolVar(&setupNoCutout, "no-cutout", false, "skip the cutout")

	setupCmd.MarkFlagRequired("nets")
	setupCmd.MarkFlagRequired("reference")
}

func runSetup(cmd *cobra.Command, args []string) error {
	path, err := designPath(setupDesign)
	if err != nil {
		return err
	}

	plan := cfg.SimulationPlan()
	if cmd.Flags().Changed("expansion") {
		plan.ExpansionMeters = setupExpansion
	}
	if setupNoCutout {
		plan.CutoutEnabled = false
	}

	s, err := openSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetReference(setupReference); err != nil {
		return err
	}

	newPath, err := s.Setup(plan, setupNets)
	if err != nil {
		return err
	}
	fmt.Printf("Simulation setup committed to %s\n", newPath)
	return nil
}
