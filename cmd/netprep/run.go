package main

import (
	"fmt"

	"github.com/livinlefevreloca/netprep/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	runNetwork  string
	runMetadata string
	runOutput   string
	runWorkDir  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the transient analysis and write the waveform report",
	Long: `Load the network model and the port metadata, run the transient
analysis over the configured time window, and write the waveform report
to the output path.

Examples:
  netprep run --network channel.s4p --metadata boards/dimm_applied_ports.json --output waveforms.csv`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runNetwork, "network", "", "network model file (Touchstone)")
	runCmd.Flags().StringVar(&runMetadata, "metadata", "", "port metadata file")
	runCmd.Flags().StringVar(&runOutput, "output", "", "waveform report output path")
	runCmd.Flags().StringVar(&runWorkDir, "workdir", "", "job work directory")

	runCmd.MarkFlagRequired("network")
	runCmd.MarkFlagRequired("metadata")
	runCmd.MarkFlagRequired("output")
}

func runRun(cmd *cobra.Command, args []string) error {
	job, err := cfg.Analysis()
	if err != nil {
		return err
	}

	result, err := submitAndWait(orchestrator.Request{
		Mode:         orchestrator.ModeRun,
		NetworkPath:  runNetwork,
		MetadataPath: runMetadata,
		WorkDir:      workDir(runWorkDir),
		OutputPath:   runOutput,
		Config:       job,
	})
	if err != nil {
		return err
	}

	report, ok := result.(orchestrator.RunResult)
	if !ok {
		return fmt.Errorf("unexpected result %T", result)
	}
	fmt.Printf("Report written to %s\n", report.ReportPath)
	return nil
}
