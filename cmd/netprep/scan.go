package main

import (
	"fmt"

	"github.com/livinlefevreloca/netprep/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	scanNetwork   string
	scanMetadata  string
	scanThreshold float64
	scanWorkDir   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Estimate which ports a reduction threshold would drop",
	Long: `Load the network model and the port metadata, evaluate every
driver's couplings against the reduction threshold, and print the
pre-run summary of kept and dropped ports. Nothing is simulated and
nothing is written.

Examples:
  netprep scan --network channel.s4p --metadata boards/dimm_applied_ports.json
  netprep scan --network channel.s4p --metadata boards/dimm_applied_ports.json --threshold -40`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanNetwork, "network", "", "network model file (Touchstone)")
	scanCmd.Flags().StringVar(&scanMetadata, "metadata", "", "port metadata file")
	scanCmd.Flags().Float64Var(&scanThreshold, "threshold", 0, "reduction threshold in dB")
	scanCmd.Flags().StringVar(&scanWorkDir, "workdir", "", "job work directory")

	scanCmd.MarkFlagRequired("network")
	scanCmd.MarkFlagRequired("metadata")
}

func runScan(cmd *cobra.Command, args []string) error {
	job, err := cfg.Analysis()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threshold") {
		job.ThresholdDB = &scanThreshold
	}

	result, err := submitAndWait(orchestrator.Request{
		Mode:         orchestrator.ModeScan,
		NetworkPath:  scanNetwork,
		MetadataPath: scanMetadata,
		WorkDir:      workDir(scanWorkDir),
		Config:       job,
	})
	if err != nil {
		return err
	}

	scan, ok := result.(orchestrator.ScanResult)
	if !ok {
		return fmt.Errorf("unexpected result %T", result)
	}
	fmt.Print(scan.Summary)
	return nil
}
