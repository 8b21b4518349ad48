package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	classifyDesign    string
	classifyDrivers   []string
	classifyReceivers []string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the nets shared between drivers and receivers",
	Long: `Assign driver and receiver roles, resolve the shared nets against
the differential-pair registry, and print the shared pairs, the
single-ended leftovers, and every driver/receiver connection row.

Examples:
  netprep classify --design boards/dimm.netdb --drivers U1 --receivers U9
  netprep classify --design boards/dimm.netdb --drivers U1,U2 --receivers U9`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyDesign, "design", "", "design database path")
	classifyCmd.Flags().StringSliceVar(&classifyDrivers, "drivers", nil, "driver components")
	classifyCmd.Flags().StringSliceVar(&classifyReceivers, "receivers", nil, "receiver components")

	classifyCmd.MarkFlagRequired("drivers")
	classifyCmd.MarkFlagRequired("receivers")
}

func runClassify(cmd *cobra.Command, args []string) error {
	path, err := designPath(classifyDesign)
	if err != nil {
		return err
	}

	s, err := openSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AssignRoles(classifyDrivers, classifyReceivers); err != nil {
		return err
	}
	result, err := s.Classify()
	if err != nil {
		return err
	}

	if len(result.Pairs) == 0 {
		fmt.Println("Shared differential pairs: none")
	} else {
		fmt.Println("Shared differential pairs:")
		for _, pair := range result.Pairs {
			fmt.Printf("  %-12s %s / %s\n", pair.Label, pair.PositiveNet, pair.NegativeNet)
		}
	}

	if len(result.Singles) == 0 {
		fmt.Println("Shared single-ended nets: none")
	} else {
		fmt.Println("Shared single-ended nets:")
		for _, net := range result.Singles {
			fmt.Printf("  %s\n", net)
		}
	}

	if len(result.Rows) == 0 {
		fmt.Println("Connections: none")
		return nil
	}
	fmt.Println("Connections:")
	fmt.Printf("  %-13s %-16s %-12s %s\n", "KIND", "LABEL", "DRIVER", "RECEIVER")
	for _, row := range result.Rows {
		fmt.Printf("  %-13s %-16s %-12s %s\n", row.Kind, row.Label, row.Driver, row.Receiver)
	}
	return nil
}
