package main

import (
	"fmt"

	"github.com/livinlefevreloca/netprep/internal/classify"
	"github.com/spf13/cobra"
)

var (
	applyDesign    string
	applyDrivers   []string
	applyReceivers []string
	applyReference string
	applyNets      []string
	applyPairs     []string
	applyAll       bool
	applyOut       string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Synthesize ports and commit the prepared design",
	Long: `Run the whole preparation pipeline: assign roles, select the
reference net, classify the shared nets, synthesize port terminals for
the selection, commit the design under its applied identity, and write
the port metadata document next to it.

The selection is the named single-ended nets and pair labels, or the
full classification with --all.

Examples:
  netprep apply --design boards/dimm.netdb --drivers U1 --receivers U9 --reference GND --all
  netprep apply --design boards/dimm.netdb --drivers U1 --receivers U9 --reference GND --nets DQ0,DQ1 --pairs CLK`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&applyDesign, "design", "", "design database path")
	applyCmd.Flags().StringSliceVar(&applyDrivers, "drivers", nil, "driver components")
	applyCmd.Flags().StringSliceVar(&applyReceivers, "receivers", nil, "receiver components")
	applyCmd.Flags().StringVar(&applyReference, "reference", "", "reference net")
	applyCmd.Flags().StringSliceVar(&applyNets, "nets", nil, "single-ended nets to port")
	applyCmd.Flags().StringSliceVar(&applyPairs, "pairs", nil, "differential pair labels to port")
	applyCmd.Flags().BoolVar(&applyAll, "all", false, "port the full classification")
	applyCmd.Flags().StringVar(&applyOut, "out", "", "write an extra copy of the port metadata to this path")

	applyCmd.MarkFlagRequired("drivers")
	applyCmd.MarkFlagRequired("receivers")
	applyCmd.MarkFlagRequired("reference")
}

func runApply(cmd *cobra.Command, args []string) error {
	if !applyAll && len(applyNets) == 0 && len(applyPairs) == 0 {
		return fmt.Errorf("nothing selected: pass --nets, --pairs, or --all")
	}

	path, err := designPath(applyDesign)
	if err != nil {
		return err
	}

	s, err := openSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AssignRoles(applyDrivers, applyReceivers); err != nil {
		return err
	}
	if err := s.SetReference(applyReference); err != nil {
		return err
	}
	result, err := s.Classify()
	if err != nil {
		return err
	}

	var sel classify.Selection
	if applyAll {
		sel = result.Selection()
	} else {
		sel, err = result.Select(applyNets, applyPairs)
		if err != nil {
			return err
		}
	}

	applied, err := s.Apply(sel)
	if err != nil {
		return err
	}

	fmt.Printf("Ports (%d):\n", len(applied.Records))
	for _, rec := range applied.Records {
		fmt.Printf("  %3d  %-24s %-10s %s on %s\n",
			rec.Sequence, rec.Name, rec.Role, rec.Component, rec.Net)
	}
	fmt.Printf("Design written to %s\n", applied.DesignPath)
	fmt.Printf("Port metadata written to %s\n", applied.MetadataPath)

	if applyOut != "" {
		if err := applied.Document.Write(applyOut); err != nil {
			return err
		}
		fmt.Printf("Port metadata copied to %s\n", applyOut)
	}
	return nil
}
