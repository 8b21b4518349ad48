package main

import (
	"fmt"

	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/edb"
	"github.com/spf13/cobra"
)

var infoDesign string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the role candidates and net summary of a design",
	Long: `Open a design database read-only and print its role-candidate
components with pin counts, the net count, and the differential-pair
count.

Examples:
  netprep info --design boards/dimm.netdb`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVar(&infoDesign, "design", "", "design database path")
}

func runInfo(cmd *cobra.Command, args []string) error {
	path, err := designPath(infoDesign)
	if err != nil {
		return err
	}
	job, err := cfg.Analysis()
	if err != nil {
		return err
	}

	d, err := edb.Open(path, job.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	catalog := design.NewCatalog(d, 0)
	components, err := catalog.Components()
	if err != nil {
		return err
	}
	nets, err := d.Nets()
	if err != nil {
		return err
	}
	pairs, err := d.DifferentialPairs()
	if err != nil {
		return err
	}

	fmt.Printf("Design: %s\n", path)
	if len(components) == 0 {
		fmt.Println("Role candidates: none")
	} else {
		fmt.Println("Role candidates:")
		for _, comp := range components {
			fmt.Printf("  %-12s %4d pins\n", comp.Name, len(comp.Pins))
		}
	}
	fmt.Printf("Nets: %d\n", len(nets))
	fmt.Printf("Differential pairs: %d\n", len(pairs))
	return nil
}
