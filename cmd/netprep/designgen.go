package main

import (
	"fmt"

	"github.com/livinlefevreloca/netprep/tools/designgen"
	"github.com/spf13/cobra"
)

var (
	designgenInput  string
	designgenOutput string
)

var designgenCmd = &cobra.Command{
	Use:   "designgen",
	Short: "Generate a design database from a JSON description",
	Long: `Build a design database file from a JSON description of
components, pins and differential pairs. Meant for fixtures and demos,
not for board exports.

Examples:
  netprep designgen --input board.json --output board.netdb`,
	RunE: runDesigngen,
}

func init() {
	rootCmd.AddCommand(designgenCmd)

	designgenCmd.Flags().StringVar(&designgenInput, "input", "", "design description file (JSON)")
	designgenCmd.Flags().StringVar(&designgenOutput, "output", "", "design database output path")

	designgenCmd.MarkFlagRequired("input")
	designgenCmd.MarkFlagRequired("output")
}

func runDesigngen(cmd *cobra.Command, args []string) error {
	desc, err := designgen.LoadDescription(designgenInput)
	if err != nil {
		return err
	}
	if err := designgen.Generate(desc, designgenOutput); err != nil {
		return err
	}
	fmt.Printf("Design database written to %s\n", designgenOutput)
	return nil
}
