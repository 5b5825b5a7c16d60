package cmd

import (
	"os"

	"github.com/spf13/cobra"

	sim "github.com/comphy-lab/bubblesim/sim"
	"github.com/comphy-lab/bubblesim/sim/extract"
	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// facetsCmd writes the interface facets of a checkpoint's volume-fraction
// field to stderr.
var facetsCmd = &cobra.Command{
	Use:   "facets <filename>",
	Short: "Extract interface facets from a checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		m, _, _, err := mesh.Restore(args[0])
		if err != nil {
			return err
		}
		return extract.Facets(m, sim.FieldF, os.Stderr)
	},
}
