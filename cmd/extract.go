package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	sim "github.com/comphy-lab/bubblesim/sim"
	"github.com/comphy-lab/bubblesim/sim/extract"
	"github.com/comphy-lab/bubblesim/sim/mesh"
)

var extractFields []string

// extractCmd resamples checkpoint fields onto a regular grid. Rows go to
// stderr, matching the downstream plotting pipeline.
var extractCmd = &cobra.Command{
	Use:   "extract <filename> <xmin> <ymin> <xmax> <ymax> <ny>",
	Short: "Resample a checkpoint onto a regular grid",
	Args:  cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var coords [4]float64
		for i := range coords {
			v, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return fmt.Errorf("argument %q: not a number", args[i+1])
			}
			coords[i] = v
		}
		ny, err := strconv.Atoi(args[5])
		if err != nil {
			return fmt.Errorf("argument %q: not an integer", args[5])
		}

		m, _, _, err := mesh.Restore(args[0])
		if err != nil {
			return err
		}
		rect := extract.Rect{Xmin: coords[0], Ymin: coords[1], Xmax: coords[2], Ymax: coords[3]}
		return extract.Grid(m, rect, ny, extractFields, sim.FieldT, os.Stderr)
	},
}

func init() {
	extractCmd.Flags().StringSliceVar(&extractFields, "fields", []string{sim.FieldT},
		"Fields to sample, in output column order")
}
