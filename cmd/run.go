package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/comphy-lab/bubblesim/sim"
)

var (
	scenario    string  // scenario preset name
	configPath  string  // optional YAML parameter override
	fixedDt     float64 // increment of the placeholder integrator
	coordinator bool    // whether this process performs file I/O
)

// runCmd executes the simulation driver. All physical parameters are
// compiled-in constants per scenario; a YAML file can override individual
// fields.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bubble-wrinkling simulation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var p sim.Params
		switch scenario {
		case "soap-bubble":
			p = sim.SoapBubble()
		case "soap-bubble-half":
			p = sim.SoapBubbleHalf()
		default:
			return fmt.Errorf("unknown scenario %q (want soap-bubble or soap-bubble-half)", scenario)
		}
		if configPath != "" {
			var err error
			if p, err = sim.LoadParams(configPath, p); err != nil {
				return err
			}
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid parameters: %w", err)
		}

		if err := os.MkdirAll(p.SnapshotDir, 0o755); err != nil {
			logrus.Fatalf("cannot create snapshot directory %s: %v", p.SnapshotDir, err)
		}

		logrus.Infof("Level %d, tmax %g, Bo %g, Oh %3.2e, Lo %g",
			p.MaxLevel, p.Tmax, p.Bond, p.Ohnesorge, p.DomainSize)

		s := sim.NewScheduler(&p, sim.FixedStep{Dt: fixedDt}, coordinator, os.Stderr)
		if err := s.Run(); err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&scenario, "scenario", "soap-bubble", "Scenario preset (soap-bubble, soap-bubble-half)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding scenario parameters")
	runCmd.Flags().Float64Var(&fixedDt, "dt", 1e-3, "Time increment of the placeholder integrator")
	runCmd.Flags().BoolVar(&coordinator, "coordinator", true, "Perform file I/O (exactly one process per run)")
}
