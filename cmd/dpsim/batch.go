package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/automation"
	"github.com/san-kum/dpsim/internal/viz"
)

func newBatchCmd() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "batch <scenario.yaml>",
		Short: "run every entry of a scenario file and store the runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"scenario": sc.Name, "runs": len(sc.Runs)}).Info("starting batch")

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var rows [][]string
			_, err = automation.RunScenario(ctx, sc, func(o automation.Outcome) error {
				id := "-"
				if !noSave {
					saved, err := st.Save(ctx, o.Result.Trajectory, o.Result.Metadata(o.Name))
					if err != nil {
						return err
					}
					id = saved[:8]
				}
				log.WithFields(logrus.Fields{"run": o.Name, "id": id}).Info("batch run finished")
				rows = append(rows, []string{
					o.Name, id, o.Config.Integrator, fmt.Sprintf("%g", o.Config.Dt),
					strconv.Itoa(o.Config.Steps), fmtE(o.Result.Energy.MaxDrift),
					strconv.Itoa(len(o.Result.Crossings)), o.Result.Elapsed.String(),
				})
				return nil
			})
			if len(rows) > 0 {
				fmt.Println(viz.Table([]string{"RUN", "ID", "INTEG", "DT", "STEPS", "MAX DRIFT", "CROSSINGS", "TIME"}, rows))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "run without storing results")
	return cmd
}
