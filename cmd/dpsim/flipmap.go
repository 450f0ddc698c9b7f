package main

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/optim"
	"github.com/san-kum/dpsim/internal/viz"
)

func newFlipMapCmd() *cobra.Command {
	var f simFlags
	var (
		n       int
		limit   float64
		workers int
	)
	cmd := &cobra.Command{
		Use:   "flipmap",
		Short: "map how soon the outer arm flips over a grid of release angles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			integ, err := integrators.Lookup(cfg.Integrator)
			if err != nil {
				return err
			}

			axis := optim.Linspace(-limit, limit, n)
			log.WithFields(logrus.Fields{"cells": n * n, "duration": cfg.Duration()}).Info("searching flip grid")

			m, err := optim.NewGridSearch(cfg.Params, integ, workers).Search(cmd.Context(), axis, axis, cfg.SimConfig())
			if err != nil {
				return err
			}

			fmt.Print(viz.FlipMapASCII(m))
			if best, ok := m.Fastest(); ok {
				fmt.Println(viz.Section("FASTEST FLIP",
					viz.KV("θ1", best.Theta1),
					viz.KV("θ2", best.Theta2),
					viz.KV("time", best.FirstFlip),
					viz.KV("flipped cells", fmt.Sprintf("%d / %d", m.Flipped(), n*n)),
				))
			} else {
				fmt.Println("no cell flipped within the run")
			}
			return nil
		},
	}
	addSimFlags(cmd, &f)
	cmd.Flags().IntVar(&n, "n", 32, "grid points per axis")
	cmd.Flags().Float64Var(&limit, "limit", math.Pi*0.99, "release angles span [-limit, limit]")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	return cmd
}
