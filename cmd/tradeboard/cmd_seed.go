package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HerbHall/tradeboard/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, orders, closeStore, err := a.openRepos(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := seed.Sample()
			if err != nil {
				return err
			}
			l := &seed.Loader{Products: products, Orders: orders, Logger: a.logger.Named("seed")}
			stats, err := l.Load(cmd.Context(), c)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products and %d orders (%d already present).\n",
				stats.Products, stats.Orders, stats.Skipped)
			return nil
		},
	}
}
