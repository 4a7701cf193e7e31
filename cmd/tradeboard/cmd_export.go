package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/tradeboard/internal/client"
	"github.com/HerbHall/tradeboard/internal/export"
	"github.com/HerbHall/tradeboard/pkg/listquery"
	"github.com/HerbHall/tradeboard/pkg/models"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		qf  queryFlags
		out string
	)
	cmd := &cobra.Command{
		Use:       "export products|orders",
		Short:     "Write every page of a list to CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"products", "orders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := qf.partial()
			if err != nil {
				return err
			}
			q := listquery.NewQuery(p)

			var dst io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				dst = f
			}

			n, err := runExport(cmd.Context(), a.client(), args[0], q, dst)
			if err != nil {
				return err
			}
			a.logger.Info("export finished", zap.String("list", args[0]), zap.Int("rows", n), zap.String("out", out))
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", n, out)
			}
			return nil
		},
	}
	qf.register(cmd, 100)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(ctx context.Context, c *client.Client, list string, q listquery.Query, dst io.Writer) (int, error) {
	switch list {
	case "products":
		return export.Run(ctx, client.Fetcher[models.Product](c, productView.path), q, dst, export.Products)
	case "orders":
		return export.Run(ctx, client.Fetcher[models.Order](c, orderView.path), q, dst, export.Orders)
	default:
		return 0, fmt.Errorf("unknown list %q: want products or orders", list)
	}
}
