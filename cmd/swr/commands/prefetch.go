package commands

import (
	"github.com/FranckCharlemagne01/super-afri-finds/internal/app"
	"github.com/spf13/cobra"
)

func (c *CLI) newPrefetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Warm the cache for a seller or a set of products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seller, _ := cmd.Flags().GetString("seller")
			products, _ := cmd.Flags().GetStringSlice("product")
			if seller == "" && len(products) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			stats, _ := cmd.Flags().GetBool("stats")
			return c.app.Prefetch(cmd.Context(), app.PrefetchRequest{
				SellerID:   seller,
				ProductIDs: products,
				Stats:      stats,
			})
		},
	}
	cmd.Flags().StringP("seller", "s", "", "Warm the products and shop of this seller")
	cmd.Flags().StringSliceP("product", "p", nil, "Warm these product pages")
	cmd.Flags().Bool("stats", false, "Print cache counters and recent fetches")
	return cmd
}
