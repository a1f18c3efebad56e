package commands

import (
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newUpdateProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-product <product-id>",
		Short: "Update a product and invalidate the queries showing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update domain.ProductUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				v, _ := flags.GetString("title")
				update.Title = &v
			}
			if flags.Changed("description") {
				v, _ := flags.GetString("description")
				update.Description = &v
			}
			if flags.Changed("price") {
				v, _ := flags.GetFloat64("price")
				update.Price = &v
			}
			if flags.Changed("stock") {
				v, _ := flags.GetInt("stock")
				update.Stock = &v
			}
			if flags.Changed("active") {
				v, _ := flags.GetBool("active")
				update.IsActive = &v
			}
			if update.IsEmpty() {
				return zerr.Wrap(domain.ErrValidation, "no field to update")
			}
			return c.app.UpdateProduct(cmd.Context(), args[0], update)
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().Float64("price", 0, "New price")
	cmd.Flags().Int("stock", 0, "New stock level")
	cmd.Flags().Bool("active", true, "Whether the product is listed")
	return cmd
}
