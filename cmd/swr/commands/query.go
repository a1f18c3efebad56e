package commands

import (
	"os"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/app"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

const kindsHelp = `Kinds:
  seller-products <seller-id>   products published by a seller
  product <product-id>          a single product
  products                      active products, narrowed by --category and --search
  shop <seller-id>              a seller's shop
  conversations <user-id>       a user's conversations`

func (c *CLI) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <kind> [id]",
		Short: "Run a cached query and print the result",
		Long:  "Run a cached query and print its state and data.\n\n" + kindsHelp,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := queryRequest(cmd, args)
			if err != nil {
				return err
			}
			req.Repeat, _ = cmd.Flags().GetInt("repeat")
			req.Interval, _ = cmd.Flags().GetDuration("interval")
			return c.app.Query(cmd.Context(), req)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().IntP("repeat", "r", 0, "Run the query again this many times")
	cmd.Flags().Duration("interval", time.Second, "Wait between repeated runs")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <kind> [id]",
		Short: "Follow a query while realtime changes invalidate it",
		Long: "Follow a query and print every result. Change messages, one JSON object per line,\n" +
			"invalidate the cache and trigger a refetch.\n\n" + kindsHelp,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := queryRequest(cmd, args)
			if err != nil {
				return err
			}
			watch := app.WatchRequest{Query: req}

			changes, _ := cmd.Flags().GetString("changes")
			switch changes {
			case "":
			case "-":
				watch.Changes = cmd.InOrStdin()
			default:
				f, err := os.Open(changes) //#nosec G304 -- path given by the user
				if err != nil {
					return zerr.With(zerr.Wrap(err, "failed to open change log"), "path", changes)
				}
				defer func() { _ = f.Close() }()
				watch.Changes = f
			}
			return c.app.Watch(cmd.Context(), watch)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().String("changes", "", "Read change messages from a file, - for stdin")
	return cmd
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "Only list products of this category")
	cmd.Flags().StringP("search", "q", "", "Only list products whose title matches")
	cmd.Flags().Int("limit", 0, "Maximum number of products to list")
	cmd.Flags().Int("offset", 0, "Number of products to skip")
	cmd.Flags().Bool("stats", false, "Print cache counters and recent fetches")
}

func queryRequest(cmd *cobra.Command, args []string) (app.QueryRequest, error) {
	req := app.QueryRequest{Kind: app.QueryKind(args[0])}
	if len(args) > 1 {
		req.ID = args[1]
	}
	req.Filter.Category, _ = cmd.Flags().GetString("category")
	req.Filter.Search, _ = cmd.Flags().GetString("search")
	req.Filter.Limit, _ = cmd.Flags().GetInt("limit")
	req.Filter.Offset, _ = cmd.Flags().GetInt("offset")
	req.Stats, _ = cmd.Flags().GetBool("stats")

	if req.Filter.Limit < 0 || req.Filter.Offset < 0 {
		return app.QueryRequest{}, zerr.Wrap(domain.ErrValidation, "limit and offset must not be negative")
	}
	return req, nil
}
