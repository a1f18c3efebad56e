package commands

import (
	"fmt"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/build"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/spf13/cobra"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmdo := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(cmdo, "%s version %s (commit: %s, date: %s)\n",
				domain.AppName, build.Version, build.Commit, build.Date)
		},
	}
}
