// Package commands implements the CLI commands for the swr query cache tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/app"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/build"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for swr.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Query(ctx context.Context, req app.QueryRequest) error
	Prefetch(ctx context.Context, req app.PrefetchRequest) error
	UpdateProduct(ctx context.Context, productID string, update domain.ProductUpdate) error
	Watch(ctx context.Context, req app.WatchRequest) error
	ShowConfig(w io.Writer) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           domain.AppName,
		Short:         "Stale-while-revalidate queries against the marketplace platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newQueryCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newPrefetchCmd())
	rootCmd.AddCommand(c.newUpdateProductCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream for the root command. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}
