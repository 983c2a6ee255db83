// Package cli implements the invoicer command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/invoicer/internal/config"
)

// RootOptions holds global flags and the state they resolve to.
type RootOptions struct {
	Verbose    bool
	ConfigPath string

	// Set by the root command before any subcommand runs.
	Config config.Config
	Log    *slog.Logger
}

// NewRootCommand creates the root command of the invoicer CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "invoicer",
		Short: "Paginate invoices in headless Chrome and export them to PDF",
		Long: `invoicer renders invoices as HTML, lets a headless browser lay them out
page by page until no page overflows, and prints the result to PDF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(opts.Log)

			path := opts.ConfigPath
			if path == "" {
				path = os.Getenv("INVOICER_CONFIG")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}
			opts.Config = cfg
			opts.Log.Debug("config loaded", "path", path, "locale", cfg.Locale, "currency", cfg.Currency)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (default $INVOICER_CONFIG)")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewTextCommand(opts))

	return cmd
}

// stringFlag returns the flag value when it was set on the command line
// and fallback otherwise.
func stringFlag(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) || fallback == "" {
		return value
	}
	return fallback
}

func checkFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of [text json]", format))
}
