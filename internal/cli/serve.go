package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/invoicer/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	StoreOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve invoice PDFs over HTTP",
		Long: `Serve invoices stored in the database.

  GET /invoices/{number}.pdf   PDF download
  GET /invoices/{number}       paginated HTML

Example:
  invoicer serve --db invoices.db --listen :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	st, err := openStore(cmd, &opts.StoreOptions)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			opts.Log.Error("error closing database", "error", err)
		}
	}()

	conv, err := newConverter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer conv.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := stringFlag(cmd, "listen", opts.Listen, opts.Config.Listen)
	srv := server.New(st, conv, opts.Log)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	opts.Log.Info("server stopped gracefully")
	return nil
}
