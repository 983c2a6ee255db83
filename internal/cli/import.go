package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/invoicer/internal/store"
)

// StoreOptions holds flags for commands working on the invoice database.
type StoreOptions struct {
	*RootOptions
	Database string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <invoice.yaml>...",
		Short: "Save invoices to the database",
		Long: `Save one or more invoice files to the SQLite database served by
"invoicer serve". An invoice with an existing number is replaced.

Example:
  invoicer import --db invoices.db 00014.yaml 00015.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	return cmd
}

func runImport(cmd *cobra.Command, opts *StoreOptions, paths []string) error {
	st, err := openStore(cmd, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	for _, path := range paths {
		inv, err := LoadInvoice(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading invoice", err)
		}
		if err := st.Save(ctx, inv); err != nil {
			return WrapExitError(ExitFailure, "saving invoice", err)
		}
		opts.Log.Info("invoice imported", "invoice", inv.Number, "items", len(inv.Items))
		fmt.Fprintln(cmd.OutOrStdout(), inv.Number)
	}
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the invoice numbers in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer st.Close()

			numbers, err := st.List(commandContext(cmd))
			if err != nil {
				return WrapExitError(ExitFailure, "listing invoices", err)
			}
			for _, n := range numbers {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	return cmd
}

func openStore(cmd *cobra.Command, opts *StoreOptions) (*store.Store, error) {
	path := stringFlag(cmd, "db", opts.Database, opts.Config.Database)
	opts.Log.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening database", err)
	}
	return st, nil
}
