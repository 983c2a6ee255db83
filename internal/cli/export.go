package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <invoice.yaml>",
		Short: "Export an invoice to PDF",
		Long: `Paginate an invoice and print the settled layout to an A4 PDF.

Without -o the file gets a generated name, invoice-<number>-<suffix>.pdf.

Example:
  invoicer export invoice.yaml
  invoicer export invoice.yaml -o /tmp/00014.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default generated name)")
	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, path string) error {
	inv, err := LoadInvoice(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading invoice", err)
	}

	conv, err := newConverter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer conv.Close()

	res, err := conv.Export(commandContext(cmd), inv)
	if err != nil {
		return WrapExitError(ExitFailure, "exporting invoice", err)
	}

	out := opts.Output
	if out == "" {
		out = res.Filename()
	}
	if err := res.WriteToFile(out, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing pdf", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages, %d bytes)\n", out, res.PageCount(), res.Len())
	return nil
}
