package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/invoicer"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	Format string
}

// InvoiceInfo is the summary printed by the info command.
type InvoiceInfo struct {
	Number       string              `json:"number"`
	Items        int                 `json:"items"`
	Total        int64               `json:"total"`
	VAT          []invoicer.VATGroup `json:"vat"`
	TotalWithVAT int64               `json:"total_with_vat"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info <invoice.yaml>",
		Short: "Show totals and the VAT breakdown of an invoice",
		Long: `Show the totals of an invoice without starting a browser. Amounts in
JSON output are integer minor units.

Example:
  invoicer info invoice.yaml
  invoicer info invoice.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.Format); err != nil {
				return err
			}
			return runInfo(cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (json|text)")
	return cmd
}

func runInfo(w io.Writer, opts *InfoOptions, path string) error {
	inv, err := LoadInvoice(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading invoice", err)
	}

	info := InvoiceInfo{
		Number:       inv.Number,
		Items:        len(inv.Items),
		Total:        inv.Total(),
		VAT:          inv.VATBreakdown(),
		TotalWithVAT: inv.TotalWithVAT(),
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	f, err := opts.Config.Formatter()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	fmt.Fprintf(w, "Invoice: %s\n", info.Number)
	fmt.Fprintf(w, "Items:   %d\n", info.Items)
	fmt.Fprintf(w, "Total:   %s\n", f.Money(info.Total))
	for _, g := range info.VAT {
		fmt.Fprintf(w, "VAT %-4s %s\n", f.Rate(g.Rate), f.Money(g.Amount))
	}
	fmt.Fprintf(w, "Total incl. VAT: %s\n", f.Money(info.TotalWithVAT))
	return nil
}
