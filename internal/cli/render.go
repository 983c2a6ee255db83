package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/invoicer"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <invoice.yaml>",
		Short: "Paginate an invoice and write the settled HTML",
		Long: `Paginate an invoice in headless Chrome and write the HTML of the final
layout pass, one section per page.

Example:
  invoicer render invoice.yaml -o invoice.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, path string) error {
	inv, err := LoadInvoice(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading invoice", err)
	}

	conv, err := newConverter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer conv.Close()

	doc, err := conv.Paginate(commandContext(cmd), inv)
	if err != nil {
		return WrapExitError(ExitFailure, "paginating invoice", err)
	}
	opts.Log.Info("invoice paginated", "invoice", inv.Number, "pages", len(doc.Pages), "passes", doc.Passes)

	if opts.Output == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), doc.HTML)
		return err
	}
	if err := os.WriteFile(opts.Output, []byte(doc.HTML), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing html", err)
	}
	return nil
}

func newConverter(opts *RootOptions) (*invoicer.Converter, error) {
	convOpts, err := opts.Config.ConverterOptions(opts.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	conv, err := invoicer.NewConverter(convOpts...)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "starting browser", err)
	}
	return conv, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
