package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/invoicer/internal/pdf"
)

// TextOptions holds flags for the text command.
type TextOptions struct {
	*RootOptions
	Format string
}

// PageText is one page of the text command's JSON output.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// NewTextCommand creates the text command.
func NewTextCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TextOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "text <invoice.pdf>",
		Short: "Print the text of each page of an exported PDF",
		Long: `Extract the text of an exported invoice page by page, to check which
items landed on which page. Text output separates pages with a form feed.

Example:
  invoicer text invoice-00014-0badcafe.pdf
  invoicer text invoice-00014-0badcafe.pdf --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.Format); err != nil {
				return err
			}
			return runText(cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (json|text)")
	return cmd
}

func runText(w io.Writer, opts *TextOptions, path string) error {
	doc, err := pdf.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening pdf", err)
	}
	texts, err := doc.Text()
	if err != nil {
		return WrapExitError(ExitFailure, "extracting text", err)
	}
	opts.Log.Debug("extracted pdf text", "path", path, "version", doc.Version(), "pages", len(texts))

	if opts.Format == "json" {
		pages := make([]PageText, len(texts))
		for i, t := range texts {
			pages[i] = PageText{Page: i + 1, Text: t}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}
	for i, t := range texts {
		if i > 0 {
			fmt.Fprintln(w, "\f")
		}
		fmt.Fprintln(w, t)
	}
	return nil
}
