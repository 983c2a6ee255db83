// Command invoicer paginates invoices in headless Chrome and exports them
// to PDF.
//
// Usage:
//
//	invoicer render <invoice.yaml> [-o file.html]
//	invoicer export <invoice.yaml> [-o file.pdf]
//	invoicer import <invoice.yaml>... [--db invoices.db]
//	invoicer list [--db invoices.db]
//	invoicer serve [--db invoices.db] [--listen :8080]
//	invoicer info <invoice.yaml> [--format json]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/porticus-lab/invoicer/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
