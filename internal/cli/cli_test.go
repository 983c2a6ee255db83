package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/invoicer/internal/pdf/pdftest"
)

const invoiceYAML = `number: "00014"
issued: 2024-03-08
issuer:
  name: INVOICER X
  address: 4 rue du Jardin, 75005 Paris
client:
  name: Random Inc.
items:
  - id: 1
    description: "Consulting\nMarch"
    units: 2
    price: 10000
    vat: 0.21
  - id: 2
    description: Cancelled
    units: 0
    price: 15000
    vat: 0.18
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("INVOICER_CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "invoicer", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"render", "export", "import", "list", "serve", "info", "text"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.DefValue)
}

func TestLoadInvoice(t *testing.T) {
	inv, err := LoadInvoice(writeFile(t, "invoice.yaml", invoiceYAML))
	require.NoError(t, err)

	assert.Equal(t, "00014", inv.Number)
	assert.Equal(t, "INVOICER X", inv.Issuer.Name)
	assert.Equal(t, 2024, inv.Issued.Year())
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Consulting", inv.Items[0].Title())
	assert.Equal(t, []string{"March"}, inv.Items[0].SubLines())
}

func TestLoadInvoice_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "number: x\ncustomer: y\n",
		"duplicate id":  "items:\n  - {id: 1, units: 1, price: 1}\n  - {id: 1, units: 1, price: 1}\n",
		"negative":      "items:\n  - {id: 1, units: -1, price: 1}\n",
		"negative vat":  "items:\n  - {id: 1, units: 1, price: 1, vat: -0.1}\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadInvoice(writeFile(t, "invoice.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestInfo_Text(t *testing.T) {
	out, err := execute(t, "info", writeFile(t, "invoice.yaml", invoiceYAML))
	require.NoError(t, err)

	assert.Contains(t, out, "Invoice: 00014")
	assert.Contains(t, out, "Items:   2")
	assert.Contains(t, out, "Total:   € 200.00")
	assert.Contains(t, out, "VAT 21 % € 42.00")
	assert.Contains(t, out, "Total incl. VAT: € 242.00")
	assert.NotContains(t, out, "18 %", "zero-total rates are not listed")
}

func TestInfo_JSON(t *testing.T) {
	out, err := execute(t, "info", "--format", "json", writeFile(t, "invoice.yaml", invoiceYAML))
	require.NoError(t, err)

	var info InvoiceInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "00014", info.Number)
	assert.Equal(t, int64(20000), info.Total)
	assert.Equal(t, int64(24200), info.TotalWithVAT)
	require.Len(t, info.VAT, 1)
	assert.Equal(t, int64(4200), info.VAT[0].Amount)
}

func TestInfo_InvalidFormat(t *testing.T) {
	_, err := execute(t, "info", "--format", "xml", writeFile(t, "invoice.yaml", invoiceYAML))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInfo_MissingFile(t *testing.T) {
	_, err := execute(t, "info", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestImportAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "invoices.db")
	first := writeFile(t, "a.yaml", invoiceYAML)
	second := writeFile(t, "b.yaml", strings.Replace(invoiceYAML, `"00014"`, `"00003"`, 1))

	out, err := execute(t, "import", "--db", db, first, second)
	require.NoError(t, err)
	assert.Equal(t, "00014\n00003\n", out)

	out, err = execute(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "00003\n00014\n", out)
}

func TestConfigFlag(t *testing.T) {
	cfg := writeFile(t, "invoicer.yaml", "currency: USD\n")

	out, err := execute(t, "--config", cfg, "info", writeFile(t, "invoice.yaml", invoiceYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "$")

	_, err = execute(t, "--config", writeFile(t, "bad.yaml", "theme: sepia\n"), "info", "x.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", assert.AnError)))
}

func TestText_Pages(t *testing.T) {
	path := writeFile(t, "invoice.pdf", string(pdftest.Build("INVOICER X\nConsulting", "Total incl. VAT € 242.00")))

	out, err := execute(t, "text", path)
	require.NoError(t, err)
	assert.Equal(t, "INVOICER X\nConsulting\n\f\nTotal incl. VAT € 242.00\n", out)

	out, err = execute(t, "text", "--format", "json", path)
	require.NoError(t, err)
	var pages []PageText
	require.NoError(t, json.Unmarshal([]byte(out), &pages))
	assert.Equal(t, []PageText{
		{Page: 1, Text: "INVOICER X\nConsulting"},
		{Page: 2, Text: "Total incl. VAT € 242.00"},
	}, pages)
}

func TestText_NotAPDF(t *testing.T) {
	_, err := execute(t, "text", writeFile(t, "invoice.yaml", invoiceYAML))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
