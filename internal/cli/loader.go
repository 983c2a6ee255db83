package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/porticus-lab/invoicer"
)

// LoadInvoice reads an invoice YAML file. Unknown fields are rejected.
//
//	number: "00014"
//	issued: 2024-03-08
//	issuer: {name: INVOICER X, address: "4 rue du Jardin"}
//	client: {name: Random Inc.}
//	items:
//	  - {id: 1, description: "Hosting\nMarch", units: 1, price: 4900, vat: 0.19}
func LoadInvoice(path string) (*invoicer.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read invoice: %w", err)
	}

	var inv invoicer.Invoice
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&inv); err != nil {
		return nil, fmt.Errorf("parse invoice %s: %w", path, err)
	}
	if err := validateInvoice(&inv); err != nil {
		return nil, fmt.Errorf("invoice %s: %w", path, err)
	}
	return &inv, nil
}

func validateInvoice(inv *invoicer.Invoice) error {
	seen := make(map[int64]bool, len(inv.Items))
	for i, it := range inv.Items {
		if seen[it.ID] {
			return fmt.Errorf("item %d: duplicate id %d", i+1, it.ID)
		}
		seen[it.ID] = true
		if it.Units < 0 || it.Price < 0 {
			return fmt.Errorf("item %d: units and price must not be negative", it.ID)
		}
		if it.VAT < 0 {
			return fmt.Errorf("item %d: negative VAT rate %v", it.ID, it.VAT)
		}
	}
	return nil
}
