package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/porticus-lab/invoicer"
)

// Save inserts inv or replaces the stored invoice with the same number,
// items included. The write is atomic.
func (s *Store) Save(ctx context.Context, inv *invoicer.Invoice) error {
	if inv.Number == "" {
		return errors.New("store: save: invoice number is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", inv.Number, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (number, issuer_name, issuer_address, client_name, client_address, issued)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			issuer_name = excluded.issuer_name,
			issuer_address = excluded.issuer_address,
			client_name = excluded.client_name,
			client_address = excluded.client_address,
			issued = excluded.issued
	`,
		inv.Number,
		inv.Issuer.Name,
		inv.Issuer.Address,
		inv.Client.Name,
		inv.Client.Address,
		inv.Issued.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", inv.Number, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE invoice_number = ?`, inv.Number); err != nil {
		return fmt.Errorf("store: save %s: clear items: %w", inv.Number, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (invoice_number, position, id, description, units, price, vat)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", inv.Number, err)
	}
	defer stmt.Close()

	for i, it := range inv.Items {
		if _, err := stmt.ExecContext(ctx, inv.Number, i, it.ID, it.Description, it.Units, it.Price, it.VAT); err != nil {
			return fmt.Errorf("store: save %s: item %d: %w", inv.Number, it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: save %s: commit: %w", inv.Number, err)
	}
	return nil
}
