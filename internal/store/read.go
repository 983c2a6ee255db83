package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/porticus-lab/invoicer"
)

// Load returns the invoice with the given number, items in saved order.
// It returns ErrNotFound if no such invoice exists.
func (s *Store) Load(ctx context.Context, number string) (*invoicer.Invoice, error) {
	inv := &invoicer.Invoice{Number: number}
	var issued string
	err := s.db.QueryRowContext(ctx, `
		SELECT issuer_name, issuer_address, client_name, client_address, issued
		FROM invoices
		WHERE number = ?
	`, number).Scan(
		&inv.Issuer.Name,
		&inv.Issuer.Address,
		&inv.Client.Name,
		&inv.Client.Address,
		&issued,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", number, err)
	}

	inv.Issued, err = time.Parse(time.RFC3339, issued)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: issued date: %w", number, err)
	}

	inv.Items, err = s.loadItems(ctx, number)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Store) loadItems(ctx context.Context, number string) ([]invoicer.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, units, price, vat
		FROM items
		WHERE invoice_number = ?
		ORDER BY position ASC
	`, number)
	if err != nil {
		return nil, fmt.Errorf("store: query items of %s: %w", number, err)
	}
	defer rows.Close()

	var items []invoicer.LineItem
	for rows.Next() {
		var it invoicer.LineItem
		if err := rows.Scan(&it.ID, &it.Description, &it.Units, &it.Price, &it.VAT); err != nil {
			return nil, fmt.Errorf("store: scan item of %s: %w", number, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate items of %s: %w", number, err)
	}
	return items, nil
}

// List returns the numbers of all stored invoices in ascending order.
// It returns an empty slice, not nil, for an empty store.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT number FROM invoices ORDER BY number COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list invoices: %w", err)
	}
	defer rows.Close()

	numbers := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("store: scan invoice number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate invoices: %w", err)
	}
	return numbers, nil
}
