// Package store provides SQLite-backed storage for invoices.
//
// The store is the invoice source of the HTTP export endpoint and the
// target of the import command. Line items keep their insertion position,
// so an invoice loads back with its items in the order they were saved.
//
// Usage:
//
//	s, err := store.Open("invoices.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = s.Save(ctx, inv)
//	inv, err = s.Load(ctx, "00014")
package store
