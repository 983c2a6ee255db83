package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/invoicer"
)

// createTestStore opens a fresh database in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testInvoice(number string) *invoicer.Invoice {
	return &invoicer.Invoice{
		Number: number,
		Issuer: invoicer.Party{Name: "INVOICER X", Address: "4 rue du Jardin\n75005 Paris"},
		Client: invoicer.Party{Name: "Random Inc.", Address: "32 rue du Fontaine"},
		Issued: time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC),
		Items: []invoicer.LineItem{
			{ID: 7, Description: "Hosting\nMarch", Units: 1, Price: 4900, VAT: 0.19},
			{ID: 3, Description: "Support", Units: 4, Price: 12500, VAT: 0.22},
			{ID: 5, Description: "Domain", Units: 1, Price: 1299, VAT: 0},
		},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, testInvoice("00014")))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Load(ctx, "00014")
	require.NoError(t, err)
	assert.Len(t, got.Items, 3)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := testInvoice("00014")
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx, "00014")
	require.NoError(t, err)
	assert.Equal(t, want.Issuer, got.Issuer)
	assert.Equal(t, want.Client, got.Client)
	assert.True(t, want.Issued.Equal(got.Issued))
	assert.Equal(t, want.Items, got.Items, "items must load in saved order")
}

func TestSave_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testInvoice("00014")))

	updated := testInvoice("00014")
	updated.Client.Name = "Other GmbH"
	updated.Items = updated.Items[:1]
	require.NoError(t, s.Save(ctx, updated))

	got, err := s.Load(ctx, "00014")
	require.NoError(t, err)
	assert.Equal(t, "Other GmbH", got.Client.Name)
	assert.Len(t, got.Items, 1)
}

func TestSave_EmptyNumber(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.Save(context.Background(), testInvoice("")))
}

func TestLoad_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_NoItems(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := testInvoice("00001")
	inv.Items = nil
	require.NoError(t, s.Save(ctx, inv))

	got, err := s.Load(ctx, "00001")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	numbers, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, numbers)
	assert.Empty(t, numbers)

	for _, n := range []string{"00020", "00003", "00014"} {
		require.NoError(t, s.Save(ctx, testInvoice(n)))
	}
	numbers, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"00003", "00014", "00020"}, numbers)
}
