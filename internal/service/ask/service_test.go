package ask

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querychat/internal/backend"
	"querychat/internal/config"
	"querychat/internal/storage"
	"querychat/internal/table"
)

type stubGenerator struct {
	query string
	err   error
}

func (g stubGenerator) Generate(context.Context, string) (string, error) {
	return g.query, g.err
}

func seededDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{Databases: map[string]config.DatabaseConfig{
		"sqlite3": {DSN: filepath.Join(t.TempDir(), "sales.db")},
	}}
	db, err := storage.Open("sqlite3", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(db, "sqlite3"))
	require.NoError(t, storage.Seed(context.Background(), db))
	return db
}

func detailOf(t *testing.T, err error) string {
	t.Helper()
	var ae *Error
	require.True(t, errors.As(err, &ae), "expected *ask.Error, got %v", err)
	return ae.Detail
}

func TestAskRendersRows(t *testing.T) {
	svc := NewService(seededDB(t), stubGenerator{query: "SELECT id, name, city FROM customers WHERE city = 'Berlin'"})

	resp, err := svc.Ask(context.Background(), "Welche Kunden sind in Berlin?")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, city FROM customers WHERE city = 'Berlin'", resp.Query)

	rows := table.Extract(resp.ResultsHTML)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name", "city"}, rows[0])
	assert.Equal(t, []string{"1", "Hans Johannesen", "Berlin"}, rows[1])
}

func TestAskNoResults(t *testing.T) {
	svc := NewService(seededDB(t), stubGenerator{query: "SELECT * FROM customers WHERE city = 'Paris'"})

	resp, err := svc.Ask(context.Background(), "Kunden in Paris")
	require.NoError(t, err)
	assert.Equal(t, table.NoResultsMarker, resp.ResultsHTML)
	assert.True(t, table.IsNoResults(resp.ResultsHTML))
}

func TestAskNullCells(t *testing.T) {
	svc := NewService(seededDB(t), stubGenerator{query: "SELECT name, NULL AS discount FROM products WHERE id = 1"})

	resp, err := svc.Ask(context.Background(), "Rabatt von Produkt 1")
	require.NoError(t, err)
	rows := table.Extract(resp.ResultsHTML)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Laptop Pro 15", "—"}, rows[1])
}

func TestAskCategoryAndRegion(t *testing.T) {
	db := seededDB(t)

	resp, err := NewService(db, stubGenerator{query: "SELECT name FROM products WHERE category = 'Laptops'"}).
		Ask(context.Background(), "Welche Produkte gehören zur Kategorie 'Laptops'?")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name"}, {"Laptop Pro 15"}}, table.Extract(resp.ResultsHTML))

	resp, err = NewService(db, stubGenerator{query: "SELECT first_name, last_name FROM employees WHERE region = 'Berlin'"}).
		Ask(context.Background(), "Mitarbeiter in Region 'Berlin'")
	require.NoError(t, err)
	assert.Len(t, table.Extract(resp.ResultsHTML), 5)
}

func TestAskRejections(t *testing.T) {
	db := seededDB(t)
	cases := []struct {
		name     string
		gen      stubGenerator
		question string
		want     string
	}{
		{"empty question", stubGenerator{query: "SELECT 1"}, "  ", "query must not be empty"},
		{"generation error", stubGenerator{err: errors.New("quota exceeded")}, "x", "SQL generation error: quota exceeded"},
		{"unsafe", stubGenerator{query: "DELETE FROM sales"}, "lösche alles", "Generated query is unsafe: DELETE FROM sales"},
		{"select all without intent", stubGenerator{query: "SELECT * FROM sales"}, "Verkäufe", unclearRequest},
		{"execution error", stubGenerator{query: "SELECT * FROM invoices WHERE id = 1"}, "Rechnung 1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewService(db, tc.gen).Ask(context.Background(), tc.question)
			detail := detailOf(t, err)
			if tc.want == "" {
				assert.Contains(t, detail, "SQL execution error")
				return
			}
			assert.Equal(t, tc.want, detail)
		})
	}
}

func TestAskSelectAllWithIntent(t *testing.T) {
	svc := NewService(seededDB(t), stubGenerator{query: "SELECT * FROM sales"})

	resp, err := svc.Ask(context.Background(), "Zeig mir alle Verkäufe")
	require.NoError(t, err)
	assert.Len(t, table.Extract(resp.ResultsHTML), 21)
}

func TestErrorUnwrapsToBackendError(t *testing.T) {
	err := error(&Error{Detail: "kaputt"})
	var be *backend.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 400, be.Status)
	assert.Equal(t, "kaputt", be.Detail)
}

func TestRenderTableEscapes(t *testing.T) {
	out := RenderTable([]string{"name"}, [][]string{{"<script>alert(1)</script>"}, {"Müller & Söhne"}})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<th>name</th>")

	rows := table.Extract(out)
	require.Len(t, rows, 3)
	assert.Equal(t, "<script>alert(1)</script>", rows[1][0])
	assert.Equal(t, "Müller & Söhne", rows[2][0])
}
