package summary

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSalesContainsAllValues(t *testing.T) {
	rows := [][]string{
		{"customer_id", "product_id", "quantity", "total_amount", "sale_date", "city"},
		{"7", "3", "2", "40", "2024-01-01", "Berlin"},
	}
	text := Summarize(rows, DomainSales)
	for _, v := range rows[1] {
		assert.Contains(t, text, v)
	}
	assert.NotContains(t, text, Fallback)
}

func TestSummarizeMissingFieldUsesFallback(t *testing.T) {
	rows := [][]string{
		{"customer_id", "product_id", "quantity", "total_amount", "sale_date"},
		{"7", "3", "2", "40", "2024-01-01"},
	}
	text := Summarize(rows, DomainSales)
	assert.Contains(t, text, "Stadt: "+Fallback)
}

func TestSummarizeRequiresDataRow(t *testing.T) {
	assert.Equal(t, "", Summarize(nil, DomainSales))
	assert.Equal(t, "", Summarize([][]string{{"id", "name"}}, DomainProduct))
}

func TestSummarizeSingleRowNotice(t *testing.T) {
	header := []string{"name", "id", "email", "city", "country"}
	one := [][]string{header, {"Anna Müller", "2", "anna@example.com", "Munich", "Germany"}}
	two := [][]string{header, one[1], {"Lars", "3", "lars@example.com", "Hamburg", "Germany"}}

	assert.True(t, strings.HasSuffix(Summarize(one, DomainCustomer), singleRowNotice))
	multi := Summarize(two, DomainCustomer)
	assert.NotContains(t, multi, singleRowNotice)
	assert.Contains(t, multi, "Anna Müller")
	assert.NotContains(t, multi, "Lars")
}

func TestSummarizeTeamAlternatives(t *testing.T) {
	rows := [][]string{
		{"id", "name", "region"},
		{"4", "Laura", "Nord"},
	}
	text := Summarize(rows, DomainTeam)
	assert.Contains(t, text, "Laura "+Fallback)
	assert.Contains(t, text, "als Nord")

	rows = [][]string{
		{"first_name", "last_name", "position", "email", "region"},
		{"Michael", "Schneider", "Sales Manager", "m@example.com", "Süd"},
	}
	text = Summarize(rows, DomainTeam)
	assert.Contains(t, text, "Michael Schneider arbeitet als Sales Manager")
	assert.Contains(t, text, "m@example.com")
}

func TestSummarizeProduct(t *testing.T) {
	rows := [][]string{
		{"id", "name", "price", "stock"},
		{"1", "Laptop Pro 15", "1499.99", "25"},
	}
	text := Summarize(rows, DomainProduct)
	assert.Contains(t, text, "Laptop Pro 15")
	assert.Contains(t, text, "1499.99")
	assert.Contains(t, text, "Beschreibung: "+Fallback)
}

func TestSummarizeProductKeepsNameAsWritten(t *testing.T) {
	rows := [][]string{
		{"id", "name", "price", "stock", "description"},
		{"5", "27\" Monitor", "299.99", "40", "4K UHD display"},
	}
	text := Summarize(rows, DomainProduct)
	assert.Contains(t, text, `Das Produkt "27" Monitor" (ID 5)`)
	assert.NotContains(t, text, `\"`)
}

func TestSummarizeZipTruncates(t *testing.T) {
	rows := [][]string{
		{"name", "id", "email", "city", "country"},
		{"Hans", "1"},
	}
	text := Summarize(rows, DomainCustomer)
	assert.Contains(t, text, "Hans (ID 1)")
	assert.Equal(t, 3, strings.Count(text, Fallback))

	rows = [][]string{
		{"name"},
		{"Hans", "1", "extra"},
	}
	text = Summarize(rows, DomainCustomer)
	assert.Contains(t, text, "(ID "+Fallback+")")
}

func TestSummarizeGenericDomain(t *testing.T) {
	rows := [][]string{{"id"}, {"1"}}
	assert.Equal(t, "", Summarize(rows, DomainGeneric))
	assert.Equal(t, "", Summarize(rows, Domain(42)))
}

func TestParseDomain(t *testing.T) {
	d, ok := ParseDomain(" Sales ")
	require.True(t, ok)
	assert.Equal(t, DomainSales, d)

	d, ok = ParseDomain("inventory")
	assert.False(t, ok)
	assert.Equal(t, DomainGeneric, d)
}

func TestDomainJSON(t *testing.T) {
	var v struct {
		Domain Domain `json:"domain"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"domain":"team"}`), &v))
	assert.Equal(t, DomainTeam, v.Domain)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"domain":"team"}`, string(out))
}
