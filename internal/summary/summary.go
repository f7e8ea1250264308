package summary

import (
	"fmt"
	"strings"
)

// Fallback is substituted for every field missing from the result row.
const Fallback = "n.v."

const singleRowNotice = "(Es wurde nur ein Eintrag gefunden.)"

type fields map[string]string

// get returns the first present key, or Fallback.
func (f fields) get(keys ...string) string {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return v
		}
	}
	return Fallback
}

// Summarize renders the first data row of rows as a sentence for domain.
// It returns "" when there is no data row or the domain has no template.
func Summarize(rows [][]string, domain Domain) string {
	if len(rows) < 2 {
		return ""
	}
	f := zip(rows[0], rows[1])

	var text string
	switch domain {
	case DomainSales:
		text = fmt.Sprintf("Der Kunde mit der ID %s hat %s Stück des Produkts mit der ID %s für insgesamt %s € gekauft (Datum: %s, Stadt: %s).",
			f.get("customer_id"), f.get("quantity"), f.get("product_id"),
			f.get("total_amount"), f.get("sale_date"), f.get("city"))
	case DomainProduct:
		text = fmt.Sprintf("Das Produkt \"%s\" (ID %s) kostet %s € und ist %s Mal auf Lager. Beschreibung: %s.",
			f.get("name"), f.get("id"), f.get("price"), f.get("stock"), f.get("description"))
	case DomainTeam:
		text = fmt.Sprintf("%s %s arbeitet als %s und ist per E-Mail unter %s erreichbar.",
			f.get("first_name", "name"), f.get("last_name"), f.get("position", "region"), f.get("email"))
	case DomainCustomer:
		text = fmt.Sprintf("Der Kunde %s (ID %s) kommt aus %s, %s und ist unter %s erreichbar.",
			f.get("name"), f.get("id"), f.get("city"), f.get("country"), f.get("email"))
	default:
		return ""
	}

	if len(rows) == 2 {
		text += " " + singleRowNotice
	}
	return text
}

// zip pairs header names with values. Extra cells on either side are
// dropped, and a repeated header keeps its last value.
func zip(header, values []string) fields {
	n := min(len(header), len(values))
	f := make(fields, n)
	for i := 0; i < n; i++ {
		key := strings.ToLower(strings.TrimSpace(header[i]))
		f[key] = values[i]
	}
	return f
}
