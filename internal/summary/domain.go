package summary

import (
	"fmt"
	"strings"
)

// Domain selects the summary template used for a channel.
type Domain int

const (
	// DomainGeneric channels never produce a summary.
	DomainGeneric Domain = iota
	DomainSales
	DomainProduct
	DomainTeam
	DomainCustomer
)

var domainNames = map[Domain]string{
	DomainGeneric:  "generic",
	DomainSales:    "sales",
	DomainProduct:  "product",
	DomainTeam:     "team",
	DomainCustomer: "customer",
}

// ParseDomain maps a tag such as "Sales" to its Domain. Unknown tags
// return DomainGeneric and false.
func ParseDomain(tag string) (Domain, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for d, name := range domainNames {
		if name == tag {
			return d, true
		}
	}
	return DomainGeneric, false
}

func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return fmt.Sprintf("domain(%d)", int(d))
}

// MarshalText encodes the domain as its tag.
func (d Domain) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts any tag; unknown tags decode as DomainGeneric.
func (d *Domain) UnmarshalText(text []byte) error {
	*d, _ = ParseDomain(string(text))
	return nil
}
