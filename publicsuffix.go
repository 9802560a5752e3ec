package biscuit

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// PublicSuffixList provides the public suffix of a domain. For example:
//   - the public suffix of "example.com" is "com",
//   - the public suffix of "foo1.foo2.foo3.co.uk" is "co.uk".
//
// Implementations of PublicSuffixList must be safe for concurrent use
// by multiple goroutines.
type PublicSuffixList interface {
	// PublicSuffix returns the public suffix of domain.
	PublicSuffix(domain string) string

	// String returns a description of the source of this public
	// suffix list.
	String() string
}

// DefaultPublicSuffixList is backed by golang.org/x/net/publicsuffix.
var DefaultPublicSuffixList PublicSuffixList = netPSL{}

type netPSL struct{}

func (netPSL) PublicSuffix(domain string) string {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return suffix
}

func (netPSL) String() string { return "golang.org/x/net/publicsuffix" }

// registrableDomain returns the registrable domain (eTLD+1) of domain,
// or "" when domain is itself a public suffix and no independent party
// can register under it. A nil psl falls back to DefaultPublicSuffixList.
func registrableDomain(domain string, psl PublicSuffixList) string {
	if domain == "" || IsIP(domain) {
		return ""
	}
	if psl == nil {
		psl = DefaultPublicSuffixList
	}
	suffix := psl.PublicSuffix(domain)
	if suffix == "" || suffix == domain {
		return ""
	}
	i := len(domain) - len(suffix)
	if i <= 0 || domain[i-1] != '.' {
		// The public suffix list is broken for this domain.
		return ""
	}
	prevDot := strings.LastIndex(domain[:i-1], ".")
	return domain[prevDot+1:]
}
