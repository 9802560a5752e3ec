package biscuit

import (
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// CanonicalDomain returns the canonicalized form of a host per
// RFC 6265 section 5.1.2: surrounding whitespace and a single leading
// dot removed, internationalized labels transcoded to their A-label
// form, and the result lower-cased.
func CanonicalDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	domain = strings.TrimPrefix(domain, ".")
	for i := 0; i < len(domain); i++ {
		if domain[i] >= utf8.RuneSelf {
			if ascii, err := idna.ToASCII(domain); err == nil {
				domain = ascii
			}
			break
		}
	}
	return strings.ToLower(domain)
}

// IsIP reports whether host is an IPv4 or IPv6 literal.
func IsIP(host string) bool {
	return net.ParseIP(host) != nil
}

// DomainMatch implements "domain-match" of RFC 6265 section 5.1.3.
// Both arguments are expected to be canonicalized already.
func DomainMatch(host, domain string) bool {
	if domain == "" {
		return false
	}
	if host == domain {
		return true
	}
	return !IsIP(host) && hasDotSuffix(host, domain)
}

// hasDotSuffix reports whether s ends in "."+suffix.
func hasDotSuffix(s, suffix string) bool {
	return len(s) > len(suffix) && s[len(s)-len(suffix)-1] == '.' && s[len(s)-len(suffix):] == suffix
}

// DefaultPath returns the directory part of a request URI's path
// according to RFC 6265 section 5.1.4.
func DefaultPath(path string) string {
	if len(path) == 0 || path[0] != '/' {
		return "/" // Path is empty or malformed.
	}
	i := strings.LastIndex(path, "/") // Path starts with "/", so i != -1.
	if i == 0 {
		return "/" // Path has the form "/abc".
	}
	return path[:i] // Path is either of form "/abc/xyz" or "/abc/xyz/".
}

// PathMatch implements "path-match" according to RFC 6265 section 5.1.4.
func PathMatch(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if strings.HasPrefix(requestPath, cookiePath) {
		if cookiePath[len(cookiePath)-1] == '/' {
			return true // The "/any/" matches "/any/path" case.
		} else if requestPath[len(cookiePath):][0] == '/' {
			return true // The "/any" matches "/any/path" case.
		}
	}
	return false
}

// PermutePath returns every path prefix of path, longest first, ending
// with "/". Stores use it to enumerate the index keys a request path
// can reach.
func PermutePath(path string) []string {
	if path == "" || path == "/" {
		return []string{"/"}
	}
	path = strings.TrimSuffix(path, "/")
	permutations := []string{path}
	for len(path) > 1 {
		i := strings.LastIndex(path, "/")
		if i == 0 {
			break
		}
		path = path[:i]
		permutations = append(permutations, path)
	}
	return append(permutations, "/")
}

// PermuteDomain returns domain and every parent domain down to the
// registrable domain, shortest first. It returns nil when domain has no
// registrable parent (it is itself a public suffix, or an IP literal).
// A nil list falls back to DefaultPublicSuffixList.
func PermuteDomain(domain string, psl PublicSuffixList) []string {
	reg := registrableDomain(domain, psl)
	if reg == "" {
		return nil
	}
	if reg == domain {
		return []string{domain}
	}
	prefix := domain[:len(domain)-len(reg)-1]
	permutations := []string{reg}
	for prefix != "" {
		i := strings.LastIndex(prefix, ".")
		permutations = append(permutations, prefix[i+1:]+"."+permutations[len(permutations)-1])
		if i < 0 {
			break
		}
		prefix = prefix[:i]
	}
	return permutations
}
