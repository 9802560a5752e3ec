package biscuit

import "errors"

var (
	// ErrParse is returned when a Set-Cookie line cannot be parsed.
	ErrParse = errors.New("cookie failed to parse")

	// ErrPublicSuffix is returned when a cookie names a Domain under
	// which independent parties register, such as "co.uk".
	ErrPublicSuffix = errors.New("cookie domain is a public suffix")

	// ErrDomainMismatch is returned when the request host does not
	// domain-match the cookie's Domain attribute.
	ErrDomainMismatch = errors.New("cookie not in this host's domain")

	// ErrHTTPOnly is returned when a non-HTTP caller tries to set or
	// replace an HttpOnly cookie.
	ErrHTTPOnly = errors.New("HttpOnly cookie rejected in a non-HTTP API")

	// ErrNoEnumerate is returned by Jar.Serialize when the backing
	// store cannot enumerate its cookies.
	ErrNoEnumerate = errors.New("store does not support enumeration")
)
