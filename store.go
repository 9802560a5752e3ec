package biscuit

import "context"

// Store is the backing storage of a Jar: a bag of cookies keyed by the
// (domain, path, key) identity triple. All filtering beyond the index
// lookups below is the Jar's responsibility. Implementations must be
// safe for concurrent use by multiple goroutines.
type Store interface {
	// Find returns the cookie stored under the exact identity triple,
	// or nil when there is none.
	Find(ctx context.Context, domain, path, key string) (*Cookie, error)

	// FindCookies returns candidate cookies for a request to host.
	// The result must include every cookie stored under a domain in
	// PermuteDomain(host) and, when path is not empty, at least every
	// cookie whose stored path is in PermutePath(path). An empty path
	// disables the path restriction. Returning more is allowed.
	FindCookies(ctx context.Context, host, path string) ([]*Cookie, error)

	// Put stores a cookie under its identity triple. The Jar replaces
	// cookies through Update on stores that implement Updater, and
	// through Put on the others.
	Put(ctx context.Context, cookie *Cookie) error

	// Remove deletes the cookie under the identity triple, if any.
	Remove(ctx context.Context, domain, path, key string) error

	// RemoveAll drops every cookie.
	RemoveAll(ctx context.Context) error

	// All enumerates every stored cookie. Stores that cannot
	// enumerate return ErrNoEnumerate, which degrades Jar.Serialize.
	All(ctx context.Context) ([]*Cookie, error)
}

// Updater is an optional Store capability: replace a cookie in place.
// The Jar falls back to Put on stores that do not implement it.
type Updater interface {
	Update(ctx context.Context, old, next *Cookie) error
}
