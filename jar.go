package biscuit

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Options configures a Jar.
type Options struct {
	// Store backs the jar. Nil means a fresh in-memory store.
	Store Store `yaml:"-"`

	// PublicSuffixList answers public-suffix queries. Nil means
	// DefaultPublicSuffixList.
	PublicSuffixList PublicSuffixList `yaml:"-"`

	// AllowPublicSuffixes disables the refusal of cookies whose
	// Domain is itself a public suffix such as "co.uk". Leaving the
	// refusal on is what every browser does.
	AllowPublicSuffixes bool `yaml:"allow_public_suffixes"`

	// Loose makes SetCookieString accept the non-compliant "=value"
	// form. Opt-in; some real-world servers need it.
	Loose bool `yaml:"loose"`
}

// Jar is an RFC 6265 cookie jar: it decides which received cookies are
// stored and which stored cookies accompany a request. The jar owns
// its store for its lifetime.
type Jar struct {
	mu                   sync.Mutex
	store                Store
	psl                  PublicSuffixList
	rejectPublicSuffixes bool
	loose                bool
}

// New returns a new Jar. A nil *Options is equivalent to a zero
// Options.
func New(opt *Options) *Jar {
	if opt == nil {
		opt = new(Options)
	}
	jar := &Jar{
		store:                opt.Store,
		psl:                  opt.PublicSuffixList,
		rejectPublicSuffixes: !opt.AllowPublicSuffixes,
		loose:                opt.Loose,
	}
	if jar.store == nil {
		jar.store = NewMemoryStore()
	}
	if jar.psl == nil {
		jar.psl = DefaultPublicSuffixList
	}
	return jar
}

// Store returns the jar's backing store.
func (j *Jar) Store() Store { return j.store }

// SetOptions adjusts how a single cookie is accepted.
type SetOptions struct {
	// NonHTTP marks the caller as a non-HTTP API, such as script
	// access. Non-HTTP callers cannot set or replace HttpOnly
	// cookies.
	NonHTTP bool

	// Loose turns on loose parsing for this call. It cannot turn it
	// off: a jar created with Options.Loose always parses loosely.
	Loose bool

	// Now is the acceptance time. Zero means the wall clock.
	Now time.Time
}

// GetOptions adjusts which cookies a retrieval returns.
type GetOptions struct {
	// AllPaths disables path matching.
	AllPaths bool

	// NonHTTP marks the caller as a non-HTTP API; HttpOnly cookies
	// are withheld.
	NonHTTP bool

	// Secure overrides the scheme-derived connection security.
	Secure *bool

	// KeepExpired returns expired cookies instead of evicting them.
	KeepExpired bool

	// Unsorted skips the RFC 6265 section 5.4 ordering.
	Unsorted bool

	// Now is the retrieval time. Zero means the wall clock.
	Now time.Time
}

// SetCookieString parses a Set-Cookie header value and stores the
// result for a response from u.
func (j *Jar) SetCookieString(ctx context.Context, u *url.URL, setCookie string, opts ...SetOptions) (*Cookie, error) {
	var o SetOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	var (
		cookie *Cookie
		err    error
	)
	if o.Loose || j.loose {
		cookie, err = ParseLoose(setCookie)
	} else {
		cookie, err = Parse(setCookie)
	}
	if err != nil {
		return nil, err
	}
	return j.SetCookie(ctx, u, cookie, o)
}

// SetCookie stores cookie for a response from u, applying the storage
// model of RFC 6265 section 5.3. The cookie is canonicalized in place:
// its domain, path, host-only flag and bookkeeping times reflect the
// accepted state. The stored cookie is returned.
func (j *Jar) SetCookie(ctx context.Context, u *url.URL, cookie *Cookie, opts ...SetOptions) (*Cookie, error) {
	var o SetOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if cookie == nil {
		return nil, ErrParse
	}
	host := CanonicalDomain(u.Hostname())

	j.mu.Lock()
	defer j.mu.Unlock()

	if cookie.Domain != "" {
		domain := CanonicalDomain(cookie.Domain)
		if j.rejectPublicSuffixes && !IsIP(domain) && registrableDomain(domain, j.psl) == "" {
			return nil, fmt.Errorf("%w: %q", ErrPublicSuffix, cookie.Domain)
		}
		if !DomainMatch(host, domain) {
			return nil, fmt.Errorf("%w: %q does not match %q", ErrDomainMismatch, domain, host)
		}
		cookie.Domain = domain
		if cookie.HostOnly == nil {
			hostOnly := false
			cookie.HostOnly = &hostOnly
		}
	} else {
		hostOnly := true
		cookie.HostOnly = &hostOnly
		cookie.Domain = host
	}

	if cookie.Path == "" || cookie.Path[0] != '/' {
		cookie.Path = DefaultPath(u.Path)
		cookie.PathIsDefault = true
	}

	if o.NonHTTP && cookie.HttpOnly {
		return nil, ErrHTTPOnly
	}

	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}

	old, err := j.store.Find(ctx, cookie.Domain, cookie.Path, cookie.Key)
	if err != nil {
		return nil, fmt.Errorf("store find: %w", err)
	}
	if old != nil {
		// An old HttpOnly cookie is not replaceable from a non-HTTP
		// API either.
		if o.NonHTTP && old.HttpOnly {
			return nil, ErrHTTPOnly
		}
		cookie.Creation = old.Creation
		cookie.CreationIndex = old.CreationIndex
		cookie.LastAccessed = now
		if updater, ok := j.store.(Updater); ok {
			err = updater.Update(ctx, old, cookie)
		} else {
			err = j.store.Put(ctx, cookie)
		}
		if err != nil {
			return nil, fmt.Errorf("store update: %w", err)
		}
		return cookie, nil
	}

	if cookie.Creation.IsZero() {
		cookie.Creation = now
	}
	cookie.LastAccessed = now
	if err := j.store.Put(ctx, cookie); err != nil {
		return nil, fmt.Errorf("store put: %w", err)
	}
	return cookie, nil
}

// Cookies returns the cookies to send in a request to u, applying the
// retrieval model of RFC 6265 section 5.4: host and path scoping, the
// Secure and HttpOnly gates, expiry eviction, and the path-length then
// creation-time ordering. Every returned cookie has its last-accessed
// time touched.
func (j *Jar) Cookies(ctx context.Context, u *url.URL, opts ...GetOptions) ([]*Cookie, error) {
	var o GetOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	host := CanonicalDomain(u.Hostname())
	path := u.Path
	if path == "" {
		path = "/"
	}
	secure := u.Scheme == "https" || u.Scheme == "wss"
	if o.Secure != nil {
		secure = *o.Secure
	}
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}
	findPath := path
	if o.AllPaths {
		findPath = ""
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	candidates, err := j.store.FindCookies(ctx, host, findPath)
	if err != nil {
		return nil, fmt.Errorf("store find: %w", err)
	}

	cookies := candidates[:0]
	for _, cookie := range candidates {
		if cookie.HostOnly != nil && *cookie.HostOnly {
			if cookie.Domain != host {
				continue
			}
		} else if !DomainMatch(host, cookie.Domain) {
			continue
		}
		if !o.AllPaths && !PathMatch(path, cookie.Path) {
			continue
		}
		if cookie.Secure && !secure {
			continue
		}
		if cookie.HttpOnly && o.NonHTTP {
			continue
		}
		if !o.KeepExpired && !cookie.ExpiresAt(time.Time{}).After(now) {
			// Eviction is best effort; a failing store must not stop
			// the request.
			if err := j.store.Remove(ctx, cookie.Domain, cookie.Path, cookie.Key); err != nil {
				Logger(ctx).Debug("removing expired cookie",
					"domain", cookie.Domain, "path", cookie.Path, "key", cookie.Key, "error", err)
			}
			continue
		}
		cookies = append(cookies, cookie)
	}

	if !o.Unsorted {
		sort.SliceStable(cookies, func(i, k int) bool {
			return CompareCookies(cookies[i], cookies[k]) < 0
		})
	}
	for _, cookie := range cookies {
		cookie.LastAccessed = now
	}
	return cookies, nil
}

// CookieString renders the Cookie request header value for u.
func (j *Jar) CookieString(ctx context.Context, u *url.URL, opts ...GetOptions) (string, error) {
	cookies, err := j.Cookies(ctx, u, opts...)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(cookies))
	for i, cookie := range cookies {
		parts[i] = cookie.CookieString()
	}
	return strings.Join(parts, "; "), nil
}

// SetCookieStrings renders each matching cookie in its Set-Cookie
// header form.
func (j *Jar) SetCookieStrings(ctx context.Context, u *url.URL, opts ...GetOptions) ([]string, error) {
	cookies, err := j.Cookies(ctx, u, opts...)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(cookies))
	for i, cookie := range cookies {
		lines[i] = cookie.String()
	}
	return lines, nil
}

// Remove deletes a single cookie by its identity triple.
func (j *Jar) Remove(ctx context.Context, domain, path, key string) error {
	return j.store.Remove(ctx, CanonicalDomain(domain), path, key)
}

// RemoveAll drops every cookie in the jar.
func (j *Jar) RemoveAll(ctx context.Context) error {
	return j.store.RemoveAll(ctx)
}

// CompareCookies is the ordering of RFC 6265 section 5.4: longer paths
// first, then earlier creation times, with the creation index breaking
// clock-resolution ties. A cookie without a creation time sorts last.
func CompareCookies(a, b *Cookie) int {
	if d := len(b.Path) - len(a.Path); d != 0 {
		return d
	}
	at, bt := a.Creation, b.Creation
	if at.IsZero() {
		at = endOfTime
	}
	if bt.IsZero() {
		bt = endOfTime
	}
	if !at.Equal(bt) {
		if at.Before(bt) {
			return -1
		}
		return 1
	}
	switch {
	case a.CreationIndex < b.CreationIndex:
		return -1
	case a.CreationIndex > b.CreationIndex:
		return 1
	}
	return 0
}
