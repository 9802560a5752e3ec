package biscuit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// creationIndexes mints Cookie.CreationIndex values. The counter is
// process wide so indexes stay strictly increasing across jars.
var creationIndexes atomic.Uint64

// ForeverTTL is returned by Cookie.TTL for cookies without an expiry.
const ForeverTTL = time.Duration(math.MaxInt64)

// endOfTime is the instant non-expiring cookies report from ExpiresAt.
// It is representable in every common date format.
var endOfTime = time.UnixMilli(math.MaxInt32 * 1000)

// MaxAge is the value of the Max-Age cookie attribute. The zero value
// means the attribute is absent. The two infinite sentinels are kept
// distinct from every finite seconds count, including zero.
type MaxAge struct {
	kind int8
	secs int64
}

const (
	maxAgeUnset int8 = iota
	maxAgeFinite
	maxAgeForever
	maxAgeExpired
)

// MaxAgeSeconds returns a finite Max-Age of n seconds. Values of zero
// or below mean the cookie is already expired.
func MaxAgeSeconds(n int64) MaxAge { return MaxAge{kind: maxAgeFinite, secs: n} }

// MaxAgeForever is the +Infinity sentinel: present, never expires.
func MaxAgeForever() MaxAge { return MaxAge{kind: maxAgeForever} }

// MaxAgeExpired is the -Infinity sentinel: present, expired since the
// beginning of time.
func MaxAgeExpired() MaxAge { return MaxAge{kind: maxAgeExpired} }

// IsSet reports whether the attribute is present.
func (m MaxAge) IsSet() bool { return m.kind != maxAgeUnset }

// Seconds returns the finite seconds count. It reports ok=false for
// the absent value and both sentinels.
func (m MaxAge) Seconds() (int64, bool) { return m.secs, m.kind == maxAgeFinite }

func (m MaxAge) String() string {
	switch m.kind {
	case maxAgeFinite:
		return strconv.FormatInt(m.secs, 10)
	case maxAgeForever:
		return "Infinity"
	case maxAgeExpired:
		return "-Infinity"
	}
	return ""
}

// Cookie is a single parsed or stored cookie.
//
// The zero Expires means the cookie has no explicit expiry and lives
// for the session. MaxAge, when set, takes precedence over Expires.
// HostOnly is nil until a Jar has accepted the cookie.
type Cookie struct {
	Key   string
	Value string

	Expires time.Time
	MaxAge  MaxAge

	Domain string
	Path   string

	Secure   bool
	HttpOnly bool

	HostOnly      *bool
	PathIsDefault bool

	Creation      time.Time
	LastAccessed  time.Time
	CreationIndex uint64

	// Extensions holds unrecognized attributes verbatim, in the order
	// they appeared, so a reserialized cookie round-trips.
	Extensions []string
}

// NewCookie returns a Cookie with its creation time and index assigned.
func NewCookie() *Cookie {
	return &Cookie{
		Creation:      time.Now(),
		CreationIndex: creationIndexes.Add(1),
	}
}

// SetExpires parses value as a cookie-date and assigns it to Expires.
// Unparseable values reset the cookie to a session cookie.
func (c *Cookie) SetExpires(value string) {
	if t, ok := ParseDate(value); ok {
		c.Expires = t
	} else {
		c.Expires = time.Time{}
	}
}

// SetMaxAge sets a finite Max-Age of n seconds. The infinite sentinels
// are assigned directly: c.MaxAge = MaxAgeForever().
func (c *Cookie) SetMaxAge(n int64) {
	c.MaxAge = MaxAgeSeconds(n)
}

// Persistent reports whether the cookie carries an explicit lifetime.
func (c *Cookie) Persistent() bool {
	return c.MaxAge.IsSet() || !c.Expires.IsZero()
}

// TTL returns the remaining lifetime of the cookie at now, or
// ForeverTTL when it never expires. Max-Age takes precedence over
// Expires per RFC 6265 section 5.3.
func (c *Cookie) TTL(now time.Time) time.Duration {
	if c.MaxAge.IsSet() {
		if secs, ok := c.MaxAge.Seconds(); ok {
			if secs <= 0 {
				return 0
			}
			return time.Duration(secs) * time.Second
		}
		if c.MaxAge == MaxAgeForever() {
			return ForeverTTL
		}
		return 0
	}
	if c.Expires.IsZero() {
		return ForeverTTL
	}
	if d := c.Expires.Sub(now); d > 0 {
		return d
	}
	return 0
}

// ExpiresAt returns the instant the cookie expires. Max-Age counts from
// base when given, else from the creation time, else from the wall
// clock. Cookies without an expiry report endOfTime; cookies expired by
// Max-Age report the epoch.
func (c *Cookie) ExpiresAt(base time.Time) time.Time {
	if c.MaxAge.IsSet() {
		secs, finite := c.MaxAge.Seconds()
		switch {
		case c.MaxAge == MaxAgeForever():
			return endOfTime
		case !finite || secs <= 0:
			return time.Unix(0, 0)
		}
		if base.IsZero() {
			base = c.Creation
		}
		if base.IsZero() {
			base = time.Now()
		}
		return base.Add(time.Duration(secs) * time.Second)
	}
	if c.Expires.IsZero() {
		return endOfTime
	}
	return c.Expires
}

// CookieString renders the bare name=value pair, the form sent in a
// Cookie request header. A cookie parsed without a name renders as its
// value alone.
func (c *Cookie) CookieString() string {
	if c.Key == "" {
		return c.Value
	}
	return c.Key + "=" + c.Value
}

// String renders the cookie with its attributes, the form emitted in a
// Set-Cookie response header.
func (c *Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.CookieString())
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(FormatDate(c.Expires))
	}
	if _, ok := c.MaxAge.Seconds(); ok {
		b.WriteString("; Max-Age=")
		b.WriteString(c.MaxAge.String())
	}
	if c.Domain != "" && (c.HostOnly == nil || !*c.HostOnly) {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	for _, ext := range c.Extensions {
		b.WriteString("; ")
		b.WriteString(ext)
	}
	return b.String()
}

// Clone returns a deep copy of the cookie through the JSON round-trip.
// The copy gets a fresh creation index.
func (c *Cookie) Clone() *Cookie {
	data, err := c.MarshalJSON()
	if err != nil {
		return nil
	}
	clone, err := FromJSON(data)
	if err != nil {
		return nil
	}
	return clone
}

// Valid reports whether the cookie would survive a strict reading of
// RFC 6265. Cookies rejected here may still be stored; the check is for
// callers that construct cookies by hand.
func (c *Cookie) Valid() error {
	if !validCookieValue(c.Value) {
		return fmt.Errorf("invalid cookie value %q", c.Value)
	}
	if secs, ok := c.MaxAge.Seconds(); ok && secs <= 0 {
		return fmt.Errorf("non-positive max-age %d", secs)
	}
	if c.Path != "" && !validCookiePath(c.Path) {
		return fmt.Errorf("invalid cookie path %q", c.Path)
	}
	if c.Domain != "" {
		domain := CanonicalDomain(c.Domain)
		if strings.HasSuffix(domain, ".") {
			return fmt.Errorf("cookie domain %q is a fully qualified domain name", c.Domain)
		}
		if !IsIP(domain) && registrableDomain(domain, nil) == "" {
			return fmt.Errorf("cookie domain %q: %w", c.Domain, ErrPublicSuffix)
		}
	}
	return nil
}

// validCookieValue reports whether value is empty or a run of
// cookie-octets: visible US-ASCII minus DQUOTE, comma, semicolon and
// backslash.
func validCookieValue(value string) bool {
	for i := 0; i < len(value); i++ {
		switch b := value[i]; {
		case b < 0x21 || b > 0x7E:
			return false
		case b == '"' || b == ',' || b == ';' || b == '\\':
			return false
		}
	}
	return true
}

func validCookiePath(path string) bool {
	for i := 0; i < len(path); i++ {
		if b := path[i]; b < 0x20 || b > 0x7E || b == ';' {
			return false
		}
	}
	return true
}
