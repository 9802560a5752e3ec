package biscuit

import (
	"context"
	"net/http"
	"net/url"
)

// HTTPJar adapts a Jar to the net/http CookieJar interface, so a jar
// can be installed on an http.Client. The interface has no error
// returns; failures are logged and the offending cookie dropped, which
// is what RFC 6265 asks of a user agent anyway.
type HTTPJar struct {
	jar *Jar
}

// NewHTTPJar returns an http.CookieJar backed by jar.
func NewHTTPJar(jar *Jar) *HTTPJar {
	return &HTTPJar{jar: jar}
}

// Jar returns the underlying Jar.
func (h *HTTPJar) Jar() *Jar { return h.jar }

// SetCookies handles the receipt of the cookies in a reply for the
// given URL.
func (h *HTTPJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	ctx := context.Background()
	for _, hc := range cookies {
		if _, err := h.jar.SetCookie(ctx, u, FromHTTPCookie(hc)); err != nil {
			Logger(ctx).Debug("cookie rejected", "name", hc.Name, "url", u.String(), "error", err)
		}
	}
}

// Cookies returns the cookies to send in a request for the given URL.
// Like the net/http jar, only the name and value survive; attributes
// never travel on the Cookie header.
func (h *HTTPJar) Cookies(u *url.URL) []*http.Cookie {
	cookies, err := h.jar.Cookies(context.Background(), u)
	if err != nil {
		return nil
	}
	result := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		result = append(result, &http.Cookie{Name: c.Key, Value: c.Value})
	}
	return result
}

// FromHTTPCookie converts a net/http cookie received in a response.
func FromHTTPCookie(hc *http.Cookie) *Cookie {
	cookie := NewCookie()
	cookie.Key = hc.Name
	cookie.Value = hc.Value
	cookie.Domain = hc.Domain
	cookie.Path = hc.Path
	cookie.Secure = hc.Secure
	cookie.HttpOnly = hc.HttpOnly
	if !hc.Expires.IsZero() {
		cookie.Expires = hc.Expires
	}
	switch {
	case hc.MaxAge > 0:
		cookie.MaxAge = MaxAgeSeconds(int64(hc.MaxAge))
	case hc.MaxAge < 0:
		// net/http uses a negative MaxAge for "Max-Age: 0".
		cookie.MaxAge = MaxAgeSeconds(0)
	}
	return cookie
}

// HTTPCookie converts the cookie to its net/http form.
func (c *Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Key,
		Value:    c.Value,
		Path:     c.Path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if c.HostOnly == nil || !*c.HostOnly {
		hc.Domain = c.Domain
	}
	if secs, ok := c.MaxAge.Seconds(); ok {
		if secs > 0 {
			hc.MaxAge = int(secs)
		} else {
			hc.MaxAge = -1
		}
	}
	return hc
}
