package biscuit

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// cookiePair matches the name=value head of a Set-Cookie line.
	cookiePair = regexp.MustCompile(`^([^=;]+)\s*=\s*([^\n\r\x00]*)`)

	// cookiePairLoose additionally accepts "=value" and bare values,
	// which some real-world servers emit.
	cookiePairLoose = regexp.MustCompile(`^((?:=)?([^=;]*)\s*=\s*)?([^\n\r\x00]*)`)

	maxAgeValue = regexp.MustCompile(`^-?[0-9]+$`)
)

// Parse parses a single Set-Cookie header value. The grammar is
// deliberately permissive: unrecognized attributes are preserved in
// Extensions, and only a name=value head without "=" or control
// characters in the name or value reject the whole line.
func Parse(setCookie string) (*Cookie, error) {
	return parse(setCookie, false)
}

// ParseLoose is Parse accepting the non-compliant "=value" form,
// yielding a cookie with an empty name.
func ParseLoose(setCookie string) (*Cookie, error) {
	return parse(setCookie, true)
}

func parse(setCookie string, loose bool) (*Cookie, error) {
	s := strings.TrimSpace(setCookie)

	head := s
	if i := strings.IndexByte(s, ';'); i >= 0 {
		head = s[:i]
	}

	var key, value string
	if loose {
		m := cookiePairLoose.FindStringSubmatch(head)
		if m == nil {
			return nil, ErrParse
		}
		key, value = m[2], m[3]
	} else {
		m := cookiePair.FindStringSubmatch(head)
		if m == nil {
			return nil, ErrParse
		}
		key, value = m[1], m[2]
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if hasControlChars(key) || hasControlChars(value) {
		return nil, ErrParse
	}

	cookie := NewCookie()
	cookie.Key = key
	cookie.Value = value

	i := strings.IndexByte(s, ';')
	if i < 0 {
		return cookie, nil
	}

	for _, av := range strings.Split(s[i+1:], ";") {
		av = strings.TrimSpace(av)
		if av == "" {
			continue
		}
		name, avValue, _ := strings.Cut(av, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		avValue = strings.TrimSpace(avValue)

		switch name {
		case "expires":
			if avValue != "" {
				if t, ok := ParseDate(avValue); ok {
					cookie.Expires = t
				}
			}
		case "max-age":
			if maxAgeValue.MatchString(avValue) {
				if secs, err := strconv.ParseInt(avValue, 10, 64); err == nil {
					cookie.MaxAge = MaxAgeSeconds(secs)
				}
			}
		case "domain":
			if avValue != "" {
				domain := strings.TrimPrefix(avValue, ".")
				if domain != "" {
					cookie.Domain = strings.ToLower(domain)
				}
			}
		case "path":
			// A missing or relative Path means the default-path of
			// the request URI applies at jar time.
			if avValue != "" && avValue[0] == '/' {
				cookie.Path = avValue
			} else {
				cookie.Path = ""
			}
		case "secure":
			cookie.Secure = true
		case "httponly":
			cookie.HttpOnly = true
		default:
			cookie.Extensions = append(cookie.Extensions, av)
		}
	}

	return cookie, nil
}

func hasControlChars(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r <= 0x1F })
}
