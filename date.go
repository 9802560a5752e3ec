package biscuit

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FormatDate renders t as an RFC 1123 date with the GMT zone, the only
// form Expires attributes are emitted in.
func FormatDate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
}

var (
	timeProduction = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})(?:\D.*)?$`)
	dayProduction  = regexp.MustCompile(`^(\d{1,2})(?:\D.*)?$`)
	yearProduction = regexp.MustCompile(`^(\d{2,4})(?:\D.*)?$`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// isDateDelim reports whether r belongs to the delimiter class of the
// cookie-date grammar (RFC 6265 section 5.1.1).
func isDateDelim(r rune) bool {
	return r == 0x09 ||
		(r >= 0x20 && r <= 0x2F) ||
		(r >= 0x3B && r <= 0x40) ||
		(r >= 0x5B && r <= 0x60) ||
		(r >= 0x7B && r <= 0x7E)
}

// ParseDate parses a cookie-date with the algorithm of RFC 6265
// section 5.1.1. The date tokens may appear in any order; the first
// token matching each production wins. It reports ok=false instead of
// failing loudly, matching the grammar's forgiving intent.
func ParseDate(s string) (time.Time, bool) {
	var (
		hour, minute, second int
		day, year            int
		month                time.Month

		haveTime, haveDay, haveMonth, haveYear bool
	)

	for _, token := range strings.FieldsFunc(s, isDateDelim) {
		if !haveTime {
			if m := timeProduction.FindStringSubmatch(token); m != nil {
				hour, _ = strconv.Atoi(m[1])
				minute, _ = strconv.Atoi(m[2])
				second, _ = strconv.Atoi(m[3])
				if hour > 23 || minute > 59 || second > 59 {
					return time.Time{}, false
				}
				haveTime = true
				continue
			}
		}
		if !haveDay {
			if m := dayProduction.FindStringSubmatch(token); m != nil {
				if d, _ := strconv.Atoi(m[1]); d >= 1 && d <= 31 {
					day, haveDay = d, true
					continue
				}
			}
		}
		if !haveMonth && len(token) >= 3 {
			if mon, ok := months[strings.ToLower(token[:3])]; ok {
				month, haveMonth = mon, true
				continue
			}
		}
		if !haveYear {
			if m := yearProduction.FindStringSubmatch(token); m != nil {
				y, _ := strconv.Atoi(m[1])
				switch {
				case y >= 70 && y <= 99:
					y += 1900
				case y >= 0 && y <= 69:
					y += 2000
				}
				if y < 1601 {
					return time.Time{}, false
				}
				year, haveYear = y, true
				continue
			}
		}
	}

	if !haveTime || !haveDay || !haveMonth || !haveYear {
		return time.Time{}, false
	}
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC), true
}
