package biscuit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// isoDate is the wire layout of absolute times in cookie records.
const isoDate = "2006-01-02T15:04:05.000Z"

type cookieJSON struct {
	Key           string   `json:"key,omitempty"`
	Value         string   `json:"value,omitempty"`
	Expires       any      `json:"expires,omitempty"`
	MaxAge        any      `json:"maxAge,omitempty"`
	Domain        string   `json:"domain,omitempty"`
	Path          string   `json:"path,omitempty"`
	Secure        bool     `json:"secure,omitempty"`
	HttpOnly      bool     `json:"httpOnly,omitempty"`
	HostOnly      *bool    `json:"hostOnly,omitempty"`
	PathIsDefault bool     `json:"pathIsDefault,omitempty"`
	Creation      any      `json:"creation,omitempty"`
	LastAccessed  any      `json:"lastAccessed,omitempty"`
	Extensions    []string `json:"extensions,omitempty"`
}

// MarshalJSON renders the cookie as a record whose keys are every
// non-default field. Times are ISO 8601 strings; the infinite Max-Age
// sentinels are the literal strings "Infinity" and "-Infinity". The
// creation index is deliberately absent: it is reassigned on import.
func (c *Cookie) MarshalJSON() ([]byte, error) {
	record := cookieJSON{
		Key:           c.Key,
		Value:         c.Value,
		Domain:        c.Domain,
		Path:          c.Path,
		Secure:        c.Secure,
		HttpOnly:      c.HttpOnly,
		HostOnly:      c.HostOnly,
		PathIsDefault: c.PathIsDefault,
		Extensions:    c.Extensions,
	}
	if !c.Expires.IsZero() {
		record.Expires = c.Expires.UTC().Format(isoDate)
	}
	if c.MaxAge.IsSet() {
		if secs, ok := c.MaxAge.Seconds(); ok {
			record.MaxAge = secs
		} else {
			record.MaxAge = c.MaxAge.String()
		}
	}
	if !c.Creation.IsZero() {
		record.Creation = c.Creation.UTC().Format(isoDate)
	}
	if !c.LastAccessed.IsZero() {
		record.LastAccessed = c.LastAccessed.UTC().Format(isoDate)
	}
	return json.Marshal(record)
}

// UnmarshalJSON decodes a cookie record produced by MarshalJSON. The
// decoded cookie gets a fresh creation index.
func (c *Cookie) UnmarshalJSON(data []byte) error {
	var record cookieJSON
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	c.Key = record.Key
	c.Value = record.Value
	c.Domain = record.Domain
	c.Path = record.Path
	c.Secure = record.Secure
	c.HttpOnly = record.HttpOnly
	c.HostOnly = record.HostOnly
	c.PathIsDefault = record.PathIsDefault
	c.Extensions = record.Extensions
	c.Expires = decodeRecordTime(record.Expires)
	c.Creation = decodeRecordTime(record.Creation)
	c.LastAccessed = decodeRecordTime(record.LastAccessed)
	c.MaxAge = decodeRecordMaxAge(record.MaxAge)
	c.CreationIndex = creationIndexes.Add(1)
	return nil
}

// FromJSON decodes a single cookie record.
func FromJSON(data []byte) (*Cookie, error) {
	cookie := new(Cookie)
	if err := cookie.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return cookie, nil
}

// decodeRecordTime accepts an ISO 8601 string, a cookie-date string,
// the literal "Infinity", or null. Everything unparseable collapses to
// the zero time.
func decodeRecordTime(v any) time.Time {
	s, err := cast.ToStringE(v)
	if err != nil || s == "" || s == "Infinity" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, ok := ParseDate(s); ok {
		return t
	}
	return time.Time{}
}

// decodeRecordMaxAge accepts an integer, a numeric string, or the
// literal "Infinity" / "-Infinity".
func decodeRecordMaxAge(v any) MaxAge {
	switch v {
	case nil:
		return MaxAge{}
	case "Infinity":
		return MaxAgeForever()
	case "-Infinity":
		return MaxAgeExpired()
	}
	if secs, err := cast.ToInt64E(v); err == nil {
		return MaxAgeSeconds(secs)
	}
	return MaxAge{}
}

// Snapshot is the serialized form of a Jar. StoreType is informational
// and records the concrete store the snapshot was taken from.
type Snapshot struct {
	StoreType            string            `json:"storeType"`
	RejectPublicSuffixes bool              `json:"rejectPublicSuffixes"`
	Cookies              []json.RawMessage `json:"cookies"`
}

// Snapshot enumerates the store into a Snapshot.
func (j *Jar) Snapshot(ctx context.Context) (*Snapshot, error) {
	all, err := j.store.All(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := &Snapshot{
		StoreType:            fmt.Sprintf("%T", j.store),
		RejectPublicSuffixes: j.rejectPublicSuffixes,
		Cookies:              make([]json.RawMessage, 0, len(all)),
	}
	for _, cookie := range all {
		record, err := cookie.MarshalJSON()
		if err != nil {
			return nil, err
		}
		snapshot.Cookies = append(snapshot.Cookies, record)
	}
	return snapshot, nil
}

// Serialize renders the whole jar as JSON.
func (j *Jar) Serialize(ctx context.Context) ([]byte, error) {
	snapshot, err := j.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshot)
}

// Deserialize rebuilds a jar from Serialize output into store, or into
// a fresh in-memory store when store is nil. Records that fail to
// decode are skipped; creation indexes are assigned in record order.
func Deserialize(ctx context.Context, data []byte, store Store) (*Jar, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	jar := New(&Options{
		Store:               store,
		AllowPublicSuffixes: !snapshot.RejectPublicSuffixes,
	})
	for _, record := range snapshot.Cookies {
		cookie, err := FromJSON(record)
		if err != nil {
			continue
		}
		if err := jar.store.Put(ctx, cookie); err != nil {
			return nil, err
		}
	}
	return jar, nil
}

// Clone copies the jar and its cookies into store, or into a fresh
// in-memory store when store is nil.
func (j *Jar) Clone(ctx context.Context, store Store) (*Jar, error) {
	data, err := j.Serialize(ctx)
	if err != nil {
		return nil, err
	}
	return Deserialize(ctx, data, store)
}
