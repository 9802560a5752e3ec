package biscuit

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieJSONRoundTrip(t *testing.T) {
	t.Parallel()
	hostOnly := true
	cookie := &Cookie{
		Key:           "sid",
		Value:         "opaque",
		Expires:       time.Date(2021, time.June, 9, 10, 18, 14, 0, time.UTC),
		MaxAge:        MaxAgeSeconds(3600),
		Domain:        "example.com",
		Path:          "/account",
		Secure:        true,
		HttpOnly:      true,
		HostOnly:      &hostOnly,
		PathIsDefault: true,
		Creation:      time.Date(2021, time.June, 9, 10, 0, 0, 0, time.UTC),
		LastAccessed:  time.Date(2021, time.June, 9, 10, 5, 0, 0, time.UTC),
		Extensions:    []string{"SameSite=Lax"},
	}

	data, err := json.Marshal(cookie)
	require.NoError(t, err)
	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, cookie.Key, decoded.Key)
	assert.Equal(t, cookie.Value, decoded.Value)
	assert.True(t, cookie.Expires.Equal(decoded.Expires))
	assert.Equal(t, cookie.MaxAge, decoded.MaxAge)
	assert.Equal(t, cookie.Domain, decoded.Domain)
	assert.Equal(t, cookie.Path, decoded.Path)
	assert.Equal(t, cookie.Secure, decoded.Secure)
	assert.Equal(t, cookie.HttpOnly, decoded.HttpOnly)
	require.NotNil(t, decoded.HostOnly)
	assert.True(t, *decoded.HostOnly)
	assert.Equal(t, cookie.PathIsDefault, decoded.PathIsDefault)
	assert.True(t, cookie.Creation.Equal(decoded.Creation))
	assert.True(t, cookie.LastAccessed.Equal(decoded.LastAccessed))
	assert.Equal(t, cookie.Extensions, decoded.Extensions)
}

func TestCookieJSONDefaultsOmitted(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(&Cookie{Key: "a", Value: "b"})
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, map[string]any{"key": "a", "value": "b"}, record)
}

func TestCookieJSONSentinels(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(&Cookie{Key: "a", MaxAge: MaxAgeForever()})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"maxAge":"Infinity"`)

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, MaxAgeForever(), decoded.MaxAge)

	decoded, err = FromJSON([]byte(`{"key":"a","maxAge":"-Infinity"}`))
	require.NoError(t, err)
	assert.Equal(t, MaxAgeExpired(), decoded.MaxAge)

	decoded, err = FromJSON([]byte(`{"key":"a","maxAge":60,"expires":"Infinity"}`))
	require.NoError(t, err)
	assert.Equal(t, MaxAgeSeconds(60), decoded.MaxAge)
	assert.True(t, decoded.Expires.IsZero())
}

func TestJarSerializeRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar := New(nil)
	u, _ := url.Parse("http://example.com/a/b")

	_, err := jar.SetCookieString(ctx, u, "a=1; Max-Age=3600")
	require.NoError(t, err)
	_, err = jar.SetCookieString(ctx, u, "b=2; Domain=example.com; Path=/")
	require.NoError(t, err)

	snapshot, err := jar.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.RejectPublicSuffixes)
	assert.NotEmpty(t, snapshot.StoreType)
	assert.Len(t, snapshot.Cookies, 2)

	data, err := jar.Serialize(ctx)
	require.NoError(t, err)

	restored, err := Deserialize(ctx, data, nil)
	require.NoError(t, err)
	assert.True(t, restored.rejectPublicSuffixes)

	want, err := jar.CookieString(ctx, u)
	require.NoError(t, err)
	got, err := restored.CookieString(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJarClone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar := New(&Options{AllowPublicSuffixes: true})
	u, _ := url.Parse("http://example.com/")

	_, err := jar.SetCookieString(ctx, u, "a=1")
	require.NoError(t, err)

	clone, err := jar.Clone(ctx, nil)
	require.NoError(t, err)
	assert.False(t, clone.rejectPublicSuffixes, "the cloned jar keeps its policy")

	got, err := clone.CookieString(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "a=1", got)

	// The clone is independent of the original.
	require.NoError(t, clone.RemoveAll(ctx))
	got, err = jar.CookieString(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "a=1", got)
}
