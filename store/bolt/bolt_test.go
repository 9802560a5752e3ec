package bolt

import (
	"context"
	"net/url"
	"testing"

	"github.com/shiroyk/biscuit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func putCookie(t *testing.T, store *Store, setCookie string) *biscuit.Cookie {
	t.Helper()
	cookie, err := biscuit.Parse(setCookie)
	require.NoError(t, err)
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	require.NoError(t, store.Put(context.Background(), cookie))
	return cookie
}

func TestStoreFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	put := putCookie(t, store, "a=1; Domain=example.com; Path=/; Max-Age=3600")

	found, err := store.Find(ctx, "example.com", "/", "a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, put.Value, found.Value)
	assert.Equal(t, put.MaxAge, found.MaxAge)

	found, err = store.Find(ctx, "example.com", "/", "missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStoreFindCookies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	putCookie(t, store, "root=1; Domain=example.com; Path=/")
	putCookie(t, store, "dir=2; Domain=example.com; Path=/a")
	putCookie(t, store, "sub=3; Domain=www.example.com; Path=/")
	putCookie(t, store, "other=4; Domain=other.com; Path=/")

	cookies, err := store.FindCookies(ctx, "www.example.com", "/a/b")
	require.NoError(t, err)
	keys := make([]string, 0, len(cookies))
	for _, c := range cookies {
		keys = append(keys, c.Key)
	}
	assert.ElementsMatch(t, []string{"root", "dir", "sub"}, keys)

	cookies, err = store.FindCookies(ctx, "example.com", "/")
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "root", cookies[0].Key)

	cookies, err = store.FindCookies(ctx, "example.com", "")
	require.NoError(t, err)
	assert.Len(t, cookies, 2)
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	putCookie(t, store, "a=1; Domain=example.com; Path=/")
	putCookie(t, store, "b=2; Domain=other.com; Path=/")

	require.NoError(t, store.Remove(ctx, "example.com", "/", "a"))
	found, err := store.Find(ctx, "example.com", "/", "a")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, store.RemoveAll(ctx))
	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStorePersistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := New(dir)
	require.NoError(t, err)
	putCookie(t, store, "a=1; Domain=example.com; Path=/; Max-Age=3600")
	require.NoError(t, store.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.Find(ctx, "example.com", "/", "a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "1", found.Value)
}

func TestStoreWithJar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar := biscuit.New(&biscuit.Options{Store: newTestStore(t)})
	u := mustParse(t, "http://example.com/")

	_, err := jar.SetCookieString(ctx, u, "a=1; Max-Age=3600")
	require.NoError(t, err)
	_, err = jar.SetCookieString(ctx, u, "a=2; Max-Age=3600")
	require.NoError(t, err)

	got, err := jar.CookieString(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "a=2", got)
}
