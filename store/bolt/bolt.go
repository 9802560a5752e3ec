// Package bolt persists a cookie jar in a bbolt database file.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/shiroyk/biscuit"
	"go.etcd.io/bbolt"
)

// DefaultPath is the directory the cookie database is created in when
// none is given.
const DefaultPath = "cookies"

var bucketName = []byte("cookies")

// Store is an implementation of biscuit.Store that keeps cookies in a
// bbolt database. Records are stored under domain\0path\0key, so a
// cursor seek on the domain prefix yields every cookie of a domain.
type Store struct {
	db *bbolt.DB
}

// New opens the cookie database in the directory path, creating both
// as needed.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filepath.Join(path, "cookies.db"), 0o600, &bbolt.Options{
		Timeout:         1 * time.Second,
		InitialMmapSize: 1024,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close syncs and closes the database.
func (s *Store) Close() error {
	if err := s.db.Sync(); err != nil {
		return err
	}
	return s.db.Close()
}

func recordKey(domain, path, key string) []byte {
	return []byte(domain + "\x00" + path + "\x00" + key)
}

func (s *Store) Find(_ context.Context, domain, path, key string) (cookie *biscuit.Cookie, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketName).Get(recordKey(domain, path, key))
		if value == nil {
			return nil
		}
		cookie, err = biscuit.FromJSON(value)
		return err
	})
	return
}

func (s *Store) FindCookies(_ context.Context, host, path string) (cookies []*biscuit.Cookie, err error) {
	if host == "" {
		return nil, nil
	}
	domains := biscuit.PermuteDomain(host, nil)
	if domains == nil {
		domains = []string{host}
	}
	var paths []string
	if path != "" {
		paths = biscuit.PermutePath(path)
	}

	err = s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketName).Cursor()
		for _, domain := range domains {
			prefix := []byte(domain + "\x00")
			for k, v := cursor.Seek(prefix); bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
				cookie, err := biscuit.FromJSON(v)
				if err != nil {
					return err
				}
				if paths != nil && !slices.Contains(paths, cookie.Path) {
					continue
				}
				cookies = append(cookies, cookie)
			}
		}
		return nil
	})
	return
}

func (s *Store) Put(_ context.Context, cookie *biscuit.Cookie) error {
	value, err := json.Marshal(cookie)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(recordKey(cookie.Domain, cookie.Path, cookie.Key), value)
	})
}

// Update replaces in place. A bbolt put on an existing key already is
// one, so it simply delegates.
func (s *Store) Update(ctx context.Context, _, next *biscuit.Cookie) error {
	return s.Put(ctx, next)
}

func (s *Store) Remove(_ context.Context, domain, path, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(recordKey(domain, path, key))
	})
}

func (s *Store) RemoveAll(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

func (s *Store) All(_ context.Context) (cookies []*biscuit.Cookie, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(_, v []byte) error {
			cookie, err := biscuit.FromJSON(v)
			if err != nil {
				return err
			}
			cookies = append(cookies, cookie)
			return nil
		})
	})
	return
}
