// Package leveldb persists a cookie jar in a leveldb database.
package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/shiroyk/biscuit"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Store is an implementation of biscuit.Store that keeps cookies in a
// leveldb database. Records are stored under domain\0path\0key;
// FindCookies walks a bounded prefix iterator per candidate domain.
type Store struct {
	db *leveldb.DB
}

// New opens the cookie database under path, creating it as needed.
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(domain, path, key string) []byte {
	return []byte(domain + "\x00" + path + "\x00" + key)
}

func (s *Store) Find(_ context.Context, domain, path, key string) (*biscuit.Cookie, error) {
	value, err := s.db.Get(recordKey(domain, path, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return biscuit.FromJSON(value)
}

func (s *Store) FindCookies(_ context.Context, host, path string) ([]*biscuit.Cookie, error) {
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

	var cookies []*biscuit.Cookie
	for _, domain := range domains {
		iter := s.db.NewIterator(util.BytesPrefix([]byte(domain+"\x00")), nil)
		for iter.Next() {
			cookie, err := biscuit.FromJSON(iter.Value())
			if err != nil {
				iter.Release()
				return nil, err
			}
			if paths != nil && !slices.Contains(paths, cookie.Path) {
				continue
			}
			cookies = append(cookies, cookie)
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return nil, err
		}
	}
	return cookies, nil
}

func (s *Store) Put(_ context.Context, cookie *biscuit.Cookie) error {
	value, err := json.Marshal(cookie)
	if err != nil {
		return err
	}
	return s.db.Put(recordKey(cookie.Domain, cookie.Path, cookie.Key), value, nil)
}

// Update replaces in place; a leveldb put on an existing key already
// is one, so it simply delegates.
func (s *Store) Update(ctx context.Context, _, next *biscuit.Cookie) error {
	return s.Put(ctx, next)
}

func (s *Store) Remove(_ context.Context, domain, path, key string) error {
	return s.db.Delete(recordKey(domain, path, key), nil)
}

func (s *Store) RemoveAll(_ context.Context) error {
	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(slices.Clone(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	return s.db.Write(batch, nil)
}

func (s *Store) All(_ context.Context) ([]*biscuit.Cookie, error) {
	var cookies []*biscuit.Cookie
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		cookie, err := biscuit.FromJSON(iter.Value())
		if err != nil {
			return nil, err
		}
		cookies = append(cookies, cookie)
	}
	return cookies, iter.Error()
}
