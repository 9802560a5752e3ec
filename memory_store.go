package biscuit

import (
	"context"
	"sort"
	"sync"
)

// memoryStore is an implementation of Store that keeps cookies in a
// three-level domain → path → key index for O(1) identity lookups.
type memoryStore struct {
	sync.Mutex
	idx map[string]map[string]map[string]*Cookie
}

// NewMemoryStore returns a new Store that keeps cookies in memory.
func NewMemoryStore() Store {
	return &memoryStore{idx: make(map[string]map[string]map[string]*Cookie)}
}

func (s *memoryStore) Find(_ context.Context, domain, path, key string) (*Cookie, error) {
	s.Lock()
	defer s.Unlock()
	return s.idx[domain][path][key], nil
}

func (s *memoryStore) FindCookies(_ context.Context, host, path string) ([]*Cookie, error) {
	if host == "" {
		return nil, nil
	}
	domains := PermuteDomain(host, nil)
	if domains == nil {
		domains = []string{host}
	}

	s.Lock()
	defer s.Unlock()

	var results []*Cookie
	for _, domain := range domains {
		byPath, ok := s.idx[domain]
		if !ok {
			continue
		}
		if path == "" {
			for _, byKey := range byPath {
				for _, cookie := range byKey {
					results = append(results, cookie)
				}
			}
			continue
		}
		for _, p := range PermutePath(path) {
			for _, cookie := range byPath[p] {
				results = append(results, cookie)
			}
		}
	}
	return results, nil
}

func (s *memoryStore) Put(_ context.Context, cookie *Cookie) error {
	s.Lock()
	defer s.Unlock()
	byPath, ok := s.idx[cookie.Domain]
	if !ok {
		byPath = make(map[string]map[string]*Cookie)
		s.idx[cookie.Domain] = byPath
	}
	byKey, ok := byPath[cookie.Path]
	if !ok {
		byKey = make(map[string]*Cookie)
		byPath[cookie.Path] = byKey
	}
	byKey[cookie.Key] = cookie
	return nil
}

func (s *memoryStore) Update(ctx context.Context, _, next *Cookie) error {
	return s.Put(ctx, next)
}

func (s *memoryStore) Remove(_ context.Context, domain, path, key string) error {
	s.Lock()
	defer s.Unlock()
	if byKey := s.idx[domain][path]; byKey != nil {
		delete(byKey, key)
		if len(byKey) == 0 {
			delete(s.idx[domain], path)
			if len(s.idx[domain]) == 0 {
				delete(s.idx, domain)
			}
		}
	}
	return nil
}

func (s *memoryStore) RemoveAll(_ context.Context) error {
	s.Lock()
	defer s.Unlock()
	s.idx = make(map[string]map[string]map[string]*Cookie)
	return nil
}

func (s *memoryStore) All(_ context.Context) ([]*Cookie, error) {
	s.Lock()
	defer s.Unlock()
	var all []*Cookie
	for _, byPath := range s.idx {
		for _, byKey := range byPath {
			for _, cookie := range byKey {
				all = append(all, cookie)
			}
		}
	}
	// Map iteration order is random; hand cookies back the way they
	// were created.
	sort.Slice(all, func(i, j int) bool { return all[i].CreationIndex < all[j].CreationIndex })
	return all, nil
}
