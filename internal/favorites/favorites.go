// Package favorites keeps the set of favorited campsite ids. The set has
// no remote backing; every mutation is written through to local storage
// before the call returns.
package favorites

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/golang/glog"
)

// ErrAlreadyFavorite is returned by Add when the id is already in the set.
var ErrAlreadyFavorite = errors.New("campsite is already a favorite")

// StorageKey is the key the set is written under.
const StorageKey = "favorites"

const writeTimeout = 2 * time.Second

// Writer persists a value synchronously. *persist.Gateway satisfies it.
type Writer interface {
	Write(ctx context.Context, key string, value any) error
}

// Store is a set of campsite ids kept in ascending order, so equal sets
// always persist as the same value.
type Store struct {
	mu  sync.RWMutex
	ids []int
	w   Writer
}

// New builds a store from previously persisted ids. Duplicates are dropped.
// w may be nil for a memory-only store.
func New(initial []int, w Writer) *Store {
	ids := append(make([]int, 0, len(initial)), initial...)
	slices.Sort(ids)
	return &Store{w: w, ids: slices.Compact(ids)}
}

// Toggle removes id when present and adds it otherwise. It returns the
// new membership.
func (s *Store) Toggle(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := slices.BinarySearch(s.ids, id)
	if found {
		s.ids = slices.Delete(s.ids, i, i+1)
	} else {
		s.ids = slices.Insert(s.ids, i, id)
	}
	s.writeLocked()
	return !found
}

// Add inserts id, or returns ErrAlreadyFavorite without touching storage.
func (s *Store) Add(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := slices.BinarySearch(s.ids, id)
	if found {
		return ErrAlreadyFavorite
	}
	s.ids = slices.Insert(s.ids, i, id)
	s.writeLocked()
	return nil
}

// Remove deletes id and reports whether it was present.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := slices.BinarySearch(s.ids, id)
	if !found {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	s.writeLocked()
	return true
}

// Clear empties the set.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = s.ids[:0]
	s.writeLocked()
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// IDs returns the ids in ascending order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// writeLocked mirrors the set to storage. A failed write is logged and the
// in-memory change stands.
func (s *Store) writeLocked() {
	if s.w == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.w.Write(ctx, StorageKey, slices.Clone(s.ids)); err != nil {
		glog.Warningf("favorites: persist %v: %v", s.ids, err)
	}
}
