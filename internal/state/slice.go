package state

import (
	"context"
	"sync"
	"time"
)

// Collection is the uniform state of one remote-backed collection.
// An empty Error means the last fetch did not fail.
type Collection[T any] struct {
	IsLoading bool
	Error     string
	Items     []T
	UpdatedAt time.Time
}

// HasError reports whether the most recent fetch failed.
func (c Collection[T]) HasError() bool {
	return c.Error != ""
}

// Slice owns one collection and its fetch lifecycle. Each Slice has its
// own lock; there is no transaction spanning slices.
type Slice[T any] struct {
	name string

	mu        sync.RWMutex
	state     Collection[T]
	observers []func(Collection[T])
}

// NewSlice returns an empty slice in the loading state.
func NewSlice[T any](name string) *Slice[T] {
	return &Slice[T]{
		name:  name,
		state: Collection[T]{IsLoading: true},
	}
}

// Name returns the collection name, also used as its persistence key.
func (s *Slice[T]) Name() string {
	return s.name
}

// Fetch runs fn through the pending, fulfilled and rejected transitions.
// It blocks until fn returns; callers that want fire-and-forget run it in
// a goroutine.
func (s *Slice[T]) Fetch(ctx context.Context, fn func(context.Context) ([]T, error)) error {
	s.Pending()
	items, err := fn(ctx)
	if err != nil {
		s.Reject(err)
		return err
	}
	s.Fulfill(items)
	return nil
}

// Pending marks the slice as loading. Any previous error stays visible
// until the fetch resolves.
func (s *Slice[T]) Pending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
}

// Fulfill replaces the items verbatim and clears the error.
func (s *Slice[T]) Fulfill(items []T) {
	s.mu.Lock()
	s.state.IsLoading = false
	s.state.Error = ""
	s.state.Items = cloneItems(items)
	s.state.UpdatedAt = time.Now()
	s.notifyLocked()
	s.mu.Unlock()
}

// Reject records the failure and keeps the stale items.
func (s *Slice[T]) Reject(err error) {
	msg := "fetch failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	s.state.Error = msg
	s.state.UpdatedAt = time.Now()
}

// Restore seeds the items from a rehydrated cache. The loading flag is left
// alone because a fresh fetch is expected to follow.
func (s *Slice[T]) Restore(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = cloneItems(items)
}

// State returns a copy of the current collection.
func (s *Slice[T]) State() Collection[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// OnChange registers fn to run after every change to the items. fn runs
// under the slice lock, so observers see changes in the order they were
// made; fn must not call back into the slice.
func (s *Slice[T]) OnChange(fn func(Collection[T])) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers[:len(s.observers):len(s.observers)], fn)
}

func (s *Slice[T]) snapshotLocked() Collection[T] {
	snap := s.state
	snap.Items = cloneItems(s.state.Items)
	return snap
}

func (s *Slice[T]) notifyLocked() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, fn := range s.observers {
		fn(snap)
	}
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return []T{}
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
