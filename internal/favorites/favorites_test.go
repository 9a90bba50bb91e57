package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/five82/trailhead/internal/persist"
)

type recordingWriter struct {
	writes [][]int
	err    error
}

func (r *recordingWriter) Write(_ context.Context, key string, value any) error {
	if key != StorageKey {
		return errors.New("unexpected key " + key)
	}
	r.writes = append(r.writes, value.([]int))
	return r.err
}

func (r *recordingWriter) last() []int {
	if len(r.writes) == 0 {
		return nil
	}
	return r.writes[len(r.writes)-1]
}

func TestToggle_OnEmptySet(t *testing.T) {
	w := &recordingWriter{}
	s := New(nil, w)

	if !s.Toggle(7) {
		t.Fatal("first Toggle(7) = false, want true")
	}
	assert.Equal(t, s.IDs(), []int{7})
	assert.Equal(t, w.last(), []int{7})

	if s.Toggle(7) {
		t.Fatal("second Toggle(7) = true, want false")
	}
	assert.Equal(t, s.IDs(), []int{})
	assert.Equal(t, w.last(), []int{})
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	for _, start := range [][]int{nil, {1}, {3, 9, 1}, {9}} {
		w := &recordingWriter{}
		s := New(start, w)
		before := s.IDs()
		wasFavorite := s.IsFavorite(9)

		s.Toggle(9)
		s.Toggle(9)

		if s.IsFavorite(9) != wasFavorite {
			t.Fatalf("start %v: membership changed after double toggle", start)
		}
		assert.Equal(t, s.IDs(), before)
		assert.Equal(t, w.last(), before)
	}
}

func TestAdd_RejectsDuplicates(t *testing.T) {
	w := &recordingWriter{}
	s := New([]int{4}, w)

	if err := s.Add(4); !errors.Is(err, ErrAlreadyFavorite) {
		t.Fatalf("Add(4) = %v, want ErrAlreadyFavorite", err)
	}
	if len(w.writes) != 0 {
		t.Fatalf("rejected Add wrote to storage: %v", w.writes)
	}

	if err := s.Add(5); err != nil {
		t.Fatalf("Add(5) = %v", err)
	}
	assert.Equal(t, s.IDs(), []int{4, 5})
}

func TestRemove(t *testing.T) {
	s := New([]int{1, 2, 3}, nil)
	if !s.Remove(2) {
		t.Fatal("Remove(2) = false, want true")
	}
	if s.Remove(2) {
		t.Fatal("second Remove(2) = true, want false")
	}
	assert.Equal(t, s.IDs(), []int{1, 3})
	assert.Equal(t, s.Len(), 2)
}

func TestNew_DropsDuplicatesAndSorts(t *testing.T) {
	s := New([]int{5, 2, 5, 9, 2}, nil)
	assert.Equal(t, s.IDs(), []int{2, 5, 9})
}

func TestAdd_KeepsAscendingOrder(t *testing.T) {
	s := New([]int{10, 2}, nil)
	for _, id := range []int{7, 0, 12} {
		if err := s.Add(id); err != nil {
			t.Fatalf("Add(%d) = %v", id, err)
		}
	}
	assert.Equal(t, s.IDs(), []int{0, 2, 7, 10, 12})
}

func TestIDs_ReturnsCopy(t *testing.T) {
	s := New([]int{1}, nil)
	ids := s.IDs()
	ids[0] = 99
	if !s.IsFavorite(1) {
		t.Fatal("mutating IDs() result changed the store")
	}
}

func TestWriteFailureKeepsMemoryChange(t *testing.T) {
	w := &recordingWriter{err: errors.New("disk full")}
	s := New(nil, w)

	s.Toggle(3)
	if !s.IsFavorite(3) {
		t.Fatal("failed write rolled back the toggle")
	}
}

func TestRoundTripThroughGateway(t *testing.T) {
	kv, err := persist.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	g := persist.NewGateway(kv)
	defer g.Close()

	s := New(nil, g)
	s.Toggle(7)
	s.Toggle(2)
	s.Toggle(11)
	s.Toggle(2)

	// No Flush: write-through must already be durable.
	st, err := g.Rehydrate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	restored := New(st.Favorites, g)
	assert.Equal(t, restored.IDs(), s.IDs())
}

func TestClear(t *testing.T) {
	w := &recordingWriter{}
	s := New([]int{1, 2}, w)
	s.Clear()
	assert.Equal(t, s.Len(), 0)
	assert.Equal(t, w.last(), []int{})
}
