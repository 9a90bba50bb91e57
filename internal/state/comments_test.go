package state

import (
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/five82/trailhead/internal/campapi"
)

func TestComments_AppendIgnoresFetchState(t *testing.T) {
	c := NewComments()
	c.Append(campapi.Comment{ID: 0, CampsiteID: 12, Author: "Alice"})

	got := c.State()
	if !got.IsLoading {
		t.Fatal("Append should not settle the fetch state")
	}
	if len(got.Items) != 1 || got.Items[0].Author != "Alice" {
		t.Fatalf("Items = %#v, want Alice's comment", got.Items)
	}
}

func TestComments_AppendGoesToTheEnd(t *testing.T) {
	c := NewComments()
	c.Fulfill([]campapi.Comment{{ID: 0}, {ID: 1}})
	c.Append(campapi.Comment{ID: 2, Text: "last"})

	items := c.State().Items
	assert.Equal(t, len(items), 3)
	assert.Equal(t, items[2].Text, "last")
}

func TestComments_AppendNotifiesObservers(t *testing.T) {
	c := NewComments()
	var seen int
	c.OnChange(func(col Collection[campapi.Comment]) { seen = len(col.Items) })

	c.Append(campapi.Comment{ID: 0})
	assert.Equal(t, seen, 1)
}

func TestComments_ReserveIDStartsAtLength(t *testing.T) {
	c := NewComments()
	assert.Equal(t, c.ReserveID(), 0)

	c = NewComments()
	c.Fulfill([]campapi.Comment{{ID: 0}, {ID: 1}, {ID: 2}})
	assert.Equal(t, c.ReserveID(), 3)
}

func TestComments_ReserveIDSkipsHigherServerIDs(t *testing.T) {
	c := NewComments()
	c.Fulfill([]campapi.Comment{{ID: 0}, {ID: 40}})
	assert.Equal(t, c.ReserveID(), 41)
}

func TestComments_ReserveIDNeverRepeats(t *testing.T) {
	c := NewComments()
	first := c.ReserveID()
	second := c.ReserveID()
	if first == second {
		t.Fatalf("ReserveID returned %d twice", first)
	}

	// A refetch that shrinks the collection must not hand out old ids again.
	c.Fulfill(nil)
	third := c.ReserveID()
	if third <= second {
		t.Fatalf("ReserveID after refetch = %d, want > %d", third, second)
	}
}

func TestComments_ReserveIDConcurrent(t *testing.T) {
	c := NewComments()
	const n = 64

	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- c.ReserveID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	assert.Equal(t, len(seen), n)
}

func TestComments_ObserversSeeLatestStateUnderConcurrency(t *testing.T) {
	c := NewComments()
	var (
		mu   sync.Mutex
		last []campapi.Comment
	)
	c.OnChange(func(col Collection[campapi.Comment]) {
		mu.Lock()
		last = col.Items
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Fulfill([]campapi.Comment{{ID: 0}})
		}()
		go func(id int) {
			defer wg.Done()
			c.Append(campapi.Comment{ID: id, Text: "committed"})
		}(i + 1)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, last, c.State().Items)
}
