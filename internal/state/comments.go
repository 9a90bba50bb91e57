package state

import (
	"github.com/five82/trailhead/internal/campapi"
)

// Comments is the comment collection. Besides the fetch lifecycle it accepts
// local appends and hands out ids for comments written on this device.
type Comments struct {
	*Slice[campapi.Comment]

	// nextID is the lowest id not yet reserved; guarded by Slice.mu.
	nextID int
}

// NewComments returns an empty comment collection in the loading state.
func NewComments() *Comments {
	return &Comments{Slice: NewSlice[campapi.Comment]("comments")}
}

// Append inserts a fully formed comment at the end of the collection,
// whatever the fetch state.
func (c *Comments) Append(comment campapi.Comment) {
	c.mu.Lock()
	c.state.Items = append(c.state.Items, comment)
	if comment.ID >= c.nextID {
		c.nextID = comment.ID + 1
	}
	c.notifyLocked()
	c.mu.Unlock()
}

// ReserveID returns an id no earlier reservation or known comment uses.
// Ids are monotonic for the life of the process, so submissions that are
// still waiting to commit never collide.
func (c *Comments) ReserveID() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	if n := len(c.state.Items); n > id {
		id = n
	}
	for _, item := range c.state.Items {
		if item.ID >= id {
			id = item.ID + 1
		}
	}
	c.nextID = id + 1
	return id
}
