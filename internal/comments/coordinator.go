package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/state"
)

var (
	// ErrInvalidDraft wraps every validation failure returned by Submit.
	ErrInvalidDraft = errors.New("invalid comment")
	// ErrCanceled is reported by Wait when the submission was abandoned
	// before it committed.
	ErrCanceled = errors.New("comment submission canceled")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("comment coordinator closed")
)

// Draft is what the user typed into the comment form.
type Draft struct {
	Author     string
	Rating     int
	Text       string
	CampsiteID int
}

// Validate reports the first problem with the draft, wrapped in ErrInvalidDraft.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Author) == "":
		return fmt.Errorf("%w: author is required", ErrInvalidDraft)
	case strings.TrimSpace(d.Text) == "":
		return fmt.Errorf("%w: text is required", ErrInvalidDraft)
	case d.Rating < 1 || d.Rating > 5:
		return fmt.Errorf("%w: rating %d is outside 1-5", ErrInvalidDraft, d.Rating)
	case d.CampsiteID < 0:
		return fmt.Errorf("%w: campsite id %d is negative", ErrInvalidDraft, d.CampsiteID)
	}
	return nil
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now for date stamping.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator owns delayed, optimistic comment appends.
type Coordinator struct {
	comments *state.Comments
	delay    time.Duration
	now      func() time.Time

	mu       sync.Mutex
	inflight map[ulid.ULID]*Pending
	closed   bool
	wg       sync.WaitGroup
}

// NewCoordinator appends committed comments to comments after delay.
// A negative delay is treated as zero.
func NewCoordinator(comments *state.Comments, delay time.Duration, opts ...Option) *Coordinator {
	if delay < 0 {
		delay = 0
	}
	c := &Coordinator{
		comments: comments,
		delay:    delay,
		now:      time.Now,
		inflight: make(map[ulid.ULID]*Pending),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates d, reserves its id and schedules the commit. Cancelling
// ctx before the delay elapses abandons the submission.
func (c *Coordinator) Submit(ctx context.Context, d Draft) (*Pending, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	runCtx, cancel := context.WithCancel(ctx)
	p := &Pending{
		Token:       ulid.Make(),
		ID:          c.comments.ReserveID(),
		SubmittedAt: c.now(),
		draft:       d,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	c.inflight[p.Token] = p
	c.wg.Add(1)
	go c.run(runCtx, p)

	glog.V(1).Infof("comment %s: scheduled id=%d campsite=%d", p.Token, p.ID, d.CampsiteID)
	return p, nil
}

func (c *Coordinator) run(ctx context.Context, p *Pending) {
	defer c.wg.Done()
	defer c.forget(p.Token)

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		p.finish(campapi.Comment{}, ErrCanceled)
		glog.V(1).Infof("comment %s: canceled before commit", p.Token)
		return
	case <-timer.C:
	}

	// A cancel racing the timer wins if it got in first.
	if ctx.Err() != nil {
		p.finish(campapi.Comment{}, ErrCanceled)
		return
	}

	comment := campapi.Comment{
		ID:         p.ID,
		CampsiteID: p.draft.CampsiteID,
		Author:     p.draft.Author,
		Rating:     p.draft.Rating,
		Text:       p.draft.Text,
		Date:       campapi.FormatDate(c.now()),
	}
	c.comments.Append(comment)
	p.finish(comment, nil)
	glog.V(1).Infof("comment %s: committed id=%d", p.Token, p.ID)
}

func (c *Coordinator) forget(token ulid.ULID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, token)
}

// Cancel abandons the submission identified by token. It reports whether a
// submission was still waiting.
func (c *Coordinator) Cancel(token ulid.ULID) bool {
	c.mu.Lock()
	p, ok := c.inflight[token]
	c.mu.Unlock()
	if !ok {
		return false
	}
	p.Cancel()
	return true
}

// InFlight returns the number of submissions waiting to commit.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Close cancels every waiting submission and waits for them to settle.
// Later calls to Submit fail with ErrClosed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	pending := make([]*Pending, 0, len(c.inflight))
	for _, p := range c.inflight {
		pending = append(pending, p)
	}
	c.mu.Unlock()

	for _, p := range pending {
		p.Cancel()
	}
	c.wg.Wait()
}
