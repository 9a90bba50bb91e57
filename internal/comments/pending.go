package comments

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/five82/trailhead/internal/campapi"
)

// Pending tracks one submitted comment until it commits or is canceled.
type Pending struct {
	Token       ulid.ULID
	ID          int
	SubmittedAt time.Time

	draft  Draft
	cancel context.CancelFunc
	done   chan struct{}

	once    sync.Once
	comment campapi.Comment
	err     error
}

// Done is closed once the submission has committed or been canceled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the submission settles or ctx ends. Abandoning the wait
// does not cancel the submission.
func (p *Pending) Wait(ctx context.Context) (campapi.Comment, error) {
	select {
	case <-p.done:
		return p.comment, p.err
	case <-ctx.Done():
		return campapi.Comment{}, ctx.Err()
	}
}

// Result returns the outcome without blocking; ok is false while pending.
func (p *Pending) Result() (comment campapi.Comment, ok bool, err error) {
	select {
	case <-p.done:
		return p.comment, true, p.err
	default:
		return campapi.Comment{}, false, nil
	}
}

// Cancel abandons the submission if it has not committed yet.
func (p *Pending) Cancel() {
	p.cancel()
}

func (p *Pending) finish(comment campapi.Comment, err error) {
	p.once.Do(func() {
		p.comment = comment
		p.err = err
		p.cancel()
		close(p.done)
	})
}
