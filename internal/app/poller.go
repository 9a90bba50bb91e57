package app

import (
	"context"
	"time"

	"github.com/golang/glog"
)

const maxBackoff = 30 * time.Second

// Refresher re-fetches every collection and reports the first failure.
type Refresher interface {
	FetchAll(ctx context.Context) error
}

// StartPoller launches a background goroutine that calls FetchAll every
// interval, backing off exponentially while refreshes fail. It returns
// immediately; the goroutine exits when ctx is done and then closes the
// returned channel.
func StartPoller(ctx context.Context, r Refresher, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := r.FetchAll(ctx); err != nil {
				failures++
				glog.Warningf("refresh failed (%d in a row): %v", failures, err)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
	return done
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
