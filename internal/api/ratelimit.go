package api

import (
	"context"
	"sync"
	"time"
)

// spacer is a leaky bucket of one: a call may start only once interval has
// elapsed since the previous call completed. The lock is held for the whole
// call, so calls sharing a spacer never overlap.
type spacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time // completion time of the previous call
}

func newSpacer(interval time.Duration) *spacer {
	return &spacer{interval: interval}
}

// acquire blocks until the next call may start. The returned release must be
// called once the call has completed.
func (s *spacer) acquire(ctx context.Context) (release func(), err error) {
	s.mu.Lock()

	if !s.last.IsZero() {
		if wait := s.interval - time.Since(s.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.mu.Unlock()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return func() {
		s.last = time.Now()
		s.mu.Unlock()
	}, nil
}
