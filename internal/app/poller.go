package app

import (
	"context"
	"sync"
	"time"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// StatusFetcher is the slice of the transport client the poller needs.
type StatusFetcher interface {
	SessionStatus(ctx context.Context, sessionID string) (map[string]any, error)
}

// Poller repeatedly fetches a session's status, normalizes it, and feeds the
// result to a subscriber. One Poller value is reusable across sessions; each
// Start call owns an independent loop.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
}

func NewPoller(fetcher StatusFetcher, interval time.Duration) *Poller {
	return &Poller{fetcher: fetcher, interval: interval}
}

// Start begins polling sessionID. The first cycle runs immediately to avoid
// a blank first render; subsequent cycles fire every interval. Cycles whose
// fetch is still in flight when the next tick fires are allowed to overlap
// (staleness is cheaper than under-polling), but every externally visible
// callback is gated on the subscription, so after the returned stop function
// returns neither onUpdate nor onError will be invoked again. A cycle
// failure never stops the loop; the next tick always runs.
func (p *Poller) Start(sessionID string, onUpdate func(domain.Session), onError func(error)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{}

	cycle := func() {
		payload, err := p.fetcher.SessionStatus(ctx, sessionID)
		if err != nil {
			sub.publish(func() { onError(err) })
			return
		}
		session := domain.NormalizeSession(payload)
		if session == nil {
			return
		}
		sub.publish(func() { onUpdate(*session) })
	}

	// The immediate cycle runs detached like the ticked ones: with no
	// per-probe timeout, a first request that never returns must not keep
	// the ticker from starting.
	go cycle()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go cycle()
			}
		}
	}()

	return func() {
		sub.close()
		cancel()
	}
}

// subscription gates callback delivery. close() takes the same lock that
// publish holds while running a callback, so once close returns no callback
// is running and none will start. The stop function must not be called from
// inside a callback.
type subscription struct {
	mu     sync.Mutex
	closed bool
}

func (s *subscription) publish(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

func (s *subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
