package ratelimit

import (
	"context"
	"sync"
	"time"

	"quotesnap/internal/provider"
)

// MinInterval spaces the starts of a Source's fetches at least Interval
// apart. Each caller reserves the next free slot, so concurrent callers queue
// in reservation order.
type MinInterval struct {
	S        provider.Source
	Interval time.Duration

	mu   sync.Mutex
	next time.Time
}

var _ provider.Source = (*MinInterval)(nil)

func (m *MinInterval) Name() string { return m.S.Name() }

func (m *MinInterval) reserve(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := now
	if m.next.After(now) {
		slot = m.next
	}
	m.next = slot.Add(m.Interval)
	return slot.Sub(now)
}

func (m *MinInterval) Fetch(ctx context.Context, symbol provider.Symbol, fiat string) (provider.Update, error) {
	if m.Interval > 0 {
		if wait := m.reserve(time.Now()); wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return provider.Update{}, provider.Unreachable(m.S.Name(), symbol, "", ctx.Err())
			case <-t.C:
			}
		}
	}
	return m.S.Fetch(ctx, symbol, fiat)
}

// Wrap applies the limiter the settings ask for. A positive requestsPerMinute
// selects a token bucket; otherwise a positive minInterval selects MinInterval;
// otherwise s is returned unchanged.
func Wrap(s provider.Source, requestsPerMinute, burst int, minInterval time.Duration) provider.Source {
	switch {
	case requestsPerMinute > 0:
		if burst <= 0 {
			burst = 1
		}
		return &TokenBucketSource{S: s, TB: NewTokenBucket(float64(requestsPerMinute)/60.0, burst)}
	case minInterval > 0:
		return &MinInterval{S: s, Interval: minInterval}
	default:
		return s
	}
}
