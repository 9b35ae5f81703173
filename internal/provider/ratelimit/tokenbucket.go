package ratelimit

import (
	"context"
	"sync"
	"time"

	"quotesnap/internal/provider"
)

// minRate keeps the refill arithmetic finite for a zero or negative rate.
const minRate = 1e-7

// TokenBucket admits calls at a steady rate with an initial burst.
type TokenBucket struct {
	perSecond float64
	burst     float64

	mu       sync.Mutex
	tokens   float64
	refilled time.Time
}

// NewTokenBucket returns a full bucket refilling at tokensPerSecond and
// holding at most burst tokens.
func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
	tokensPerSecond = max(tokensPerSecond, minRate)
	burst = max(burst, 1)
	return &TokenBucket{
		perSecond: tokensPerSecond,
		burst:     float64(burst),
		tokens:    float64(burst),
		refilled:  time.Now(),
	}
}

// take consumes a token if one is available. Otherwise it returns how long
// until the next token.
func (tb *TokenBucket) take(now time.Time) (time.Duration, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.refilled).Seconds(); elapsed > 0 {
		tb.tokens = min(tb.burst, tb.tokens+elapsed*tb.perSecond)
		tb.refilled = now
	}
	if tb.tokens >= 1 {
		tb.tokens--
		return 0, true
	}
	wait := time.Duration((1 - tb.tokens) / tb.perSecond * float64(time.Second))
	return max(wait, time.Millisecond), false
}

// Wait blocks until a token is taken or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait, ok := tb.take(time.Now())
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TokenBucketSource gates a Source's fetches through TB. A fetch that gives
// up waiting is reported as unreachable for that symbol.
type TokenBucketSource struct {
	S  provider.Source
	TB *TokenBucket
}

var _ provider.Source = (*TokenBucketSource)(nil)

func (t *TokenBucketSource) Name() string { return t.S.Name() }

func (t *TokenBucketSource) Fetch(ctx context.Context, symbol provider.Symbol, fiat string) (provider.Update, error) {
	if t.TB != nil {
		if err := t.TB.Wait(ctx); err != nil {
			return provider.Update{}, provider.Unreachable(t.S.Name(), symbol, "", err)
		}
	}
	return t.S.Fetch(ctx, symbol, fiat)
}
