package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/tunedex/internal/shared"
)

// Throttle serializes calls to a shared resource, enforcing a minimum
// interval between consecutive calls. The gate is a mutex-protected
// next-allowed timestamp rather than a token bucket: metadata providers
// meter strictly per-request, so bursting is never acceptable.
//
// The clock is injectable for tests; zero-value fields fall back to the
// real clock.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	base     time.Duration
	next     time.Time
	strikes  int

	nowFn   func() time.Time
	sleepFn func(context.Context, time.Duration) error
}

// maxWidenFactor caps adaptive widening at 8x the configured interval.
const maxWidenFactor = 8

// NewThrottle creates a throttle enforcing at least interval between calls.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		base:     interval,
		nowFn:    time.Now,
		sleepFn:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until the next call slot opens, then claims it. Returns the
// context error if cancelled while waiting.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := t.nowFn()
	wait := t.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	claimed := now.Add(wait)
	t.next = claimed.Add(t.interval)
	t.mu.Unlock()

	if wait > 0 {
		if err := t.sleepFn(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// Interval returns the current enforced interval, which may exceed the
// configured base after widening.
func (t *Throttle) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// widen doubles the interval after repeated rate-limit exhaustions. Two
// consecutive exhausted retry loops trigger one doubling, capped at
// maxWidenFactor times the base interval.
func (t *Throttle) widen() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strikes++
	if t.strikes < 2 {
		return
	}
	t.strikes = 0
	if widened := t.interval * 2; widened <= t.base*maxWidenFactor {
		t.interval = widened
	}
}

// settle resets the exhaustion streak after a successful call.
func (t *Throttle) settle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strikes = 0
}

// Throttled wraps a MetadataService so every call passes through a shared
// Throttle and retries transient failures with exponential backoff.
// Retries re-enter the throttle queue, so a retry never jumps ahead of
// other pending callers.
type Throttled struct {
	inner      MetadataService
	throttle   *Throttle
	maxRetries int
}

// NewThrottled wraps inner with the given throttle. maxRetries bounds how
// many times a rate-limited call is retried before ErrRateLimited surfaces
// to the caller.
func NewThrottled(inner MetadataService, throttle *Throttle, maxRetries int) *Throttled {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Throttled{inner: inner, throttle: throttle, maxRetries: maxRetries}
}

func (t *Throttled) Name() string {
	return t.inner.Name()
}

// retryable reports whether an error is transient: rate-limit responses,
// timeouts, and transport or 5xx failures. Request errors (4xx, malformed
// bodies) are not retried.
func retryable(err error) bool {
	return errors.Is(err, shared.ErrRateLimited) ||
		errors.Is(err, shared.ErrTimeout) ||
		errors.Is(err, shared.ErrServiceUnavailable)
}

// call runs fn under the throttle, retrying transient errors with doubling
// backoff sleeps between attempts. Exhausting the retry budget on rate-limit
// responses widens the shared interval and returns ErrRateLimited; other
// transient errors surface as-is after the last attempt.
func (t *Throttled) call(ctx context.Context, fn func(context.Context) error) error {
	backoff := t.throttle.Interval()

	for attempt := 0; ; attempt++ {
		if err := t.throttle.Wait(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			t.throttle.settle()
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt >= t.maxRetries {
			if errors.Is(err, shared.ErrRateLimited) {
				t.throttle.widen()
				return fmt.Errorf("%w: retries exhausted after %d attempts", shared.ErrRateLimited, attempt+1)
			}
			return fmt.Errorf("retries exhausted after %d attempts: %w", attempt+1, err)
		}

		if serr := t.throttle.sleepFn(ctx, backoff); serr != nil {
			return serr
		}
		backoff *= 2
	}
}

func (t *Throttled) SearchRecording(ctx context.Context, artist, track string) ([]RecordingCandidate, error) {
	var result []RecordingCandidate
	err := t.call(ctx, func(ctx context.Context) error {
		var err error
		result, err = t.inner.SearchRecording(ctx, artist, track)
		return err
	})
	return result, err
}

func (t *Throttled) SearchBare(ctx context.Context, query string) ([]RecordingCandidate, error) {
	var result []RecordingCandidate
	err := t.call(ctx, func(ctx context.Context) error {
		var err error
		result, err = t.inner.SearchBare(ctx, query)
		return err
	})
	return result, err
}

func (t *Throttled) SearchRelease(ctx context.Context, artist, album string) ([]ReleaseCandidate, error) {
	var result []ReleaseCandidate
	err := t.call(ctx, func(ctx context.Context) error {
		var err error
		result, err = t.inner.SearchRelease(ctx, artist, album)
		return err
	})
	return result, err
}

func (t *Throttled) SearchReleaseGroup(ctx context.Context, artist string) ([]ReleaseGroupCandidate, error) {
	var result []ReleaseGroupCandidate
	err := t.call(ctx, func(ctx context.Context) error {
		var err error
		result, err = t.inner.SearchReleaseGroup(ctx, artist)
		return err
	})
	return result, err
}

func (t *Throttled) ReleaseTracks(ctx context.Context, releaseID string) ([]AlbumTrack, error) {
	var result []AlbumTrack
	err := t.call(ctx, func(ctx context.Context) error {
		var err error
		result, err = t.inner.ReleaseTracks(ctx, releaseID)
		return err
	})
	return result, err
}
