package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/tunedex/internal/shared"
)

// fakeClock drives a Throttle deterministically: sleeps advance the clock
// instead of blocking, and every sleep is recorded.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestThrottle(interval time.Duration, clock *fakeClock) *Throttle {
	t := NewThrottle(interval)
	t.nowFn = clock.Now
	t.sleepFn = clock.Sleep
	return t
}

// stubService counts calls and returns a scripted error sequence.
type stubService struct {
	calls int
	errs  []error
}

func (s *stubService) next() error {
	var err error
	if s.calls < len(s.errs) {
		err = s.errs[s.calls]
	}
	s.calls++
	return err
}

func (s *stubService) SearchRecording(ctx context.Context, artist, track string) ([]RecordingCandidate, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return []RecordingCandidate{{ID: "rec-1", Artist: artist, Title: track}}, nil
}

func (s *stubService) SearchBare(ctx context.Context, query string) ([]RecordingCandidate, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubService) SearchRelease(ctx context.Context, artist, album string) ([]ReleaseCandidate, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubService) SearchReleaseGroup(ctx context.Context, artist string) ([]ReleaseGroupCandidate, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubService) ReleaseTracks(ctx context.Context, releaseID string) ([]AlbumTrack, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubService) Name() string { return "stub" }

func TestThrottle(t *testing.T) {
	t.Run("First Call Passes Immediately", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)

		if err := thr.Wait(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(clock.sleeps) != 0 {
			t.Errorf("expected no sleep on first call, got %v", clock.sleeps)
		}
	})

	t.Run("Consecutive Calls Are Spaced", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)

		for i := 0; i < 3; i++ {
			if err := thr.Wait(context.Background()); err != nil {
				t.Fatalf("wait %d: %v", i, err)
			}
		}

		if len(clock.sleeps) != 2 {
			t.Fatalf("expected 2 sleeps, got %v", clock.sleeps)
		}
		for _, d := range clock.sleeps {
			if d != time.Second {
				t.Errorf("expected 1s spacing, got %v", d)
			}
		}
	})

	t.Run("Elapsed Time Consumes The Interval", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)

		_ = thr.Wait(context.Background())
		clock.now = clock.now.Add(2 * time.Second)
		_ = thr.Wait(context.Background())

		if len(clock.sleeps) != 0 {
			t.Errorf("expected no sleep after idle period, got %v", clock.sleeps)
		}
	})
}

func TestThrottled(t *testing.T) {
	t.Run("Retries Rate Limit Then Succeeds", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)
		stub := &stubService{errs: []error{shared.ErrRateLimited, nil}}
		svc := NewThrottled(stub, thr, 3)

		candidates, err := svc.SearchRecording(context.Background(), "Coldplay", "Yellow")
		if err != nil {
			t.Fatalf("expected success after retry, got %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		if stub.calls != 2 {
			t.Errorf("expected 2 attempts, got %d", stub.calls)
		}
	})

	t.Run("Exhausted Retries Surface ErrRateLimited", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)
		stub := &stubService{errs: []error{
			shared.ErrRateLimited, shared.ErrRateLimited, shared.ErrRateLimited,
		}}
		svc := NewThrottled(stub, thr, 2)

		_, err := svc.SearchRecording(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
		if stub.calls != 3 {
			t.Errorf("expected 3 attempts, got %d", stub.calls)
		}
	})

	t.Run("Backoff Doubles Between Retries", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)
		stub := &stubService{errs: []error{
			shared.ErrRateLimited, shared.ErrRateLimited, nil,
		}}
		svc := NewThrottled(stub, thr, 3)

		if _, err := svc.SearchRecording(context.Background(), "a", "b"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		// Sleeps interleave throttle spacing and backoff; the backoff
		// entries must double.
		var backoffs []time.Duration
		for _, d := range clock.sleeps {
			if d >= time.Second {
				backoffs = append(backoffs, d)
			}
		}
		if len(backoffs) < 2 {
			t.Fatalf("expected at least 2 backoff sleeps, got %v", clock.sleeps)
		}
		if backoffs[1] != 2*backoffs[0] {
			t.Errorf("expected doubling backoff, got %v", backoffs)
		}
	})

	t.Run("Repeated Exhaustion Widens Interval", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)

		for i := 0; i < 2; i++ {
			stub := &stubService{errs: []error{shared.ErrRateLimited}}
			svc := NewThrottled(stub, thr, 0)
			if _, err := svc.SearchRecording(context.Background(), "a", "b"); !errors.Is(err, shared.ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited, got %v", err)
			}
		}

		if got := thr.Interval(); got != 2*time.Second {
			t.Errorf("expected widened interval 2s, got %v", got)
		}
	})

	t.Run("Widening Caps At Eight Times Base", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)

		for i := 0; i < 20; i++ {
			thr.widen()
		}

		if got := thr.Interval(); got != 8*time.Second {
			t.Errorf("expected cap at 8s, got %v", got)
		}
	})

	t.Run("Success Resets Exhaustion Streak", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)

		stub := &stubService{errs: []error{shared.ErrRateLimited}}
		svc := NewThrottled(stub, thr, 0)
		_, _ = svc.SearchRecording(context.Background(), "a", "b")

		ok := &stubService{}
		okSvc := NewThrottled(ok, thr, 0)
		if _, err := okSvc.SearchRecording(context.Background(), "a", "b"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		fail := &stubService{errs: []error{shared.ErrRateLimited}}
		failSvc := NewThrottled(fail, thr, 0)
		_, _ = failSvc.SearchRecording(context.Background(), "a", "b")

		if got := thr.Interval(); got != time.Second {
			t.Errorf("expected interval unchanged after reset, got %v", got)
		}
	})

	t.Run("Cancelled Context Stops Waiting", func(t *testing.T) {
		thr := NewThrottle(time.Hour)
		stub := &stubService{}
		svc := NewThrottled(stub, thr, 0)

		// Claim the first slot so the next call has to wait.
		if err := thr.Wait(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.SearchRecording(ctx, "a", "b")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Retries Transient Server Errors", func(t *testing.T) {
		for _, transient := range []error{shared.ErrServiceUnavailable, shared.ErrTimeout} {
			clock := newFakeClock()
			thr := newTestThrottle(time.Second, clock)
			stub := &stubService{errs: []error{transient, nil}}
			svc := NewThrottled(stub, thr, 3)

			candidates, err := svc.SearchRecording(context.Background(), "Coldplay", "Yellow")
			if err != nil {
				t.Fatalf("%v: expected success after retry, got %v", transient, err)
			}
			if len(candidates) != 1 {
				t.Fatalf("%v: expected 1 candidate, got %d", transient, len(candidates))
			}
			if stub.calls != 2 {
				t.Errorf("%v: expected 2 attempts, got %d", transient, stub.calls)
			}
		}
	})

	t.Run("Transient Exhaustion Keeps Error Class And Interval", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)
		stub := &stubService{errs: []error{
			shared.ErrServiceUnavailable, shared.ErrServiceUnavailable,
		}}
		svc := NewThrottled(stub, thr, 1)

		_, err := svc.SearchRecording(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
		if errors.Is(err, shared.ErrRateLimited) {
			t.Error("transient exhaustion must not report a rate limit")
		}
		if thr.Interval() != time.Second {
			t.Errorf("transient exhaustion widened the interval to %v", thr.Interval())
		}
	})

	t.Run("Non Retryable Errors Pass Through", func(t *testing.T) {
		clock := newFakeClock()
		thr := newTestThrottle(time.Second, clock)
		stub := &stubService{errs: []error{shared.ErrServiceRequest}}
		svc := NewThrottled(stub, thr, 3)

		_, err := svc.SearchRecording(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrServiceRequest) {
			t.Fatalf("expected ErrServiceRequest, got %v", err)
		}
		if stub.calls != 1 {
			t.Errorf("expected no retries, got %d attempts", stub.calls)
		}
	})
}
