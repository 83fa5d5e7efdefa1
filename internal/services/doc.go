// Package services defines the [MetadataService] interface for music
// metadata providers and implements it for MusicBrainz.
//
// # MetadataService Interface
//
// All metadata providers implement a common abstraction, so matching and
// album expansion work uniformly regardless of provider.
//
// # MusicBrainz Implementation
//
// [MusicBrainzService] talks to the WS/2 JSON API. No authentication is
// needed; the client identifies itself through the User-Agent header as the
// MusicBrainz policy requires. Search queries use Lucene field syntax with
// quoted, escaped values.
//
// # Throttling
//
// [Throttled] wraps any MetadataService behind a shared [Throttle] that
// enforces a minimum interval between calls, the contract public providers
// impose. Transient failures (rate limits, timeouts, transport errors, 5xx)
// are retried with exponential backoff; repeated rate-limit exhaustion
// widens the shared interval so a sustained 503 storm slows every caller
// down rather than failing the run.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrRateLimited] : provider returned 503/429, or retries exhausted
//   - [shared.ErrServiceRequest] : malformed response or non-retryable 4xx status
//   - [shared.ErrServiceUnavailable] : transport failure or 5xx status
//   - [shared.ErrTimeout] : request deadline exceeded
package services
