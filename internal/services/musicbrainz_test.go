package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tunedex/internal/shared"
)

func TestMusicBrainzService(t *testing.T) {
	t.Run("SearchRecording", func(t *testing.T) {
		t.Run("Parses Candidates", func(t *testing.T) {
			var gotQuery, gotAgent string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("query")
				gotAgent = r.Header.Get("User-Agent")
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"count": 1,
					"recordings": [{
						"id": "rec-1",
						"title": "Yellow",
						"score": 100,
						"artist-credit": [{"name": "Coldplay"}],
						"releases": [
							{"id": "rel-1", "title": "Yellow", "release-group": {"primary-type": "Single"}},
							{"id": "rel-2", "title": "Parachutes", "release-group": {"primary-type": "Album"}}
						]
					}]
				}`))
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "tunedex-test/0.0", server.Client())
			candidates, err := svc.SearchRecording(context.Background(), "Coldplay", "Yellow")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(candidates) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(candidates))
			}

			c := candidates[0]
			if c.Artist != "Coldplay" || c.Title != "Yellow" {
				t.Errorf("got %q / %q", c.Artist, c.Title)
			}
			if c.Album != "Parachutes" {
				t.Errorf("expected album-type release preferred, got %q", c.Album)
			}
			if c.Score != 100 {
				t.Errorf("expected score 100, got %d", c.Score)
			}

			if !strings.Contains(gotQuery, `artist:"Coldplay"`) || !strings.Contains(gotQuery, `recording:"Yellow"`) {
				t.Errorf("unexpected query %q", gotQuery)
			}
			if gotAgent != "tunedex-test/0.0" {
				t.Errorf("expected custom user agent, got %q", gotAgent)
			}
		})

		t.Run("Escapes Quotes In Query", func(t *testing.T) {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("query")
				w.Write([]byte(`{"count": 0, "recordings": []}`))
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			if _, err := svc.SearchRecording(context.Background(), `The "Band"`, "Song"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(gotQuery, `artist:"The \"Band\""`) {
				t.Errorf("quotes not escaped in %q", gotQuery)
			}
		})

		t.Run("Rate Limit Status Maps To ErrRateLimited", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			_, err := svc.SearchRecording(context.Background(), "a", "b")
			if !errors.Is(err, shared.ErrRateLimited) {
				t.Errorf("expected ErrRateLimited, got %v", err)
			}
		})

		t.Run("Server Error Maps To ErrServiceUnavailable", func(t *testing.T) {
			for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout} {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
				}))

				svc := NewMusicBrainzService(server.URL, "", server.Client())
				_, err := svc.SearchRecording(context.Background(), "a", "b")
				if !errors.Is(err, shared.ErrServiceUnavailable) {
					t.Errorf("status %d: expected ErrServiceUnavailable, got %v", status, err)
				}
				server.Close()
			}
		})

		t.Run("Client Error Maps To ErrServiceRequest", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			_, err := svc.SearchRecording(context.Background(), "a", "b")
			if !errors.Is(err, shared.ErrServiceRequest) {
				t.Errorf("expected ErrServiceRequest, got %v", err)
			}
		})

		t.Run("Transient Server Error Recovers Under Retry", func(t *testing.T) {
			var hits int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
				if hits == 1 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.Write([]byte(`{"count": 1, "recordings": [{"id": "rec-1", "title": "Yellow", "score": 100,
					"artist-credit": [{"name": "Coldplay"}]}]}`))
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			throttled := NewThrottled(svc, NewThrottle(0), 2)

			results, err := throttled.SearchRecording(context.Background(), "Coldplay", "Yellow")
			if err != nil {
				t.Fatalf("expected retry to recover, got %v", err)
			}
			if hits != 2 {
				t.Errorf("expected 2 attempts, got %d", hits)
			}
			if len(results) != 1 || results[0].Title != "Yellow" {
				t.Errorf("unexpected results %+v", results)
			}
		})
	})

	t.Run("SearchReleaseGroup", func(t *testing.T) {
		t.Run("Excludes Non Studio Types In Query", func(t *testing.T) {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("query")
				w.Write([]byte(`{
					"count": 1,
					"release-groups": [{
						"id": "rg-1",
						"title": "Parachutes",
						"primary-type": "Album",
						"first-release-date": "2000-07-10",
						"artist-credit": [{"name": "Coldplay"}]
					}]
				}`))
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			groups, err := svc.SearchReleaseGroup(context.Background(), "Coldplay")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(groups) != 1 || groups[0].Title != "Parachutes" {
				t.Fatalf("unexpected groups %+v", groups)
			}
			for _, excluded := range []string{"live", "compilation", "soundtrack"} {
				if !strings.Contains(gotQuery, "NOT secondarytype:"+excluded) {
					t.Errorf("query missing exclusion for %s: %q", excluded, gotQuery)
				}
			}
		})
	})

	t.Run("ReleaseTracks", func(t *testing.T) {
		t.Run("Flattens Media In Order", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.Contains(r.URL.Path, "/release/rel-1") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{
					"id": "rel-1",
					"title": "Parachutes",
					"artist-credit": [{"name": "Coldplay"}],
					"media": [
						{"position": 1, "tracks": [
							{"position": 1, "title": "Don't Panic"},
							{"position": 2, "title": "Shiver"}
						]},
						{"position": 2, "tracks": [
							{"position": 1, "title": "Yellow"}
						]}
					]
				}`))
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			tracks, err := svc.ReleaseTracks(context.Background(), "rel-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(tracks) != 3 {
				t.Fatalf("expected 3 tracks, got %d", len(tracks))
			}
			if tracks[2].Title != "Yellow" || tracks[2].Position != 3 {
				t.Errorf("expected Yellow at position 3, got %+v", tracks[2])
			}
			if tracks[0].Artist != "Coldplay" {
				t.Errorf("expected release artist fallback, got %q", tracks[0].Artist)
			}
		})

		t.Run("Empty Release", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id": "rel-2", "title": "Empty", "media": []}`))
			}))
			defer server.Close()

			svc := NewMusicBrainzService(server.URL, "", server.Client())
			tracks, err := svc.ReleaseTracks(context.Background(), "rel-2")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 0 {
				t.Errorf("expected no tracks, got %d", len(tracks))
			}
		})
	})

	t.Run("CreditName", func(t *testing.T) {
		credits := []mbArtistCredit{{Name: "Jay-Z"}, {Name: "Linkin Park"}}
		if got := creditName(credits); got != "Jay-Z & Linkin Park" {
			t.Errorf("got %q", got)
		}
		if got := creditName(nil); got != "" {
			t.Errorf("expected empty name, got %q", got)
		}
	})
}
