// MusicBrainz API implementation of [MetadataService]
//
// Response types based on the WS/2 JSON schema,
// https://musicbrainz.org/doc/MusicBrainz_API
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/desertthunder/tunedex/internal/shared"
)

const (
	defaultBaseURL   = "https://musicbrainz.org/ws/2"
	defaultUserAgent = "tunedex/0.1.0 ( https://github.com/desertthunder/tunedex )"
	searchLimit      = 5
)

type mbArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type mbReleaseGroup struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	PrimaryType    string           `json:"primary-type"`
	SecondaryTypes []string         `json:"secondary-types"`
	FirstRelease   string           `json:"first-release-date"`
	ArtistCredit   []mbArtistCredit `json:"artist-credit"`
}

type mbRelease struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Status       string           `json:"status"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	ReleaseGroup mbReleaseGroup   `json:"release-group"`
	TrackCount   int              `json:"track-count"`
	Score        int              `json:"score"`
}

type mbRecording struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Score        int              `json:"score"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	Releases     []mbRelease      `json:"releases"`
}

type recordingSearchResponse struct {
	Count      int           `json:"count"`
	Recordings []mbRecording `json:"recordings"`
}

type releaseSearchResponse struct {
	Count    int         `json:"count"`
	Releases []mbRelease `json:"releases"`
}

type releaseGroupSearchResponse struct {
	Count         int              `json:"count"`
	ReleaseGroups []mbReleaseGroup `json:"release-groups"`
}

type mbTrack struct {
	Position     int              `json:"position"`
	Title        string           `json:"title"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	Recording    struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"recording"`
}

type mbMedium struct {
	Position int       `json:"position"`
	Format   string    `json:"format"`
	Tracks   []mbTrack `json:"tracks"`
}

type releaseLookupResponse struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	Media        []mbMedium       `json:"media"`
}

// MusicBrainzService implements the MetadataService interface over the WS/2
// JSON API. No authentication is required; the service identifies itself
// via the User-Agent header per MusicBrainz policy.
type MusicBrainzService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewMusicBrainzService creates a client for the given base URL. Empty
// arguments fall back to the public musicbrainz.org endpoint and the
// default agent string.
func NewMusicBrainzService(baseURL, userAgent string, client *http.Client) *MusicBrainzService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MusicBrainzService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: client,
	}
}

func (s *MusicBrainzService) Name() string {
	return "MusicBrainz"
}

// doRequest performs a GET against the WS/2 API and decodes the JSON body
// into result. Rate-limit responses (503, 429) map to shared.ErrRateLimited
// and other 5xx to shared.ErrServiceUnavailable, so the caller's throttle
// can back off and retry; 4xx responses are not retryable.
func (s *MusicBrainzService) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", shared.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrServiceRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrServiceRequest, err)
		}
	}

	return nil
}

// escapeLucene quotes a value for inclusion in a Lucene field query.
func escapeLucene(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

func (s *MusicBrainzService) searchEndpoint(entity, query string) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	return fmt.Sprintf("/%s/?%s", entity, params.Encode())
}

// SearchRecording searches recordings matching the artist and track name.
func (s *MusicBrainzService) SearchRecording(ctx context.Context, artist, track string) ([]RecordingCandidate, error) {
	query := fmt.Sprintf("artist:%s AND recording:%s", escapeLucene(artist), escapeLucene(track))

	var response recordingSearchResponse
	if err := s.doRequest(ctx, s.searchEndpoint("recording", query), &response); err != nil {
		return nil, err
	}

	return recordingCandidates(response.Recordings), nil
}

// SearchBare searches recordings by a free-form query, for titles that
// resist artist/track splitting.
func (s *MusicBrainzService) SearchBare(ctx context.Context, query string) ([]RecordingCandidate, error) {
	var response recordingSearchResponse
	if err := s.doRequest(ctx, s.searchEndpoint("recording", query), &response); err != nil {
		return nil, err
	}

	return recordingCandidates(response.Recordings), nil
}

// SearchRelease searches releases matching the artist and album name.
func (s *MusicBrainzService) SearchRelease(ctx context.Context, artist, album string) ([]ReleaseCandidate, error) {
	query := fmt.Sprintf("artist:%s AND release:%s", escapeLucene(artist), escapeLucene(album))

	var response releaseSearchResponse
	if err := s.doRequest(ctx, s.searchEndpoint("release", query), &response); err != nil {
		return nil, err
	}

	candidates := make([]ReleaseCandidate, 0, len(response.Releases))
	for _, rel := range response.Releases {
		candidates = append(candidates, ReleaseCandidate{
			ID:          rel.ID,
			Title:       rel.Title,
			Artist:      creditName(rel.ArtistCredit),
			PrimaryType: rel.ReleaseGroup.PrimaryType,
			TrackCount:  rel.TrackCount,
			Score:       rel.Score,
		})
	}

	return candidates, nil
}

// SearchReleaseGroup searches studio album release groups for an artist.
// Live albums, compilations and soundtracks are excluded in the query so
// the provider does the filtering.
func (s *MusicBrainzService) SearchReleaseGroup(ctx context.Context, artist string) ([]ReleaseGroupCandidate, error) {
	query := fmt.Sprintf(
		"artist:%s AND primarytype:album AND NOT secondarytype:live AND NOT secondarytype:compilation AND NOT secondarytype:soundtrack",
		escapeLucene(artist),
	)

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", "100")
	endpoint := fmt.Sprintf("/release-group/?%s", params.Encode())

	var response releaseGroupSearchResponse
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	candidates := make([]ReleaseGroupCandidate, 0, len(response.ReleaseGroups))
	for _, rg := range response.ReleaseGroups {
		candidates = append(candidates, ReleaseGroupCandidate{
			ID:             rg.ID,
			Title:          rg.Title,
			Artist:         creditName(rg.ArtistCredit),
			PrimaryType:    rg.PrimaryType,
			SecondaryTypes: rg.SecondaryTypes,
			FirstRelease:   rg.FirstRelease,
		})
	}

	return candidates, nil
}

// ReleaseTracks retrieves the track list of a release across all media, in
// medium then position order as the API returns them.
func (s *MusicBrainzService) ReleaseTracks(ctx context.Context, releaseID string) ([]AlbumTrack, error) {
	endpoint := fmt.Sprintf("/release/%s?inc=recordings+artist-credits&fmt=json", url.PathEscape(releaseID))

	var response releaseLookupResponse
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	releaseArtist := creditName(response.ArtistCredit)

	var tracks []AlbumTrack
	position := 0
	for _, medium := range response.Media {
		for _, track := range medium.Tracks {
			position++
			artist := creditName(track.ArtistCredit)
			if artist == "" {
				artist = releaseArtist
			}
			title := track.Title
			if title == "" {
				title = track.Recording.Title
			}
			tracks = append(tracks, AlbumTrack{
				Position: position,
				Title:    title,
				Artist:   artist,
			})
		}
	}

	return tracks, nil
}

// creditName joins an artist credit into a display name, matching how the
// web UI renders multi-artist credits.
func creditName(credits []mbArtistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	names := make([]string, 0, len(credits))
	for _, c := range credits {
		if c.Name != "" {
			names = append(names, c.Name)
		} else if c.Artist.Name != "" {
			names = append(names, c.Artist.Name)
		}
	}
	return strings.Join(names, " & ")
}

// recordingCandidates converts search hits, picking the first album-type
// release each recording appears on as its album guess.
func recordingCandidates(recordings []mbRecording) []RecordingCandidate {
	candidates := make([]RecordingCandidate, 0, len(recordings))
	for _, rec := range recordings {
		candidate := RecordingCandidate{
			ID:     rec.ID,
			Title:  rec.Title,
			Artist: creditName(rec.ArtistCredit),
			Score:  rec.Score,
		}
		for _, rel := range rec.Releases {
			if strings.EqualFold(rel.ReleaseGroup.PrimaryType, "Album") {
				candidate.Album = rel.Title
				break
			}
		}
		if candidate.Album == "" && len(rec.Releases) > 0 {
			candidate.Album = rec.Releases[0].Title
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}
