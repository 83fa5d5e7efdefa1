package match

import (
	"context"
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/parser"
	"github.com/desertthunder/tunedex/internal/services"
)

// variantPenalty applies when a candidate title carries a performance
// variant marker the query did not ask for. A live or remix recording of
// the right song is still the wrong row.
const variantPenalty = 0.15

var variantMarkers = []string{"live", "remix", "demo", "acoustic", "instrumental", "cover", "karaoke"}

// Match is one resolution outcome: the row to emit plus how sure the
// resolver is about it. An unmatched outcome still carries the best parse
// guess so the output row is never empty.
type Match struct {
	Row        models.TrackRow
	Matched    bool
	Confidence float64
}

// Resolver verifies parse hypotheses against a metadata service and picks
// the first candidate that clears the acceptance threshold.
type Resolver struct {
	service   services.MetadataService
	threshold float64
	bareQuery bool
}

// NewResolver creates a resolver over the given service. threshold is the
// minimum combined similarity for acceptance; bareQuery enables the
// free-form fallback search when structured queries fail.
func NewResolver(service services.MetadataService, threshold float64, bareQuery bool) *Resolver {
	return &Resolver{service: service, threshold: threshold, bareQuery: bareQuery}
}

// similarity is the Jaro-Winkler similarity of two normalized names, in
// [0, 1]. Empty strings score 0 against anything.
func similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(na, nb, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(sim)
}

// scoreCandidate combines artist and title similarity for one service hit,
// penalizing variant recordings the query did not ask for.
func scoreCandidate(queryArtist, queryTrack string, candidate services.RecordingCandidate) float64 {
	score := (similarity(queryArtist, candidate.Artist) + similarity(queryTrack, candidate.Title)) / 2
	return score - variantDrag(queryTrack, candidate.Title)
}

func variantDrag(query, title string) float64 {
	queryLower := strings.ToLower(query)
	titleLower := strings.ToLower(title)
	for _, marker := range variantMarkers {
		if strings.Contains(titleLower, marker) && !strings.Contains(queryLower, marker) {
			return variantPenalty
		}
	}
	return 0
}

// Resolve checks each parse hypothesis against the service in confidence
// order and returns the first match clearing the threshold. When nothing
// clears, the result keeps the best parse guess with Matched false. Service
// failures propagate so the caller can distinguish an absent match from a
// failed lookup.
func (r *Resolver) Resolve(ctx context.Context, parsed parser.Parsed) (Match, error) {
	best := r.fallback(parsed)

	for _, candidate := range parsed.Candidates {
		hits, err := r.service.SearchRecording(ctx, candidate.Artist, candidate.Track)
		if err != nil {
			return best, err
		}

		for _, hit := range hits {
			score := scoreCandidate(candidate.Artist, candidate.Track, hit)
			if score < r.threshold {
				continue
			}
			return Match{
				Row: models.TrackRow{
					Track:  hit.Title,
					Artist: hit.Artist,
					Album:  hit.Album,
				},
				Matched:    true,
				Confidence: score,
			}, nil
		}
	}

	if r.bareQuery && parsed.Cleaned != "" {
		hits, err := r.service.SearchBare(ctx, parsed.Cleaned)
		if err != nil {
			return best, err
		}

		// No artist hypothesis to check against, so the bar is the whole
		// cleaned string versus the hit's combined name. Titles put the
		// artist on either side, so both orders are tried.
		for _, hit := range hits {
			forward := strings.TrimSpace(hit.Artist + " " + hit.Title)
			reverse := strings.TrimSpace(hit.Title + " " + hit.Artist)
			score := max(similarity(parsed.Cleaned, forward), similarity(parsed.Cleaned, reverse))
			score -= variantDrag(parsed.Cleaned, hit.Title)
			if score < r.threshold {
				continue
			}
			return Match{
				Row: models.TrackRow{
					Track:  hit.Title,
					Artist: hit.Artist,
					Album:  hit.Album,
				},
				Matched:    true,
				Confidence: score,
			}, nil
		}
	}

	return best, nil
}

// fallback builds the unmatched result from the highest-confidence parse
// guess, or the cleaned title when nothing parsed.
func (r *Resolver) fallback(parsed parser.Parsed) Match {
	if len(parsed.Candidates) > 0 {
		top := parsed.Candidates[0]
		return Match{Row: models.TrackRow{Track: top.Track, Artist: top.Artist}}
	}
	return Match{Row: models.TrackRow{Track: parsed.Cleaned}}
}
