// package parser extracts artist/track hypotheses from raw video titles.
//
// Uploaded music titles follow loose conventions ("Artist - Track (Official
// Video)", "Track by Artist", "Artist – Full Album"). Parsing tries a fixed
// priority list of patterns against a cleaned title and returns every
// hypothesis, ranked by confidence, for the resolver to verify against the
// metadata service.
package parser

import (
	"regexp"
	"sort"
	"strings"
)

// PatternID identifies which title convention produced a candidate.
type PatternID int

const (
	PatternNone PatternID = iota
	PatternDashFeat            // Artist - Track (feat. X)
	PatternDash                // Artist - Track
	PatternColon               // Artist: Track
	PatternQuotedBy            // "Track" by Artist
	PatternBy                  // Track by Artist
)

func (p PatternID) String() string {
	switch p {
	case PatternDashFeat:
		return "dash_feat"
	case PatternDash:
		return "dash"
	case PatternColon:
		return "colon"
	case PatternQuotedBy:
		return "quoted_by"
	case PatternBy:
		return "by"
	default:
		return "none"
	}
}

// Candidate is one hypothesized artist/track split with its confidence.
type Candidate struct {
	Artist     string
	Track      string
	Pattern    PatternID
	Confidence float64
}

// Parsed is the full parse outcome for one title: the ranked candidates plus
// the side-channel album flag consumed by the expander.
type Parsed struct {
	Candidates []Candidate
	// LikelyAlbum is set when the title carries an explicit full-album
	// marker; the highest candidate's track guess is then the album name.
	LikelyAlbum bool
	// Cleaned is the normalized title, used for bare-string fallback queries.
	Cleaned string
}

// pattern pairs a compiled title convention with its fixed base confidence.
// artistGroup/trackGroup name which capture holds which field, since the
// "by" conventions reverse the order.
type pattern struct {
	id          PatternID
	re          *regexp.Regexp
	confidence  float64
	artistGroup int
	trackGroup  int
}

// patterns are tried in priority order, most specific separator convention
// first. Each matching pattern contributes one candidate.
var patterns = []pattern{
	{PatternDashFeat, regexp.MustCompile(`^(.+?)\s+-\s+(.+?)\s+feat\.?\s+.+$`), 0.95, 1, 2},
	{PatternDash, regexp.MustCompile(`^([^-]+?)\s+-\s+(.+)$`), 0.90, 1, 2},
	{PatternColon, regexp.MustCompile(`^([^:]+?)\s*:\s+(.+)$`), 0.80, 1, 2},
	{PatternQuotedBy, regexp.MustCompile(`^["'](.+?)["']\s+by\s+(.+)$`), 0.75, 2, 1},
	{PatternBy, regexp.MustCompile(`^(.+?)\s+by\s+(.+)$`), 0.60, 2, 1},
}

// albumIndicators mark a title as covering a whole release rather than one
// track. Checked against the lowercased raw title before annotations are
// stripped, since the marker usually lives inside brackets.
var albumIndicators = []string{
	"full album", "complete album", "entire album", "whole album",
	"(album)", "[album]", "full cd", "complete cd",
}

// noiseTerms are upload-platform artifacts that say nothing about the music.
// Their presence inside bracketed annotations lowers confidence slightly:
// heavily annotated titles tend to have messier artist/track text.
var noiseTerms = []string{
	"official video", "official music video", "music video", "lyric video",
	"official audio", "official lyric video", "lyrics", "audio", "visualizer",
	"hd", "hq", "4k", "remastered",
}

var (
	bracketRE   = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|【[^】]*】|「[^」]*」`)
	spaceRE     = regexp.MustCompile(`\s+`)
	dashRE      = regexp.MustCompile(`\s*[-–—‐]\s*`)
	noiseSuffix = regexp.MustCompile(`(?i)\s+(official\s+)?(music\s+|lyric\s+)?(video|audio|lyrics|visualizer|hd|hq)$`)
)

// Clean normalizes a raw title before pattern matching: bracketed
// annotations stripped, separator variants collapsed to " - ", trailing
// noise terms removed, whitespace folded. Applied before matching so
// confidence reflects the cleaned string.
func Clean(title string) string {
	cleaned := bracketRE.ReplaceAllString(title, " ")
	cleaned = dashRE.ReplaceAllString(cleaned, " - ")
	cleaned = spaceRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	for {
		next := strings.TrimSpace(noiseSuffix.ReplaceAllString(cleaned, ""))
		if next == cleaned {
			break
		}
		cleaned = next
	}
	return cleaned
}

// Parse extracts every artist/track hypothesis from a raw title.
//
// Returns candidates ordered by descending confidence; ties break on
// pattern priority. The slice is empty when no pattern matches; Parse never
// fails on malformed input.
func Parse(title string) Parsed {
	lower := strings.ToLower(title)
	parsed := Parsed{Cleaned: Clean(title)}

	for _, indicator := range albumIndicators {
		if strings.Contains(lower, indicator) {
			parsed.LikelyAlbum = true
			break
		}
	}

	noisy := false
	for _, annotation := range bracketRE.FindAllString(strings.ToLower(title), -1) {
		for _, term := range noiseTerms {
			if strings.Contains(annotation, term) {
				noisy = true
				break
			}
		}
		if noisy {
			break
		}
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(parsed.Cleaned)
		if m == nil {
			continue
		}
		artist := strings.TrimSpace(m[p.artistGroup])
		track := strings.TrimSpace(m[p.trackGroup])
		if artist == "" || track == "" {
			continue
		}

		confidence := p.confidence
		if noisy && !parsed.LikelyAlbum {
			confidence -= 0.05
		}

		parsed.Candidates = append(parsed.Candidates, Candidate{
			Artist:     artist,
			Track:      track,
			Pattern:    p.id,
			Confidence: confidence,
		})
	}

	// Stable sort keeps pattern priority as the tie-break for equal
	// confidence.
	sort.SliceStable(parsed.Candidates, func(i, j int) bool {
		return parsed.Candidates[i].Confidence > parsed.Candidates[j].Confidence
	})

	return parsed
}
