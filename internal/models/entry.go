package models

// RawEntry is one uncurated input record as produced by the external
// playlist extraction step. Title is the only required field; the loose
// artist/track/album fields are hints carried through from extraction.
type RawEntry struct {
	Title  string
	Artist string
	Track  string
	Album  string
}

// Identity returns the stable key used to recognize an entry across runs.
// The original title text is unique enough in practice and survives
// round-trips through the state file unchanged.
func (e RawEntry) Identity() string {
	return e.Title
}

// TrackRow is one resolved output row. Album may be empty when no release
// could be attributed.
type TrackRow struct {
	Track  string
	Artist string
	Album  string
}

// Status is the terminal outcome for a single raw entry.
type Status int

const (
	StatusPending Status = iota
	StatusFiltered
	StatusUnmatched
	StatusMatched
	StatusAlbumExpanded
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFiltered:
		return "filtered"
	case StatusUnmatched:
		return "unmatched"
	case StatusMatched:
		return "matched"
	case StatusAlbumExpanded:
		return "album_expanded"
	default:
		return ""
	}
}

// ArtistAlbum is one row of the studio discography export. Owned marks
// albums already present in the enhanced library.
type ArtistAlbum struct {
	Artist string
	Album  string
	Year   string
	Owned  bool
}

// RunStats tallies terminal outcomes across one enhancement run.
type RunStats struct {
	Processed int `json:"processed"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Filtered  int `json:"filtered"`
	Expanded  int `json:"expanded"`
	Rows      int `json:"rows"`
}

// Tally folds one resolved outcome into the counters.
func (s *RunStats) Tally(status Status, rows int) {
	s.Processed++
	switch status {
	case StatusMatched:
		s.Matched++
	case StatusAlbumExpanded:
		s.Expanded++
	case StatusUnmatched:
		s.Unmatched++
	case StatusFiltered:
		s.Filtered++
	}
	s.Rows += rows
}

// Result is the resolved outcome for one RawEntry. Every entry yields
// exactly one Result; AlbumExpanded results carry one row per album track,
// all other terminal statuses carry exactly one row (Filtered carries none).
type Result struct {
	Entry  RawEntry
	Status Status
	Rows   []TrackRow
}
