package services

import "context"

// MetadataService defines the interface for music metadata providers that
// can search recordings and releases and expand a release into its tracks.
type MetadataService interface {
	// SearchRecording searches for recordings by artist and track name.
	// Returns up to limit scored candidates, best-first per the provider.
	SearchRecording(ctx context.Context, artist, track string) ([]RecordingCandidate, error)

	// SearchRelease searches for releases by artist and album name.
	SearchRelease(ctx context.Context, artist, album string) ([]ReleaseCandidate, error)

	// SearchReleaseGroup searches studio album release groups for an artist,
	// excluding live, compilation and soundtrack secondary types.
	SearchReleaseGroup(ctx context.Context, artist string) ([]ReleaseGroupCandidate, error)

	// ReleaseTracks retrieves the full track list of a release, in media
	// and position order.
	ReleaseTracks(ctx context.Context, releaseID string) ([]AlbumTrack, error)

	// SearchBare searches recordings by a free-form query string, used when
	// a title resists artist/track splitting.
	SearchBare(ctx context.Context, query string) ([]RecordingCandidate, error)

	// Name returns the name of the provider (e.g., "MusicBrainz").
	Name() string
}

// RecordingCandidate is one recording hit from a provider search.
type RecordingCandidate struct {
	ID     string
	Title  string
	Artist string
	Album  string // first album-type release the recording appears on
	Score  int    // provider relevance score, 0-100
}

// ReleaseCandidate is one release hit from a provider search.
type ReleaseCandidate struct {
	ID          string
	Title       string
	Artist      string
	PrimaryType string // Album, Single, EP...
	TrackCount  int
	Score       int
}

// ReleaseGroupCandidate is one release group hit, used for studio album
// discovery.
type ReleaseGroupCandidate struct {
	ID             string
	Title          string
	Artist         string
	PrimaryType    string
	SecondaryTypes []string
	FirstRelease   string // first release date, YYYY or YYYY-MM-DD
}

// AlbumTrack is one track of an expanded release, in source order.
type AlbumTrack struct {
	Position int
	Title    string
	Artist   string
}
