// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/tunedex/internal/services"
)

// MockService is a test double for [services.MetadataService]
type MockService struct{}

func (m *MockService) SearchRecording(ctx context.Context, artist, track string) ([]services.RecordingCandidate, error) {
	return []services.RecordingCandidate{}, nil
}

func (m *MockService) SearchRelease(ctx context.Context, artist, album string) ([]services.ReleaseCandidate, error) {
	return []services.ReleaseCandidate{}, nil
}

func (m *MockService) SearchReleaseGroup(ctx context.Context, artist string) ([]services.ReleaseGroupCandidate, error) {
	return []services.ReleaseGroupCandidate{}, nil
}

func (m *MockService) ReleaseTracks(ctx context.Context, releaseID string) ([]services.AlbumTrack, error) {
	return []services.AlbumTrack{}, nil
}

func (m *MockService) SearchBare(ctx context.Context, query string) ([]services.RecordingCandidate, error) {
	return []services.RecordingCandidate{}, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
