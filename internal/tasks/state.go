package tasks

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/shared"
)

// PipelineState is the resume checkpoint written alongside the output CSV.
//
// Output rows carry resolved names, not source titles, so the state file is
// the only place the processed set survives. Titles are recorded in
// processing order; the tallies let a resumed run report totals spanning
// every attempt.
type PipelineState struct {
	InputPath string          `json:"input_path"`
	Processed []string        `json:"processed"`
	Stats     models.RunStats `json:"stats"`

	path string
	seen map[string]bool
}

// StatePath derives the checkpoint path for an output file.
func StatePath(outputPath string) string {
	return outputPath + ".state.json"
}

// LoadState reads the checkpoint for outputPath. A missing state file, or a
// state file without its output CSV, yields a fresh state: the CSV is the
// source of truth and orphaned checkpoints are discarded.
func LoadState(outputPath, inputPath string) (*PipelineState, error) {
	state := &PipelineState{
		InputPath: inputPath,
		path:      StatePath(outputPath),
		seen:      make(map[string]bool),
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return state, nil
	}

	data, err := os.ReadFile(state.path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: corrupt state file %s: %v", shared.ErrInvalidInput, state.path, err)
	}

	for _, title := range state.Processed {
		state.seen[title] = true
	}

	return state, nil
}

// Done reports whether an entry was already processed in an earlier run.
func (s *PipelineState) Done(entry models.RawEntry) bool {
	return s.seen[entry.Identity()]
}

// Record marks an entry processed, folds its outcome into the tallies, and
// flushes the checkpoint. The flush happens per entry so an interrupt loses
// at most the entry in flight.
func (s *PipelineState) Record(result models.Result) error {
	identity := result.Entry.Identity()
	if !s.seen[identity] {
		s.seen[identity] = true
		s.Processed = append(s.Processed, identity)
	}

	s.Stats.Tally(result.Status, len(result.Rows))

	return s.flush()
}

func (s *PipelineState) flush() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}

	return nil
}

// Remove deletes the checkpoint, used when a run completes cleanly.
func (s *PipelineState) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", shared.ErrStateWrite, err)
	}
	return nil
}
