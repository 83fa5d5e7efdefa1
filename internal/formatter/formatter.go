// package formatter reads raw playlist title exports and writes enhanced
// track CSVs (input parsing, append-only output, sorted export, summaries)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/shared"
)

// outputHeader is the fixed column set of every enhanced CSV.
var outputHeader = []string{"track", "artist", "album"}

// ReadTitles parses a raw playlist export CSV from r. The file must carry a
// header row containing a "title" column (matched case-insensitively);
// other columns are ignored. Blank titles are skipped. Returns every
// surviving row as a pending entry, in file order.
func ReadTitles(r io.Reader) ([]models.RawEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input file", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
	}

	titleIdx := -1
	for i, column := range header {
		if strings.EqualFold(strings.TrimSpace(column), "title") {
			titleIdx = i
			break
		}
	}
	if titleIdx == -1 {
		return nil, fmt.Errorf("%w: no title column in header %v", shared.ErrInvalidInput, header)
	}

	var entries []models.RawEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
		}
		if titleIdx >= len(record) {
			continue
		}
		title := strings.TrimSpace(record[titleIdx])
		if title == "" {
			continue
		}
		entries = append(entries, models.RawEntry{Title: title})
	}

	return entries, nil
}

// ReadTitlesFile reads a raw playlist export from path.
func ReadTitlesFile(path string) ([]models.RawEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
	}
	defer f.Close()
	return ReadTitles(f)
}

// ReadRows parses an enhanced CSV back into rows, used by the sorter.
func ReadRows(r io.Reader) ([]models.TrackRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
	}
	if len(header) < 3 || !strings.EqualFold(header[0], "track") {
		return nil, fmt.Errorf("%w: unexpected header %v", shared.ErrInvalidInput, header)
	}

	var rows []models.TrackRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
		}
		if len(record) < 3 {
			continue
		}
		rows = append(rows, models.TrackRow{Track: record[0], Artist: record[1], Album: record[2]})
	}

	return rows, nil
}

// ReadRowsFile reads an enhanced CSV from path. A missing file is not an
// error; it returns no rows so a fresh run starts clean.
func ReadRowsFile(path string) ([]models.TrackRow, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInputRead, err)
	}
	defer f.Close()
	return ReadRows(f)
}

// RowsToCSV renders rows as a complete CSV document with the standard
// header.
func RowsToCSV(rows []models.TrackRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(outputHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write([]string{row.Track, row.Artist, row.Album}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// OutputWriter appends enhanced rows to a CSV file, flushing after every
// append so an interrupted run loses at most the row in flight. The header
// is written once, only when the file is created.
type OutputWriter struct {
	file   *os.File
	writer *csv.Writer
}

// OpenOutput opens path for appending, creating it with a header row when
// it does not exist or is empty.
func OpenOutput(path string) (*OutputWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}

	w := &OutputWriter{file: f, writer: csv.NewWriter(f)}

	if info.Size() == 0 {
		if err := w.writer.Write(outputHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
		}
		w.writer.Flush()
		if err := w.writer.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
		}
	}

	return w, nil
}

// Append writes rows and flushes them to disk.
func (w *OutputWriter) Append(rows ...models.TrackRow) error {
	for _, row := range rows {
		if err := w.writer.Write([]string{row.Track, row.Artist, row.Album}); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
		}
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *OutputWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	return nil
}

// WriteRowsFile writes a complete CSV to path, replacing any existing file.
// Used by the sorter and album export, which always rewrite whole documents.
func WriteRowsFile(path string, rows []models.TrackRow) error {
	data, err := RowsToCSV(rows)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	return nil
}
