package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/waveline-io/fifolink/iox"
	"github.com/waveline-io/fifolink/types"
)

// seriesPerSubject is the number of stored series per subject record.
const seriesPerSubject = 2

// ErrNoSuchSample indicates a sample lookup outside the stored range.
var ErrNoSuchSample = errors.New("no such sample")

// Store serves sample lookups from per-subject CSV records and byte-range
// reads from arbitrary files, all under one data directory.
//
// Subject records live at <dir>/<subject>.csv with rows "t,v1,v2" at the
// standard sampling stride. Records load lazily on first access and stay
// cached for the server's lifetime.
type Store struct {
	dir string

	mu      sync.Mutex
	records map[int32][][seriesPerSubject]float64
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		records: make(map[int32][][seriesPerSubject]float64),
	}
}

// Sample returns the value of series for subject at the row matching
// seconds. Series indexes are 1-based.
func (s *Store) Sample(subject int32, seconds float64, series int32) (float64, error) {
	if series < 1 || series > seriesPerSubject {
		return 0, fmt.Errorf("%w: series %d", ErrNoSuchSample, series)
	}

	rows, err := s.load(subject)
	if err != nil {
		return 0, err
	}

	idx := int(seconds/types.SampleInterval + 0.5)
	if idx < 0 || idx >= len(rows) {
		return 0, fmt.Errorf("%w: subject %d has no row for t=%g", ErrNoSuchSample, subject, seconds)
	}
	return rows[idx][series-1], nil
}

// load parses and caches the subject's CSV record.
func (s *Store) load(subject int32) ([][seriesPerSubject]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rows, ok := s.records[subject]; ok {
		return rows, nil
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%d.csv", subject))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("subject %d: %w", subject, err)
	}
	defer iox.DiscardClose(f)

	var rows [][seriesPerSubject]float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != seriesPerSubject+1 {
			return nil, fmt.Errorf("subject %d: malformed row %q", subject, line)
		}
		var row [seriesPerSubject]float64
		for i := 0; i < seriesPerSubject; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("subject %d: bad value in row %q: %w", subject, line, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("subject %d: %w", subject, err)
	}

	s.records[subject] = rows
	return rows, nil
}

// resolve maps a wire-supplied file name to a path under the data dir.
// Names that would escape the root (absolute, or with ".." components)
// resolve false; clients own the name, so the store must not trust it.
func (s *Store) resolve(name string) (string, bool) {
	if !filepath.IsLocal(name) {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// FileSize returns the total length of the named file in bytes, or -1 if
// the file does not exist. -1 is the wire sentinel for not-found; the store
// resolves it here so the serving loop stays a pure dispatcher. Names that
// escape the data dir answer -1 like any other absent file.
func (s *Store) FileSize(name string) int64 {
	path, ok := s.resolve(name)
	if !ok {
		return -1
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return -1
	}
	return info.Size()
}

// FileChunk reads length bytes of the named file starting at offset.
func (s *Store) FileChunk(name string, offset int64, length int32) ([]byte, error) {
	path, ok := s.resolve(name)
	if !ok {
		return nil, fmt.Errorf("file name %q escapes the data dir", name)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(f)

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
