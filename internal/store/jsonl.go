package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// JSONLStore keeps batch log records in an append-only file with one JSON
// object per line.
type JSONLStore struct {
	mu   sync.Mutex
	path string
}

// OpenJSONL returns a JSONLStore writing to path. The file is created on
// the first Append.
func OpenJSONL(path string) (*JSONLStore, error) {
	if err := EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &JSONLStore{path: path}, nil
}

// Path returns the backing file path.
func (s *JSONLStore) Path() string {
	return s.path
}

// Append writes rec as a single line with one write call.
func (s *JSONLStore) Append(_ context.Context, rec *quiz.BatchLogRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal batch log %s: %w", rec.ID, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append batch log %s: %w", rec.ID, err)
	}
	return f.Close()
}

// List reads every record in file order. A missing file is an empty log.
func (s *JSONLStore) List(_ context.Context) ([]quiz.BatchLogRecord, error) {
	var out []quiz.BatchLogRecord
	err := s.scan(func(rec quiz.BatchLogRecord) bool {
		out = append(out, rec)
		return true
	})
	return out, err
}

// FindByID returns the first record with the given id, or nil.
func (s *JSONLStore) FindByID(_ context.Context, id string) (*quiz.BatchLogRecord, error) {
	var found *quiz.BatchLogRecord
	err := s.scan(func(rec quiz.BatchLogRecord) bool {
		if rec.ID == id {
			found = &rec
			return false
		}
		return true
	})
	return found, err
}

// Clear removes the log file.
func (s *JSONLStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove log file: %w", err)
	}
	return nil
}

// Prune rewrites the file without the records logged before the cutoff.
// The new file replaces the old one by rename.
func (s *JSONLStore) Prune(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept bytes.Buffer
	dropped := 0
	var encErr error
	err := s.read(func(rec quiz.BatchLogRecord) bool {
		if rec.Timestamp.Before(before) {
			dropped++
			return true
		}
		line, err := json.Marshal(rec)
		if err != nil {
			encErr = fmt.Errorf("marshal batch log %s: %w", rec.ID, err)
			return false
		}
		kept.Write(line)
		kept.WriteByte('\n')
		return true
	})
	if err == nil {
		err = encErr
	}
	if err != nil || dropped == 0 {
		return 0, err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, kept.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write pruned log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("replace log file: %w", err)
	}
	return dropped, nil
}

func (s *JSONLStore) scan(fn func(quiz.BatchLogRecord) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(fn)
}

// read walks the file; callers hold mu.
func (s *JSONLStore) read(fn func(quiz.BatchLogRecord) bool) error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	// Records carry prompts and raw completions; lines can be large.
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec quiz.BatchLogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("%s:%d: decode batch log: %w", s.path, lineNo, err)
		}
		if !fn(rec) {
			return nil
		}
	}
	return sc.Err()
}
