package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"syntexapply/internal/model"
)

// FileSubmissionLog keeps every submission in one JSON array file.
//
// Each append reads the array, adds the record and rewrites the file through a
// temp file and rename, so readers never see a half-written array. A missing,
// empty, unreadable or non-array file is treated as an empty log.
type FileSubmissionLog struct {
	path string
	mu   sync.Mutex
}

// NewFileSubmissionLog creates a log backed by path
func NewFileSubmissionLog(path string) *FileSubmissionLog {
	return &FileSubmissionLog{path: path}
}

// Name identifies this sink in logs and metrics
func (l *FileSubmissionLog) Name() string {
	return "file"
}

// Path returns the backing file
func (l *FileSubmissionLog) Path() string {
	return l.path
}

// Record appends the submission's flattened record to the log
func (l *FileSubmissionLog) Record(_ context.Context, s *model.Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.read()
	raw, err := json.Marshal(s.Record())
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	records = append(records, raw)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode submission log: %w", err)
	}
	return l.write(data)
}

// List returns every record in the log, oldest first
func (l *FileSubmissionLog) List(_ context.Context) ([]map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.read()
	out := make([]map[string]any, 0, len(records))
	for _, raw := range records {
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// read loads the existing records, keeping their raw JSON so earlier entries
// are rewritten untouched. Must be called with mu held.
func (l *FileSubmissionLog) read() []json.RawMessage {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", l.path).Warn("submission log unreadable, starting a new one")
		}
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		log.WithError(err).WithField("path", l.path).Warn("submission log is not a JSON array, starting a new one")
		return nil
	}
	return records
}

func (l *FileSubmissionLog) write(data []byte) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write submission log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync submission log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close submission log: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod submission log: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("failed to replace submission log: %w", err)
	}
	return nil
}
