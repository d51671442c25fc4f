package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// JSONL appends entries as newline-delimited JSON to a file. The file and its
// directory are created on first write.
type JSONL struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
}

// NewJSONL returns a JSONL journal appending to path.
func NewJSONL(path string) (*JSONL, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal: empty jsonl path")
	}
	return &JSONL{path: path}, nil
}

func (j *JSONL) ensureOpenLocked() error {
	if j.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	j.file = f
	j.w = bufio.NewWriterSize(f, 64*1024)
	return nil
}

// Record appends e and flushes so tailers see it immediately.
func (j *JSONL) Record(_ context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journal: marshal entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureOpenLocked(); err != nil {
		return fmt.Errorf("journal: open %s: %w", j.path, err)
	}

	if _, err := j.w.Write(b); err != nil {
		return err
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return err
	}
	return j.w.Flush()
}

// Flush is a no-op; Record already flushes.
func (j *JSONL) Flush(context.Context) error { return nil }

// Ping reports whether the journal directory is reachable.
func (j *JSONL) Ping(context.Context) error {
	_, err := os.Stat(filepath.Dir(j.path))
	if errors.Is(err, os.ErrNotExist) {
		// Created on first write.
		return nil
	}
	return err
}

// Close flushes any buffered data and closes the underlying file.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var firstErr error
	if j.w != nil {
		if err := j.w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if j.file != nil {
		if err := j.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	j.w = nil
	j.file = nil

	if firstErr != nil && errors.Is(firstErr, os.ErrClosed) {
		return nil
	}
	return firstErr
}
