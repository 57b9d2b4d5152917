package checkpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrLogClosed is returned when appending to a closed log.
var ErrLogClosed = errors.New("checkpoint log closed")

// LogWriteError reports a record that could not be made durable.
type LogWriteError struct {
	Path string
	ID   string
	Err  error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("write %s record %s: %v", e.Path, e.ID, e.Err)
}

func (e *LogWriteError) Unwrap() error {
	return e.Err
}

// Log is an append-only JSONL file. Each line maps exactly one id to a
// payload. Appends are serialized and synced before Append returns.
type Log struct {
	path string

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// OpenLog opens path for appending, creating parent directories as needed.
// A torn final line left by a crash is terminated first, so the next record
// starts on its own line.
func OpenLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	if err := terminateTornLine(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("repair log %s: %w", path, err)
	}
	return &Log{path: path, file: file}, nil
}

func terminateTornLine(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := file.Write([]byte{'\n'}); err != nil {
		return err
	}
	return file.Sync()
}

// Path returns the file backing the log.
func (l *Log) Path() string {
	return l.path
}

// Append writes {"id": payload} as one line and syncs it to disk.
func (l *Log) Append(id string, payload json.RawMessage) error {
	line, err := encodeRecord(id, payload)
	if err != nil {
		return &LogWriteError{Path: l.path, ID: id, Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return &LogWriteError{Path: l.path, ID: id, Err: ErrLogClosed}
	}
	if _, err := l.file.Write(line); err != nil {
		return &LogWriteError{Path: l.path, ID: id, Err: err}
	}
	if err := l.file.Sync(); err != nil {
		return &LogWriteError{Path: l.path, ID: id, Err: err}
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// encodeRecord renders a single newline-terminated record. The payload is
// compacted so a record never spans more than one line.
func encodeRecord(id string, payload json.RawMessage) ([]byte, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	key, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(key) + compact.Len() + 4)
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(compact.Bytes())
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
