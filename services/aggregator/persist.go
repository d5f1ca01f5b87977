package aggregator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

// EventLog is the durable, append-only record of every event ever
// applied, stored as one JSON object per line (events.jsonl). It is the
// source of truth replayed at startup to rebuild in-memory state; the
// Applier is its only writer.
type EventLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenEventLog opens (creating if needed) the event log at path for
// appending.
func OpenEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &EventLog{file: f}, nil
}

// Append writes evt as one JSON line, fsyncing so a crash immediately
// after Append returning nil never loses the record.
func (l *EventLog) Append(evt event.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return l.file.Sync()
}

// Close closes the underlying file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadEventLog replays every event previously appended to path, in
// order. A missing file is treated as an empty log (first run).
func ReadEventLog(path string) ([]event.Event, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	var events []event.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt event.Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return nil, fmt.Errorf("decode event log line %d: %w", len(events)+1, err)
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan event log: %w", err)
	}
	return events, nil
}

// Cursor is a small JSON file recording a single resumable position
// (e.g. the last-seen signature per source, or a price-poll timestamp).
// Writes go through a temp-file-then-rename so a crash mid-write never
// corrupts the previous value, matching the original's read-all,
// truncate-and-rewrite pattern for its cursor files.
type Cursor[T any] struct {
	path string
}

// NewCursor builds a Cursor backed by the file at path.
func NewCursor[T any](path string) *Cursor[T] {
	return &Cursor[T]{path: path}
}

// Load reads the cursor's current value. ok is false if the cursor file
// doesn't exist yet (first run).
func (c *Cursor[T]) Load() (value T, ok bool, err error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("read cursor %s: %w", c.path, err)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("decode cursor %s: %w", c.path, err)
	}
	return value, true, nil
}

// Save overwrites the cursor's value atomically.
func (c *Cursor[T]) Save(value T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cursor directory: %w", err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cursor: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cursor tmp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("rename cursor tmp file: %w", err)
	}
	return nil
}
