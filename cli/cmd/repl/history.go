package repl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// DefaultHistoryFile is the base name of the history file in the cache
// directory.
const DefaultHistoryFile = "history.yaml"

// defaultHistoryLimit bounds the number of persisted entries.
const defaultHistoryLimit = 1000

// MarshalText implements encoding.TextMarshaler.
func (m inputMode) MarshalText() ([]byte, error) {
	switch m {
	case modeEval:
		return []byte("eval"), nil

	case modeCtrl:
		return []byte("ctrl"), nil

	default:
		return nil, fmt.Errorf("invalid input mode: %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *inputMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "eval", "":
		*m = modeEval

	case "ctrl":
		*m = modeCtrl

	default:
		return fmt.Errorf("invalid input mode: %q", text)
	}

	return nil
}

// HistoryEntry represents a single history entry with its mode.
type HistoryEntry struct {
	Line string    `yaml:"line"`
	Mode inputMode `yaml:"mode"`
}

// History is an ordered, de-duplicated list of submitted lines persisted
// to a YAML file. A History with an empty path is kept in memory only.
type History struct {
	path    string
	limit   int
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a new History instance with the given file path.
func NewHistory(path string) *History {
	return &History{path: path, limit: defaultHistoryLimit}
}

// Load reads history entries from the history file. A missing file is
// an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	var entries []HistoryEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%s: %w", h.path, err)
	}

	h.entries = slices.DeleteFunc(entries, func(e HistoryEntry) bool {
		return strings.TrimSpace(e.Line) == ""
	})
	h.trim()

	return nil
}

// Add appends a new entry to the history with the specified mode and
// persists the result. An existing entry with the same line and mode is
// moved to the end.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{Line: line, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	h.entries = slices.DeleteFunc(h.entries, func(e HistoryEntry) bool {
		return e == entry
	})
	h.entries = append(h.entries, entry)
	h.trim()

	return h.save()
}

// trim drops the oldest entries beyond the limit.
// Must be called with h.mu held.
func (h *History) trim() {
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.limit)
	}
}

// save replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	data, err := yaml.Marshal(h.entries)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.path), filepath.Base(h.path)+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return os.Rename(tmp.Name(), h.path)
}

// Entry retrieves a historic entry (line and mode) by index.
// Index 0 is the oldest entry.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}
