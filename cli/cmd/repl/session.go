package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// previewWidth is the maximum width of a text preview in listings.
const previewWidth = 40

// Session is the state of one interactive session: the built-in context,
// data merged from context files and the templates bound by name.
type Session struct {
	mu       sync.RWMutex
	builtins lang.Context
	data     lang.Context
	bound    lang.Map
	params   map[string][]string
	logger   log.Logger
}

// NewSession returns a session over builtins. A nil builtins context is
// treated as [lang.Empty].
func NewSession(builtins lang.Context, logger log.Logger) *Session {
	if builtins == nil {
		builtins = lang.Empty
	}

	return &Session{
		builtins: builtins,
		data:     lang.Empty,
		bound:    lang.Map{},
		params:   map[string][]string{},
		logger:   logger,
	}
}

// caller returns the user-supplied bindings, excluding builtins.
// Must be called with s.mu held.
func (s *Session) caller() lang.Context {
	return lang.Compose(s.data, s.bound)
}

// Scope returns every binding visible to a rendered line.
func (s *Session) Scope() lang.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lang.Merge(s.builtins, s.data, s.bound)
}

// Render parses line as a template body and evaluates it.
func (s *Session) Render(ctx context.Context, line string) (lang.Text, error) {
	tmpl, err := lang.ParseString(ctx, line,
		lang.WithName("repl"),
		lang.WithLogger(s.logger),
	)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	caller := s.caller()
	s.mu.RUnlock()

	return tmpl.EvaluateText(ctx, s.builtins, caller)
}

// Load reads the file at path into the session and returns the name it
// is bound under.
//
// Files with a YAML or JSON extension are decoded as context data and
// merged over the existing data; the returned name is empty. Any other
// file is parsed as a template, evaluated against the current session,
// and bound under its base name without extension.
func (s *Session) Load(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		data, err := decodeData(f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}

		s.mu.Lock()
		s.data = lang.Compose(s.data, data)
		s.mu.Unlock()

		s.logger.DebugContext(ctx, "repl loaded data",
			slog.String("file", path),
			slog.Int("keys", len(lang.Keys(data))),
		)

		return "", nil
	}

	tmpl, err := lang.ParseReader(ctx, f,
		lang.WithName(path),
		lang.WithLogger(s.logger),
	)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := tmpl.Evaluate(ctx, s.builtins, s.caller())
	if err != nil {
		return "", err
	}

	name := bindingName(path)

	s.bound[name] = v
	s.params[name] = slices.Clone(tmpl.Params)

	s.logger.DebugContext(ctx, "repl loaded template",
		slog.String("file", path),
		slog.String("name", name),
		slog.Any("params", tmpl.Params),
	)

	return name, nil
}

// Params returns the parameter names of the template bound at name.
func (s *Session) Params(name string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.params[name]

	return p, ok
}

// Entry is one top-level user binding with a short preview of its value.
type Entry struct {
	Name    string
	Preview string
}

// List returns the top-level user bindings in sorted order.
func (s *Session) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caller := s.caller()
	keys := lang.Keys(caller)
	list := make([]Entry, 0, len(keys))

	for _, k := range keys {
		v, ok := caller.Get(lang.Path{k})
		if !ok {
			continue
		}

		list = append(list, Entry{Name: k, Preview: s.preview(k, v)})
	}

	return list
}

// preview summarizes v for display. Must be called with s.mu held.
func (s *Session) preview(name string, v lang.Value) string {
	switch v := v.(type) {
	case lang.Text:
		return truncate(fmt.Sprintf("%q", string(v)), previewWidth)

	case lang.List:
		return fmt.Sprintf("list[%d]", len(v))

	case lang.Callable:
		return "callable(" + strings.Join(s.params[name], ", ") + ")"

	case lang.Context:
		return fmt.Sprintf("context{%d}", len(lang.Keys(v)))

	default:
		return "<unknown>"
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	return string(r[:width-3]) + "..."
}

// bindingName returns the base name of path with every extension removed.
func bindingName(path string) string {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	if name == "" {
		return filepath.Base(path)
	}

	return name
}

// decodeData decodes a YAML (or JSON) mapping into a context.
func decodeData(r io.Reader) (lang.Context, error) {
	var data any

	err := yaml.NewDecoder(r).Decode(&data)
	if errors.Is(err, io.EOF) || (err == nil && data == nil) {
		return lang.Empty, nil
	}

	if err != nil {
		return nil, err
	}

	c, ok := lang.FromData(data).(lang.Context)
	if !ok {
		return nil, ErrNotMapping
	}

	return c, nil
}
