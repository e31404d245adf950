package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of pretty output. Styles are bound to a
// renderer for the output writer, so colors are dropped when the output is
// not a terminal.
type palette struct {
	key, text, number, yes, no, duration, time, null lipgloss.Style

	trace, debug, info, warn, error lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)

	fg := func(color string) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(color)).
			TabWidth(lipgloss.NoTabConversion)
	}

	return &palette{
		key:      fg("8"),
		text:     fg("6"),
		number:   fg("3"),
		yes:      fg("2"),
		no:       fg("1"),
		duration: fg("5"),
		time:     fg("4"),
		null:     fg("8"),
		trace:    fg("8"),
		debug:    fg("4"),
		info:     fg("2"),
		warn:     fg("3").Bold(true),
		error:    fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records for people rather than machines.
//
// The inline layout writes unquoted key=value pairs on one line; groups are
// flattened into dotted keys. The block layout writes a JSON-like object
// with one field per line, nesting groups as indented objects.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  *palette
	mu     *sync.Mutex
	w      io.Writer
	block  bool
	prefix string // dotted group path, with trailing "."
	attrs  []prefixed
}

// prefixed is an attribute added with WithAttrs under a group path.
type prefixed struct {
	prefix string
	attr   slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	block bool,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: newPalette(w),
		mu:    &sync.Mutex{},
		w:     w,
		block: block,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	least := slog.LevelInfo
	if h.opts.Level != nil {
		least = h.opts.Level.Level()
	}

	return level >= least
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]prefixed, len(h.attrs), len(h.attrs)+len(attrs))
	copy(c.attrs, h.attrs)

	for _, a := range attrs {
		c.attrs = append(c.attrs, prefixed{h.prefix, a})
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix += name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	e := entry{h: h, first: true}

	if h.block {
		e.buf.WriteByte('{')
	}

	if !r.Time.IsZero() {
		a := slog.Time(slog.TimeKey, r.Time)
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		e.attr("", a, 0)
	}

	e.key(slog.LevelKey, 0)
	e.buf.WriteString(h.style.level(r.Level).Render(levelName(r.Level)))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil && src.File != "" {
			e.attr("", slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)), 0)
		}
	}

	e.attr("", slog.String(slog.MessageKey, r.Message), 0)

	for _, p := range h.attrs {
		e.attr(p.prefix, p.attr, 0)
	}

	r.Attrs(func(a slog.Attr) bool {
		e.attr(h.prefix, a, 0)

		return true
	})

	if h.block {
		e.buf.WriteString("\n}")
	}

	e.buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(e.buf.Bytes())

	return err
}

// entry accumulates one formatted record.
type entry struct {
	h     *prettyHandler
	buf   bytes.Buffer
	first bool
}

func (e *entry) key(k string, depth int) {
	if e.h.block {
		if !e.first {
			e.buf.WriteByte(',')
		}

		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat("  ", depth+1))
		e.buf.WriteString(e.h.style.key.Render(k))
		e.buf.WriteString(": ")
	} else {
		if !e.first {
			e.buf.WriteByte(' ')
		}

		e.buf.WriteString(e.h.style.key.Render(k))
		e.buf.WriteByte('=')
	}

	e.first = false
}

func (e *entry) attr(prefix string, a slog.Attr, depth int) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() != slog.KindGroup {
		e.key(prefix+a.Key, depth)
		e.buf.WriteString(e.h.value(a.Value))

		return
	}

	group := a.Value.Group()
	if len(group) == 0 {
		return
	}

	// Inline groups, and groups without a key, flatten into the parent.
	if !e.h.block || a.Key == "" {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range group {
			e.attr(prefix, g, depth)
		}

		return
	}

	e.key(prefix+a.Key, depth)
	e.buf.WriteByte('{')
	e.first = true

	for _, g := range group {
		e.attr("", g, depth+1)
	}

	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat("  ", depth+1))
	e.buf.WriteByte('}')
	e.first = false
}

// value renders a resolved, non-group value.
func (h *prettyHandler) value(v slog.Value) string {
	s := h.style

	switch v.Kind() {
	case slog.KindString:
		return s.text.Render(v.String())

	case slog.KindInt64:
		return s.number.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return s.number.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return s.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return s.yes.Render("true")
		}

		return s.no.Render("false")

	case slog.KindDuration:
		return s.duration.Render(v.Duration().String())

	case slog.KindTime:
		return s.time.Render(v.Time().Format(time.RFC3339))
	}

	switch x := v.Any().(type) {
	case nil:
		return s.null.Render("null")

	case slog.Level:
		return s.level(x).Render(levelName(x))

	case error:
		return s.no.Render(x.Error())

	default:
		return s.text.Render(fmt.Sprint(x))
	}
}
