package lang

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Special character sets active in text position.
const (
	defaultSpecials = "${}\\"
	argSpecials     = defaultSpecials + ","
)

// Parse parses source into a [Template] without consulting the cache.
// Use [ParseString] to parse through the cache.
func Parse(ctx context.Context, source string, opts ...Option) (*Template, error) {
	o := makeOptions(opts...)

	p := &parser{
		input:    []byte(source),
		line:     1,
		col:      1,
		maxDepth: o.MaxDepth,
	}

	t, err := p.parseModule()
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed",
			slog.String("template", o.Name),
			slog.Any("error", err))

		return nil, err
	}

	t.Name = o.Name
	t.logger = o.logger

	t.logger.TraceContext(ctx, "parse complete",
		slog.String("template", t.Name),
		slog.Int("params", len(t.Params)),
		slog.Int("nodes", len(t.Body)))

	return t, nil
}

// parser holds the parser state.
type parser struct {
	input    []byte
	pos      int
	line     int
	col      int
	maxDepth int
}

// mark is a saved parser state used for backtracking.
type mark struct{ pos, line, col int }

func (p *parser) save() mark { return mark{p.pos, p.line, p.col} }
func (p *parser) restore(m mark) { p.pos, p.line, p.col = m.pos, m.line, m.col }

// fail returns a parse error at pos.
func (p *parser) fail(pos Position, format string, args ...any) *Error {
	return ErrParse.WithPosition(pos).Wrap(fmt.Errorf(format, args...))
}

// parseModule parses: header? body END.
func (p *parser) parseModule() (*Template, error) {
	t := &Template{Predefined: Empty}

	if err := p.parseHeader(t); err != nil {
		return nil, err
	}

	body, err := p.parseNodes(defaultSpecials, 0)
	if err != nil {
		return nil, err
	}

	t.Body = body

	return t, nil
}

// parseHeader parses the optional header delimited by "---" lines.
func (p *parser) parseHeader(t *Template) error {
	if strings.TrimSpace(p.peekLine()) != "---" {
		return nil
	}

	open := p.position()
	p.skipLine()

	var (
		lines   []string
		dataPos Position
		content bool // param list or data seen
	)

	for {
		if p.eof() {
			return ErrHeader.WithPosition(open).
				Wrap(fmt.Errorf("missing closing %q", "---"))
		}

		pos := p.position()
		line := p.peekLine()
		p.skipLine()

		if strings.TrimSpace(line) == "---" {
			break
		}

		if !content && strings.TrimSpace(line) == "" {
			continue
		}

		if !content && strings.HasPrefix(strings.TrimSpace(line), "[") {
			names, err := parseParamList(line, pos)
			if err != nil {
				return err
			}

			t.Params = names
			content = true

			continue
		}

		if len(lines) == 0 {
			dataPos = pos
		}

		content = true

		lines = append(lines, line)
	}

	if t.Header = strings.Join(lines, "\n"); strings.TrimSpace(t.Header) == "" {
		t.Header = ""
	}

	ctx, err := decodeHeader(t.Header, dataPos)
	if err != nil {
		return err
	}

	t.Predefined = ctx

	return nil
}

// parseParamList parses a header line of the form "[a, b, c]".
func parseParamList(line string, pos Position) ([]string, error) {
	s := strings.TrimSpace(line)
	if !strings.HasSuffix(s, "]") {
		return nil, ErrHeader.WithPosition(pos).
			Wrap(fmt.Errorf("unterminated parameter list %q", s))
	}

	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return nil, nil
	}

	fields := strings.Split(s, ",")
	names := make([]string, 0, len(fields))

	for _, f := range fields {
		name := strings.TrimSpace(f)
		if !isName(name) {
			return nil, ErrHeader.WithPosition(pos).
				Wrap(fmt.Errorf("invalid parameter name %q", name))
		}

		names = append(names, name)
	}

	return names, nil
}

// parseNodes parses a sequence of leaves using the special set sp.
//
// At depth 0 it consumes all input. Nested bodies stop before an
// unescaped '}', and before ',' when ',' is in sp.
func (p *parser) parseNodes(sp string, depth int) ([]Node, error) {
	var (
		nodes []Node
		text  strings.Builder
		start Position
	)

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &TextNode{Text: text.String(), Pos: start})
			text.Reset()
		}
	}

	for !p.eof() {
		pos := p.position()
		ch := p.peek()

		switch {
		case ch == '\\':
			p.advance()

			next := p.peek()

			switch {
			case next == '\n':
				p.advance()

			case next == '\r' && p.peekN(2) == "\r\n":
				p.advance()
				p.advance()

			case next != 0 && strings.ContainsRune(sp, next):
				if text.Len() == 0 {
					start = pos
				}

				text.WriteRune(next)
				p.advance()

			default:
				return nil, p.fail(pos, "invalid escape sequence")
			}

		case ch == '$':
			if p.peekN(2) != "${" {
				return nil, p.fail(pos, "unexpected %q", ch)
			}

			flush()

			n, err := p.parseExpr(depth + 1)
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, n)

		case ch == '}' && depth > 0,
			ch == ',' && strings.ContainsRune(sp, ','):
			flush()

			return nodes, nil

		case strings.ContainsRune(sp, ch):
			return nil, p.fail(pos, "unexpected %q", ch)

		default:
			if text.Len() == 0 {
				start = pos
			}

			// Raw bytes, so invalid UTF-8 passes through unchanged.
			_, size := utf8.DecodeRune(p.input[p.pos:])
			text.Write(p.input[p.pos : p.pos+size])
			p.advance()
		}
	}

	flush()

	return nodes, nil
}

// parseExpr parses: "${" (path | path ":" args) "}".
func (p *parser) parseExpr(depth int) (Node, error) {
	pos := p.position()

	if depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.WithPosition(pos).
			With(slog.Int("max_depth", p.maxDepth))
	}

	p.advance() // '$'
	p.advance() // '{'
	p.skipSpace()

	if _, ok := p.lambdaHead(); ok {
		return nil, p.fail(pos, "lambda outside call argument")
	}

	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	switch {
	case p.eof():
		return nil, p.fail(p.position(), "unterminated expression, expected %q", '}')

	case p.peek() == '}':
		p.advance()

		return &VarNode{Path: path, Pos: pos}, nil

	case p.peek() == ':':
		p.advance()

		args, err := p.parseArgs(depth)
		if err != nil {
			return nil, err
		}

		p.advance() // '}'

		return &CallNode{Path: path, Args: args, Pos: pos}, nil

	default:
		return nil, p.fail(p.position(), "unexpected %q in expression", p.peek())
	}
}

// parseArgs parses comma-separated call arguments up to, but not
// including, the closing '}'.
func (p *parser) parseArgs(depth int) ([]Arg, error) {
	var args []Arg

	for {
		p.skipSpace()

		pos := p.position()

		switch {
		case p.eof():
			return nil, p.fail(pos, "unterminated expression, expected %q", '}')

		case p.peek() == '}':
			return args, nil
		}

		if params, ok := p.lambdaHead(); ok {
			body, err := p.parseNodes(defaultSpecials, depth)
			if err != nil {
				return nil, err
			}

			if p.eof() {
				return nil, p.fail(p.position(), "unterminated expression, expected %q", '}')
			}

			if len(body) == 0 {
				return nil, p.fail(pos, "empty lambda body")
			}

			return append(args, &LambdaArg{Params: params, Body: body, Pos: pos}), nil
		}

		nodes, err := p.parseNodes(argSpecials, depth)
		if err != nil {
			return nil, err
		}

		if p.eof() {
			return nil, p.fail(p.position(), "unterminated expression, expected %q", '}')
		}

		if len(nodes) == 0 {
			return nil, p.fail(pos, "empty argument")
		}

		args = append(args, &BodyArg{Nodes: nodes, Pos: pos})

		if p.peek() == ',' {
			p.advance()
		}
	}
}

// lambdaHead consumes "name (, name)* =>" and returns the names.
// The parser state is left unchanged if the input does not match.
func (p *parser) lambdaHead() ([]string, bool) {
	m := p.save()

	var names []string

	for {
		p.skipSpace()

		name := p.scanName()
		if name == "" {
			p.restore(m)

			return nil, false
		}

		names = append(names, name)

		p.skipSpace()

		switch {
		case p.peek() == ',':
			p.advance()

		case p.peekN(2) == "=>":
			p.advance()
			p.advance()
			p.skipSpace()

			return names, true

		default:
			p.restore(m)

			return nil, false
		}
	}
}

// parsePath parses: name ("." name)*.
func (p *parser) parsePath() (Path, error) {
	var path Path

	for {
		p.skipSpace()

		pos := p.position()

		name := p.scanName()
		if name == "" {
			if p.eof() {
				return nil, p.fail(pos, "unexpected end of input, expected name")
			}

			return nil, p.fail(pos, "unexpected %q, expected name", p.peek())
		}

		path = append(path, name)

		m := p.save()
		p.skipSpace()

		if p.peek() != '.' {
			p.restore(m)

			return path, nil
		}

		p.advance()
	}
}

// scanName consumes a run of name characters.
func (p *parser) scanName() string {
	start := p.pos
	for !p.eof() && isNameRune(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isName(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isNameRune(r) {
			return false
		}
	}

	return true
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

// peekLine returns the rest of the current line without its terminator.
func (p *parser) peekLine() string {
	rest := p.input[p.pos:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	return strings.TrimSuffix(string(rest), "\r")
}

// skipLine consumes the rest of the current line and its terminator.
func (p *parser) skipLine() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}

	p.advance()
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}
