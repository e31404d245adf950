package repl

import (
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tmpl/lang"
)

// ctrlCommands are the words accepted in command mode.
var ctrlCommands = []string{"help", "list", "load", "edit", "clear", "quit"}

// completion is the candidate list for the word under the cursor.
type completion struct {
	matches fuzzy.Matches // best match first
	parent  string        // dotted path in front of the word
	start   int           // byte span of the word in the input
	end     int
	pick    int // selected candidate, or -1
	cycling bool
	origin  savedInput // input as typed before cycling began
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isBoundary(r rune) bool { return !isNameRune(r) }

// wordAt returns the name under the cursor and its byte span. The word is
// empty when the cursor sits between two boundaries, such as right after
// "${" or ".".
func wordAt(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	if i := strings.LastIndexFunc(input[:cursor], isBoundary); i >= 0 {
		_, size := utf8.DecodeRuneInString(input[i:])
		start = i + size
	}

	end = len(input)
	if i := strings.IndexFunc(input[cursor:], isBoundary); i >= 0 {
		end = cursor + i
	}

	return input[start:end], start, end
}

// qualifier returns the dotted path written in front of the word starting
// at start, e.g. "server.http" in "${server.http.ho".
func qualifier(input string, start int) string {
	head, ok := strings.CutSuffix(input[:start], ".")
	if !ok {
		return ""
	}

	i := strings.LastIndexFunc(head, func(r rune) bool {
		return r != '.' && isBoundary(r)
	})
	if i >= 0 {
		_, size := utf8.DecodeRuneInString(head[i:])
		head = head[i+size:]
	}

	return strings.Trim(head, ".")
}

// members returns the sorted names that may follow parent in scope.
// Flat keys holding dots, as set by --define, contribute their segments.
func members(scope lang.Context, parent string) []string {
	keys := lang.Keys(scope)
	if parent == "" {
		return heads(keys, "")
	}

	names := heads(keys, parent+".")

	if v, ok := scope.Get(lang.ParsePath(parent)); ok {
		if c, ok := v.(lang.Context); ok {
			names = append(names, heads(lang.Keys(c), "")...)
		}

		if parent == "env" {
			names = append(names, envNames()...)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// heads returns the sorted, distinct first segments of the keys starting
// with prefix, after the prefix.
func heads(keys []string, prefix string) []string {
	seen := make(map[string]struct{}, len(keys))

	for _, k := range keys {
		if rest, ok := strings.CutPrefix(k, prefix); ok && rest != "" {
			first, _, _ := strings.Cut(rest, ".")
			seen[first] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// envNames lists the process environment, which cannot enumerate itself
// through the env context.
func envNames() []string {
	var names []string

	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// suggest computes the candidates for the word at the cursor. Command mode
// completes only the leading command word. Render mode completes inside
// "${ }" paths; an empty word lists every member after a dot and nothing
// at the top level.
func (m model) suggest() completion {
	input := m.input.Value()
	cursor := m.input.Position()
	word, start, end := wordAt(input, cursor)

	c := completion{start: start, end: end, pick: -1}

	var names []string

	switch {
	case m.mode == modeCtrl:
		if word == "" || strings.TrimSpace(input[:start]) != "" {
			return c
		}

		names = ctrlCommands

	case !inPath(input, cursor):
		return c

	default:
		c.parent = qualifier(input, start)
		names = members(m.session.Scope(), c.parent)

		if word == "" {
			if c.parent == "" {
				return c
			}

			for i, name := range names {
				c.matches = append(c.matches, fuzzy.Match{Str: name, Index: i})
			}

			return c
		}
	}

	if len(names) > 0 {
		c.matches = fuzzy.Find(word, names)
	}

	return c
}

// callableAt reports whether parent.name resolves to a callable in scope.
func callableAt(scope lang.Context, parent, name string) bool {
	path := lang.ParsePath(name)
	if parent != "" {
		path = append(lang.ParsePath(parent), path...)
	}

	v, ok := scope.Get(path)
	if !ok {
		return false
	}

	_, ok = v.(lang.Callable)

	return ok
}

// bar renders the candidates on one line no wider than width, ending in
// an ellipsis when some do not fit. Callables carry a ":" suffix.
func (c completion) bar(width int, callable func(string) bool) string {
	if len(c.matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	more := style.hint.Render("...")
	room := width - lipgloss.Width(more)

	var b strings.Builder

	for i, match := range c.matches {
		item := c.item(match, c.cycling && i == c.pick, callable != nil && callable(match.Str))

		if i > 0 {
			if lipgloss.Width(b.String())+len(sep)+lipgloss.Width(item) > room {
				b.WriteString(sep + more)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(item)
	}

	return b.String()
}

// item renders one candidate with its fuzzy-matched runes emphasized.
func (completion) item(match fuzzy.Match, picked, callable bool) string {
	plain, strong := style.candidate, style.candidateMatch
	if picked {
		plain, strong = style.picked, style.pickedMatch
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(strong.Render(string(r)))
		} else {
			b.WriteString(plain.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(plain.Render(":"))
	}

	return b.String()
}
