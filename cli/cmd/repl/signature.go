package repl

import "strings"

// builtinParams holds the parameter names of the built-in callables.
// A leading "..." marks a variadic parameter.
var builtinParams = map[string][]string{
	"upper":       {"text"},
	"lower":       {"text"},
	"trim":        {"text"},
	"quote":       {"text"},
	"join":        {"list", "sep"},
	"each":        {"list", "fn"},
	"path.abs":    {"path"},
	"path.base":   {"path"},
	"path.dir":    {"path"},
	"path.cat":    {"...elem"},
	"path.prefix": {"list", "...entry"},
}

// functionCall represents a detected call expression in the input.
type functionCall struct {
	name     string // callable path (e.g., "path.cat")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside the argument list
}

// frame is an expression opened by "${" that is still unclosed.
type frame struct {
	start  int // byte offset just past "${"
	colon  int // byte offset of ':' or -1
	commas int // argument separators seen at this level
	lambda bool
}

// scanExprs returns the stack of unclosed expressions in input[:cursor],
// innermost last.
func scanExprs(input string, cursor int) []frame {
	if cursor > len(input) {
		cursor = len(input)
	}

	var stack []frame

	for i := 0; i < cursor; i++ {
		switch input[i] {
		case '\\':
			i++

		case '$':
			if i+1 < cursor && input[i+1] == '{' {
				stack = append(stack, frame{start: i + 2, colon: -1})
				i++
			}

		case '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case ':':
			if top := len(stack) - 1; top >= 0 && stack[top].colon < 0 {
				stack[top].colon = i
			}

		case ',':
			top := len(stack) - 1
			if top >= 0 && stack[top].colon >= 0 && !stack[top].lambda {
				stack[top].commas++
			}

		case '=':
			// A lambda body extends to the end of the call and treats
			// commas as text.
			top := len(stack) - 1
			if top >= 0 && stack[top].colon >= 0 &&
				i+1 < cursor && input[i+1] == '>' {
				stack[top].lambda = true
			}
		}
	}

	return stack
}

// inPath reports whether the cursor is at the path of an expression,
// before any ':' argument separator.
func inPath(input string, cursor int) bool {
	stack := scanExprs(input, cursor)

	return len(stack) > 0 && stack[len(stack)-1].colon < 0
}

// detectFunctionCall analyzes the input to determine if the cursor is
// inside a call's argument list. It returns the callable path, current
// argument index, and whether we're inside a call.
func detectFunctionCall(input string, cursor int) functionCall {
	stack := scanExprs(input, cursor)
	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]
	if top.colon < 0 {
		return functionCall{}
	}

	name := strings.TrimSpace(input[top.start:top.colon])
	if name == "" {
		return functionCall{}
	}

	// Commas in a lambda head separate parameter names, not arguments.
	argIndex := top.commas
	if top.lambda {
		argIndex = lambdaArgIndex(input[top.colon+1 : cursor])
	}

	return functionCall{
		name:     name,
		argIndex: argIndex,
		inCall:   true,
	}
}

// lambdaArgIndex returns the index of the argument at which the first
// lambda in args begins. A lambda head is the longest run of bare names
// before the arrow, so preceding name-only arguments belong to it.
func lambdaArgIndex(args string) int {
	var segs []string

	depth, start, found := 0, 0, false

scan:
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '\\':
			i++

		case '$':
			if i+1 < len(args) && args[i+1] == '{' {
				depth++
				i++
			}

		case '}':
			depth--

		case ',':
			if depth == 0 {
				segs = append(segs, args[start:i])
				start = i + 1
			}

		case '=':
			if depth == 0 && i+1 < len(args) && args[i+1] == '>' {
				segs = append(segs, args[start:i])
				found = true

				break scan
			}
		}
	}

	// Without an arrow each separator starts another argument.
	if !found {
		return len(segs)
	}

	i := len(segs)
	for i > 0 && isName(strings.TrimSpace(segs[i-1])) {
		i--
	}

	if i == len(segs) {
		return max(len(segs)-1, 0)
	}

	return i
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

// signature returns the parameter names of the callable at name, from
// the templates loaded into sess or the built-in callables.
func signature(sess *Session, name string) ([]string, bool) {
	if sess != nil {
		if p, ok := sess.Params(name); ok {
			return p, true
		}
	}

	p, ok := builtinParams[name]

	return p, ok
}

// renderSignatureHint renders the call signature of name with the
// parameter at index arg highlighted. A variadic parameter stays
// highlighted for every argument from its position on.
func renderSignatureHint(name string, params []string, arg int) string {
	if name == "" {
		return ""
	}

	if len(params) == 0 {
		return style.sig.Render("${") + style.sigName.Render(name) + style.sig.Render(":}")
	}

	parts := make([]string, len(params))

	for i, param := range params {
		current := i == arg
		if strings.HasPrefix(param, "...") {
			current = arg >= i
		}

		if current {
			parts[i] = style.sigParam.Render(param)
		} else {
			parts[i] = style.sig.Render(param)
		}
	}

	return style.sig.Render("${") + style.sigName.Render(name) + style.sig.Render(": ") +
		strings.Join(parts, style.sig.Render(", ")) + style.sig.Render("}")
}
