package lang

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// shape returns a position-free description of nodes for comparison.
func shape(nodes []Node) []any { return nodesToAny(nodes) }

func text(s string) map[string]any { return map[string]any{"text": s} }
func variable(p string) map[string]any { return map[string]any{"var": p} }

func call(p string, args ...any) map[string]any {
	if args == nil {
		args = []any{}
	}

	return map[string]any{"call": p, "args": args}
}

func bodyArg(nodes ...any) map[string]any {
	return map[string]any{"body": nodes}
}

func lambdaArg(params []string, nodes ...any) map[string]any {
	return map[string]any{"lambda": map[string]any{
		"params": stringsToAny(params),
		"body":   nodes,
	}}
}

func TestParse_Body(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []any
	}{
		{
			name:  "empty",
			input: "",
			want:  []any{},
		},
		{
			name:  "plain text",
			input: "Hello, World!",
			want:  []any{text("Hello, World!")},
		},
		{
			name:  "variable",
			input: "${name}",
			want:  []any{variable("name")},
		},
		{
			name:  "variable with whitespace",
			input: "${ a . b }",
			want:  []any{variable("a.b")},
		},
		{
			name:  "text around variable",
			input: "Hello, ${name}!",
			want:  []any{text("Hello, "), variable("name"), text("!")},
		},
		{
			name:  "unicode names",
			input: "${größe_1-x}",
			want:  []any{variable("größe_1-x")},
		},
		{
			name:  "call without arguments",
			input: "${f:}",
			want:  []any{call("f")},
		},
		{
			name:  "call with arguments",
			input: "${greet: World}",
			want:  []any{call("greet", bodyArg(text("World")))},
		},
		{
			name:  "arguments keep trailing whitespace",
			input: "${f: a , b}",
			want:  []any{call("f", bodyArg(text("a ")), bodyArg(text("b")))},
		},
		{
			name:  "trailing comma",
			input: "${f: a, b,}",
			want:  []any{call("f", bodyArg(text("a")), bodyArg(text("b")))},
		},
		{
			name:  "nested call argument",
			input: "${f: ${g: x}y, ${v}}",
			want: []any{call("f",
				bodyArg(call("g", bodyArg(text("x"))), text("y")),
				bodyArg(variable("v")),
			)},
		},
		{
			name:  "comma is text outside arguments",
			input: "a, b",
			want:  []any{text("a, b")},
		},
		{
			name:  "escaped comma in argument",
			input: `${f: a\, b}`,
			want:  []any{call("f", bodyArg(text("a, b")))},
		},
		{
			name:  "escapes",
			input: `\$\{literal\}`,
			want:  []any{text("${literal}")},
		},
		{
			name:  "escaped backslash",
			input: `a\\b`,
			want:  []any{text(`a\b`)},
		},
		{
			name:  "line continuation",
			input: "one \\\ntwo",
			want:  []any{text("one two")},
		},
		{
			name:  "crlf line continuation",
			input: "one \\\r\ntwo",
			want:  []any{text("one two")},
		},
		{
			name:  "lambda",
			input: "${items: a, b => ${a}${b}}",
			want: []any{call("items",
				lambdaArg([]string{"a", "b"}, variable("a"), variable("b")),
			)},
		},
		{
			name:  "lambda after argument",
			input: "${each: ${list}, x => [${x}], }",
			want: []any{call("each",
				bodyArg(variable("list")),
				lambdaArg([]string{"x"}, text("["), variable("x"), text("], ")),
			)},
		},
		{
			name:  "lambda body keeps commas",
			input: "${f: x => a, b}",
			want:  []any{call("f", lambdaArg([]string{"x"}, text("a, b")))},
		},
		{
			name:  "argument that is not a lambda",
			input: "${f: a = b}",
			want:  []any{call("f", bodyArg(text("a = b")))},
		},
		{
			name:  "multiline text",
			input: "line 1\nline 2\n",
			want:  []any{text("line 1\nline 2\n")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			if got := shape(tmpl.Body); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q)\n got %v\nwant %v", tt.input, got, tt.want)
			}

			if len(tmpl.Params) != 0 {
				t.Errorf("Params = %v, want none", tmpl.Params)
			}
		})
	}
}

func TestParse_Header(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		params []string
		header string
		body   []any
		lookup map[string]Value
	}{
		{
			name:   "params only",
			input:  "---\n[name]\n---\nHello, ${name}!",
			params: []string{"name"},
			body:   []any{text("Hello, "), variable("name"), text("!")},
		},
		{
			name:   "params and data",
			input:  "---\n[a, b]\nx: 1\ny:\n  z: two\n---\n${x}",
			params: []string{"a", "b"},
			header: "x: 1\ny:\n  z: two",
			body:   []any{variable("x")},
			lookup: map[string]Value{"x": Text("1"), "y.z": Text("two")},
		},
		{
			name:   "data only",
			input:  "  ---  \nk: v\nlist: [a, b]\n---\n",
			header: "k: v\nlist: [a, b]",
			body:   []any{},
			lookup: map[string]Value{
				"k":    Text("v"),
				"list": List{Text("a"), Text("b")},
			},
		},
		{
			name:  "empty header",
			input: "---\n---\nbody",
			body:  []any{text("body")},
		},
		{
			name:  "blank header data",
			input: "---\n[]\n\n   \n---\nbody",
			body:  []any{text("body")},
		},
		{
			name:   "crlf delimiters",
			input:  "---\r\n[p]\r\n---\r\nbody",
			params: []string{"p"},
			body:   []any{text("body")},
		},
		{
			name:  "dashes not on first line",
			input: "x\n---\ny",
			body:  []any{text("x\n---\ny")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}

			if !reflect.DeepEqual(tmpl.Params, tt.params) {
				t.Errorf("Params = %#v, want %#v", tmpl.Params, tt.params)
			}

			if tmpl.Header != tt.header {
				t.Errorf("Header = %q, want %q", tmpl.Header, tt.header)
			}

			if got := shape(tmpl.Body); !reflect.DeepEqual(got, tt.body) {
				t.Errorf("Body = %v, want %v", got, tt.body)
			}

			for p, want := range tt.lookup {
				got, ok := tmpl.Predefined.Get(ParsePath(p))
				if !ok || !reflect.DeepEqual(got, want) {
					t.Errorf("Predefined[%s] = %#v, want %#v", p, got, want)
				}
			}

			if tt.header == "" && tmpl.Predefined != Empty {
				t.Errorf("Predefined = %v, want Empty", tmpl.Predefined)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
		line   int
		column int
	}{
		{"unterminated header", "---\n[a]\nbody", ErrHeader, 1, 1},
		{"bad param list", "---\n[a, b\n---\n", ErrHeader, 2, 1},
		{"bad param name", "---\n[a, b c]\n---\n", ErrHeader, 2, 1},
		{"bad header data", "---\nk: [\n---\n", ErrHeader, 2, 1},
		{"header data not a mapping", "---\n- a\n- b\n---\n", ErrHeader, 2, 1},
		{"unterminated expression", "abc ${x", ErrParse, 1, 8},
		{"unterminated call", "${f: a", ErrParse, 1, 7},
		{"missing name", "${ }", ErrParse, 1, 4},
		{"bad character in expression", "${a b}", ErrParse, 1, 5},
		{"stray dollar", "cost $5", ErrParse, 1, 6},
		{"stray open brace", "a { b", ErrParse, 1, 3},
		{"stray close brace", "a } b", ErrParse, 1, 3},
		{"invalid escape", `a\nb`, ErrParse, 1, 2},
		{"escaped comma outside arguments", `a\,b`, ErrParse, 1, 2},
		{"lambda in expression position", "${x => y}", ErrParse, 1, 1},
		{"empty argument", "${f: a,,b}", ErrParse, 1, 8},
		{"empty leading argument", "${f: , a}", ErrParse, 1, 6},
		{"empty lambda body", "${f: x =>}", ErrParse, 1, 6},
		{"lambda not last", "${f: x => a}, b}", ErrParse, 1, 16},
		{"error on second line", "ok\n${", ErrParse, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded", tt.input)
			}

			if !errors.Is(err, tt.target) {
				t.Errorf("error %v is not %v", err, tt.target)
			}

			if !errors.Is(err, ErrParse) {
				t.Errorf("error %v is not ErrParse", err)
			}

			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not *Error", err)
			}

			pos, ok := perr.Position()
			if !ok {
				t.Fatalf("error %v has no position", err)
			}

			if pos.Line != tt.line || pos.Column != tt.column {
				t.Errorf("position = %v, want %d:%d", pos, tt.line, tt.column)
			}
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	nest := func(n int) string {
		return strings.Repeat("${f: ", n) + "x" + strings.Repeat("}", n)
	}

	if _, err := Parse(t.Context(), nest(3), WithMaxDepth(3)); err != nil {
		t.Fatalf("depth 3: %v", err)
	}

	_, err := Parse(t.Context(), nest(4), WithMaxDepth(3))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("depth 4 error = %v, want ErrMaxDepthExceeded", err)
	}

	if !errors.Is(err, ErrParse) {
		t.Errorf("error %v is not ErrParse", err)
	}

	if _, err := Parse(t.Context(), nest(DefaultMaxDepth), WithMaxDepth(0)); err != nil {
		t.Errorf("default depth: %v", err)
	}
}

func TestParse_Positions(t *testing.T) {
	tmpl, err := Parse(t.Context(), "---\n[p]\n---\nab\n${x}${f: y}")
	if err != nil {
		t.Fatal(err)
	}

	want := []Position{
		{Offset: 12, Line: 4, Column: 1},
		{Offset: 15, Line: 5, Column: 1},
		{Offset: 19, Line: 5, Column: 5},
	}

	for i, n := range tmpl.Body {
		if got := n.Position(); got != want[i] {
			t.Errorf("node %d position = %+v, want %+v", i, got, want[i])
		}
	}

	arg := tmpl.Body[2].(*CallNode).Args[0]
	if got := arg.Position(); got.Column != 10 {
		t.Errorf("argument column = %d, want 10", got.Column)
	}
}

func TestParse_Name(t *testing.T) {
	tmpl, err := Parse(t.Context(), "x", WithName("greeting"))
	if err != nil {
		t.Fatal(err)
	}

	if tmpl.Name != "greeting" {
		t.Errorf("Name = %q, want greeting", tmpl.Name)
	}
}

func TestErrorSnippet(t *testing.T) {
	src := "line one\nbad ${"

	_, err := Parse(t.Context(), src)

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error %v is not *Error", err)
	}

	want := "  2 | bad ${\n" + strings.Repeat(" ", 6) + strings.Repeat(" ", 6) + "^\n"
	if got := perr.Snippet(src); got != want {
		t.Errorf("Snippet =\n%s\nwant\n%s", got, want)
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	tests := []string{
		"a\xffb",
		"\xc3",
		"x ${y} \xe2\x82",
		"${f: \xfe, ok}",
	}

	f := Map{
		"y": Text("Y"),
		"f": Callable(func(args []Value) (Text, error) {
			return args[0].(Text), nil
		}),
	}

	want := []string{"a\xffb", "\xc3", "x Y \xe2\x82", "\xfe"}

	for i, src := range tests {
		got, err := mustParse(t, src).EvaluateText(t.Context(), nil, f)
		if err != nil {
			t.Errorf("%q: %v", src, err)

			continue
		}

		if string(got) != want[i] {
			t.Errorf("%q rendered %q, want %q", src, got, want[i])
		}
	}
}
