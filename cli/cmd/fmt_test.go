package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/lang"
)

const fmtSource = "---\n[ who ]\ngreeting: Hello\n---\n${greeting}, ${ upper : ${who} }!"

func TestFmt_Native(t *testing.T) {
	s, out, _ := testStreams(fmtSource)

	if err := (&Native{Input{Source: "-"}}).Run(t.Context(), s); err != nil {
		t.Fatal(err)
	}

	want := "---\n[who]\ngreeting: Hello\n---\n${greeting}, ${upper: ${who} }!"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestFmt_JSON(t *testing.T) {
	s, out, _ := testStreams(fmtSource)

	if err := (&JSON{Indent: 4, Input: Input{Source: "-"}}).Run(t.Context(), s); err != nil {
		t.Fatal(err)
	}

	var tree map[string]any
	if err := json.Unmarshal(out.Bytes(), &tree); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}

	if params, _ := tree["params"].([]any); len(params) != 1 || params[0] != "who" {
		t.Errorf("params = %v", tree["params"])
	}

	if !strings.Contains(out.String(), "\n    ") {
		t.Errorf("JSON not indented by 4:\n%s", out.String())
	}
}

func TestFmt_YAML(t *testing.T) {
	s, out, _ := testStreams(fmtSource)

	if err := (&YAML{Indent: 2, Input: Input{Source: "-"}}).Run(t.Context(), s); err != nil {
		t.Fatal(err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &tree); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, out.String())
	}

	if tree["header"] != "greeting: Hello" {
		t.Errorf("header = %v", tree["header"])
	}
}

func TestFmt_AST(t *testing.T) {
	s, out, _ := testStreams(fmtSource)

	if err := (&AST{Input{Source: "-"}}).Run(t.Context(), s); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Template: -", "Params: who", "Var: greeting", "Call: upper"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestFmt_ParseError(t *testing.T) {
	for name, run := range map[string]func(*Streams) error{
		"native": func(s *Streams) error { return (&Native{Input{"-"}}).Run(t.Context(), s) },
		"json":   func(s *Streams) error { return (&JSON{Input: Input{"-"}}).Run(t.Context(), s) },
		"yaml":   func(s *Streams) error { return (&YAML{Input: Input{"-"}}).Run(t.Context(), s) },
		"ast":    func(s *Streams) error { return (&AST{Input{"-"}}).Run(t.Context(), s) },
	} {
		t.Run(name, func(t *testing.T) {
			s, out, errOut := testStreams("ok ${")

			err := run(s)
			if !errors.Is(err, lang.ErrParse) {
				t.Errorf("error = %v, want ErrParse", err)
			}

			if out.Len() != 0 {
				t.Errorf("stdout = %q, want empty", out.String())
			}

			if errOut.Len() == 0 {
				t.Error("no diagnostic on stderr")
			}
		})
	}
}
