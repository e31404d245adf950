package lang

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

var formatSources = []string{
	"",
	"plain text",
	"Hello, ${name}!",
	`\$\{escaped\} \\ and a, comma`,
	"---\n[name]\n---\nHello, ${name}!",
	"---\n[a, b]\nx: 1\ny:\n  z: two\n---\n${x}${y.z}",
	"---\nk: v\n---\n",
	"${f:}",
	"${f: a , b\\, c, ${g: ${h}}x}",
	"${items: a, b => ${a}, ${b}}",
	"${each: ${list}, x => [${x}]}",
	"---\n---\n---\nbody after empty header",
	"line one \\\nline two",
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, src := range formatSources {
		t.Run(src, func(t *testing.T) {
			orig := mustParse(t, src)

			var buf bytes.Buffer
			if err := orig.Format(t.Context(), &buf); err != nil {
				t.Fatal(err)
			}

			again, err := Parse(t.Context(), buf.String())
			if err != nil {
				t.Fatalf("Parse(Format) = %v\nformatted:\n%s", err, buf.String())
			}

			if !reflect.DeepEqual(orig.ToMap(), again.ToMap()) {
				t.Errorf("round trip changed template\n got %v\nwant %v",
					again.ToMap(), orig.ToMap())
			}

			// Canonical output is a fixed point.
			if again.String() != buf.String() {
				t.Errorf("Format not idempotent:\n%q\n%q", buf.String(), again.String())
			}
		})
	}
}

func TestFormat_Canonical(t *testing.T) {
	tests := []struct{ src, want string }{
		{"${ a . b }", "${a.b}"},
		{"${f:a,b,}", "${f: a, b}"},
		{"${ f :  x  =>  ${x} }", "${f: x => ${x} }"},
		{"---\n[ a ,b ]\n---\n", "---\n[a, b]\n---\n"},
		{"---\n---\nx", "x"},
	}

	for _, tt := range tests {
		if got := mustParse(t, tt.src).String(); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	tmpl := mustParse(t, "---\n[x]\n---\n${f: ${x}, y => z}")

	var buf bytes.Buffer
	if err := tmpl.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if !reflect.DeepEqual(got, tmpl.ToMap()) {
		t.Errorf("JSON = %v, want %v", got, tmpl.ToMap())
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Errorf("JSON not indented:\n%s", buf.String())
	}
}

func TestFormatYAML(t *testing.T) {
	tmpl := mustParse(t, "---\nk: v\n---\n${k}")

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := tmpl.FormatYAML(t.Context(), &buf, indent); err != nil {
			t.Fatal(err)
		}

		var got map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
		}

		if got["header"] != "k: v" {
			t.Errorf("indent %d: header = %v", indent, got["header"])
		}
	}
}

func TestPrint(t *testing.T) {
	tmpl, err := Parse(t.Context(),
		"---\n[x]\nk: v\n---\nHi ${x}${f: a b, y => b}",
		WithName("demo"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := tmpl.Print(&buf); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"Template: demo",
		"  Params: x",
		"  Header: ",
		"    k: v",
		"  Body: ",
		`    Text: "Hi "`,
		"    Var: x",
		"    Call: f",
		"      Arg: ",
		`        Text: "a b"`,
		"      Lambda: y",
		`        Text: "b"`,
		"",
	}, "\n")

	if buf.String() != want {
		t.Errorf("Print =\n%s\nwant\n%s", buf.String(), want)
	}
}
