package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func flagNamed(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		config string
		flag   string
		want   any
	}{
		{"hyphen key", "log-level: debug\n", "log-level", "debug"},
		{"underscore key", "log_level: debug\n", "log-level", "debug"},
		{"nested key", "log:\n  level: debug\n", "log-level", "debug"},
		{"flat key wins", "log-level: warn\nlog:\n  level: debug\n", "log-level", "warn"},
		{"bool", "no-builtins: true\n", "no-builtins", "true"},
		{"number", "max-depth: 7\n", "max-depth", "7"},
		{"sequence", "context: [a.yaml, b.yaml]\n", "context", []any{"a.yaml", "b.yaml"}},
		{"missing", "log-level: debug\n", "log-format", nil},
		{"mapping value", "log:\n  level: debug\n", "log", nil},
		{"empty document", "", "log-level", nil},
		{"non-mapping root", "- a\n- b\n", "log-level", nil},
		{"malformed", "log-level: [unterminated\n", "log-level", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := resolve(strings.NewReader(tt.config))
			if err != nil {
				t.Fatal(err)
			}

			if err := resolver.Validate(nil); err != nil {
				t.Fatal(err)
			}

			got, err := resolver.Resolve(nil, nil, flagNamed(tt.flag))
			if err != nil {
				t.Fatal(err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}
