package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes t in canonical source form.
//
// Parsing the output yields a template structurally equal to t: same
// parameters, header data and body, ignoring source positions and line
// continuations.
func (t *Template) Format(_ context.Context, w io.Writer) error {
	var sb strings.Builder

	header := len(t.Params) > 0 || t.Header != ""

	// A body whose first line reads as a header delimiter must be
	// preceded by an explicit empty header.
	if !header && len(t.Body) > 0 {
		if n, ok := t.Body[0].(*TextNode); ok {
			first, _, _ := strings.Cut(n.Text, "\n")
			header = strings.TrimSpace(first) == HeaderDelim
		}
	}

	if header {
		sb.WriteString(HeaderDelim + "\n")

		if len(t.Params) > 0 {
			sb.WriteString("[" + strings.Join(t.Params, ", ") + "]\n")
		}

		if t.Header != "" {
			sb.WriteString(t.Header + "\n")
		}

		sb.WriteString(HeaderDelim + "\n")
	}

	formatNodes(&sb, t.Body, textQuoter)

	_, err := io.WriteString(w, sb.String())

	return err
}

// String returns the canonical source form of t.
func (t *Template) String() string {
	var sb strings.Builder

	_ = t.Format(context.Background(), &sb)

	return sb.String()
}

// formatNodes writes nodes with text escaped by q.
func formatNodes(sb *strings.Builder, nodes []Node, q *strings.Replacer) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			sb.WriteString(q.Replace(n.Text))

		case *VarNode:
			sb.WriteString("${" + n.Path.String() + "}")

		case *CallNode:
			sb.WriteString("${" + n.Path.String() + ":")

			for i, a := range n.Args {
				if i > 0 {
					sb.WriteByte(',')
				}

				sb.WriteByte(' ')

				switch a := a.(type) {
				case *BodyArg:
					formatNodes(sb, a.Nodes, argQuoter)

				case *LambdaArg:
					sb.WriteString(strings.Join(a.Params, ", ") + " => ")
					formatNodes(sb, a.Body, textQuoter)
				}
			}

			sb.WriteByte('}')
		}
	}
}

// MarshalJSON implements json.Marshaler for Template.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// ToMap converts the template to a generic tree of maps, slices and
// strings. Source positions are omitted.
func (t *Template) ToMap() map[string]any {
	result := map[string]any{
		"params": stringsToAny(t.Params),
		"header": t.Header,
		"body":   nodesToAny(t.Body),
	}

	if t.Name != "" {
		result["name"] = t.Name
	}

	return result
}

func stringsToAny(s []string) []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = e
	}

	return out
}

func nodesToAny(nodes []Node) []any {
	out := make([]any, 0, len(nodes))

	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			out = append(out, map[string]any{"text": n.Text})

		case *VarNode:
			out = append(out, map[string]any{"var": n.Path.String()})

		case *CallNode:
			args := make([]any, 0, len(n.Args))

			for _, a := range n.Args {
				switch a := a.(type) {
				case *BodyArg:
					args = append(args, map[string]any{
						"body": nodesToAny(a.Nodes),
					})

				case *LambdaArg:
					args = append(args, map[string]any{
						"lambda": map[string]any{
							"params": stringsToAny(a.Params),
							"body":   nodesToAny(a.Body),
						},
					})
				}
			}

			out = append(out, map[string]any{
				"call": n.Path.String(),
				"args": args,
			})
		}
	}

	return out
}

// FormatJSON writes the template tree as JSON to the writer.
func (t *Template) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(t, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(t)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the template tree as YAML to the writer.
func (t *Template) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, t.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// Print writes an indented description of the template structure.
func (t *Template) Print(w io.Writer) error {
	p := &printer{w: w}

	name := t.Name
	if name == "" {
		name = "(unnamed)"
	}

	p.put(0, "Template", name)

	if len(t.Params) > 0 {
		p.put(1, "Params", strings.Join(t.Params, ", "))
	}

	if t.Header != "" {
		p.put(1, "Header", "")

		for line := range strings.SplitSeq(t.Header, "\n") {
			p.put(2, line)
		}
	}

	p.put(1, "Body", "")
	p.nodes(2, t.Body)

	return p.err
}

// printer writes indented lines and remembers the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) put(indent int, item ...string) {
	if p.err != nil {
		return
	}

	_, p.err = io.WriteString(p.w,
		strings.Repeat("  ", indent)+strings.Join(item, ": ")+"\n")
}

func (p *printer) nodes(indent int, nodes []Node) {
	if len(nodes) == 0 {
		p.put(indent, "(empty)")

		return
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			p.put(indent, "Text", strconv.Quote(n.Text))

		case *VarNode:
			p.put(indent, "Var", n.Path.String())

		case *CallNode:
			p.put(indent, "Call", n.Path.String())

			for _, a := range n.Args {
				switch a := a.(type) {
				case *BodyArg:
					p.put(indent+1, "Arg", "")
					p.nodes(indent+2, a.Nodes)

				case *LambdaArg:
					p.put(indent+1, "Lambda", strings.Join(a.Params, ", "))
					p.nodes(indent+2, a.Body)
				}
			}
		}
	}
}
