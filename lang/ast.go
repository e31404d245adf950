package lang

import (
	"github.com/ardnew/tmpl/log"
)

// DefaultMaxDepth is the default limit on nested expressions.
const DefaultMaxDepth = 100

// Template is one parsed source document.
//
// A Template is immutable after parsing and may be evaluated any number
// of times, concurrently, against different contexts.
type Template struct {
	// Name identifies the template in log output and diagnostics.
	Name string
	// Params are the parameter names declared in the header.
	Params []string
	// Header is the raw structured data of the header, without the
	// delimiters and the parameter list.
	Header string
	// Predefined is the context decoded from Header.
	Predefined Context
	// Body is the sequence of nodes making up the template content.
	Body []Node

	logger log.Logger // outside optionsKey, doesn't affect cache
}

// Node is one syntactic unit of a template body:
// a [*TextNode], [*VarNode] or [*CallNode].
type Node interface {
	Position() Position
	node()
}

// TextNode is literal content.
type TextNode struct {
	Text string
	Pos  Position
}

// VarNode is a reference to a context entry.
type VarNode struct {
	Path Path
	Pos  Position
}

// CallNode invokes the [Callable] found at Path.
type CallNode struct {
	Path Path
	Args []Arg
	Pos  Position
}

func (n *TextNode) Position() Position { return n.Pos }
func (n *VarNode) Position() Position  { return n.Pos }
func (n *CallNode) Position() Position { return n.Pos }

func (*TextNode) node() {}
func (*VarNode) node()  {}
func (*CallNode) node() {}

// Arg is one argument of a [CallNode]: a [*BodyArg] or [*LambdaArg].
type Arg interface {
	Position() Position
	arg()
}

// BodyArg is an argument given as nested template content,
// evaluated in the context of the enclosing call.
type BodyArg struct {
	Nodes []Node
	Pos   Position
}

// LambdaArg is an inline closure. When invoked it binds Params to its
// arguments over the context captured when the enclosing call was
// evaluated.
type LambdaArg struct {
	Params []string
	Body   []Node
	Pos    Position
}

func (a *BodyArg) Position() Position   { return a.Pos }
func (a *LambdaArg) Position() Position { return a.Pos }

func (*BodyArg) arg()   {}
func (*LambdaArg) arg() {}

// Logger returns the logger attached to t.
func (t *Template) Logger() log.Logger { return t.logger }

// WithLogger returns a shallow copy of t that logs to logger.
func (t *Template) WithLogger(logger log.Logger) *Template {
	c := *t
	c.logger = logger

	return &c
}

// options configures parsing.
type options struct {
	optionsKey

	logger log.Logger
}

// optionsKey holds the options that affect the parse result.
// It is encoded into the cache key.
type optionsKey struct {
	MaxDepth int
	Name     string
}

// Option configures template parsing.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth of expressions.
// Values less than 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		o.MaxDepth = depth
	}
}

// WithName sets the template name used in diagnostics.
func WithName(name string) Option {
	return func(o *options) {
		o.Name = name
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{optionsKey: optionsKey{MaxDepth: DefaultMaxDepth}}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
