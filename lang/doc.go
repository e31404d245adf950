// Package lang implements a text templating language whose names resolve
// against a hierarchical, composable context.
//
// # Syntax
//
// A template is free text mixed with expressions:
//
//	---
//	[name]
//	greeting: Hello
//	---
//	${greeting}, ${name}!
//
// The optional header is delimited by "---" lines. It may start with a
// bracketed parameter list; the remaining lines are YAML data forming the
// template's predefined context.
//
// Expressions take three forms:
//
//	${ path }                    variable reference
//	${ path : arg, arg }         call
//	${ path : x, y => body }     call with a lambda argument
//
// A path is a dot-separated sequence of names made of letters, digits,
// '_' and '-'. Call arguments are nested template content. A lambda is
// only valid as the last argument of a call; its body extends to the
// closing '}' of the call.
//
// The characters '$', '{', '}' and '\' are special in text and are
// written literally by escaping them with '\'. Inside call arguments ','
// is special as well. A '\' at the end of a line joins it with the next.
// [Quote] and [QuoteArg] apply these escapes. Body text is copied byte for
// byte, so invalid UTF-8 passes through unchanged.
//
// # Contexts
//
// Values are [Text], [List], [Callable] or a [Context]. A context maps
// paths to values; a lookup of "a.b.c" first tries the key "a.b.c", then
// the nested contexts at "a.b" and "a". [Compose] and [Merge] layer
// contexts so that later ones shadow earlier ones.
//
// # Evaluation
//
// [Template.Evaluate] composes the built-in context, the caller's context
// and the template's header, in increasing precedence. A template with
// parameters evaluates to a [Callable]; one without evaluates to [Text].
// Lambdas capture the context of the call they appear in.
//
// Every error is an [*Error] matching one of [ErrParse], [ErrLookup] or
// [ErrType] with [errors.Is].
package lang
