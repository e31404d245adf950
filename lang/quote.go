package lang

import (
	"log/slog"
	"strings"
	"unicode"
)

var (
	textQuoter = newQuoter(defaultSpecials)
	argQuoter  = newQuoter(argSpecials)
)

func newQuoter(specials string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(specials))
	for _, r := range specials {
		pairs = append(pairs, string(r), `\`+string(r))
	}

	return strings.NewReplacer(pairs...)
}

// Quote escapes every '$', '{', '}' and '\' in s so that it parses as
// literal body text. Text whose first line reads as a [HeaderDelim] is
// preceded by an empty header.
func Quote(s string) string {
	q := textQuoter.Replace(s)

	first, _, _ := strings.Cut(q, "\n")
	if strings.TrimSpace(first) == HeaderDelim {
		q = HeaderDelim + "\n" + HeaderDelim + "\n" + q
	}

	return q
}

// QuoteArg is like [Quote] but also escapes ',' so that s parses as a
// single literal call argument.
//
// Text starting with a name followed by "=>" would parse as a lambda, and
// no escape applies to names; QuoteArg returns [ErrUnquotable] for it.
func QuoteArg(s string) (string, error) {
	if lambdaShaped(s) {
		return "", ErrUnquotable.With(slog.String("text", s))
	}

	return argQuoter.Replace(s), nil
}

// lambdaShaped reports whether s opens with a single-name lambda head.
// Heads with several names are broken by escaping their commas.
func lambdaShaped(s string) bool {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	rest := strings.TrimLeftFunc(s, isNameRune)
	if len(rest) == len(s) {
		return false
	}

	return strings.HasPrefix(strings.TrimLeftFunc(rest, unicode.IsSpace), "=>")
}
