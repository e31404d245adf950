package lang

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// HeaderDelim is the line that opens and closes a template header.
const HeaderDelim = "---"

// SplitHeader separates a document into its header lines and body.
//
// The header is everything between the first line and the next line that
// consist of [HeaderDelim], ignoring surrounding whitespace. If doc has no
// complete header, ok is false and body is doc.
func SplitHeader(doc string) (header, body string, ok bool) {
	open := strings.IndexByte(doc, '\n')
	if open < 0 || strings.TrimSpace(doc[:open]) != HeaderDelim {
		return "", doc, false
	}

	for start := open + 1; start <= len(doc); {
		end := strings.IndexByte(doc[start:], '\n')
		if end < 0 {
			end = len(doc)
		} else {
			end += start
		}

		if strings.TrimSpace(doc[start:end]) == HeaderDelim {
			if start > open+1 {
				header = doc[open+1 : start-1]
			}

			if end < len(doc) {
				body = doc[end+1:]
			}

			return header, body, true
		}

		start = end + 1
	}

	return "", doc, false
}

// JoinHeader is the inverse of [SplitHeader].
func JoinHeader(header, body string) string {
	return HeaderDelim + "\n" + header + "\n" + HeaderDelim + "\n" + body
}

// decodeHeader converts raw header data into the predefined context of a
// template. This is the only place decoded header data becomes a Context.
func decodeHeader(data string, pos Position) (Context, error) {
	if strings.TrimSpace(data) == "" {
		return Empty, nil
	}

	var tree any
	if err := yaml.Unmarshal([]byte(data), &tree); err != nil {
		return nil, ErrHeader.WithPosition(pos).Wrap(err)
	}

	if tree == nil {
		return Empty, nil
	}

	ctx, ok := FromData(tree).(Context)
	if !ok {
		return nil, ErrHeader.WithPosition(pos).
			Wrap(fmt.Errorf("header data must be a mapping, not %T", tree))
	}

	return ctx, nil
}
