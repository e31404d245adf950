package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed templates keyed by source and options hash.
var globalCache sync.Map

// entry is a cached parse result for one source and options combination.
type entry struct {
	once sync.Once
	tmpl *Template
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(opts)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads all of r and parses it with [ParseString].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Template, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)
	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses source into a [Template], caching the result.
//
// Templates are immutable, so a cached template is shared by every
// caller that parses the same source with the same options. The logger
// given with [WithLogger] does not affect caching and is attached to the
// returned copy.
func ParseString(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Template, error) {
	o := makeOptions(opts...)

	// Combine source hash with options hash for cache key uniqueness
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(o.optionsKey)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(entry))
	cached := value.(*entry)

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	cached.once.Do(func() {
		cached.tmpl, cached.err = Parse(ctx, source, opts...)
	})

	if cached.err != nil {
		return nil, cached.err
	}

	return cached.tmpl.WithLogger(o.logger), nil
}

// ClearCache removes all cached templates.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
