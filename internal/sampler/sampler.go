// Package sampler produces reduced head+tail representations of structured
// data files (CSV, TSV, JSON, JSONL). Malformed input never fails a run: the
// sampler degrades to a verbatim copy and logs a warning. Only I/O failures
// are returned as errors.
package sampler

import (
	"path/filepath"
	"strings"

	"github.com/hollowoak/distill/internal/fsutil"
	"github.com/hollowoak/distill/internal/logging"
)

// Options controls how many rows survive sampling.
type Options struct {
	// IncludeHeader treats the first row of delimited files as a header that
	// is always preserved and never counted against HeadRows/TailRows.
	IncludeHeader bool
	HeadRows      int
	TailRows      int
}

// Sampler reduces structured data files. Safe for concurrent use.
type Sampler struct {
	opts Options
	log  *logging.Logger
}

// New builds a sampler. Negative row counts are clamped to zero.
func New(opts Options, log *logging.Logger) *Sampler {
	if opts.HeadRows < 0 {
		opts.HeadRows = 0
	}
	if opts.TailRows < 0 {
		opts.TailRows = 0
	}
	return &Sampler{opts: opts, log: log}
}

// Sample writes a reduced representation of src to dst, dispatching on the
// lowercased file extension. Unrecognized extensions fall back to a verbatim
// copy with a warning.
func (s *Sampler) Sample(src, dst string) error {
	switch strings.ToLower(filepath.Ext(src)) {
	case ".csv":
		return s.sampleDelimited(src, dst, ',')
	case ".tsv":
		return s.sampleDelimited(src, dst, '\t')
	case ".jsonl":
		return s.sampleJSONL(src, dst)
	case ".json":
		return s.sampleJSON(src, dst)
	default:
		s.log.Warnf("Unknown sampling type %q for %s. Copying as-is.", filepath.Ext(src), src)
		return fsutil.CopyFile(src, dst)
	}
}

// tailBuffer keeps the last capacity items appended to it.
type tailBuffer[T any] struct {
	items []T
	start int
	full  bool
	cap   int
}

func newTailBuffer[T any](capacity int) *tailBuffer[T] {
	return &tailBuffer[T]{items: make([]T, 0, max(capacity, 0)), cap: max(capacity, 0)}
}

func (b *tailBuffer[T]) push(v T) {
	if b.cap == 0 {
		return
	}
	if !b.full {
		b.items = append(b.items, v)
		if len(b.items) == b.cap {
			b.full = true
		}
		return
	}
	b.items[b.start] = v
	b.start = (b.start + 1) % b.cap
}

func (b *tailBuffer[T]) slice() []T {
	if !b.full {
		return b.items
	}
	out := make([]T, 0, b.cap)
	out = append(out, b.items[b.start:]...)
	out = append(out, b.items[:b.start]...)
	return out
}

func (b *tailBuffer[T]) len() int { return len(b.items) }
