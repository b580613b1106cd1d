package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dshills/ocrsynth/pkg/sampler"
)

// ErrNoTextAvailable is returned after the configured number of retries
// fail to produce a non-empty segment from any source file.
var ErrNoTextAvailable = errors.New("corpus: no text available")

// bufferSize bounds the bytes read from a source file in a single refill,
// independent of how large the underlying corpus is.
const bufferSize = 64 * 1024

// defaultRetries is how many times ExtractSegment will try a different
// source before giving up.
const defaultRetries = 5

// Source names one corpus file and its selection weight.
type Source struct {
	Path   string
	Weight float64
}

// file tracks per-file read state: a byte cursor that advances round-robin
// across successive extractions, wrapping back to the start at EOF.
type file struct {
	path   string
	weight float64
	size   int64
	offset int64
}

// Reader streams bounded segments from a set of corpus files. The zero
// value is not usable; construct with NewReader or NewReaderFromGlob.
type Reader struct {
	dir     string
	files   []*file
	retries int
}

// NewReader builds a Reader over explicit sources.
func NewReader(sources []Source) (*Reader, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("corpus: no sources provided")
	}
	files := make([]*file, 0, len(sources))
	for _, s := range sources {
		info, err := os.Stat(s.Path)
		if err != nil {
			return nil, fmt.Errorf("corpus: stat %s: %w", s.Path, err)
		}
		w := s.Weight
		if w <= 0 {
			w = 1
		}
		files = append(files, &file{path: s.Path, weight: w, size: info.Size()})
	}
	return &Reader{files: files, retries: defaultRetries}, nil
}

// NewReaderFromGlob resolves pattern to a set of files, each given equal
// weight, and builds a Reader over them.
func NewReaderFromGlob(pattern string) (*Reader, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("corpus: bad glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("corpus: glob %q matched no files", pattern)
	}
	sources := make([]Source, len(matches))
	for i, m := range matches {
		sources[i] = Source{Path: m, Weight: 1}
	}
	return NewReader(sources)
}

// ExtractSegment picks a source file weighted by rng, advances that file's
// cursor, and returns a substring with length in [minLen, maxLen] bytes,
// with internal newlines collapsed to single spaces. On read failure or an
// empty file it retries with a different source up to the configured
// retry budget before returning ErrNoTextAvailable.
func (r *Reader) ExtractSegment(minLen, maxLen int, rng *sampler.NamedRNG) (string, error) {
	if minLen < 0 || maxLen < minLen {
		return "", fmt.Errorf("corpus: invalid length bounds [%d,%d]", minLen, maxLen)
	}
	if len(r.files) == 0 {
		return "", ErrNoTextAvailable
	}

	weights := make([]float64, len(r.files))
	for i, f := range r.files {
		weights[i] = f.weight
	}

	var lastErr error
	for attempt := 0; attempt < r.retries; attempt++ {
		idx := rng.WeightedChoice(weights)
		if idx < 0 {
			return "", ErrNoTextAvailable
		}
		seg, err := r.readFrom(r.files[idx], minLen, maxLen)
		if err != nil {
			lastErr = err
			continue
		}
		if seg != "" {
			return seg, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrNoTextAvailable, lastErr)
	}
	return "", ErrNoTextAvailable
}

// readFrom reads a bounded window starting at f's cursor, decodes runes
// while collapsing whitespace runs (including newlines) to single spaces,
// and advances the cursor. The cursor wraps to 0 when it reaches the file
// size, so a short corpus is revisited rather than exhausted.
func (r *Reader) readFrom(f *file, minLen, maxLen int) (string, error) {
	if f.size == 0 {
		return "", nil
	}
	osFile, err := os.Open(f.path)
	if err != nil {
		return "", err
	}
	defer osFile.Close()

	var b strings.Builder
	buf := make([]byte, bufferSize)
	pos := f.offset
	pendingSpace := false
	full := false

	for b.Len() < maxLen {
		if pos >= f.size {
			pos = 0
			if b.Len() >= minLen {
				break
			}
		}
		n, err := osFile.ReadAt(buf, pos)
		if n == 0 {
			if err != nil {
				break
			}
			continue
		}
		chunk := buf[:n]
		for _, rn := range string(chunk) {
			if b.Len() >= maxLen {
				break
			}
			if unicode.IsSpace(rn) {
				pendingSpace = b.Len() > 0
				continue
			}
			need := len(string(rn))
			if pendingSpace {
				need++
			}
			if b.Len()+need > maxLen {
				full = true
				break
			}
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(rn)
		}
		pos += int64(n)
		if err != nil || full {
			break
		}
	}

	f.offset = pos
	out := b.String()
	if len(out) < minLen && len(out) > 0 {
		// Short source: accept what we have rather than looping forever;
		// the caller's retry budget handles genuinely empty corpora.
		return out, nil
	}
	return out, nil
}

// Close releases any resources held by the reader. Since files are opened
// per extraction, Close is currently a no-op, kept for interface symmetry
// with readers that hold persistent handles.
func (r *Reader) Close() error { return nil }
