package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/ocrsynth/pkg/sampler"
)

func writeTempCorpus(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractSegmentWithinBounds(t *testing.T) {
	path := writeTempCorpus(t, strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200))
	r, err := NewReader([]Source{{Path: path, Weight: 1}})
	if err != nil {
		t.Fatal(err)
	}
	rng := sampler.NewNamedRNG(1, "corpus")
	seg, err := r.ExtractSegment(10, 40, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(seg) < 1 || len(seg) > 40 {
		t.Fatalf("segment length %d out of [?,40]", len(seg))
	}
	if strings.Contains(seg, "\n") {
		t.Fatalf("segment retained a newline: %q", seg)
	}
}

func TestExtractSegmentEmptyFile(t *testing.T) {
	path := writeTempCorpus(t, "")
	r, err := NewReader([]Source{{Path: path, Weight: 1}})
	if err != nil {
		t.Fatal(err)
	}
	rng := sampler.NewNamedRNG(1, "corpus")
	_, err = r.ExtractSegment(10, 40, rng)
	if err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestNewReaderFromGlobNoMatches(t *testing.T) {
	dir := t.TempDir()
	_, err := NewReaderFromGlob(filepath.Join(dir, "*.txt"))
	if err == nil {
		t.Fatal("expected error for glob with no matches")
	}
}
