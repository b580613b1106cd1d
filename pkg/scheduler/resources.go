package scheduler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/corpus"
	"github.com/dshills/ocrsynth/pkg/health"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

// FontPool resolves one specification's FontSelector to a set of
// health-tracked candidate font files and draws from them with
// probability proportional to pattern weight * health score.
type FontPool struct {
	candidates []health.Candidate
	tracker    *health.Tracker
}

// NewFontPool resolves sel against the filesystem and pairs the result
// with tracker. Every specification in a batch shares the same font
// health tracker, since two specifications can legitimately draw from
// overlapping glob patterns.
func NewFontPool(sel config.FontSelector, tracker *health.Tracker) (*FontPool, error) {
	candidates, err := resolveWeightedFontGlobs(sel)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("scheduler: font selector %q matched no files", sel.Glob)
	}
	return &FontPool{candidates: candidates, tracker: tracker}, nil
}

// Select draws one font path, excluding any currently unhealthy resource.
func (p *FontPool) Select(rng *sampler.NamedRNG) (string, error) {
	return p.tracker.Select(p.candidates, rng.Float64())
}

// resolveWeightedFontGlobs expands sel into one health.Candidate per
// matched file. When Weights is set, each weighted pattern is globbed
// independently and contributes its own weight; this takes precedence
// over the base Glob, which the Validator already requires to be
// non-empty as a fallback selector. When Weights is empty, every file
// matched by the base Glob gets equal weight 1.
func resolveWeightedFontGlobs(sel config.FontSelector) ([]health.Candidate, error) {
	if len(sel.Weights) > 0 {
		var out []health.Candidate
		for _, wp := range sel.Weights {
			matches, err := filepath.Glob(wp.Pattern)
			if err != nil {
				return nil, fmt.Errorf("scheduler: font pattern %q: %w", wp.Pattern, err)
			}
			weight := wp.Weight
			if weight <= 0 {
				weight = 1
			}
			for _, m := range matches {
				out = append(out, health.Candidate{ID: m, Weight: weight})
			}
		}
		return out, nil
	}
	matches, err := filepath.Glob(sel.Glob)
	if err != nil {
		return nil, fmt.Errorf("scheduler: font glob %q: %w", sel.Glob, err)
	}
	out := make([]health.Candidate, len(matches))
	for i, m := range matches {
		out[i] = health.Candidate{ID: m, Weight: 1}
	}
	return out, nil
}

// NewCorpusReader resolves a specification's CorpusSelector (a single
// file, a directory of files, or a glob) into a corpus.Reader, applying
// per-source weights when given.
func NewCorpusReader(sel config.CorpusSelector) (*corpus.Reader, error) {
	switch {
	case sel.File != "":
		return corpus.NewReader([]corpus.Source{{Path: sel.File, Weight: 1}})

	case sel.Directory != "":
		entries, err := os.ReadDir(sel.Directory)
		if err != nil {
			return nil, fmt.Errorf("scheduler: reading corpus directory %q: %w", sel.Directory, err)
		}
		weightOf := weightLookup(sel.Weights)
		var sources []corpus.Source
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(sel.Directory, e.Name())
			sources = append(sources, corpus.Source{Path: path, Weight: weightOf(e.Name())})
		}
		return corpus.NewReader(sources)

	case sel.Glob != "":
		if len(sel.Weights) == 0 {
			return corpus.NewReaderFromGlob(sel.Glob)
		}
		var sources []corpus.Source
		for _, wp := range sel.Weights {
			matches, err := filepath.Glob(wp.Pattern)
			if err != nil {
				return nil, fmt.Errorf("scheduler: corpus pattern %q: %w", wp.Pattern, err)
			}
			weight := wp.Weight
			if weight <= 0 {
				weight = 1
			}
			for _, m := range matches {
				sources = append(sources, corpus.Source{Path: m, Weight: weight})
			}
		}
		return corpus.NewReader(sources)

	default:
		return nil, fmt.Errorf("scheduler: corpus selector has no file, directory, or glob set")
	}
}

// weightLookup builds a name-matcher from a directory selector's weighted
// patterns: each pattern is matched against a file's base name with
// filepath.Match, first match wins, default weight 1.
func weightLookup(weights []config.WeightedPattern) func(name string) float64 {
	return func(name string) float64 {
		for _, wp := range weights {
			if ok, _ := filepath.Match(wp.Pattern, name); ok {
				if wp.Weight > 0 {
					return wp.Weight
				}
				return 1
			}
		}
		return 1
	}
}

// BuildResources constructs a TaskResources entry (corpus reader + font
// pool) for every specification in cfg, sharing fontTracker across all of
// them.
func BuildResources(cfg *config.BatchConfig, fontTracker *health.Tracker) (TaskResources, error) {
	readers := make(map[string]Reader, len(cfg.Specifications))
	fonts := make(map[string]*FontPool, len(cfg.Specifications))
	for _, spec := range cfg.Specifications {
		reader, err := NewCorpusReader(spec.Corpus)
		if err != nil {
			return TaskResources{}, err
		}
		pool, err := NewFontPool(spec.Font, fontTracker)
		if err != nil {
			return TaskResources{}, err
		}
		readers[spec.Name] = reader
		fonts[spec.Name] = pool
	}
	return TaskResources{Readers: readers, Fonts: fonts}, nil
}
