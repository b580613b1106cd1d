package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/ocrerr"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

// Allocate splits total into integer per-specification quotas by largest
// remainder, so the quotas sum to exactly total regardless of how the
// proportions round individually.
func Allocate(total int, specs []*config.BatchSpecification) map[string]int {
	quotas := make(map[string]int, len(specs))
	type remainder struct {
		name string
		frac float64
	}
	remainders := make([]remainder, len(specs))
	assigned := 0
	for i, s := range specs {
		exact := s.Proportion * float64(total)
		base := int(math.Floor(exact))
		quotas[s.Name] = base
		assigned += base
		remainders[i] = remainder{name: s.Name, frac: exact - float64(base)}
	}
	sort.SliceStable(remainders, func(i, j int) bool { return remainders[i].frac > remainders[j].frac })
	for i := 0; i < total-assigned && i < len(remainders); i++ {
		quotas[remainders[i].name]++
	}
	return quotas
}

// SkipRecord explains why one image index never reached the Executor, or
// why the Executor's result for it was discarded.
type SkipRecord struct {
	Index    int
	SpecName string
	Reason   string
}

// TaskResources bundles the per-specification corpus readers and font
// pools BuildTasks needs to resolve a Task's text and font. Both maps are
// keyed by BatchSpecification.Name; every specification in the config must
// have an entry in each.
type TaskResources struct {
	Readers map[string]Reader
	Fonts   map[string]*FontPool
}

// Reader is the subset of corpus.Reader's contract BuildTasks depends on,
// named locally so the scheduler package does not force callers to import
// pkg/corpus just to satisfy TaskResources.
type Reader interface {
	ExtractSegment(minLen, maxLen int, rng *sampler.NamedRNG) (string, error)
}

// BuildTasks materializes the full, stably-indexed task list for cfg: it
// allocates quotas by Allocate, then emits tasks in interleaved
// round-robin order across every specification that still has quota
// remaining, assigning indices serially as each task is emitted. A
// specification whose text extraction fails for a given index produces a
// SkipRecord instead of a Task, but the index is still consumed, so
// on-disk output indices stay stable across reruns with the same config.
func BuildTasks(cfg *config.BatchConfig, res TaskResources) ([]plan.Task, []SkipRecord, error) {
	quotas := Allocate(cfg.TotalImages, cfg.Specifications)
	remaining := make(map[string]int, len(quotas))
	for name, q := range quotas {
		remaining[name] = q
	}

	tasks := make([]plan.Task, 0, cfg.TotalImages)
	var skipped []SkipRecord
	index := 0

	for {
		progressed := false
		for _, spec := range cfg.Specifications {
			if remaining[spec.Name] <= 0 {
				continue
			}
			progressed = true

			task, err := buildOneTask(cfg.Seed, spec, index, res)
			if err != nil {
				skipped = append(skipped, SkipRecord{Index: index, SpecName: spec.Name, Reason: err.Error()})
			} else {
				tasks = append(tasks, task)
			}
			remaining[spec.Name]--
			index++
		}
		if !progressed {
			break
		}
	}
	return tasks, skipped, nil
}

// buildOneTask resolves a text segment and a font for one (spec, index)
// pair. Both draws are seeded from plan.ImageSeed(masterSeed, index,
// spec.Name), so neither draw depends on the order other specifications
// are visited in — the property the index-determinism invariant relies
// on. The extracted text also depends on the position of the
// specification's corpus reader, which earlier extractions advance.
func buildOneTask(masterSeed uint64, spec *config.BatchSpecification, index int, res TaskResources) (plan.Task, error) {
	seed := plan.ImageSeed(masterSeed, index, spec.Name)

	reader := res.Readers[spec.Name]
	if reader == nil {
		return plan.Task{}, ocrerr.New(ocrerr.ResourceMissing, spec.Name, fmt.Errorf("scheduler: no corpus reader for specification %q", spec.Name))
	}
	minLen, maxLen := spec.TextLengthMin, spec.TextLengthMax
	if minLen < 1 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	textRNG := sampler.NewNamedRNG(seed, "scheduler.corpus_source")
	text, err := reader.ExtractSegment(minLen, maxLen, textRNG)
	if err != nil {
		return plan.Task{}, ocrerr.New(ocrerr.CorpusEmpty, spec.Name, err)
	}

	pool := res.Fonts[spec.Name]
	if pool == nil {
		return plan.Task{}, ocrerr.New(ocrerr.ResourceMissing, spec.Name, fmt.Errorf("scheduler: no font pool for specification %q", spec.Name))
	}
	fontRNG := sampler.NewNamedRNG(seed, "scheduler.font_select")
	fontPath, err := pool.Select(fontRNG)
	if err != nil {
		return plan.Task{}, ocrerr.New(ocrerr.ResourceMissing, spec.Name, err)
	}

	return plan.Task{SpecName: spec.Name, Text: text, FontPath: fontPath, ImageIndex: index}, nil
}
