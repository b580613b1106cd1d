package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/corpus"
	"github.com/dshills/ocrsynth/pkg/health"
)

func TestAllocateSumsExactlyToTotal(t *testing.T) {
	specs := []*config.BatchSpecification{
		{Name: "a", Proportion: 0.34},
		{Name: "b", Proportion: 0.33},
		{Name: "c", Proportion: 0.33},
	}
	quotas := Allocate(10, specs)
	sum := 0
	for _, q := range quotas {
		sum += q
	}
	if sum != 10 {
		t.Fatalf("quotas sum to %d, want 10: %v", sum, quotas)
	}
}

func TestAllocateEvenSplitGivesEachSpecAShare(t *testing.T) {
	specs := []*config.BatchSpecification{
		{Name: "a", Proportion: 0.5},
		{Name: "b", Proportion: 0.5},
	}
	quotas := Allocate(3, specs)
	if quotas["a"]+quotas["b"] != 3 {
		t.Fatalf("expected quotas to sum to 3, got %v", quotas)
	}
	if quotas["a"] == 0 || quotas["b"] == 0 {
		t.Fatalf("expected both specs to receive at least one image, got %v", quotas)
	}
}

func newBuildTasksFixture(t *testing.T) (*config.BatchConfig, TaskResources) {
	t.Helper()
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "a.ttf")
	corpusPath := filepath.Join(dir, "corpus.txt")
	writeTempFileT(t, fontPath, "x")
	writeTempFileT(t, corpusPath, "the quick brown fox jumps over the lazy dog repeatedly for testing purposes")

	specA := &config.BatchSpecification{
		Name: "printed", Proportion: 0.5, Direction: config.LTR,
		TextLengthMin: 5, TextLengthMax: 20,
		LineCountMin: 1, LineCountMax: 1, LineBreak: config.BreakWord,
		Alignment: config.AlignLeft,
		Curve:     config.CurveConfig{Type: config.CurveNone},
		Color:     config.ColorConfig{Mode: config.ColorUniform},
		FontSize:  config.Range{Min: 10, Max: 20},
		Font:      config.FontSelector{Glob: filepath.Join(dir, "*.ttf")},
		Corpus:    config.CorpusSelector{File: corpusPath},
	}
	specB := &config.BatchSpecification{
		Name: "handwritten", Proportion: 0.5, Direction: config.LTR,
		TextLengthMin: 5, TextLengthMax: 20,
		LineCountMin: 1, LineCountMax: 1, LineBreak: config.BreakWord,
		Alignment: config.AlignLeft,
		Curve:     config.CurveConfig{Type: config.CurveNone},
		Color:     config.ColorConfig{Mode: config.ColorUniform},
		FontSize:  config.Range{Min: 10, Max: 20},
		Font:      config.FontSelector{Glob: filepath.Join(dir, "*.ttf")},
		Corpus:    config.CorpusSelector{File: corpusPath},
	}

	cfg := &config.BatchConfig{TotalImages: 8, Seed: 7, Specifications: []*config.BatchSpecification{specA, specB}}

	readerA, err := corpus.NewReader([]corpus.Source{{Path: corpusPath, Weight: 1}})
	if err != nil {
		t.Fatalf("building corpus reader: %v", err)
	}
	readerB, err := corpus.NewReader([]corpus.Source{{Path: corpusPath, Weight: 1}})
	if err != nil {
		t.Fatalf("building corpus reader: %v", err)
	}

	tracker := health.NewTracker()
	poolA, err := NewFontPool(specA.Font, tracker)
	if err != nil {
		t.Fatalf("building font pool: %v", err)
	}
	poolB, err := NewFontPool(specB.Font, tracker)
	if err != nil {
		t.Fatalf("building font pool: %v", err)
	}

	res := TaskResources{
		Readers: map[string]Reader{"printed": readerA, "handwritten": readerB},
		Fonts:   map[string]*FontPool{"printed": poolA, "handwritten": poolB},
	}
	return cfg, res
}

func TestBuildTasksInterleavesAndAssignsStableIndices(t *testing.T) {
	cfg, res := newBuildTasksFixture(t)
	tasks, skipped, err := BuildTasks(cfg, res)
	if err != nil {
		t.Fatalf("BuildTasks failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected no skips, got %v", skipped)
	}
	if len(tasks) != cfg.TotalImages {
		t.Fatalf("expected %d tasks, got %d", cfg.TotalImages, len(tasks))
	}
	for i, task := range tasks {
		if task.ImageIndex != i {
			t.Fatalf("task %d has non-serial index %d", i, task.ImageIndex)
		}
	}
	if tasks[0].SpecName == tasks[1].SpecName {
		t.Fatalf("expected round-robin interleaving, got two consecutive %q tasks", tasks[0].SpecName)
	}
}

func TestBuildTasksIsDeterministic(t *testing.T) {
	cfg, res := newBuildTasksFixture(t)
	tasks1, _, err := BuildTasks(cfg, res)
	if err != nil {
		t.Fatalf("first BuildTasks failed: %v", err)
	}

	cfg2, res2 := newBuildTasksFixture(t)
	cfg2.Seed = cfg.Seed
	tasks2, _, err := BuildTasks(cfg2, res2)
	if err != nil {
		t.Fatalf("second BuildTasks failed: %v", err)
	}

	if len(tasks1) != len(tasks2) {
		t.Fatalf("task count differs: %d vs %d", len(tasks1), len(tasks2))
	}
	for i := range tasks1 {
		if tasks1[i] != tasks2[i] {
			t.Fatalf("task %d differs across runs: %+v vs %+v", i, tasks1[i], tasks2[i])
		}
	}
}

func writeTempFileT(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
