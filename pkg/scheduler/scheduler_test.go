package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/corpus"
	"github.com/dshills/ocrsynth/pkg/executor"
	"github.com/dshills/ocrsynth/pkg/fontengine/fakefont"
	"github.com/dshills/ocrsynth/pkg/health"
	"github.com/dshills/ocrsynth/pkg/plan"
)

func newRunFixture(t *testing.T, totalImages int) (*Scheduler, TaskResources) {
	t.Helper()
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "a.ttf")
	corpusPath := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(fontPath, []byte("x"), 0644); err != nil {
		t.Fatalf("writing font: %v", err)
	}
	if err := os.WriteFile(corpusPath, []byte("the quick brown fox jumps over the lazy dog many times for good measure"), 0644); err != nil {
		t.Fatalf("writing corpus: %v", err)
	}

	spec := &config.BatchSpecification{
		Name: "printed", Proportion: 1.0, Direction: config.LTR,
		TextLengthMin: 5, TextLengthMax: 15,
		LineCountMin: 1, LineCountMax: 1, LineBreak: config.BreakWord,
		Alignment: config.AlignLeft,
		Curve:     config.CurveConfig{Type: config.CurveNone},
		Color:     config.ColorConfig{Mode: config.ColorUniform},
		FontSize:  config.Range{Min: 10, Max: 20},
		Font:      config.FontSelector{Glob: filepath.Join(dir, "*.ttf")},
		Corpus:    config.CorpusSelector{File: corpusPath},
		BackgroundColor: config.BackgroundColor{RGB: [3]uint8{255, 255, 255}},
	}
	cfg := &config.BatchConfig{TotalImages: totalImages, Seed: 99, Specifications: []*config.BatchSpecification{spec}}

	reader, err := corpus.NewReader([]corpus.Source{{Path: corpusPath, Weight: 1}})
	if err != nil {
		t.Fatalf("building corpus reader: %v", err)
	}
	fontTracker := health.NewTracker()
	pool, err := NewFontPool(spec.Font, fontTracker)
	if err != nil {
		t.Fatalf("building font pool: %v", err)
	}
	res := TaskResources{
		Readers: map[string]Reader{"printed": reader},
		Fonts:   map[string]*FontPool{"printed": pool},
	}

	outputDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		t.Fatalf("creating output dir: %v", err)
	}

	planner := plan.NewPlanner(cfg.Seed, nil)
	gen := executor.NewGenerator(&fakefont.Engine{}, nil)
	sched := New(cfg, planner, gen, fontTracker, nil, Options{
		GenerationWorkers: 4,
		IOWorkers:         2,
		ChunkSize:         3,
		IOBatchSize:       2,
		OutputDir:         outputDir,
	})
	return sched, res
}

func TestRunGeneratesQuotaAndWritesOutputs(t *testing.T) {
	sched, res := newRunFixture(t, 7)
	summary, err := sched.Run(context.Background(), res)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Generated != summary.TotalQuota {
		t.Fatalf("expected to generate the full quota, got %d/%d (skipped: %v)", summary.Generated, summary.TotalQuota, summary.Skipped)
	}
	for i := 0; i < summary.TotalQuota; i++ {
		imgPath := filepath.Join(sched.Opts.OutputDir, fileName(i, "png"))
		if _, err := os.Stat(imgPath); err != nil {
			t.Fatalf("expected image %d to exist: %v", i, err)
		}
		labelPath := filepath.Join(sched.Opts.OutputDir, fileName(i, "json"))
		if _, err := os.Stat(labelPath); err != nil {
			t.Fatalf("expected label %d to exist: %v", i, err)
		}
	}
	if _, err := os.Stat(sched.Opts.CheckpointPath); err != nil {
		t.Fatalf("expected checkpoint to exist: %v", err)
	}
}

func TestRunResumeSkipsCompletedIndices(t *testing.T) {
	sched, res := newRunFixture(t, 5)
	if _, err := sched.Run(context.Background(), res); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	sched2, res2 := newRunFixture(t, 5)
	sched2.Opts.OutputDir = sched.Opts.OutputDir
	sched2.Opts.CheckpointPath = sched.Opts.CheckpointPath
	sched2.Opts.Resume = true

	summary, err := sched2.Run(context.Background(), res2)
	if err != nil {
		t.Fatalf("resumed Run failed: %v", err)
	}
	if summary.Generated != 0 {
		t.Fatalf("expected zero new outputs on a fully-completed resume, got %d", summary.Generated)
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	sched, res := newRunFixture(t, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := sched.Run(ctx, res)
	if err != nil {
		t.Fatalf("Run returned an unexpected error: %v", err)
	}
	if !summary.Cancelled {
		t.Fatal("expected Cancelled to be true for an already-cancelled context")
	}
	if summary.Generated != 0 {
		t.Fatalf("expected no images generated after immediate cancellation, got %d", summary.Generated)
	}
}

func fileName(index int, ext string) string {
	return fmt.Sprintf("image_%05d.%s", index, ext)
}
