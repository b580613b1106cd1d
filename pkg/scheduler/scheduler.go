package scheduler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/ocrsynth/pkg/canvas"
	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/executor"
	"github.com/dshills/ocrsynth/pkg/health"
	"github.com/dshills/ocrsynth/pkg/imagecodec"
	"github.com/dshills/ocrsynth/pkg/label"
	"github.com/dshills/ocrsynth/pkg/ocrerr"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
	"github.com/dshills/ocrsynth/pkg/textlayout"
)

// Options configures one Scheduler run. Zero values are replaced with the
// spec's stated defaults by setDefaults.
type Options struct {
	GenerationWorkers int           // G
	IOWorkers         int           // W
	ChunkSize         int           // C, default 100
	IOBatchSize       int
	RetryBudget       int
	OutputDir         string
	CheckpointPath    string // default <OutputDir>/.generation_checkpoint
	Resume            bool
	WallClockBudget   time.Duration // 0 = unbounded
}

func (o *Options) setDefaults() {
	if o.GenerationWorkers <= 0 {
		o.GenerationWorkers = 8
	}
	if o.IOWorkers <= 0 {
		o.IOWorkers = 4
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 100
	}
	if o.IOBatchSize <= 0 {
		o.IOBatchSize = 10
	}
	if o.RetryBudget <= 0 {
		o.RetryBudget = 3
	}
	if o.CheckpointPath == "" {
		o.CheckpointPath = filepath.Join(o.OutputDir, ".generation_checkpoint")
	}
}

// Summary reports the outcome of one Run: how many images were produced
// against the allocated quota, which indices were skipped and why, and
// whether the run ended early due to cancellation.
type Summary struct {
	TotalQuota     int
	Generated      int
	Skipped        []SkipRecord
	Cancelled      bool
	CheckpointWarn string // non-empty if a resumed checkpoint's config hash mismatched
}

// Scheduler drives one batch's generation from Config to on-disk outputs.
type Scheduler struct {
	Config            *config.BatchConfig
	Planner           *plan.Planner
	Generator         *executor.Generator
	FontTracker       *health.Tracker
	BackgroundTracker *health.Tracker
	Opts              Options
}

// New builds a Scheduler and wires gen's background-outcome callback to
// bgTracker, so a background classified as undersized during rendering
// feeds back into the tracker's scoring. bgTracker may be nil if no
// specification in the batch uses backgrounds.
func New(cfg *config.BatchConfig, planner *plan.Planner, gen *executor.Generator, fontTracker, bgTracker *health.Tracker, opts Options) *Scheduler {
	opts.setDefaults()
	if bgTracker != nil {
		gen.OnBackgroundOutcome = func(path string, class canvas.BackgroundClass) {
			canvas.RecordBackgroundHealth(bgTracker, path, class)
		}
	}
	return &Scheduler{
		Config:            cfg,
		Planner:           planner,
		Generator:         gen,
		FontTracker:       fontTracker,
		BackgroundTracker: bgTracker,
		Opts:              opts,
	}
}

// taskResult is one completed image, still held in memory pending I/O.
type taskResult struct {
	Task   plan.Task
	Record *label.GenerationRecord
	Image  *image.RGBA
}

// Run builds the task list, then processes it chunk by chunk: each
// chunk's tasks Plan + Execute on a bounded worker pool, successful
// results are saved by a bounded I/O pool, and a checkpoint is flushed
// after every chunk. At most one chunk's worth of images is held in
// memory at a time.
func (s *Scheduler) Run(ctx context.Context, resources TaskResources) (*Summary, error) {
	quotas := Allocate(s.Config.TotalImages, s.Config.Specifications)
	totalQuota := 0
	for _, q := range quotas {
		totalQuota += q
	}

	tasks, preSkipped, err := BuildTasks(s.Config, resources)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalQuota: totalQuota, Skipped: preSkipped}

	completed := make(map[int]bool)
	if s.Opts.Resume {
		ckpt, err := LoadCheckpoint(s.Opts.CheckpointPath)
		if err != nil {
			return nil, err
		}
		if ckpt != nil {
			if ckpt.ConfigHash != s.Config.HashUint64() {
				summary.CheckpointWarn = "resumed checkpoint's config hash does not match the current configuration"
			}
			for _, idx := range ckpt.Completed {
				completed[idx] = true
			}
		}
	}

	pending := tasks[:0:0]
	for _, t := range tasks {
		if !completed[t.ImageIndex] {
			pending = append(pending, t)
		}
	}

	if s.Opts.WallClockBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Opts.WallClockBudget)
		defer cancel()
	}

	specByName := make(map[string]*config.BatchSpecification, len(s.Config.Specifications))
	for _, sp := range s.Config.Specifications {
		specByName[sp.Name] = sp
	}

	for start := 0; start < len(pending); start += s.Opts.ChunkSize {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		end := start + s.Opts.ChunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		results, chunkSkips := s.runChunk(ctx, chunk, specByName, resources)
		summary.Skipped = append(summary.Skipped, chunkSkips...)

		saved, ioSkips, ioErr := s.saveResults(results)
		summary.Generated += saved
		summary.Skipped = append(summary.Skipped, ioSkips...)
		if ioErr != nil {
			return summary, ioErr
		}

		for _, r := range results {
			if r != nil {
				completed[r.Task.ImageIndex] = true
			}
		}
		for _, sk := range chunkSkips {
			completed[sk.Index] = true
		}

		if err := s.writeCheckpoint(completed); err != nil {
			return summary, err
		}

		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
	}

	return summary, nil
}

// runChunk plans and executes every task in chunk on a worker pool
// bounded to Opts.GenerationWorkers. Results are written into an
// index-aligned slice, so on-disk output order never depends on which
// worker finished first.
func (s *Scheduler) runChunk(ctx context.Context, chunk []plan.Task, specByName map[string]*config.BatchSpecification, resources TaskResources) ([]*taskResult, []SkipRecord) {
	results := make([]*taskResult, len(chunk))
	var mu sync.Mutex
	var skips []SkipRecord

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Opts.GenerationWorkers)

	for i, task := range chunk {
		i, task := i, task
		g.Go(func() error {
			rec, img, skip := s.runTaskWithRetry(gctx, task, specByName, resources)
			if skip != nil {
				mu.Lock()
				skips = append(skips, *skip)
				mu.Unlock()
				return nil
			}
			results[i] = &taskResult{Task: task, Record: rec, Image: img}
			return nil
		})
	}
	// Worker goroutines never return a hard error: every failure is
	// classified into a SkipRecord instead, so Wait only ever reports
	// context cancellation, which the caller already checks separately.
	_ = g.Wait()
	return results, skips
}

// runTaskWithRetry plans and executes task, retrying with a freshly
// selected font on a retryable classified failure up to Opts.RetryBudget
// times before giving up and reporting a skip.
func (s *Scheduler) runTaskWithRetry(ctx context.Context, task plan.Task, specByName map[string]*config.BatchSpecification, resources TaskResources) (*label.GenerationRecord, *image.RGBA, *SkipRecord) {
	spec, ok := specByName[task.SpecName]
	if !ok {
		return nil, nil, &SkipRecord{Index: task.ImageIndex, SpecName: task.SpecName, Reason: "unknown specification"}
	}

	current := task
	for attempt := 0; attempt <= s.Opts.RetryBudget; attempt++ {
		pl, err := s.Planner.Plan(current, spec)
		if err != nil {
			return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: err.Error()}
		}

		img, boxes, manifest, placement, err := s.Generator.GenerateFromPlan(ctx, pl)
		if err == nil {
			if s.FontTracker != nil {
				s.FontTracker.RecordSuccess(current.FontPath)
			}
			return buildRecord(pl, boxes, manifest, placement, img), img, nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: "cancelled"}
		}

		var oe *ocrerr.Error
		if !errors.As(err, &oe) {
			return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: err.Error()}
		}
		if s.FontTracker != nil {
			s.FontTracker.RecordFailure(current.FontPath, string(oe.Kind))
		}
		if !oe.Kind.Retryable() || attempt == s.Opts.RetryBudget {
			return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: oe.Error()}
		}

		pool := resources.Fonts[current.SpecName]
		if pool == nil {
			return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: "no font pool available for retry"}
		}
		retryRNG := sampler.NewNamedRNG(pl.Seed, fmt.Sprintf("scheduler.retry.%d", attempt))
		newFont, err := pool.Select(retryRNG)
		if err != nil {
			return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: fmt.Sprintf("no healthy font for retry: %v", err)}
		}
		current.FontPath = newFont
	}
	return nil, nil, &SkipRecord{Index: current.ImageIndex, SpecName: current.SpecName, Reason: "retry budget exhausted"}
}

// buildRecord assembles the label written alongside an image from the
// Plan that produced it plus the values only known after execution.
func buildRecord(pl *plan.Plan, boxes []label.CharacterBox, manifest label.AugmentationManifest, placement image.Point, img *image.RGBA) *label.GenerationRecord {
	lines, err := textlayout.BreakIntoLines(pl.Text, pl.NumLines, pl.LineBreak)
	if err != nil {
		lines = []string{pl.Text}
	}
	b := img.Bounds()
	return &label.GenerationRecord{
		Plan:                 pl,
		ResolvedLines:        lines,
		CanvasWidth:          b.Dx(),
		CanvasHeight:         b.Dy(),
		TextSurfaceX:         float64(placement.X),
		TextSurfaceY:         float64(placement.Y),
		CharBoxes:            boxes,
		AppliedAugmentations: manifest,
		OutputImagePath:      fmt.Sprintf("image_%05d.png", pl.ImageIndex),
	}
}

// saveResults writes every non-nil result's image and label to disk,
// Opts.IOBatchSize at a time, on a pool bounded to Opts.IOWorkers.
// IOError is retried inline up to Opts.RetryBudget times before being
// surfaced as fatal, per the error-handling design's "IOError: per-task
// retryable N times then fatal" contract.
func (s *Scheduler) saveResults(results []*taskResult) (saved int, skips []SkipRecord, fatalErr error) {
	var mu sync.Mutex
	for start := 0; start < len(results); start += s.Opts.IOBatchSize {
		end := start + s.Opts.IOBatchSize
		if end > len(results) {
			end = len(results)
		}
		batch := results[start:end]

		g := new(errgroup.Group)
		g.SetLimit(s.Opts.IOWorkers)
		for _, r := range batch {
			if r == nil {
				continue
			}
			r := r
			g.Go(func() error {
				if err := s.saveOne(r); err != nil {
					return err
				}
				mu.Lock()
				saved++
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return saved, skips, err
		}
	}
	return saved, skips, nil
}

// saveOne writes one image/label pair, retrying a failing write up to
// Opts.RetryBudget times before giving up on this index.
func (s *Scheduler) saveOne(r *taskResult) error {
	imgPath := filepath.Join(s.Opts.OutputDir, r.Record.OutputImagePath)
	labelPath := filepath.Join(s.Opts.OutputDir, fmt.Sprintf("image_%05d.json", r.Task.ImageIndex))

	var lastErr error
	for attempt := 0; attempt <= s.Opts.RetryBudget; attempt++ {
		if err := imagecodec.SavePNG(r.Image, imgPath); err != nil {
			lastErr = err
			continue
		}
		if err := r.Record.SaveJSONToFile(labelPath); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return ocrerr.New(ocrerr.IOError, imgPath, lastErr)
}

// writeCheckpoint atomically persists every completed index seen so far.
func (s *Scheduler) writeCheckpoint(completed map[int]bool) error {
	indices := make([]int, 0, len(completed))
	for idx := range completed {
		indices = append(indices, idx)
	}
	return SaveCheckpoint(s.Opts.CheckpointPath, Checkpoint{
		ConfigHash: s.Config.HashUint64(),
		Completed:  indices,
	})
}
