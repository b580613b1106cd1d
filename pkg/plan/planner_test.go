package plan

import (
	"testing"

	"github.com/dshills/ocrsynth/pkg/config"
)

func basicSpec(name string) *config.BatchSpecification {
	return &config.BatchSpecification{
		Name:         name,
		Proportion:   1.0,
		Direction:    config.LTR,
		LineCountMin: 1,
		LineCountMax: 3,
		LineBreak:    config.BreakWord,
		LineSpacing:  config.Range{Min: 1.0, Max: 1.5},
		Alignment:    config.AlignLeft,
		FontSize:     config.Range{Min: 12, Max: 48},
		Curve:        config.CurveConfig{Type: config.CurveNone},
		Color:        config.ColorConfig{Mode: config.ColorUniform, RGBMax: [3]uint8{255, 255, 255}},
		Placement:    config.PlaceCenter,
		MinPadding:   config.Range{Min: 2, Max: 10},
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	spec := basicSpec("body")
	task := Task{SpecName: "body", Text: "hello world", FontPath: "font.ttf", ImageIndex: 7}

	p1 := NewPlanner(42, nil)
	p2 := NewPlanner(42, nil)

	a, err := p1.Plan(task, spec)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	b, err := p2.Plan(task, spec)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if a.Seed != b.Seed {
		t.Fatalf("seeds diverged: %d vs %d", a.Seed, b.Seed)
	}
	if a.FontSize != b.FontSize || a.NumLines != b.NumLines || a.LineSpacing != b.LineSpacing {
		t.Fatalf("sampled fields diverged between identically-seeded planners:\n%+v\n%+v", a, b)
	}
}

func TestPlanDiffersByImageIndex(t *testing.T) {
	spec := basicSpec("body")
	p := NewPlanner(42, nil)

	a, err := p.Plan(Task{SpecName: "body", Text: "x", FontPath: "f.ttf", ImageIndex: 0}, spec)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	b, err := p.Plan(Task{SpecName: "body", Text: "x", FontPath: "f.ttf", ImageIndex: 1}, spec)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if a.Seed == b.Seed {
		t.Fatal("two distinct image indices produced the same seed")
	}
}

func TestPlanCurveZeroWhenNone(t *testing.T) {
	spec := basicSpec("body")
	p := NewPlanner(1, nil)
	pl, err := p.Plan(Task{SpecName: "body", Text: "x", FontPath: "f.ttf", ImageIndex: 0}, spec)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if pl.Curve.Type != config.CurveNone {
		t.Fatalf("Curve.Type = %q, want none", pl.Curve.Type)
	}
	if pl.Curve.Radius != 0 || pl.Curve.Amplitude != 0 {
		t.Fatalf("curve params should stay zero when type=none, got %+v", pl.Curve)
	}
}

func TestPlanFontSizeWithinRange(t *testing.T) {
	spec := basicSpec("body")
	p := NewPlanner(9, nil)
	for i := 0; i < 50; i++ {
		pl, err := p.Plan(Task{SpecName: "body", Text: "x", FontPath: "f.ttf", ImageIndex: i}, spec)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		if pl.FontSize < spec.FontSize.Min || pl.FontSize > spec.FontSize.Max {
			t.Fatalf("font size %v out of range [%v,%v]", pl.FontSize, spec.FontSize.Min, spec.FontSize.Max)
		}
		if pl.NumLines < spec.LineCountMin || pl.NumLines > spec.LineCountMax {
			t.Fatalf("num lines %d out of range [%d,%d]", pl.NumLines, spec.LineCountMin, spec.LineCountMax)
		}
	}
}

func TestPlanBatchUnknownSpecification(t *testing.T) {
	p := NewPlanner(1, nil)
	_, err := p.PlanBatch([]Task{{SpecName: "missing", ImageIndex: 0}}, map[string]*config.BatchSpecification{})
	if err == nil {
		t.Fatal("expected error for unknown specification")
	}
}

func TestPlanBatchMatchesIndividualPlan(t *testing.T) {
	spec := basicSpec("body")
	specs := map[string]*config.BatchSpecification{"body": spec}
	tasks := []Task{
		{SpecName: "body", Text: "a", FontPath: "f.ttf", ImageIndex: 0},
		{SpecName: "body", Text: "b", FontPath: "f.ttf", ImageIndex: 1},
	}
	p := NewPlanner(123, nil)
	batch, err := p.PlanBatch(tasks, specs)
	if err != nil {
		t.Fatalf("PlanBatch: %v", err)
	}
	for i, task := range tasks {
		single, err := p.Plan(task, spec)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		if batch[i].Seed != single.Seed || batch[i].FontSize != single.FontSize {
			t.Fatalf("batch result %d diverged from individual Plan call", i)
		}
	}
}

func TestContrastingBackgroundPicksOppositeEndpoint(t *testing.T) {
	dark := contrastingBackground([][3]uint8{{10, 10, 10}})
	if dark != [3]uint8{255, 255, 255} {
		t.Fatalf("dark text background = %v, want white", dark)
	}
	light := contrastingBackground([][3]uint8{{245, 245, 245}})
	if light != [3]uint8{0, 0, 0} {
		t.Fatalf("light text background = %v, want black", light)
	}
}

func TestPlanAutoBackgroundContrastsAgainstText(t *testing.T) {
	spec := basicSpec("body")
	spec.BackgroundColor.Auto = true
	spec.Color = config.ColorConfig{Mode: config.ColorUniform, RGBMin: [3]uint8{10, 10, 10}, RGBMax: [3]uint8{10, 10, 10}}

	p := NewPlanner(7, nil)
	pl, err := p.Plan(Task{SpecName: "body", Text: "hi", FontPath: "f.ttf", ImageIndex: 0}, spec)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !pl.Color.AutoBG {
		t.Fatal("AutoBG should mirror spec.BackgroundColor.Auto")
	}
	if pl.Color.Background != [3]uint8{255, 255, 255} {
		t.Fatalf("Background = %v, want white against near-black text", pl.Color.Background)
	}
}
