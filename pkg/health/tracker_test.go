package health

import (
	"errors"
	"testing"
	"time"
)

func TestRecordSuccessCapsAtHundred(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 200; i++ {
		tr.RecordSuccess("fontA")
	}
	h, ok := tr.Get("fontA")
	if !ok || h.Score != 100 {
		t.Fatalf("score = %v, want 100", h.Score)
	}
}

func TestRecordFailureLowersScoreAndOpensCooldown(t *testing.T) {
	clock := time.Unix(1000, 0)
	tr := NewTracker(WithClock(func() time.Time { return clock }))
	tr.RecordFailure("fontA", "glyph_miss")
	h, _ := tr.Get("fontA")
	if h.Score != 90 {
		t.Fatalf("score = %v, want 90", h.Score)
	}
	if h.ConsecutiveFailures != 1 {
		t.Fatalf("consecutive failures = %d, want 1", h.ConsecutiveFailures)
	}
	if !h.CooldownUntil.After(clock) {
		t.Fatal("expected cooldown to extend past now")
	}
}

func TestSelectExcludesUnhealthyResources(t *testing.T) {
	clock := time.Unix(1000, 0)
	tr := NewTracker(WithClock(func() time.Time { return clock }))
	for i := 0; i < 6; i++ {
		tr.RecordFailure("badfont", "glyph_miss")
	}
	_, err := tr.Select([]Candidate{{ID: "badfont", Weight: 1}}, 0.5)
	if !errors.Is(err, ErrNoHealthyResource) {
		t.Fatalf("err = %v, want ErrNoHealthyResource", err)
	}
}

func TestSelectIsDeterministicGivenDraw(t *testing.T) {
	tr := NewTracker()
	candidates := []Candidate{{ID: "a", Weight: 1}, {ID: "b", Weight: 1}}
	id1, err := tr.Select(candidates, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := tr.Select(candidates, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("same draw produced different selections: %s vs %s", id1, id2)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	tr := NewTracker()
	tr.RecordSuccess("a")
	tr.RecordFailure("b", "io")
	snap := tr.Snapshot()

	tr2 := NewTracker()
	tr2.Restore(snap)
	ha, _ := tr.Get("a")
	hb, _ := tr.Get("b")
	ha2, _ := tr2.Get("a")
	hb2, _ := tr2.Get("b")
	if ha != ha2 || hb != hb2 {
		t.Fatal("restored tracker does not match snapshot source")
	}
}

func TestSelectNoCandidates(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Select(nil, 0.5)
	if !errors.Is(err, ErrNoHealthyResource) {
		t.Fatalf("err = %v, want ErrNoHealthyResource", err)
	}
}
