package health

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyResource is returned by Select when no candidate passes the
// eligibility filter. The caller (the Scheduler) treats this as a skip,
// never as a failure of the resource that was being evaluated.
var ErrNoHealthyResource = errors.New("health: no healthy resource available")

// defaultThreshold is the minimum score a resource must hold to remain
// eligible for selection.
const defaultThreshold = 50.0

// baseCooldown is the cooldown duration applied after a resource's first
// consecutive failure; it doubles with each additional consecutive
// failure up to maxCooldown.
const baseCooldown = 2 * time.Second

// maxCooldown caps the exponential backoff so a resource is never locked
// out indefinitely by a long failure streak.
const maxCooldown = 5 * time.Minute

// Health is the externally observable state of one tracked resource.
type Health struct {
	ResourceID          string
	Score               float64
	ConsecutiveFailures int
	CooldownUntil       time.Time
	LastErrorKind       string
}

// eligible reports whether h currently passes the threshold and cooldown
// filter at the given instant.
func (h *Health) eligible(now time.Time, threshold float64) bool {
	return h.Score >= threshold && !now.Before(h.CooldownUntil)
}

// Tracker is a mutex-guarded table of per-resource Health records. The
// zero value is not usable; construct with NewTracker.
type Tracker struct {
	mu        sync.Mutex
	resources map[string]*Health
	threshold float64
	now       func() time.Time
}

// Option configures a Tracker at construction time.
type Option func(*Tracker)

// WithThreshold overrides the default eligibility score threshold (50).
func WithThreshold(t float64) Option {
	return func(tr *Tracker) { tr.threshold = t }
}

// WithClock overrides the wall-clock source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(tr *Tracker) { tr.now = now }
}

// NewTracker creates an empty Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		resources: make(map[string]*Health),
		threshold: defaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// getOrCreate returns the Health record for id, creating it at score 100
// on first use. Caller must hold t.mu.
func (t *Tracker) getOrCreate(id string) *Health {
	h, ok := t.resources[id]
	if !ok {
		h = &Health{ResourceID: id, Score: 100}
		t.resources[id] = h
	}
	return h
}

// RecordSuccess raises id's score by one (capped at 100) and clears its
// consecutive failure streak.
func (t *Tracker) RecordSuccess(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.getOrCreate(id)
	h.Score = min(100, h.Score+1)
	h.ConsecutiveFailures = 0
}

// RecordFailure lowers id's score by ten (floored at 0), increments its
// consecutive failure count, and opens a cooldown window of
// baseCooldown * 2^(consecutiveFailures-1), capped at maxCooldown.
func (t *Tracker) RecordFailure(id string, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.getOrCreate(id)
	h.Score = max(0, h.Score-10)
	h.ConsecutiveFailures++
	h.LastErrorKind = kind

	shift := h.ConsecutiveFailures - 1
	if shift > 20 {
		shift = 20 // guard against overflow in the bit shift below
	}
	backoff := baseCooldown * time.Duration(1<<uint(shift))
	if backoff > maxCooldown || backoff <= 0 {
		backoff = maxCooldown
	}
	h.CooldownUntil = t.now().Add(backoff)
}

// Candidate is one selectable resource together with a caller-supplied
// pattern weight (for example, the weight attached to the glob pattern
// that matched it).
type Candidate struct {
	ID     string
	Weight float64
}

// Select restricts candidates to those with score >= threshold and an
// elapsed cooldown, then draws one with probability proportional to
// weight * score. Resources never seen before are treated as freshly
// created at score 100 for the purposes of this call (without being
// persisted until recorded). draw is a uniform [0,1) random value
// supplied by the caller's per-image RNG so that selection stays
// deterministic under the plan seed.
func (t *Tracker) Select(candidates []Candidate, draw float64) (string, error) {
	t.mu.Lock()
	now := t.now()
	type scored struct {
		id     string
		weight float64
	}
	var eligible []scored
	for _, c := range candidates {
		h, ok := t.resources[c.ID]
		if !ok {
			eligible = append(eligible, scored{c.ID, c.Weight * 100})
			continue
		}
		if h.eligible(now, t.threshold) {
			eligible = append(eligible, scored{c.ID, c.Weight * h.Score})
		}
	}
	t.mu.Unlock()

	if len(eligible) == 0 {
		return "", ErrNoHealthyResource
	}

	total := 0.0
	for _, e := range eligible {
		total += e.weight
	}
	if total <= 0 {
		// All eligible weights collapsed to zero; fall back to uniform pick
		// over the eligible set rather than failing the task outright.
		idx := int(draw * float64(len(eligible)))
		if idx >= len(eligible) {
			idx = len(eligible) - 1
		}
		return eligible[idx].id, nil
	}
	target := draw * total
	cumulative := 0.0
	for _, e := range eligible {
		cumulative += e.weight
		if target < cumulative {
			return e.id, nil
		}
	}
	return eligible[len(eligible)-1].id, nil
}

// Snapshot returns a serializable copy of the current table, for
// persistence to font_health.state / background_scores.state.
func (t *Tracker) Snapshot() []Health {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Health, 0, len(t.resources))
	for _, h := range t.resources {
		out = append(out, *h)
	}
	return out
}

// Restore rehydrates the table from a previously captured Snapshot,
// replacing any existing entries with the same ResourceID.
func (t *Tracker) Restore(snapshot []Health) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range snapshot {
		copy := h
		t.resources[h.ResourceID] = &copy
	}
}

// Get returns a copy of the current Health for id and whether it exists.
func (t *Tracker) Get(id string) (Health, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.resources[id]
	if !ok {
		return Health{}, false
	}
	return *h, true
}
