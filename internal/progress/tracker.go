package progress

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Stage は走査の段階です。ファイル一覧の取得後に scan へ移ります。
type Stage string

const (
	StageList Stage = "list"
	StageScan Stage = "scan"
)

// Snapshot is one progress report. Rate is files per second.
type Snapshot struct {
	Stage   Stage         `json:"stage"`
	Total   int           `json:"total"`
	Done    int           `json:"done"`
	Rate    float64       `json:"rate_per_sec"`
	ETA     time.Duration `json:"eta"`
	Warmup  bool          `json:"warmup"`
	Elapsed time.Duration `json:"elapsed"`
}

// Remaining returns how many files are left; never negative.
func (s Snapshot) Remaining() int {
	return max(s.Total-s.Done, 0)
}

// Percent returns Done/Total clamped to [0,100].
func (s Snapshot) Percent() int {
	switch {
	case s.Done <= 0:
		return 0
	case s.Total <= 0:
		return 100
	}
	return min(s.Done*100/s.Total, 100)
}

const (
	defaultInterval = 250 * time.Millisecond
	warmupFiles     = 20
	warmupTime      = 2 * time.Second
	emaAlpha        = 0.2
	sampleCap       = 64
)

// Tracker counts finished files and forwards throttled snapshots to an
// Observer. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	obs      Observer
	now      func() time.Time
	interval time.Duration

	stage    Stage
	total    int
	done     int
	started  time.Time
	last     time.Time
	notified time.Time
	ema      float64
	samples  []float64
	next     int
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithInterval sets the minimum gap between two published snapshots.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) { t.interval = d }
}

func NewTracker(total int, obs Observer, opts ...Option) *Tracker {
	t := &Tracker{obs: obs, now: time.Now, interval: defaultInterval, stage: StageList, total: total}
	if t.obs == nil {
		t.obs = NoopObserver{}
	}
	for _, o := range opts {
		o(t)
	}
	t.started = t.now()
	t.last = t.started
	return t
}

// Begin switches to stage and publishes immediately if it changed.
func (t *Tracker) Begin(stage Stage) {
	t.mu.Lock()
	if stage == t.stage {
		t.mu.Unlock()
		return
	}
	t.stage = stage
	t.ema, t.samples, t.next = 0, t.samples[:0], 0
	now := t.now()
	t.notified = now
	snap := t.snapshotLocked(now)
	t.mu.Unlock()
	t.obs.Publish(snap)
}

// Step records n finished files. A snapshot is published once per interval
// and always for the last file.
func (t *Tracker) Step(n int) Snapshot {
	t.mu.Lock()
	now := t.now()
	if n > 0 {
		t.record(n, now)
	}
	snap := t.snapshotLocked(now)
	publish := n > 0 && (now.Sub(t.notified) >= t.interval || snap.Remaining() == 0)
	if publish {
		t.notified = now
	}
	t.mu.Unlock()
	if publish {
		t.obs.Publish(snap)
	}
	return snap
}

// Finish marks every file done and reports the final snapshot to Done.
func (t *Tracker) Finish() Snapshot {
	t.mu.Lock()
	t.done = max(t.done, t.total)
	snap := t.snapshotLocked(t.now())
	t.mu.Unlock()
	t.obs.Done(snap)
	return snap
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(t.now())
}

func (t *Tracker) record(n int, now time.Time) {
	if now.Before(t.last) {
		now = t.last
	}
	dt := max(now.Sub(t.last).Seconds(), 1e-6)
	t.last = now
	t.done += n

	rate := float64(n) / dt
	if math.IsInf(rate, 0) || math.IsNaN(rate) {
		return
	}
	if t.ema == 0 {
		t.ema = rate
	} else {
		t.ema = emaAlpha*rate + (1-emaAlpha)*t.ema
	}
	if len(t.samples) < sampleCap {
		t.samples = append(t.samples, rate)
		return
	}
	t.samples[t.next] = rate
	t.next = (t.next + 1) % sampleCap
}

// median of the recent per-step rates; the EMA is used while there are none.
func (t *Tracker) median() float64 {
	if len(t.samples) == 0 {
		return t.ema
	}
	s := append([]float64(nil), t.samples...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func (t *Tracker) snapshotLocked(now time.Time) Snapshot {
	elapsed := now.Sub(t.started)
	snap := Snapshot{
		Stage:   t.stage,
		Total:   t.total,
		Done:    t.done,
		Rate:    t.ema,
		Warmup:  t.done < warmupFiles || elapsed < warmupTime,
		Elapsed: elapsed,
	}
	if !snap.Warmup {
		snap.ETA = etaFor(snap.Remaining(), t.median())
	}
	return snap
}

func etaFor(remaining int, rate float64) time.Duration {
	if remaining <= 0 || rate <= 0 {
		return 0
	}
	sec := float64(remaining) / rate
	if sec > math.MaxInt64/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(sec * float64(time.Second))
}
