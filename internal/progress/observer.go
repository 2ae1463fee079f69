package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Observer は進捗のスナップショットを受け取ります。
type Observer interface {
	Publish(Snapshot)
	Done(Snapshot)
}

type NoopObserver struct{}

func (NoopObserver) Publish(Snapshot) {}
func (NoopObserver) Done(Snapshot)    {}

// ObserverFunc adapts a function to Observer; Done is ignored.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Publish(s Snapshot) { f(s) }
func (ObserverFunc) Done(Snapshot)        {}

type tee []Observer

// Tee fans snapshots out to every non-nil observer.
func Tee(obs ...Observer) Observer {
	var out tee
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return NoopObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (t tee) Publish(s Snapshot) {
	for _, o := range t {
		o.Publish(s)
	}
}

func (t tee) Done(s Snapshot) {
	for _, o := range t {
		o.Done(s)
	}
}

// ShouldShowProgress は --progress / --no-progress と端末判定から表示有無を決めます。
func ShouldShowProgress(force, no bool) bool {
	switch {
	case no:
		return false
	case force:
		return true
	}
	return isTerminal(os.Stdout) && isTerminal(os.Stderr)
}

// NewAutoObserver redraws a single status line on a terminal and writes
// structured log events anywhere else.
func NewAutoObserver(w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return &statusLine{w: w}
	}
	return NewLogObserver(zerolog.New(w).With().Timestamp().Logger())
}

type statusLine struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *statusLine) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.w, "\r\033[K%s", statusText(s))
}

func (o *statusLine) Done(Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = io.WriteString(o.w, "\r\033[K")
}

type logObserver struct {
	log zerolog.Logger
}

// NewLogObserver emits one "progress" event per snapshot.
func NewLogObserver(log zerolog.Logger) Observer {
	return logObserver{log: log}
}

func (o logObserver) Publish(s Snapshot) { o.event(o.log.Info(), s).Msg("progress") }
func (o logObserver) Done(s Snapshot)    { o.event(o.log.Info(), s).Msg("progress done") }

func (logObserver) event(e *zerolog.Event, s Snapshot) *zerolog.Event {
	e = e.Str("stage", string(s.Stage)).Int("done", s.Done).Int("total", s.Total)
	if !s.Warmup {
		e = e.Float64("rate", s.Rate).Dur("eta", s.ETA)
	}
	return e
}

func statusText(s Snapshot) string {
	rate, eta := "--/s", "--:--:--"
	if !s.Warmup {
		if s.Rate > 0 {
			rate = fmt.Sprintf("%.1f/s", s.Rate)
		}
		if s.ETA > 0 {
			eta = clock(s.ETA)
		}
	}
	return fmt.Sprintf("[%s] %3d%% %d/%d files %s ETA %s", s.Stage, s.Percent(), s.Done, s.Total, rate, eta)
}

// clock formats d as hh:mm:ss, capping hours at 99.
func clock(d time.Duration) string {
	sec := max(int(d.Round(time.Second)/time.Second), 0)
	return fmt.Sprintf("%02d:%02d:%02d", min(sec/3600, 99), sec%3600/60, sec%60)
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
