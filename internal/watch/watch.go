// Package watch periodically refreshes the session history and reports
// changes, keeping a long-running terminal session warm the way a
// foregrounded app would.
package watch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mindwell/mindwell/internal/history"
)

// DefaultInterval is the refresh cadence when no cron expression is set.
const DefaultInterval = 15 * time.Minute

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Watcher drives periodic history refreshes and writes change reports.
type Watcher struct {
	store    *history.Store
	out      io.Writer
	interval time.Duration
	sched    cron.Schedule
	now      func() time.Time

	mu        sync.Mutex
	lastCount int
	lastErr   string
	seeded    bool
}

// Opts holds parameters for creating a Watcher.
type Opts struct {
	Store *history.Store
	Out   io.Writer
	// Interval between refreshes; ignored when Cron is set.
	Interval time.Duration
	// Cron is an optional 5-field cron expression overriding Interval.
	Cron string
	Now  func() time.Time
}

// New creates a Watcher.
func New(opts Opts) (*Watcher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("watch: store is required")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	w := &Watcher{
		store:    opts.Store,
		out:      opts.Out,
		interval: opts.Interval,
		now:      opts.Now,
	}
	if opts.Cron != "" {
		sched, err := cronParser.Parse(opts.Cron)
		if err != nil {
			return nil, fmt.Errorf("watch: parse cron %q: %w", opts.Cron, err)
		}
		w.sched = sched
	}
	return w, nil
}

// Run refreshes immediately, then on each tick until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	sub := w.store.Subscribe(w.observe)
	defer w.store.Unsubscribe(sub)

	w.store.EnsureDataLoaded(ctx)

	for {
		timer := time.NewTimer(w.nextWait())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			w.store.RefreshData(ctx)
		}
	}
}

// nextWait returns the duration until the next refresh.
func (w *Watcher) nextWait() time.Duration {
	if w.sched == nil {
		return w.interval
	}
	d := w.sched.Next(w.now()).Sub(w.now())
	if d <= 0 {
		d = time.Second
	}
	return d
}

// observe receives store snapshots and reports transitions. Loading states
// are skipped; only settled snapshots produce output.
func (w *Watcher) observe(snap history.Snapshot) {
	if snap.Loading {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ts := w.now().Format("15:04:05")

	if snap.Err != "" {
		if snap.Err != w.lastErr {
			fmt.Fprintf(w.out, "[%s] refresh failed: %s\n", ts, snap.Err)
		}
		w.lastErr = snap.Err
		return
	}
	w.lastErr = ""

	count := len(snap.Sessions)
	switch {
	case !w.seeded:
		fmt.Fprintf(w.out, "[%s] watching; %d sessions on record\n", ts, count)
	case count > w.lastCount:
		fmt.Fprintf(w.out, "[%s] %d new session(s), %d total\n", ts, count-w.lastCount, count)
	case count < w.lastCount:
		fmt.Fprintf(w.out, "[%s] history shrank to %d sessions\n", ts, count)
	}
	w.seeded = true
	w.lastCount = count
}
