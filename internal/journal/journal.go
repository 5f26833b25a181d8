// Package journal implements the local mood journal: an append-only log of
// user-entered ratings, persisted locally and mirrored upstream best-effort.
package journal

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mindwell/mindwell/internal/models"
	"github.com/mindwell/mindwell/internal/prefs"
)

// Recorder abstracts the upstream mood endpoint. The remote write is
// advisory only: the local entry is authoritative and never rolled back.
type Recorder interface {
	AddMoodRecord(ctx context.Context, mood models.MoodLevel, note string) error
}

// Journal is the local mood log. Every mutation rewrites the full list
// snapshot in durable storage.
type Journal struct {
	store    *prefs.Store
	recorder Recorder
	now      func() time.Time

	mu      sync.Mutex
	entries []models.MoodEntry

	// mirrors tracks in-flight upstream writes so short-lived callers can
	// wait for them before exiting.
	mirrors sync.WaitGroup
}

// Opts holds parameters for creating a Journal.
type Opts struct {
	Store *prefs.Store
	// Recorder is optional; a nil recorder skips the upstream mirror.
	Recorder Recorder
	Now      func() time.Time
}

// New creates a Journal, loading any previously persisted entries.
func New(opts Opts) (*Journal, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("journal: store is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	j := &Journal{
		store:    opts.Store,
		recorder: opts.Recorder,
		now:      opts.Now,
	}

	var entries []models.MoodEntry
	if _, err := opts.Store.GetJSON(prefs.KeyMoodEntries, &entries); err != nil {
		return nil, fmt.Errorf("journal: load entries: %w", err)
	}
	sort.Slice(entries, func(i, k int) bool { return entries[i].Date.After(entries[k].Date) })
	j.entries = entries
	return j, nil
}

// Add creates a new entry with the current timestamp, persists the list,
// and fires a best-effort upstream write. Remote failures are logged only.
func (j *Journal) Add(ctx context.Context, rating int, note string) (models.MoodEntry, error) {
	if rating < 1 || rating > 5 {
		return models.MoodEntry{}, fmt.Errorf("journal: rating %d out of range 1-5", rating)
	}

	entry := models.MoodEntry{
		ID:     uuid.NewString(),
		Rating: rating,
		Note:   note,
		Date:   j.now(),
	}

	j.mu.Lock()
	j.entries = append([]models.MoodEntry{entry}, j.entries...)
	err := j.persistLocked()
	j.mu.Unlock()
	if err != nil {
		return models.MoodEntry{}, err
	}

	if j.recorder != nil {
		j.mirrors.Add(1)
		go func() {
			defer j.mirrors.Done()
			if err := j.recorder.AddMoodRecord(ctx, entry.Mood(), note); err != nil {
				log.Printf("journal: upstream mood write failed: %v", err)
			}
		}()
	}
	return entry, nil
}

// Flush blocks until in-flight upstream mirror attempts finish, or until ctx
// expires. A one-shot process calls this before exiting so the best-effort
// write actually leaves the machine; the outcome of the write itself is
// still only logged.
func (j *Journal) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		j.mirrors.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("journal: flush: %w", ctx.Err())
	}
}

// Delete removes an entry and re-persists the list. No remote call is made.
func (j *Journal) Delete(id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i, e := range j.entries {
		if e.ID == id {
			j.entries = append(j.entries[:i], j.entries[i+1:]...)
			return j.persistLocked()
		}
	}
	return fmt.Errorf("journal: entry not found: %s", id)
}

// List returns entries within the period's calendar window, newest first.
func (j *Journal) List(period models.Period) []models.MoodEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	out := make([]models.MoodEntry, 0, len(j.entries))
	for _, e := range j.entries {
		if period.Contains(e.Date, now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Date.After(out[k].Date) })
	return out
}

// GoodDaysCount counts entries rated 4 or higher within the period.
func (j *Journal) GoodDaysCount(period models.Period) int {
	count := 0
	for _, e := range j.List(period) {
		if e.Rating >= 4 {
			count++
		}
	}
	return count
}

// StreakDays counts consecutive calendar days, ending today, with at least
// one journal entry each.
func (j *Journal) StreakDays() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.entries) == 0 {
		return 0
	}

	byDay := make(map[time.Time]bool, len(j.entries))
	for _, e := range j.entries {
		byDay[dayOf(e.Date)] = true
	}

	streak := 0
	day := dayOf(j.now())
	for byDay[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// persistLocked rewrites the full entry list. Caller holds j.mu.
func (j *Journal) persistLocked() error {
	if err := j.store.SetJSON(prefs.KeyMoodEntries, j.entries); err != nil {
		return fmt.Errorf("journal: persist entries: %w", err)
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
