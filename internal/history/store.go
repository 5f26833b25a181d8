// Package history owns the authoritative session list synced from the
// backend: a time-boxed cache, derived statistics, and typed change
// notifications for consuming views.
package history

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mindwell/mindwell/internal/gateway"
	"github.com/mindwell/mindwell/internal/models"
)

// DefaultCacheTTL is the session-history cache window.
const DefaultCacheTTL = 300 * time.Second

// Gateway abstracts the backend calls the store needs, enabling test fakes.
type Gateway interface {
	FetchSessions(ctx context.Context) ([]models.Session, error)
	AddMoodRecord(ctx context.Context, mood models.MoodLevel, note string) error
	OpenSession(ctx context.Context) (*models.SessionInfo, error)
}

// Snapshot is the externally visible state of the store, delivered to
// subscribers on every completion. Slices are copies; observers may keep them.
type Snapshot struct {
	Sessions []models.Session
	Loading  bool
	Err      string
	LastLoad time.Time
}

// Store caches the remote session list. It is constructed explicitly and
// injected where needed; there is no package-level instance. All state
// mutations happen under one mutex, so observers always see a consistent
// snapshot (the serialized-mutation rule).
type Store struct {
	gw  Gateway
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions []models.Session
	loading  bool
	errMsg   string
	lastLoad time.Time // zero means never loaded, cache cold

	// fetchSeq tags each started fetch; only the completion carrying the
	// current token is applied. Latest request wins.
	fetchSeq uint64

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// Opts holds parameters for creating a Store.
type Opts struct {
	Gateway  Gateway
	CacheTTL time.Duration    // default DefaultCacheTTL
	Now      func() time.Time // injectable clock for tests
}

// New creates a Store.
func New(opts Opts) (*Store, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("history: gateway is required")
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		gw:          opts.Gateway,
		ttl:         opts.CacheTTL,
		now:         opts.Now,
		subscribers: make(map[int]func(Snapshot)),
	}, nil
}

// Subscribe registers fn to receive a Snapshot after every completed load
// and after ClearLocalData. The returned id releases the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	s.subscribers[s.nextSubID] = fn
	return s.nextSubID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// EnsureDataLoaded triggers a fetch only when needed: first load when the
// store is cold, refresh when the cache has expired, otherwise nothing.
// Safe to call on every view appearance.
func (s *Store) EnsureDataLoaded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return
	}
	switch {
	case len(s.sessions) == 0 && s.lastLoad.IsZero():
		s.startFetchLocked(ctx)
	case !s.cacheValidLocked():
		s.startFetchLocked(ctx)
	}
}

// RefreshData unconditionally invalidates the cache, clears current data and
// error, and starts a fetch. A second call while a fetch is in flight is
// ignored.
func (s *Store) RefreshData(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		log.Printf("history: refresh ignored, fetch already in flight")
		return
	}
	s.lastLoad = time.Time{}
	s.sessions = nil
	s.errMsg = ""
	s.startFetchLocked(ctx)
}

// ClearLocalData resets the store on logout. Any in-flight fetch completing
// afterwards is discarded by the sequence token.
func (s *Store) ClearLocalData() {
	s.mu.Lock()
	s.sessions = nil
	s.lastLoad = time.Time{}
	s.errMsg = ""
	s.loading = false
	s.fetchSeq++
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// AddSession records a mood entry upstream and refreshes on success.
func (s *Store) AddSession(ctx context.Context, mood models.MoodLevel, note string) error {
	if err := s.gw.AddMoodRecord(ctx, mood, note); err != nil {
		s.mu.Lock()
		s.errMsg = "could not save the session, check your internet connection"
		snap := s.snapshotLocked()
		subs := s.subscribersLocked()
		s.mu.Unlock()
		for _, fn := range subs {
			fn(snap)
		}
		return fmt.Errorf("history: add session: %w", err)
	}
	s.RefreshData(ctx)
	return nil
}

// StartChatSession opens (or resumes) a chat session. When the session is
// new and a mood is supplied, the mood is recorded; an existing session just
// refreshes the list.
func (s *Store) StartChatSession(ctx context.Context, mood *models.MoodLevel, note string) (*models.SessionInfo, error) {
	info, err := s.gw.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: open session: %w", err)
	}
	if info.IsNew {
		if mood != nil {
			if err := s.AddSession(ctx, *mood, note); err != nil {
				return info, err
			}
		}
	} else {
		s.RefreshData(ctx)
	}
	return info, nil
}

// startFetchLocked begins an asynchronous load. Caller holds s.mu.
func (s *Store) startFetchLocked(ctx context.Context) {
	s.loading = true
	s.errMsg = ""
	s.fetchSeq++
	seq := s.fetchSeq

	go func() {
		sessions, err := s.gw.FetchSessions(ctx)
		s.complete(seq, sessions, err)
	}()
}

// complete applies a fetch result. Stale completions (an intervening
// refresh, clear, or newer fetch bumped the token) are discarded.
func (s *Store) complete(seq uint64, sessions []models.Session, err error) {
	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		log.Printf("history: discarding stale fetch completion")
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = classifyError(err)
		// Prior good data stays visible on failure.
	} else {
		sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
		s.sessions = sessions
		s.lastLoad = s.now()
		s.errMsg = ""
	}
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// cacheValidLocked reports whether the last successful load is fresh enough.
func (s *Store) cacheValidLocked() bool {
	if s.lastLoad.IsZero() {
		return false
	}
	return s.now().Sub(s.lastLoad) < s.ttl
}

func (s *Store) snapshotLocked() Snapshot {
	sessions := make([]models.Session, len(s.sessions))
	copy(sessions, s.sessions)
	return Snapshot{
		Sessions: sessions,
		Loading:  s.loading,
		Err:      s.errMsg,
		LastLoad: s.lastLoad,
	}
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// classifyError maps a gateway failure to the short user-facing message.
func classifyError(err error) string {
	switch gateway.ErrKind(err) {
	case gateway.KindUnauthorized:
		return "please sign in again"
	case gateway.KindNetworkConnectivity:
		return "no internet connection"
	case gateway.KindNetworkTimeout:
		return "server not responding"
	default:
		return fmt.Sprintf("failed to load session data: %v", err)
	}
}
