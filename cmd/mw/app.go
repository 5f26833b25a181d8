package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mindwell/mindwell/internal/config"
	"github.com/mindwell/mindwell/internal/gateway"
	"github.com/mindwell/mindwell/internal/history"
	"github.com/mindwell/mindwell/internal/journal"
	"github.com/mindwell/mindwell/internal/prefs"
)

const defaultConfigPath = "mindwell.yaml"

// fallbackConfig is used when no config file exists: a local mock backend
// on the default devserver port.
const fallbackConfig = `server:
  base_url: http://localhost:8080/API
`

// app bundles the long-lived pieces every command needs: config, the local
// store, and an authenticated gateway client.
type app struct {
	cfg   *config.Config
	store *prefs.Store
	gw    *gateway.Client
}

// openApp loads config (falling back to local-devserver defaults when the
// file is absent), opens the prefs store, and builds a gateway client seeded
// with any saved login.
func openApp(configPath string) (*app, error) {
	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Parse([]byte(fallbackConfig))
	}
	if err != nil {
		return nil, err
	}

	store, err := prefs.Open(prefs.Config{Path: cfg.Storage.Path})
	if err != nil {
		return nil, err
	}

	var token, id string
	if _, err := store.GetJSON(prefs.KeyAuthToken, &token); err != nil {
		store.Close()
		return nil, err
	}
	if _, err := store.GetJSON(prefs.KeyAuthID, &id); err != nil {
		store.Close()
		return nil, err
	}

	gw, err := gateway.New(gateway.Opts{
		BaseURL:         cfg.Server.BaseURL,
		Timeout:         time.Duration(cfg.Server.TimeoutSec) * time.Second,
		ResourceTimeout: time.Duration(cfg.Server.ResourceTimeoutSec) * time.Second,
		AuthToken:       token,
		AuthID:          id,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &app{cfg: cfg, store: store, gw: gw}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) history() (*history.Store, error) {
	return history.New(history.Opts{
		Gateway:  a.gw,
		CacheTTL: time.Duration(a.cfg.Cache.TTLSec) * time.Second,
	})
}

func (a *app) journal() (*journal.Journal, error) {
	return journal.New(journal.Opts{Store: a.store, Recorder: a.gw})
}

// loadHistory triggers a load and blocks until the first settled snapshot.
func loadHistory(ctx context.Context, store *history.Store) (history.Snapshot, error) {
	done := make(chan history.Snapshot, 1)
	sub := store.Subscribe(func(snap history.Snapshot) {
		if snap.Loading {
			return
		}
		select {
		case done <- snap:
		default:
		}
	})
	defer store.Unsubscribe(sub)

	store.EnsureDataLoaded(ctx)

	// A fresh cache means no fetch was started and no completion will ever
	// arrive; the current snapshot is already the settled state.
	if snap := store.Snapshot(); !snap.Loading {
		if snap.Err != "" {
			return snap, fmt.Errorf("%s", snap.Err)
		}
		return snap, nil
	}

	select {
	case snap := <-done:
		if snap.Err != "" {
			return snap, fmt.Errorf("%s", snap.Err)
		}
		return snap, nil
	case <-ctx.Done():
		return history.Snapshot{}, ctx.Err()
	}
}

// refreshHistory is loadHistory with an unconditional cache bypass.
func refreshHistory(ctx context.Context, store *history.Store) (history.Snapshot, error) {
	done := make(chan history.Snapshot, 1)
	sub := store.Subscribe(func(snap history.Snapshot) {
		if snap.Loading {
			return
		}
		select {
		case done <- snap:
		default:
		}
	})
	defer store.Unsubscribe(sub)

	store.RefreshData(ctx)

	select {
	case snap := <-done:
		if snap.Err != "" {
			return snap, fmt.Errorf("%s", snap.Err)
		}
		return snap, nil
	case <-ctx.Done():
		return history.Snapshot{}, ctx.Err()
	}
}
