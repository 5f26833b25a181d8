// Package payment implements the mock purchase flow for session credits.
// Purchases are recorded locally; the upstream confirmation is best-effort.
package payment

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mindwell/mindwell/internal/prefs"
)

// Package is a purchasable bundle of session credits.
type Package struct {
	ID       string
	Name     string
	Details  string
	Price    float64
	Display  string
	Sessions int
	Popular  bool
}

// Catalog is the fixed set of offered packages.
var Catalog = []Package{
	{
		ID:       "sessions_5pack",
		Name:     "Starter pack",
		Details:  "Get to know your AI counselor",
		Price:    2000,
		Display:  "2000 ₽",
		Sessions: 5,
	},
	{
		ID:       "sessions_7pack",
		Name:     "Popular choice",
		Details:  "Best balance of price and value",
		Price:    2500,
		Display:  "2500 ₽",
		Sessions: 7,
		Popular:  true,
	},
	{
		ID:       "sessions_10pack",
		Name:     "Best value",
		Details:  "More sessions, bigger savings",
		Price:    3000,
		Display:  "3000 ₽",
		Sessions: 10,
	},
}

// Record is one completed mock purchase.
type Record struct {
	PackageID string    `json:"packageId"`
	Name      string    `json:"name"`
	Sessions  int       `json:"sessions"`
	Price     string    `json:"price"`
	Date      time.Time `json:"date"`
}

// Confirmer abstracts the upstream payment endpoint.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, packageIndex int) (string, error)
}

// Manager runs the mock purchase flow against local storage.
type Manager struct {
	store     *prefs.Store
	confirmer Confirmer
	now       func() time.Time
}

// Opts holds parameters for creating a Manager.
type Opts struct {
	Store *prefs.Store
	// Confirmer is optional; a nil confirmer skips the upstream call.
	Confirmer Confirmer
	Now       func() time.Time
}

// New creates a Manager.
func New(opts Opts) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("payment: store is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{store: opts.Store, confirmer: opts.Confirmer, now: opts.Now}, nil
}

// Find returns the catalog package with the given id.
func Find(id string) (Package, bool) {
	for _, p := range Catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// Purchase credits the local balance with the package's sessions, records
// the purchase, and confirms upstream best-effort. The local credit is
// authoritative; a failed confirmation is logged only.
func (m *Manager) Purchase(ctx context.Context, packageID string) (Record, error) {
	idx := -1
	var pkg Package
	for i, p := range Catalog {
		if p.ID == packageID {
			idx, pkg = i, p
			break
		}
	}
	if idx < 0 {
		return Record{}, fmt.Errorf("payment: unknown package %q", packageID)
	}

	balance, err := m.store.GetInt(prefs.KeyLocalSessionBalance)
	if err != nil {
		return Record{}, err
	}
	if err := m.store.SetInt(prefs.KeyLocalSessionBalance, balance+int64(pkg.Sessions)); err != nil {
		return Record{}, err
	}

	rec := Record{
		PackageID: pkg.ID,
		Name:      pkg.Name,
		Sessions:  pkg.Sessions,
		Price:     pkg.Display,
		Date:      m.now(),
	}
	history, err := m.History()
	if err != nil {
		return Record{}, err
	}
	history = append(history, rec)
	if err := m.store.SetJSON(prefs.KeyPurchaseHistory, history); err != nil {
		return Record{}, fmt.Errorf("payment: record purchase: %w", err)
	}

	if m.confirmer != nil {
		if url, err := m.confirmer.ConfirmPayment(ctx, idx); err != nil {
			log.Printf("payment: upstream confirmation failed: %v", err)
		} else if url != "" {
			log.Printf("payment: upstream payment URL: %s", url)
		}
	}
	return rec, nil
}

// LocalBalance returns the locally credited session count.
func (m *Manager) LocalBalance() (int, error) {
	v, err := m.store.GetInt(prefs.KeyLocalSessionBalance)
	return int(v), err
}

// History returns all recorded purchases, oldest first.
func (m *Manager) History() ([]Record, error) {
	var history []Record
	if _, err := m.store.GetJSON(prefs.KeyPurchaseHistory, &history); err != nil {
		return nil, fmt.Errorf("payment: load history: %w", err)
	}
	return history, nil
}

// Restore recomputes the local balance from the purchase history, the mock
// analog of restoring completed transactions.
func (m *Manager) Restore() (int, error) {
	history, err := m.History()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, rec := range history {
		if rec.Sessions > 0 {
			total += rec.Sessions
		}
	}
	if err := m.store.SetInt(prefs.KeyLocalSessionBalance, int64(total)); err != nil {
		return 0, err
	}
	return total, nil
}

// Reset clears the local balance and purchase history.
func (m *Manager) Reset() error {
	if err := m.store.Delete(prefs.KeyLocalSessionBalance); err != nil {
		return err
	}
	return m.store.Delete(prefs.KeyPurchaseHistory)
}
