package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/google/uuid"
)

// RegistryConfig wires a Registry.
type RegistryConfig struct {
	Tables     map[types.Table]types.TableConfig
	Repository types.ViewPreferenceRepository
	Notifier   types.Notifier
	Logger     types.Logger
	Clock      types.Clock
	// MaxAge is how long a retained store serves its state before the next
	// Store call reads the record again. Zero uses DefaultStoreMaxAge.
	MaxAge time.Duration
}

// DefaultStoreMaxAge bounds how stale a retained store can be when another
// process or tab writes the same record.
const DefaultStoreMaxAge = 30 * time.Second

// Registry keeps one loaded Store per (user, table).
type Registry struct {
	cfg RegistryConfig

	mu      sync.Mutex
	entries map[registryKey]*registryEntry
}

type registryKey struct {
	user  uuid.UUID
	table types.Table
}

type registryEntry struct {
	store *Store
	// loading serializes fetches for the entry.
	loading sync.Mutex
}

// NewRegistry constructs a registry. Missing table configs fall back to the
// built-in defaults.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Repository == nil {
		return nil, types.ErrMissingPreferenceRepository
	}
	tables := types.DefaultTableConfigs()
	for table, tableCfg := range cfg.Tables {
		tableCfg.Table = table
		tables[table] = tableCfg
	}
	cfg.Tables = tables
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultStoreMaxAge
	}
	return &Registry{
		cfg:     cfg,
		entries: make(map[registryKey]*registryEntry),
	}, nil
}

// TableConfig returns the configuration used for table.
func (r *Registry) TableConfig(table types.Table) (types.TableConfig, bool) {
	cfg, ok := r.cfg.Tables[table]
	return cfg, ok
}

// Store returns the loaded store for the session and table, reading the
// record again once the store is older than MaxAge. A store whose first load
// fails is discarded and the error returned, so no write can start from
// defaults. A failed refresh keeps serving the previously loaded state.
// Unauthenticated sessions receive a fresh defaults-only store that is not
// retained.
func (r *Registry) Store(ctx context.Context, session types.Session, table types.Table) (*Store, error) {
	tableCfg, ok := r.cfg.Tables[table]
	if !ok {
		return nil, types.ErrUnknownTable
	}
	if !session.Authenticated() {
		store, err := r.newStore(tableCfg)
		if err != nil {
			return nil, err
		}
		if _, err := store.Load(ctx, session); err != nil {
			return nil, err
		}
		return store, nil
	}

	key := registryKey{user: session.UserID, table: table}
	entry, err := r.entry(key, tableCfg)
	if err != nil {
		return nil, err
	}
	if err := r.load(ctx, key, entry, session, false); err != nil {
		return nil, err
	}
	return entry.store, nil
}

// Reload reads the record again regardless of age, e.g. after another tab
// wrote.
func (r *Registry) Reload(ctx context.Context, session types.Session, table types.Table) (*Store, error) {
	store, err := r.Store(ctx, session, table)
	if err != nil || !session.Authenticated() {
		return store, err
	}
	key := registryKey{user: session.UserID, table: table}
	r.mu.Lock()
	entry, ok := r.entries[key]
	r.mu.Unlock()
	if !ok || entry.store != store {
		return store, nil
	}
	if err := r.load(ctx, key, entry, session, true); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *Registry) entry(key registryKey, tableCfg types.TableConfig) (*registryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[key]; ok {
		return entry, nil
	}
	store, err := r.newStore(tableCfg)
	if err != nil {
		return nil, err
	}
	entry := &registryEntry{store: store}
	r.entries[key] = entry
	return entry, nil
}

func (r *Registry) load(ctx context.Context, key registryKey, entry *registryEntry, session types.Session, force bool) error {
	entry.loading.Lock()
	defer entry.loading.Unlock()

	store := entry.store
	if store.Loaded() && !force && r.cfg.Clock.Now().Sub(store.LoadedAt()) < r.cfg.MaxAge {
		return nil
	}
	if _, err := store.Load(ctx, session); err != nil {
		if store.Loaded() {
			return nil
		}
		r.drop(key, entry)
		return err
	}
	return nil
}

func (r *Registry) drop(key registryKey, entry *registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.entries[key]; ok && current == entry {
		delete(r.entries, key)
	}
}

// Evict drops every store held for the user and returns how many were removed.
func (r *Registry) Evict(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key := range r.entries {
		if key.user == userID {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of retained stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) newStore(tableCfg types.TableConfig) (*Store, error) {
	return New(Config{
		Table:      tableCfg,
		Repository: r.cfg.Repository,
		Notifier:   r.cfg.Notifier,
		Logger:     r.cfg.Logger,
		Clock:      r.cfg.Clock,
	})
}
