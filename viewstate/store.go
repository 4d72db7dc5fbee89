package viewstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/preferences"
)

// Config wires a Store for a single table.
type Config struct {
	Table      types.TableConfig
	Repository types.ViewPreferenceRepository
	Notifier   types.Notifier
	Logger     types.Logger
	Clock      types.Clock
}

// Store reconciles the persisted preference record for one (user, table)
// with the in-memory grid state. Mutations are applied to the latest state
// under a single lock and then persisted as a full record.
type Store struct {
	table    types.TableConfig
	repo     types.ViewPreferenceRepository
	notifier types.Notifier
	logger   types.Logger
	clock    types.Clock

	mu       sync.Mutex
	state    types.ViewPreferences
	loaded   bool
	loadedAt time.Time
	// version counts applied mutations so a reload never replaces them.
	version uint64

	// writeMu orders upserts so the last write carries the newest state.
	writeMu  sync.Mutex
	inFlight atomic.Int32
}

// New constructs a Store holding the table defaults until Load runs.
func New(cfg Config) (*Store, error) {
	if cfg.Repository == nil {
		return nil, types.ErrMissingPreferenceRepository
	}
	if !cfg.Table.Table.Valid() {
		return nil, types.ErrUnknownTable
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = types.NopNotifier{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Store{
		table:    cfg.Table,
		repo:     cfg.Repository,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		state:    cfg.Table.Defaults(),
	}, nil
}

// Table returns the table this store reads and writes.
func (s *Store) Table() types.Table {
	return s.table.Table
}

// Defaults returns the configuration-derived preferences.
func (s *Store) Defaults() types.ViewPreferences {
	return s.table.Defaults()
}

// State returns a copy of the current in-memory preferences.
func (s *Store) State() types.ViewPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Loaded reports whether a Load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LoadedAt returns when the state was last read from the repository.
func (s *Store) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}

// Saving reports whether any write is in flight.
func (s *Store) Saving() bool {
	return s.inFlight.Load() > 0
}

// Load resolves the persisted record into the current state. Unauthenticated
// sessions get the table defaults. A fetch failure returns an error and leaves
// the state and the loaded flag untouched, so an unloaded store never writes
// defaults over a record it could not read. Mutations applied while the fetch
// was running are kept.
func (s *Store) Load(ctx context.Context, session types.Session) (types.ViewPreferences, error) {
	defaults := s.table.Defaults()
	if !session.Authenticated() {
		s.mu.Lock()
		s.state = defaults
		s.markLoaded()
		out := s.state.Clone()
		s.mu.Unlock()
		return out, nil
	}

	s.mu.Lock()
	version := s.version
	busy := s.loaded && s.inFlight.Load() > 0
	s.mu.Unlock()
	if busy {
		return s.State(), nil
	}

	record, err := s.repo.GetViewPreferences(ctx, session.UserID, s.table.Table)
	if err != nil {
		s.logger.Error("view preferences load failed", err,
			"user_id", session.UserID.String(),
			"table", string(s.table.Table))
		return s.State(), fmt.Errorf("viewstate: load %s: %w", s.table.Table, err)
	}
	next := defaults
	resolution, err := preferences.Resolve(defaults, record)
	if err != nil {
		s.logger.Error("view preferences resolve failed", err,
			"user_id", session.UserID.String(),
			"table", string(s.table.Table))
	} else {
		next = resolution.Preferences
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && (s.version != version || s.inFlight.Load() > 0) {
		s.markLoaded()
		return s.state.Clone(), nil
	}
	s.state = next
	s.markLoaded()
	return s.state.Clone(), nil
}

func (s *Store) markLoaded() {
	s.loaded = true
	s.loadedAt = s.clock.Now()
}

// SavePreferences merges patch into the latest state and persists the result.
func (s *Store) SavePreferences(ctx context.Context, session types.Session, patch types.Patch) error {
	return s.update(ctx, session, func(types.ViewPreferences) (types.Patch, error) {
		return patch, nil
	})
}

// SetColumnOrder replaces the column order.
func (s *Store) SetColumnOrder(ctx context.Context, session types.Session, order []string) error {
	order = append([]string{}, order...)
	return s.SavePreferences(ctx, session, types.Patch{ColumnOrder: &order})
}

// MoveColumn moves the column at index from to index to. Equal or
// out-of-range indexes leave the state untouched and write nothing.
func (s *Store) MoveColumn(ctx context.Context, session types.Session, from, to int) error {
	return s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		n := len(current.ColumnOrder)
		if from == to || from < 0 || to < 0 || from >= n || to >= n {
			return types.Patch{}, errNoChange
		}
		order := append([]string{}, current.ColumnOrder...)
		col := order[from]
		order = append(order[:from], order[from+1:]...)
		order = append(order[:to], append([]string{col}, order[to:]...)...)
		return types.Patch{ColumnOrder: &order}, nil
	})
}

// ToggleColumnVisibility flips membership of col in the hidden set.
func (s *Store) ToggleColumnVisibility(ctx context.Context, session types.Session, col string) error {
	if strings.TrimSpace(col) == "" {
		return types.ErrColumnRequired
	}
	return s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		hidden := make([]string, 0, len(current.HiddenColumns)+1)
		removed := false
		for _, existing := range current.HiddenColumns {
			if existing == col {
				removed = true
				continue
			}
			hidden = append(hidden, existing)
		}
		if !removed {
			hidden = append(hidden, col)
		}
		return types.Patch{HiddenColumns: &hidden}, nil
	})
}

// SetColumnWidth merges a single column width into the width map.
func (s *Store) SetColumnWidth(ctx context.Context, session types.Session, col string, width float64) error {
	if strings.TrimSpace(col) == "" {
		return types.ErrColumnRequired
	}
	if width <= 0 {
		return types.ErrInvalidColumnWidth
	}
	return s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		widths := make(map[string]float64, len(current.ColumnWidths)+1)
		for k, v := range current.ColumnWidths {
			widths[k] = v
		}
		widths[col] = width
		return types.Patch{ColumnWidths: &widths}, nil
	})
}

// SetSort sets the sort column and direction.
func (s *Store) SetSort(ctx context.Context, session types.Session, col string, dir types.SortDirection) error {
	if strings.TrimSpace(col) == "" {
		return types.ErrColumnRequired
	}
	return s.SavePreferences(ctx, session, types.Patch{SortColumn: &col, SortDirection: &dir})
}

// SetFilter sets a filter value. An empty value removes the key.
func (s *Store) SetFilter(ctx context.Context, session types.Session, col, value string) error {
	if strings.TrimSpace(col) == "" {
		return types.ErrColumnRequired
	}
	return s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		filters := make(map[string]string, len(current.ActiveFilters)+1)
		for k, v := range current.ActiveFilters {
			filters[k] = v
		}
		if value == "" {
			delete(filters, col)
		} else {
			filters[col] = value
		}
		return types.Patch{ActiveFilters: &filters}, nil
	})
}

// ClearFilters removes every active filter.
func (s *Store) ClearFilters(ctx context.Context, session types.Session) error {
	filters := map[string]string{}
	return s.SavePreferences(ctx, session, types.Patch{ActiveFilters: &filters})
}

// SetRowsPerPage sets the page size.
func (s *Store) SetRowsPerPage(ctx context.Context, session types.Session, n int) error {
	return s.SavePreferences(ctx, session, types.Patch{RowsPerPage: &n})
}

// ResetToDefault replaces the whole state, saved views included, with the
// table defaults and persists it.
func (s *Store) ResetToDefault(ctx context.Context, session types.Session) error {
	if !session.Authenticated() {
		return nil
	}
	if err := s.SavePreferences(ctx, session, types.FullPatch(s.table.Defaults())); err != nil {
		return err
	}
	s.notifier.Notify(ctx, types.ResetNotification())
	return nil
}

var errNoChange = errors.New("viewstate: no change")

// update computes a patch from the latest state, applies it optimistically
// and persists the result. The patch function runs under the state lock.
func (s *Store) update(ctx context.Context, session types.Session, fn func(types.ViewPreferences) (types.Patch, error)) error {
	if !session.Authenticated() {
		return nil
	}
	if err := s.ensureLoaded(ctx, session); err != nil {
		return err
	}
	s.mu.Lock()
	patch, err := fn(s.state)
	if err == nil {
		err = patch.Validate()
	}
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	s.state = patch.Apply(s.state)
	s.version++
	s.inFlight.Add(1)
	s.mu.Unlock()

	return s.persist(ctx, session)
}

// ensureLoaded reads the record before the first write so the full-record
// upsert starts from persisted data rather than defaults.
func (s *Store) ensureLoaded(ctx context.Context, session types.Session) error {
	if s.Loaded() {
		return nil
	}
	_, err := s.Load(ctx, session)
	return err
}

func (s *Store) persist(ctx context.Context, session types.Session) error {
	defer s.inFlight.Add(-1)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.repo.UpsertViewPreferences(ctx, types.ViewPreferenceRecord{
		UserID:      session.UserID,
		Table:       s.table.Table,
		Preferences: s.State(),
	})
	if err != nil {
		s.logger.Error("view preferences save failed", err,
			"user_id", session.UserID.String(),
			"table", string(s.table.Table))
		s.notifier.Notify(ctx, types.SaveFailedNotification())
		return err
	}
	return nil
}
