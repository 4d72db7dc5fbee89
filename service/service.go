package service

import (
	"context"
	"time"

	"github.com/cynergists/go-viewprefs/command"
	"github.com/cynergists/go-viewprefs/notify"
	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/preferences"
	"github.com/cynergists/go-viewprefs/query"
	"github.com/cynergists/go-viewprefs/viewstate"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

// Service is the entry point for go-viewprefs. It wires the preference
// repository, the per-session store registry, hooks, and the command/query
// facades supplied to transports.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	registry     *viewstate.Registry
	history      types.ChangeHistory
	prefResolver PreferenceResolver
}

// Commands exposes the service command handlers.
type Commands struct {
	PreferencesPatch *command.PreferencesPatchCommand
	PreferencesReset *command.PreferencesResetCommand
	ColumnToggle     *command.ColumnToggleCommand
	ColumnWidth      *command.ColumnWidthCommand
	ColumnMove       *command.ColumnMoveCommand
	FilterSet        *command.FilterSetCommand
	FiltersClear     *command.FiltersClearCommand
	RowsPerPage      *command.RowsPerPageCommand
	Sort             *command.SortCommand
	ViewSave         *command.ViewSaveCommand
	ViewLoad         *command.ViewLoadCommand
	ViewDelete       *command.ViewDeleteCommand
	DefaultViewSet   *command.DefaultViewSetCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	ViewState      *query.ViewStateQuery
	Resolution     *query.ResolutionQuery
	History        *query.ChangeHistoryQuery
	HistorySummary *query.ChangeSummaryQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun-backed or cached repositories, notifiers, hooks, etc.).
type Config struct {
	PreferenceRepository types.ViewPreferenceRepository
	PreferenceResolver   PreferenceResolver
	Tables               map[types.Table]types.TableConfig
	Notifier             types.Notifier
	ChangeRecorder       types.ChangeRecorder
	ChangeHistory        types.ChangeHistory
	FeatureGate          featuregate.FeatureGate
	Hooks                types.Hooks
	Clock                types.Clock
	IDGenerator          types.IDGenerator
	Logger               types.Logger
	// StoreMaxAge bounds how long a loaded table state is served before it is
	// read again. Zero uses viewstate.DefaultStoreMaxAge.
	StoreMaxAge time.Duration
}

// PreferenceResolver resolves persisted preferences for queries.
type PreferenceResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, table types.Table) (types.Resolution, error)
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	history := norm.ChangeHistory
	if history == nil {
		if reader, ok := norm.ChangeRecorder.(types.ChangeHistory); ok {
			history = reader
		}
	}

	var registry *viewstate.Registry
	prefResolver := norm.PreferenceResolver
	if norm.PreferenceRepository != nil {
		reg, err := viewstate.NewRegistry(viewstate.RegistryConfig{
			Tables:     norm.Tables,
			Repository: norm.PreferenceRepository,
			Notifier:   norm.Notifier,
			Logger:     norm.Logger,
			Clock:      norm.Clock,
			MaxAge:     norm.StoreMaxAge,
		})
		if err != nil {
			norm.Logger.Error("go-viewprefs: store registry initialization failed", err)
		} else {
			registry = reg
		}
		if prefResolver == nil {
			resolver, err := preferences.NewResolver(preferences.ResolverConfig{
				Repository: norm.PreferenceRepository,
				Tables:     tableConfigs(registry),
			})
			if err != nil {
				norm.Logger.Error("go-viewprefs: preference resolver initialization failed", err)
			} else {
				prefResolver = resolver
			}
		}
	}

	s := &Service{
		cfg:          norm,
		registry:     registry,
		history:      history,
		prefResolver: prefResolver,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.ContextNotifier{
			Fallback: notify.LogNotifier{Logger: cfg.Logger},
		}
	}
	return cfg
}

func tableConfigs(registry *viewstate.Registry) map[types.Table]types.TableConfig {
	if registry == nil {
		return nil
	}
	tables := make(map[types.Table]types.TableConfig, len(types.Tables()))
	for _, table := range types.Tables() {
		if cfg, ok := registry.TableConfig(table); ok {
			tables[table] = cfg
		}
	}
	return tables
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Registry returns the per-session store registry, or nil when the service
// has no preference repository.
func (s *Service) Registry() *viewstate.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Evict drops every cached store for userID, typically on logout. It returns
// the number of stores removed.
func (s *Service) Evict(userID uuid.UUID) int {
	if s == nil || s.registry == nil {
		return 0
	}
	return s.registry.Evict(userID)
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.PreferenceRepository != nil &&
		s.registry != nil &&
		s.prefResolver != nil
}

// HealthCheck surfaces missing configuration so transports can fail fast.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.cfg.PreferenceRepository == nil {
		return types.ErrMissingPreferenceRepository
	}
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	return nil
}

func (s *Service) stores() command.StoreProvider {
	if s.registry == nil {
		return nil
	}
	return s.registry
}

func (s *Service) buildCommands() Commands {
	cfg := command.ViewCommandConfig{
		Stores:      s.stores(),
		Hooks:       s.cfg.Hooks,
		Changes:     s.cfg.ChangeRecorder,
		FeatureGate: s.cfg.FeatureGate,
		Clock:       s.cfg.Clock,
		Logger:      s.cfg.Logger,
	}
	return Commands{
		PreferencesPatch: command.NewPreferencesPatchCommand(cfg),
		PreferencesReset: command.NewPreferencesResetCommand(cfg),
		ColumnToggle:     command.NewColumnToggleCommand(cfg),
		ColumnWidth:      command.NewColumnWidthCommand(cfg),
		ColumnMove:       command.NewColumnMoveCommand(cfg),
		FilterSet:        command.NewFilterSetCommand(cfg),
		FiltersClear:     command.NewFiltersClearCommand(cfg),
		RowsPerPage:      command.NewRowsPerPageCommand(cfg),
		Sort:             command.NewSortCommand(cfg),
		ViewSave:         command.NewViewSaveCommand(cfg),
		ViewLoad:         command.NewViewLoadCommand(cfg),
		ViewDelete:       command.NewViewDeleteCommand(cfg),
		DefaultViewSet:   command.NewDefaultViewSetCommand(cfg),
	}
}

func (s *Service) buildQueries() Queries {
	var stores query.StoreProvider
	if s.registry != nil {
		stores = s.registry
	}
	return Queries{
		ViewState:      query.NewViewStateQuery(stores),
		Resolution:     query.NewResolutionQuery(s.prefResolver),
		History:        query.NewChangeHistoryQuery(s.history),
		HistorySummary: query.NewChangeSummaryQuery(s.history),
	}
}
