package preferences

import (
	"context"
	"errors"

	"github.com/cynergists/go-viewprefs/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires dependencies for the Bun-backed preference store.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type preferenceStore interface {
	repository.Repository[*Record]
}

// Repository implements types.ViewPreferenceAdminRepository.
type Repository struct {
	preferenceStore
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default preference repository.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("preferences: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = newRecordRepository(cfg.DB)
	}
	repo, err := wrapWithCache(repo, applyRepositoryOptions(options))
	if err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		preferenceStore: repo,
		clock:           clock,
		idGen:           idGen,
	}, nil
}

// NewRecordRepository exposes the raw go-repository-bun store, e.g. for go-crud controllers.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return newRecordRepository(db)
}

func newRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.NewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(rec *Record) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *Record, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
		GetIdentifier: func() string {
			return "table_name"
		},
	})
}

var (
	_ repository.Repository[*Record]      = (*Repository)(nil)
	_ types.ViewPreferenceAdminRepository = (*Repository)(nil)
)

// GetViewPreferences returns the record for (user, table) or nil when none exists.
func (r *Repository) GetViewPreferences(ctx context.Context, userID uuid.UUID, table types.Table) (*types.ViewPreferenceRecord, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	if !table.Valid() {
		return nil, types.ErrUnknownTable
	}
	existing, err := r.findExisting(ctx, userID, table)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainPtr(existing), nil
}

// UpsertViewPreferences updates the row for (user, table) in place or inserts it.
func (r *Repository) UpsertViewPreferences(ctx context.Context, record types.ViewPreferenceRecord) (*types.ViewPreferenceRecord, error) {
	if record.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	if !record.Table.Valid() {
		return nil, types.ErrUnknownTable
	}
	now := r.clock.Now()
	payload := fromDomain(record)

	existing, err := r.findExisting(ctx, record.UserID, record.Table)
	switch {
	case err == nil && existing != nil:
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
		payload.Version = existing.Version + 1
		payload.UpdatedAt = now
		updated, err := r.Update(ctx, payload)
		if err != nil {
			return nil, err
		}
		return toDomainPtr(updated), nil
	case repository.IsRecordNotFound(err):
		payload.ID = r.idGen.UUID()
		payload.Version = max(record.Version, 1)
		payload.CreatedAt = now
		payload.UpdatedAt = now
		created, err := r.Create(ctx, payload)
		if err != nil {
			return nil, err
		}
		return toDomainPtr(created), nil
	default:
		return nil, err
	}
}

// ListViewPreferences returns records filtered by user and tables.
func (r *Repository) ListViewPreferences(ctx context.Context, filter types.ViewPreferenceFilter) ([]types.ViewPreferenceRecord, error) {
	tables := make([]string, 0, len(filter.Tables))
	for _, table := range filter.Tables {
		if !table.Valid() {
			return nil, types.ErrUnknownTable
		}
		tables = append(tables, string(table))
	}
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			if filter.UserID != uuid.Nil {
				q = q.Where("user_id = ?", filter.UserID)
			}
			if len(tables) > 0 {
				q = q.Where("table_name IN (?)", bun.In(tables))
			}
			return q.OrderExpr("table_name ASC").OrderExpr("updated_at DESC")
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	result := make([]types.ViewPreferenceRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomain(row))
	}
	return result, nil
}

// DeleteViewPreferences removes the row for (user, table).
func (r *Repository) DeleteViewPreferences(ctx context.Context, userID uuid.UUID, table types.Table) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	existing, err := r.findExisting(ctx, userID, table)
	if err != nil {
		return err
	}
	return r.Delete(ctx, existing)
}

func (r *Repository) findExisting(ctx context.Context, userID uuid.UUID, table types.Table) (*Record, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("user_id = ?", userID).
				Where("table_name = ?", string(table)).
				Limit(1)
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.NewRecordNotFound()
	}
	return rows[0], nil
}

func fromDomain(record types.ViewPreferenceRecord) *Record {
	prefs := record.Preferences.Clone()
	views := make([]SavedViewPayload, 0, len(prefs.SavedViews))
	for _, view := range prefs.SavedViews {
		views = append(views, SavedViewPayload{
			Name:          view.Name,
			ColumnOrder:   nonNilStrings(view.ColumnOrder),
			HiddenColumns: nonNilStrings(view.HiddenColumns),
			ColumnWidths:  nonNilWidths(view.ColumnWidths),
			SortColumn:    view.SortColumn,
			SortDirection: string(view.SortDirection),
			ActiveFilters: nonNilFilters(view.ActiveFilters),
			RowsPerPage:   view.RowsPerPage,
		})
	}
	direction := string(prefs.SortDirection)
	if direction == "" {
		direction = string(types.SortAsc)
	}
	rows := prefs.RowsPerPage
	if rows <= 0 {
		rows = types.DefaultRowsPerPage
	}
	return &Record{
		ID:              record.ID,
		UserID:          record.UserID,
		TableName:       string(record.Table),
		ColumnOrder:     nonNilStrings(prefs.ColumnOrder),
		HiddenColumns:   nonNilStrings(prefs.HiddenColumns),
		ColumnWidths:    nonNilWidths(prefs.ColumnWidths),
		SortColumn:      prefs.SortColumn,
		SortDirection:   direction,
		ActiveFilters:   nonNilFilters(prefs.ActiveFilters),
		RowsPerPage:     rows,
		SavedViews:      views,
		ActiveViewName:  prefs.ActiveViewName,
		DefaultViewName: prefs.DefaultViewName,
		Version:         record.Version,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func toDomain(record *Record) types.ViewPreferenceRecord {
	if record == nil {
		return types.ViewPreferenceRecord{}
	}
	var views []types.SavedView
	if record.SavedViews != nil {
		views = make([]types.SavedView, 0, len(record.SavedViews))
		for _, view := range record.SavedViews {
			views = append(views, types.SavedView{
				Name:          view.Name,
				ColumnOrder:   view.ColumnOrder,
				HiddenColumns: view.HiddenColumns,
				ColumnWidths:  view.ColumnWidths,
				SortColumn:    view.SortColumn,
				SortDirection: types.SortDirection(view.SortDirection),
				ActiveFilters: view.ActiveFilters,
				RowsPerPage:   view.RowsPerPage,
			})
		}
	}
	prefs := types.ViewPreferences{
		ColumnOrder:     record.ColumnOrder,
		HiddenColumns:   record.HiddenColumns,
		ColumnWidths:    record.ColumnWidths,
		SortColumn:      record.SortColumn,
		SortDirection:   types.SortDirection(record.SortDirection),
		ActiveFilters:   record.ActiveFilters,
		RowsPerPage:     record.RowsPerPage,
		SavedViews:      views,
		ActiveViewName:  record.ActiveViewName,
		DefaultViewName: record.DefaultViewName,
	}
	return types.ViewPreferenceRecord{
		ID:          record.ID,
		UserID:      record.UserID,
		Table:       types.Table(record.TableName),
		Preferences: prefs.Clone(),
		Version:     record.Version,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toDomainPtr(record *Record) *types.ViewPreferenceRecord {
	rec := toDomain(record)
	return &rec
}

// FromViewPreferenceRecord converts a domain record into the Bun model.
func FromViewPreferenceRecord(record types.ViewPreferenceRecord) *Record {
	return fromDomain(record)
}

// ToViewPreferenceRecord converts the Bun model into the domain record.
func ToViewPreferenceRecord(record *Record) types.ViewPreferenceRecord {
	return toDomain(record)
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilWidths(in map[string]float64) map[string]float64 {
	if in == nil {
		return map[string]float64{}
	}
	return in
}

func nonNilFilters(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	return in
}
