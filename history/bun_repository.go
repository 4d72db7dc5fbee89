package history

import (
	"context"
	"errors"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/goliatone/go-masker"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Config wires the change history repository.
type Config struct {
	DB    *bun.DB
	Clock types.Clock
	IDGen types.IDGenerator
	// Masker defaults to DefaultMasker.
	Masker *masker.Masker
}

// Repository stores changes through go-repository-bun and answers history
// queries scoped to one user and table.
type Repository struct {
	entries repository.Repository[*Entry]
	db      *bun.DB
	clock   types.Clock
	idGen   types.IDGenerator
	mask    *masker.Masker
}

var (
	_ types.ChangeRecorder = (*Repository)(nil)
	_ types.ChangeHistory  = (*Repository)(nil)
)

// NewRepository constructs the repository.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("history: db required")
	}
	r := &Repository{
		entries: NewEntryRepository(cfg.DB),
		db:      cfg.DB,
		clock:   cfg.Clock,
		idGen:   cfg.IDGen,
		mask:    cfg.Masker,
	}
	if r.clock == nil {
		r.clock = types.SystemClock{}
	}
	if r.idGen == nil {
		r.idGen = types.UUIDGenerator{}
	}
	if r.mask == nil {
		r.mask = DefaultMasker()
	}
	return r, nil
}

// NewEntryRepository returns the generic bun repository over Entry rows.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.NewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			if e == nil {
				return uuid.Nil
			}
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			if e != nil {
				e.ID = id
			}
		},
	})
}

// RecordChange stores change with its filter value masked. Changes without a
// user or with an unknown table or kind are rejected.
func (r *Repository) RecordChange(ctx context.Context, change types.Change) error {
	if change.UserID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	if !change.Table.Valid() {
		return types.ErrUnknownTable
	}
	if !change.Kind.Valid() {
		return types.ErrUnknownChangeKind
	}
	if change.ID == uuid.Nil {
		change.ID = r.idGen.UUID()
	}
	if change.OccurredAt.IsZero() {
		change.OccurredAt = r.clock.Now()
	}
	_, err := r.entries.Create(ctx, &Entry{
		ID:        change.ID,
		UserID:    change.UserID,
		TenantID:  change.TenantID,
		OrgID:     change.OrgID,
		TableName: string(change.Table),
		Kind:      string(change.Kind),
		ViewName:  change.ViewName,
		Details:   redact(r.mask, change.Details),
		CreatedAt: change.OccurredAt,
	})
	return err
}

// ListChanges returns the user's changes to one table, newest first.
func (r *Repository) ListChanges(ctx context.Context, filter types.ChangeFilter) (types.ChangePage, error) {
	if filter.UserID == uuid.Nil {
		return types.ChangePage{}, types.ErrUserIDRequired
	}
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	rows, total, err := r.entries.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = scope(q, filter.UserID, filter.Table)
		if len(filter.Kinds) > 0 {
			kinds := make([]string, len(filter.Kinds))
			for i, k := range filter.Kinds {
				kinds[i] = string(k)
			}
			q = q.Where("kind IN (?)", bun.In(kinds))
		}
		if !filter.Since.IsZero() {
			q = q.Where("created_at >= ?", filter.Since)
		}
		return q.OrderExpr("created_at DESC").Limit(limit).Offset(offset)
	})
	if err != nil {
		return types.ChangePage{}, err
	}
	page := types.ChangePage{
		Changes:    make([]types.Change, 0, len(rows)),
		Total:      total,
		NextOffset: offset + len(rows),
		HasMore:    offset+len(rows) < total,
	}
	for _, row := range rows {
		page.Changes = append(page.Changes, row.change())
	}
	return page, nil
}

// SummarizeChanges counts the user's changes to table by kind and reports
// when the last one happened.
func (r *Repository) SummarizeChanges(ctx context.Context, userID uuid.UUID, table types.Table) (types.ChangeSummary, error) {
	summary := types.ChangeSummary{Table: table, ByKind: map[types.ChangeKind]int{}}
	if userID == uuid.Nil {
		return summary, types.ErrUserIDRequired
	}

	var counts []struct {
		Kind  string `bun:"kind"`
		Total int    `bun:"total"`
	}
	err := scope(r.db.NewSelect().Model((*Entry)(nil)), userID, table).
		ColumnExpr("kind").
		ColumnExpr("COUNT(*) AS total").
		Group("kind").
		Scan(ctx, &counts)
	if err != nil {
		return summary, err
	}
	for _, c := range counts {
		summary.ByKind[types.ChangeKind(c.Kind)] = c.Total
		summary.Total += c.Total
	}
	if summary.Total == 0 {
		return summary, nil
	}

	latest, _, err := r.entries.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return scope(q, userID, table).OrderExpr("created_at DESC").Limit(1)
	})
	if err != nil {
		return summary, err
	}
	if len(latest) > 0 {
		at := latest[0].CreatedAt
		summary.LastChangedAt = &at
	}
	return summary, nil
}

func scope(q *bun.SelectQuery, userID uuid.UUID, table types.Table) *bun.SelectQuery {
	q = q.Where("user_id = ?", userID)
	if table != "" {
		q = q.Where("table_name = ?", string(table))
	}
	return q
}

func pageBounds(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (e *Entry) change() types.Change {
	return types.Change{
		ID:         e.ID,
		UserID:     e.UserID,
		TenantID:   e.TenantID,
		OrgID:      e.OrgID,
		Table:      types.Table(e.TableName),
		Kind:       types.ChangeKind(e.Kind),
		ViewName:   e.ViewName,
		Details:    e.Details,
		OccurredAt: e.CreatedAt,
	}
}
