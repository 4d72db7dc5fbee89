package migrations

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

// SchemaValidationError lists the tables and columns the bun models expect
// but the database does not have.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaValidationError) Error() string {
	if e == nil {
		return ""
	}
	var parts []string
	if len(e.MissingTables) > 0 {
		parts = append(parts, "missing tables: "+strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cols := make([]string, 0, len(tables))
		for _, table := range tables {
			cols = append(cols, fmt.Sprintf("%s(%s)", table, strings.Join(e.MissingColumns[table], ", ")))
		}
		parts = append(parts, "missing columns: "+strings.Join(cols, "; "))
	}
	return "view preference schema mismatch: " + strings.Join(parts, "; ")
}

// ValidateSchema checks that every table and column mapped by models can be
// selected. Checks go through bun so they work on any dialect the DB was
// opened with.
func ValidateSchema(ctx context.Context, db *bun.DB, models ...any) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	report := &SchemaValidationError{MissingColumns: map[string][]string{}}
	for _, model := range models {
		table := db.Table(reflect.TypeOf(model))
		if !selectable(ctx, db, bun.Safe("1"), table.Name) {
			report.MissingTables = append(report.MissingTables, table.Name)
			continue
		}
		cols := make([]string, 0, len(table.Fields))
		for _, field := range table.Fields {
			cols = append(cols, field.Name)
		}
		if selectable(ctx, db, bun.In(idents(cols)), table.Name) {
			continue
		}
		for _, col := range cols {
			if !selectable(ctx, db, bun.Ident(col), table.Name) {
				report.MissingColumns[table.Name] = append(report.MissingColumns[table.Name], col)
			}
		}
	}

	if len(report.MissingTables) == 0 && len(report.MissingColumns) == 0 {
		return nil
	}
	sort.Strings(report.MissingTables)
	return report
}

func selectable(ctx context.Context, db *bun.DB, columns any, table string) bool {
	rows, err := db.QueryContext(ctx, "SELECT ? FROM ? LIMIT 0", columns, bun.Ident(table))
	if err != nil {
		return false
	}
	defer rows.Close()
	return rows.Err() == nil
}

func idents(cols []string) []bun.Ident {
	out := make([]bun.Ident, len(cols))
	for i, col := range cols {
		out[i] = bun.Ident(col)
	}
	return out
}
