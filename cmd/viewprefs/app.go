package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cynergists/go-viewprefs/cmd/viewprefs/internal/config"
	"github.com/cynergists/go-viewprefs/history"
	"github.com/cynergists/go-viewprefs/migrations"
	"github.com/cynergists/go-viewprefs/pkg/logging"
	"github.com/cynergists/go-viewprefs/preferences"
	"github.com/cynergists/go-viewprefs/service"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const sqliteDriver = "sqlite3"

// openDatabase connects through go-persistence-bun and registers the
// embedded migrations. When migrate is set pending migrations are applied
// and the resulting schema is validated.
func openDatabase(ctx context.Context, pcfg config.PersistenceConfig, log *logging.Logger, migrate bool) (*bun.DB, error) {
	db, err := sql.Open(sqliteDriver, pcfg.GetServer())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	persistence.RegisterModel((*preferences.Record)(nil))
	persistence.RegisterModel((*history.Entry)(nil))

	client, err := persistence.New(pcfg, db, sqlitedialect.New())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, fsys := range migrations.Filesystems() {
		client.RegisterDialectMigrations(
			fsys,
			persistence.WithDialectSourceLabel("."),
			persistence.WithValidationTargets("postgres", "sqlite"),
		)
	}
	if !migrate {
		return client.DB(), nil
	}

	if err := client.ValidateDialects(ctx); err != nil {
		log.Info("dialect validation failed", "error", err.Error())
	}
	if err := client.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if report := client.Report(); report != nil && !report.IsZero() {
		log.Info("migrations applied", "report", report.String())
	}
	if err := migrations.ValidateSchema(ctx, client.DB(), (*preferences.Record)(nil), (*history.Entry)(nil)); err != nil {
		_ = db.Close()
		return nil, err
	}
	return client.DB(), nil
}

// newService wires the bun repositories into a service.
func newService(db *bun.DB, c config.Config, log *logging.Logger) (*service.Service, error) {
	prefRepo, err := preferences.NewRepository(
		preferences.RepositoryConfig{DB: db},
		preferences.WithCache(c.CacheEnabled),
	)
	if err != nil {
		return nil, err
	}
	changes, err := history.NewRepository(history.Config{DB: db})
	if err != nil {
		return nil, err
	}
	svc := service.New(service.Config{
		PreferenceRepository: prefRepo,
		ChangeRecorder:       changes,
		Logger:               log,
		StoreMaxAge:          c.StoreMaxAge,
	})
	if err := svc.HealthCheck(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}
