package main

import (
	"encoding/json"
	"fmt"

	"github.com/cynergists/go-viewprefs/command"
	"github.com/cynergists/go-viewprefs/notify"
	"github.com/cynergists/go-viewprefs/pkg/logging"
	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/query"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the prospect table walkthrough against an in-memory database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.New(logger)

		pcfg := cfg.Persistence
		pcfg.Server = "file:viewprefs-demo?mode=memory&cache=shared"
		db, err := openDatabase(ctx, pcfg, log, true)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newService(db, cfg, log)
		if err != nil {
			return err
		}

		session := types.Session{UserID: uuid.New()}
		collector := notify.NewCollector()
		reqCtx := notify.WithCollector(ctx, collector)
		cmds := svc.Commands()

		var saved bool
		steps := []func() error{
			func() error {
				return cmds.ColumnWidth.Execute(reqCtx, command.ColumnWidthInput{
					Session: session, Table: types.TableProspects, Column: "name", Width: 220,
				})
			},
			func() error {
				return cmds.ViewSave.Execute(reqCtx, command.ViewSaveInput{
					Session: session, Table: types.TableProspects, Name: "My View", Saved: &saved,
				})
			},
			func() error {
				return cmds.DefaultViewSet.Execute(reqCtx, command.DefaultViewSetInput{
					Session: session, Table: types.TableProspects, Name: "My View",
				})
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		for _, n := range collector.Notifications() {
			logger.Info("notification",
				zap.String("level", string(n.Level)),
				zap.String("title", n.Title),
				zap.String("description", n.Description))
		}

		// Drop the cached store so the next read goes to the database.
		svc.Evict(session.UserID)
		state, err := svc.Queries().ViewState.Query(ctx, query.ViewStateInput{
			Session: session,
			Table:   types.TableProspects,
		})
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
