package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/authctx"
	"github.com/cynergists/go-viewprefs/pkg/logging"
	"github.com/cynergists/go-viewprefs/pkg/schema"
	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/transport/httpapi"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const userHeader = "X-User-ID"

var (
	trustUserHeader bool
	adminRoutes     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the view preferences HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		apiGuards, adminGuards, err := routeGuards(cfg, trustUserHeader, adminRoutes)
		if err != nil {
			return err
		}

		log := logging.New(logger)
		db, err := openDatabase(ctx, cfg.Persistence, log, true)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newService(db, cfg, log)
		if err != nil {
			return err
		}
		session := httpapi.SessionResolver(authctx.RouterSessionResolver(cfg.Auth.GetContextKey()))
		if trustUserHeader {
			logger.Warn("trusting user header for sessions", zap.String("header", userHeader))
			session = headerSession
		}
		api, err := httpapi.New(httpapi.Config{Service: svc, Session: session, Logger: log})
		if err != nil {
			return err
		}

		srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
			return fiber.New(fiber.Config{
				UnescapePath:  true,
				StrictRouting: false,
			})
		})
		httpapi.Register(srv.Router().Group("/api"), api, apiGuards...)
		if adminRoutes {
			admin := srv.Router().Group("/admin")
			schemas := schema.NewRegistry()
			schemas.Register(httpapi.RegisterAdmin(admin, db, adminGuards...))
			admin.Get("/schemas", schemas.Handler())
		}

		addr := cfg.Server.Address()
		errCh := make(chan error, 1)
		go func() {
			logger.Info("serving view preferences", zap.String("addr", addr))
			errCh <- srv.Serve(addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&trustUserHeader, "trust-user-header", false, "read the session user from the "+userHeader+" header (development only)")
	serveCmd.Flags().BoolVar(&adminRoutes, "admin", false, "mount the read-only admin listing and its schema under /admin (requires auth)")
}

// headerSession falls back to the user header when no auth actor is present.
func headerSession(c router.Context) (types.Session, error) {
	session, err := authctx.SessionFromRouter(c)
	if err != nil || session.Authenticated() {
		return session, err
	}
	raw := strings.TrimSpace(c.Header(userHeader))
	if raw == "" {
		return types.Session{}, nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return types.Session{}, nil
	}
	return types.Session{UserID: userID}, nil
}
