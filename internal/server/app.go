// Package server initializes and runs the authentication server: it loads
// configuration, opens the database and applies migrations, selects the
// token issuance strategy, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avolkov/authgate/internal/logging"
	"github.com/avolkov/authgate/internal/server/config"
	"github.com/avolkov/authgate/internal/server/httpapi"
	"github.com/avolkov/authgate/internal/server/repositories/repomanager"
	"github.com/avolkov/authgate/internal/server/services"
	"github.com/avolkov/authgate/internal/server/tokens"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// newIssuer selects the token strategy configured for this process.
func newIssuer(cfg *config.Config, db *sql.DB, rm repomanager.RepositoryManager) (tokens.Issuer, error) {
	switch cfg.TokenStrategy {
	case config.StrategyJWT:
		return tokens.NewJWTIssuer(cfg), nil
	case config.StrategyOpaque:
		return tokens.NewOpaqueIssuer(db, rm), nil
	default:
		return nil, fmt.Errorf("unknown token strategy: %q", cfg.TokenStrategy)
	}
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := newIssuer(cfg, db, rm)
	if err != nil {
		return nil, err
	}

	svc := services.NewAuthService(db, rm, issuer)
	srv := httpapi.NewServer(cfg.EndpointAddr, logger, svc)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "strategy", app.config.TokenStrategy)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "err", err.Error())
	}
}
