// Package server initializes and runs the authentication server. It wires
// the account store, password hasher, and auth service, starts the HTTP
// endpoint, and handles graceful shutdown.
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
	"time"

	"github.com/authcore/authcore/internal/logging"
	"github.com/authcore/authcore/internal/passwd"
	"github.com/authcore/authcore/internal/server/config"
	"github.com/authcore/authcore/internal/server/httpapi"
	"github.com/authcore/authcore/internal/server/repositories/accounts"
	"github.com/authcore/authcore/internal/server/repositories/repomanager"
	"github.com/authcore/authcore/internal/server/services"
	"github.com/sethvargo/go-retry"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService *services.AuthService
	db          *sql.DB
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	l := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(l)

	hasher, err := passwd.NewHasher(nil)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	var store accounts.Repository
	var db *sql.DB

	if cfg.DatabaseDSN != "" {
		db, err = openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}

		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
		store = rm.Accounts(db)
	} else {
		logger.Warn(ctx, "no database DSN configured, using in-memory account store")
		store = accounts.NewInMemoryRepository()
	}

	authService := services.NewAuthService(store, hasher, logger, cfg)

	return &App{config: cfg, logger: logger, authService: authService, db: db}, nil
}

// openDB opens a pgx connection pool and pings it with exponential backoff,
// so the server survives the database coming up slightly later.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(db.PingContext(ctx))
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.authService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		_ = app.db.Close()
	}
}
