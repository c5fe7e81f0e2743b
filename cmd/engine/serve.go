package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/events"
	"fundfinder-engine/internal/httpapi"
	"fundfinder-engine/internal/match"
	"fundfinder-engine/internal/scheduler"
	"fundfinder-engine/internal/secrets"
	"fundfinder-engine/internal/store"
)

var (
	serveHost string
	serveSeed string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "listen host")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "seed file imported before serving")
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := loadEnv()
	if err != nil {
		return err
	}

	lock, err := config.LockDataDir(e.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	db, err := openStore(ctx, e)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := events.NewHub()

	if serveSeed != "" {
		if err := importSeed(ctx, db, serveSeed); err != nil {
			return err
		}
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(e.Cfg)
	current := func() config.Config { return cfgVal.Load().(config.Config) }

	matcher := match.NewService(db, func() config.Matching { return current().Matching }, slog.Default())

	// rps 0 passes everything until a reload turns limiting on
	limiter := httpapi.NewClientLimiter(e.Cfg.HTTP.RateLimitRPS, e.Cfg.HTTP.RateLimitBurst)

	deps := httpapi.Deps{
		Matcher:     matcher,
		Tags:        db,
		Submissions: db,
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: e.UserCfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(e.UserCfgPath) },
		AdminToken:  secrets.GetAdminToken,
		Limiter:     limiter,
		OnApply:     func(c config.Config) { setLogLevel(c.App.LogLevel) },
	}

	go func() {
		err := config.Watch(ctx, e.UserCfgPath, func(c config.Config) {
			deps.Apply(c)
			hub.Emit("", events.TypeConfigReloaded, map[string]any{"source": "file"})
			slog.Info("config reloaded", "path", e.UserCfgPath)
		})
		if err != nil {
			slog.Warn("config watcher stopped", "err", err)
		}
	}()

	go scheduler.Every(ctx, time.Duration(e.Cfg.Submissions.CleanupMinutes)*time.Minute, "submission-cleanup",
		func(ctx context.Context) error {
			return cleanupSubmissions(ctx, db, current())
		})

	addr := net.JoinHostPort(serveHost, fmt.Sprint(e.Cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	slog.Info("engine listening", "addr", "http://"+addr, "driver", e.Cfg.Database.Driver)

	srv := &http.Server{
		Handler:           httpapi.Handler(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("engine shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cleanupSubmissions(ctx context.Context, db *store.DB, cfg config.Config) error {
	maxAge := time.Duration(cfg.Submissions.RetentionDays) * 24 * time.Hour
	n, err := db.CleanupStaleSubmissions(ctx, maxAge)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("stale submissions removed", "deleted", n, "retention_days", cfg.Submissions.RetentionDays)
	}
	return nil
}
