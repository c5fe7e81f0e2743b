package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/store"
)

var (
	dataDirFlag       string
	defaultConfigFlag string
)

var rootCmd = &cobra.Command{
	Use:           "engine",
	Short:         "Startup funding directory engine",
	Long:          "Matches founders with grants, VCs and mentors and serves ranked results over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "engine data dir (default $FUNDFINDER_DATA_DIR or .)")
	rootCmd.PersistentFlags().StringVar(&defaultConfigFlag, "default-config", filepath.Join("config", "config.yml"), "config copied into the data dir on first run")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(adminTokenCmd)
}

// logLevel is shared by every logger so config reloads can change it.
var logLevel = new(slog.LevelVar)

func setupLogging(level string) {
	setLogLevel(level)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

func setLogLevel(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	logLevel.Set(l)
}

func dataDir() (string, error) {
	// Engine data dir: flag, then env, else local folder.
	dir := dataDirFlag
	if dir == "" {
		dir = os.Getenv("FUNDFINDER_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// env is what every subcommand needs: the data dir, the validated config
// and where it lives.
type env struct {
	DataDir     string
	UserCfgPath string
	Cfg         config.Config
}

func loadEnv() (env, error) {
	dir, err := dataDir()
	if err != nil {
		return env{}, err
	}
	userCfgPath, err := config.EnsureUserConfig(dir, defaultConfigFlag)
	if err != nil {
		return env{}, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return env{}, fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	setupLogging(cfg.App.LogLevel)
	for _, w := range vr.Warnings {
		slog.Warn("config warning", "path", userCfgPath, "msg", w)
	}
	if !vr.OK() {
		return env{}, fmt.Errorf("config invalid (%s): %v", userCfgPath, vr.Errors)
	}
	return env{DataDir: dir, UserCfgPath: userCfgPath, Cfg: cfg}, nil
}

// openStore opens and migrates the configured database. sqlite lives in
// the data dir unless database.dsn names another file.
func openStore(ctx context.Context, e env) (*store.DB, error) {
	path := e.Cfg.Database.DSN
	if e.Cfg.Database.Driver == config.DriverSQLite && path == "" {
		path = filepath.Join(e.DataDir, "fundfinder.db")
	}
	db, err := store.Open(e.Cfg.Database.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", e.Cfg.Database.Driver, err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
