package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Import tags, grants, VCs and mentors from a YAML seed file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join("config", "seed.yml")
		if len(args) == 1 {
			path = args[0]
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		lock, err := config.LockDataDir(e.DataDir)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Unlock() }()

		db, err := openStore(cmd.Context(), e)
		if err != nil {
			return err
		}
		defer db.Close()

		return importSeed(cmd.Context(), db, path)
	},
}

func importSeed(ctx context.Context, db *store.DB, path string) error {
	sf, err := store.LoadSeedFile(path)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	st, err := db.ImportSeed(ctx, sf)
	if err != nil {
		return fmt.Errorf("import seed %s: %w", path, err)
	}
	slog.Info("seed imported", "path", path, "tags", st.Tags, "grants", st.Grants, "vcs", st.VCs, "mentors", st.Mentors)
	return nil
}
