package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"leadcollector-engine/internal/config"
	"leadcollector-engine/internal/logging"
	"leadcollector-engine/internal/store"
)

const (
	dbFile   = "linkedin_data.db"
	lockFile = "engine.lock"
)

// runtime is the state shared by commands that own the data directory.
type runtime struct {
	cfg  config.Config
	log  *slog.Logger
	db   *store.DB
	lock *flock.Flock
}

// flagString reads a flag from the command's own flag set. The flag maps are
// shared between commands, so values are never read through the map.
func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func resolveDataDir(cmd *cobra.Command) string {
	if dir := flagString(cmd, dataDirFlag); dir != "" {
		return dir
	}
	_ = godotenv.Load()
	if dir := os.Getenv("LEADS_DATA_DIR"); dir != "" {
		return dir
	}
	return "."
}

// loadConfig reads (and on first run writes) the config for dataDir and validates it.
func loadConfig(cmd *cobra.Command, dataDir string) (config.Config, *slog.Logger, error) {
	cfgPath := flagString(cmd, configFlag)
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	cfg.App.DataDir = dataDir

	cfg, vr := config.NormalizeAndValidate(cfg)
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	for _, w := range vr.Warnings {
		log.Warn("config warning", "path", cfgPath, "warning", w)
	}
	if !vr.OK() {
		return config.Config{}, nil, vr
	}
	return cfg, log, nil
}

// openRuntime locks the data directory, loads config and opens the migrated database.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	dataDir := resolveDataDir(cmd)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(dataDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data dir %s is in use by another engine process", dataDir)
	}

	rt := &runtime{lock: lock}
	if err := rt.init(cmd, dataDir); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) init(cmd *cobra.Command, dataDir string) error {
	cfg, log, err := loadConfig(cmd, dataDir)
	if err != nil {
		return err
	}
	rt.cfg, rt.log = cfg, log

	db, err := store.Open(filepath.Join(dataDir, dbFile))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	rt.db = db
	if err := db.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (rt *runtime) Close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
	_ = rt.lock.Unlock()
}
